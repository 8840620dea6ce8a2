// Package users provee el service HTTP sobre el User Store.
package users

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	dto "github.com/dropDatabas3/userdash/internal/http/dto/users"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/pagination"
	"github.com/dropDatabas3/userdash/internal/validation"
)

// MaxPageSize acota page_size en la API.
const MaxPageSize = 100

// Store es el subconjunto del User Store que usa el service.
type Store interface {
	Load(ctx context.Context) ([]repository.UserRecord, error)
	Add(ctx context.Context, f repository.UserFields) (repository.UserRecord, error)
	Update(ctx context.Context, rec repository.UserRecord) (repository.UserRecord, error)
	Delete(ctx context.Context, id int) error
	Get(id int) (repository.UserRecord, error)
	Page(page, size int) pagination.Page[repository.UserRecord]
}

// ValidationError lleva los errores por campo.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// UserService define las operaciones de /v1/users.
type UserService interface {
	List(ctx context.Context, page, size int) pagination.Page[repository.UserRecord]
	Get(ctx context.Context, id int) (repository.UserRecord, error)
	Create(ctx context.Context, req dto.UserRequest) (repository.UserRecord, error)
	Update(ctx context.Context, id int, req dto.UserRequest) (repository.UserRecord, error)
	Delete(ctx context.Context, id int) error
	Reload(ctx context.Context) (int, error)
}

type userService struct {
	store           Store
	defaultPageSize int
}

// NewUserService crea el service. defaultPageSize se usa si el request no trae page_size.
func NewUserService(store Store, defaultPageSize int) UserService {
	if defaultPageSize < 1 {
		defaultPageSize = pagination.DefaultPageSize
	}
	return &userService{store: store, defaultPageSize: defaultPageSize}
}

const componentUsers = "users"

func (s *userService) List(ctx context.Context, page, size int) pagination.Page[repository.UserRecord] {
	if size < 1 {
		size = s.defaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	p := s.store.Page(page, size)
	logger.From(ctx).Debug("users listed",
		logger.Layer("service"),
		logger.Component(componentUsers),
		logger.Page(p.Page),
		logger.PageSize(p.PageSize),
		logger.Count(len(p.Items)),
	)
	return p
}

func (s *userService) Get(ctx context.Context, id int) (repository.UserRecord, error) {
	return s.store.Get(id)
}

func (s *userService) Create(ctx context.Context, req dto.UserRequest) (repository.UserRecord, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentUsers),
		logger.Op("Create"),
	)

	f := req.Fields()
	if errs := validation.ValidateUser(f); !errs.Empty() {
		return repository.UserRecord{}, &ValidationError{Fields: errs}
	}

	rec, err := s.store.Add(ctx, f)
	if err != nil {
		if !repository.IsDuplicateEmail(err) {
			log.Error("create failed", logger.Err(err))
		}
		return repository.UserRecord{}, err
	}
	return rec, nil
}

func (s *userService) Update(ctx context.Context, id int, req dto.UserRequest) (repository.UserRecord, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentUsers),
		logger.Op("Update"),
		logger.UserID(id),
	)

	f := req.Fields()
	if errs := validation.ValidateUser(f); !errs.Empty() {
		return repository.UserRecord{}, &ValidationError{Fields: errs}
	}

	existing, err := s.store.Get(id)
	if err != nil {
		return repository.UserRecord{}, err
	}

	rec, err := s.store.Update(ctx, existing.WithFields(f))
	if err != nil {
		if !repository.IsDuplicateEmail(err) && !repository.IsNotFound(err) {
			log.Error("update failed", logger.Err(err))
		}
		return repository.UserRecord{}, err
	}
	return rec, nil
}

func (s *userService) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		logger.From(ctx).Error("delete failed",
			logger.Layer("service"),
			logger.Component(componentUsers),
			logger.UserID(id),
			logger.Err(err),
		)
		return err
	}
	return nil
}

func (s *userService) Reload(ctx context.Context) (int, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
