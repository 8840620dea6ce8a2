// Package users contiene el controller de /v1/users.
package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/userdash/internal/audit"
	"github.com/dropDatabas3/userdash/internal/domain/repository"
	dto "github.com/dropDatabas3/userdash/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/userdash/internal/http/errors"
	"github.com/dropDatabas3/userdash/internal/http/helpers"
	mw "github.com/dropDatabas3/userdash/internal/http/middlewares"
	svc "github.com/dropDatabas3/userdash/internal/http/services/users"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// UsersController maneja CRUD de usuarios.
type UsersController struct {
	service svc.UserService
}

// NewUsersController crea el controller.
func NewUsersController(service svc.UserService) *UsersController {
	return &UsersController{service: service}
}

// List maneja GET /v1/users?page=&page_size=
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.QueryInt(r, "page", 1)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if page < 1 {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("page must be >= 1"))
		return
	}
	size, err := helpers.QueryInt(r, "page_size", 0)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	p := c.service.List(r.Context(), page, size)
	helpers.WriteJSON(w, http.StatusOK, dto.ListUsersResponse{
		Users:      p.Items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
		HasPrev:    p.HasPrev,
		HasNext:    p.HasNext,
	})
}

// Get maneja GET /v1/users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathInt(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	u, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Create maneja POST /v1/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	var req dto.UserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	u, err := c.service.Create(ctx, req)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	log.Info("user created", logger.UserID(u.ID))
	audit.Log(ctx, audit.UserCreated, mw.GetSubject(ctx), logger.UserID(u.ID), logger.Email(u.Email))
	w.Header().Set("Location", "/v1/users/"+strconv.Itoa(u.ID))
	helpers.WriteJSON(w, http.StatusCreated, u)
}

// Update maneja PUT /v1/users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	var req dto.UserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	u, err := c.service.Update(ctx, id, req)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	logger.From(ctx).Info("user updated", logger.Layer("controller"), logger.UserID(u.ID))
	audit.Log(ctx, audit.UserUpdated, mw.GetSubject(ctx), logger.UserID(u.ID), logger.Email(u.Email))
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Delete maneja DELETE /v1/users/{id}. Un id inexistente también da 204.
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathInt(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	ctx := r.Context()
	if err := c.service.Delete(ctx, id); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	audit.Log(ctx, audit.UserDeleted, mw.GetSubject(ctx), logger.UserID(id))
	helpers.NoContent(w)
}

// Reload maneja POST /v1/users/reload
func (c *UsersController) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := c.service.Reload(ctx)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	audit.Log(ctx, audit.UsersReloaded, mw.GetSubject(ctx), logger.Count(n))
	helpers.WriteJSON(w, http.StatusOK, dto.ReloadResponse{Count: n})
}

func mapError(err error) error {
	var verr *svc.ValidationError
	switch {
	case errors.As(err, &verr):
		return httperrors.ErrValidationFailed.WithFields(verr.Fields)
	case repository.IsDuplicateEmail(err):
		return httperrors.ErrEmailExists.WithCause(err)
	case repository.IsNotFound(err):
		return httperrors.ErrUserNotFound.WithCause(err)
	case repository.IsStorageUnavailable(err):
		return httperrors.ErrServiceUnavailable.WithCause(err)
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
