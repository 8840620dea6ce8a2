package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	"github.com/dropDatabas3/userdash/internal/kv"
	"github.com/dropDatabas3/userdash/internal/metrics"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/pagination"
	"github.com/dropDatabas3/userdash/internal/seed"
	"golang.org/x/sync/singleflight"
)

// DefaultKey es la key del snapshot en el Persistence Adapter.
const DefaultKey = "users"

// Options configura el Store.
type Options struct {
	// Key del snapshot. Vacío = DefaultKey.
	Key string
}

// Store es el dueño de la secuencia de usuarios.
// Todas las mutaciones se serializan; las lecturas devuelven copias.
type Store struct {
	kv   kv.Store
	seed seed.Source
	key  string

	mu    sync.RWMutex
	users []repository.UserRecord

	// sf deduplica Loads concurrentes
	sf      singleflight.Group
	loading atomic.Bool
}

// NewStore crea un Store vacío. src puede ser nil (sin seed).
func NewStore(store kv.Store, src seed.Source, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		kv:    store,
		seed:  src,
		key:   key,
		users: []repository.UserRecord{},
	}
}

// Load puebla el store desde el snapshot o, si no hay, desde la fuente remota.
// Un fallo del fetch remoto se loguea y deja el store vacío sin error.
// Llamadas concurrentes comparten una única carga.
func (s *Store) Load(ctx context.Context) ([]repository.UserRecord, error) {
	_, err, _ := s.sf.Do("load", func() (any, error) {
		s.loading.Store(true)
		defer s.loading.Store(false)
		return nil, s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return s.List(), nil
}

// Loading indica si hay un Load en curso.
func (s *Store) Loading() bool { return s.loading.Load() }

func (s *Store) load(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("Load"), logger.Key(s.key))

	s.mu.Lock()
	adopted, err := s.adoptSnapshot(ctx)
	s.mu.Unlock()
	if err != nil {
		log.Error("snapshot read failed", logger.Err(err))
		return err
	}
	if adopted > 0 {
		log.Debug("loaded from snapshot", logger.Count(adopted))
		return nil
	}

	var next []repository.UserRecord
	if s.seed != nil {
		fetched, err := s.seed.Fetch(ctx)
		if err != nil {
			metrics.RecordSeedFetch(metrics.ResultError)
			logFields := []logger.Field{logger.Err(err)}
			var fe *seed.FetchError
			if errors.As(err, &fe) {
				logFields = append(logFields, logger.URL(fe.URL))
			}
			log.Error("seed fetch failed, store stays empty", logFields...)
			fetched = nil
		} else {
			metrics.RecordSeedFetch(metrics.ResultOK)
		}
		next = make([]repository.UserRecord, len(fetched))
		for i, u := range fetched {
			next[i] = u.Clone()
			next[i].ID = i + 1
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Una mutación pudo persistir mientras se hacía el fetch: gana el snapshot.
	adopted, err = s.adoptSnapshot(ctx)
	if err != nil {
		log.Error("snapshot read failed", logger.Err(err))
		return err
	}
	if adopted > 0 {
		log.Debug("loaded from snapshot written during fetch", logger.Count(adopted))
		return nil
	}
	if len(next) == 0 {
		s.users = []repository.UserRecord{}
		metrics.SetUsers(0)
		return nil
	}

	if err := s.persist(ctx, next); err != nil {
		log.Error("seed persist failed", logger.Err(err))
		return err
	}
	s.users = next
	metrics.SetUsers(len(next))
	log.Info("seeded from remote source", logger.Count(len(next)))
	return nil
}

// adoptSnapshot reemplaza s.users por el snapshot persistido si no está vacío
// y devuelve cuántos registros adoptó. Requiere s.mu tomado.
func (s *Store) adoptSnapshot(ctx context.Context) (int, error) {
	snapshot, err := s.readSnapshot(ctx)
	if err != nil || len(snapshot) == 0 {
		return 0, err
	}
	s.users = snapshot
	metrics.SetUsers(len(snapshot))
	return len(snapshot), nil
}

// readSnapshot devuelve nil si la key no existe o el snapshot es null/[].
func (s *Store) readSnapshot(ctx context.Context) ([]repository.UserRecord, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if kv.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: read snapshot: %w: %w", repository.ErrStorageUnavailable, err)
	}
	var out []repository.UserRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("users: decode snapshot: %w", err)
	}
	return out, nil
}

// persist escribe la secuencia completa. Requiere s.mu tomado.
func (s *Store) persist(ctx context.Context, next []repository.UserRecord) error {
	if next == nil {
		next = []repository.UserRecord{}
	}
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("users: encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("users: write snapshot: %w: %w", repository.ErrStorageUnavailable, err)
	}
	return nil
}

// Add agrega un usuario con ID = max(ids)+1.
// Retorna repository.ErrDuplicateEmail si el email ya existe.
func (s *Store) Add(ctx context.Context, f repository.UserFields) (repository.UserRecord, error) {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("Add"))

	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, u := range s.users {
		if u.Email == f.Email {
			metrics.RecordMutation("add", metrics.ResultDuplicate)
			log.Debug("duplicate email", logger.Email(f.Email))
			return repository.UserRecord{}, repository.ErrDuplicateEmail
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	rec := repository.UserRecord{}.WithFields(f)
	rec.ID = maxID + 1

	next := make([]repository.UserRecord, len(s.users), len(s.users)+1)
	copy(next, s.users)
	next = append(next, rec)

	if err := s.persist(ctx, next); err != nil {
		metrics.RecordMutation("add", metrics.ResultError)
		log.Error("persist failed", logger.Err(err))
		return repository.UserRecord{}, err
	}
	s.users = next
	metrics.RecordMutation("add", metrics.ResultOK)
	metrics.SetUsers(len(next))
	log.Info("user added", logger.UserID(rec.ID))
	return rec.Clone(), nil
}

// Update reemplaza en su posición el usuario con rec.ID.
// Retorna repository.ErrNotFound si no existe y repository.ErrDuplicateEmail
// si otro usuario ya usa el email.
func (s *Store) Update(ctx context.Context, rec repository.UserRecord) (repository.UserRecord, error) {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("Update"), logger.UserID(rec.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, u := range s.users {
		if u.ID == rec.ID {
			idx = i
			continue
		}
		if u.Email == rec.Email {
			metrics.RecordMutation("update", metrics.ResultDuplicate)
			log.Debug("duplicate email", logger.Email(rec.Email))
			return repository.UserRecord{}, repository.ErrDuplicateEmail
		}
	}
	if idx < 0 {
		metrics.RecordMutation("update", metrics.ResultNotFound)
		return repository.UserRecord{}, repository.ErrNotFound
	}

	next := make([]repository.UserRecord, len(s.users))
	copy(next, s.users)
	next[idx] = rec.Clone()

	if err := s.persist(ctx, next); err != nil {
		metrics.RecordMutation("update", metrics.ResultError)
		log.Error("persist failed", logger.Err(err))
		return repository.UserRecord{}, err
	}
	s.users = next
	metrics.RecordMutation("update", metrics.ResultOK)
	log.Info("user updated")
	return rec.Clone(), nil
}

// Delete quita el usuario y re-numera el resto por posición (1..N-1).
// Un id inexistente no es error y no escribe nada.
func (s *Store) Delete(ctx context.Context, id int) error {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("Delete"), logger.UserID(id))

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	next := make([]repository.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == id {
			found = true
			continue
		}
		next = append(next, u)
	}
	if !found {
		metrics.RecordMutation("delete", metrics.ResultNotFound)
		log.Debug("delete of unknown id ignored")
		return nil
	}
	for i := range next {
		next[i].ID = i + 1
	}

	if err := s.persist(ctx, next); err != nil {
		metrics.RecordMutation("delete", metrics.ResultError)
		log.Error("persist failed", logger.Err(err))
		return err
	}
	s.users = next
	metrics.RecordMutation("delete", metrics.ResultOK)
	metrics.SetUsers(len(next))
	log.Info("user deleted", logger.Count(len(next)))
	return nil
}

// List devuelve una copia de la secuencia completa.
func (s *Store) List() []repository.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.UserRecord, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// Get busca por ID.
func (s *Store) Get(id int) (repository.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return repository.UserRecord{}, repository.ErrNotFound
}

// Len devuelve la cantidad de usuarios.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Page devuelve la ventana pedida sobre la secuencia actual.
func (s *Store) Page(page, size int) pagination.Page[repository.UserRecord] {
	return pagination.Paginate(s.List(), page, size)
}

// Ping verifica el Persistence Adapter.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.kv.Ping(ctx); err != nil {
		return fmt.Errorf("users: persistence ping (%s): %w", s.kv.Driver(), err)
	}
	return nil
}
