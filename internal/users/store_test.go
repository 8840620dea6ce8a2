package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	"github.com/dropDatabas3/userdash/internal/kv"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// flakyKV envuelve un kv.Store y puede fallar los Set.
type flakyKV struct {
	kv.Store
	failSet atomic.Bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet.Load() {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

// gatedKV frena el próximo Get armado hasta que se cierre gate.
type gatedKV struct {
	kv.Store
	armed   atomic.Bool
	entered chan struct{}
	gate    chan struct{}
}

func newGatedKV(inner kv.Store) *gatedKV {
	return &gatedKV{Store: inner, entered: make(chan struct{}), gate: make(chan struct{})}
}

func (g *gatedKV) Get(ctx context.Context, key string) ([]byte, error) {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.gate
	}
	return g.Store.Get(ctx, key)
}

// blockingSource frena Fetch hasta que se cierre gate.
type blockingSource struct {
	inner   seed.Source
	entered chan struct{}
	gate    chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context) ([]repository.UserRecord, error) {
	close(b.entered)
	<-b.gate
	return b.inner.Fetch(ctx)
}

// countingSource cuenta los Fetch.
type countingSource struct {
	inner seed.Source
	calls atomic.Int32
}

func (c *countingSource) Fetch(ctx context.Context) ([]repository.UserRecord, error) {
	c.calls.Add(1)
	return c.inner.Fetch(ctx)
}

func fields(name, email, dept string) repository.UserFields {
	return repository.UserFields{Name: name, Email: email, Department: dept}
}

func newLoaded(t *testing.T, store kv.Store, src seed.Source) *Store {
	t.Helper()
	s := NewStore(store, src, Options{})
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	return s
}

func ids(users []repository.UserRecord) []int {
	out := make([]int, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

// assertPersisted verifica que un store nuevo sobre el mismo kv ve lo mismo.
func assertPersisted(t *testing.T, store kv.Store, s *Store) {
	t.Helper()
	fresh := NewStore(store, seed.Failing{Err: errors.New("must not fetch")}, Options{Key: s.key})
	got, err := fresh.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.List(), got)
}

func TestAdd_ScenarioDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, kv.NewMemory(""), seed.Static(nil))

	rec, err := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)
	assert.Equal(t, repository.UserRecord{ID: 1, Name: "A", Email: "a@x.com", Department: "Eng"}, rec)

	_, err = s.Add(ctx, fields("B", "a@x.com", "Ops"))
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Equal(t, 1, s.Len())
}

func TestAdd_EmailMatchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, kv.NewMemory(""), nil)

	_, err := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)
	_, err = s.Add(ctx, fields("A2", "A@x.com", "Eng"))
	assert.NoError(t, err)
}

func TestAdd_UsesMaxIDPlusOne(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`[{"id":1,"name":"a","email":"a@x","department":""},{"id":5,"name":"b","email":"b@x","department":""}]`)))

	s := newLoaded(t, store, nil)
	rec, err := s.Add(ctx, fields("c", "c@x.com", "Eng"))
	require.NoError(t, err)
	assert.Equal(t, 6, rec.ID)
}

func TestDelete_ScenarioRenumbers(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	s := newLoaded(t, store, nil)
	for i := 1; i <= 3; i++ {
		_, err := s.Add(ctx, fields(fmt.Sprintf("U%d", i), fmt.Sprintf("u%d@x.com", i), "Eng"))
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, 2))

	got := s.List()
	assert.Equal(t, []int{1, 2}, ids(got))
	assert.Equal(t, "U1", got[0].Name)
	assert.Equal(t, "U3", got[1].Name, "old id 3 renumbered to 2")
	assertPersisted(t, store, s)
}

func TestDelete_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &flakyKV{Store: kv.NewMemory("")}
	s := newLoaded(t, store, nil)
	_, err := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)

	// si escribiera fallaría
	store.failSet.Store(true)
	assert.NoError(t, s.Delete(ctx, 42))
	assert.Equal(t, 1, s.Len())
}

func TestUpdate_InPlaceAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	s := newLoaded(t, store, nil)
	a, _ := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	_, _ = s.Add(ctx, fields("B", "b@x.com", "Ops"))

	// mismo email propio: permitido
	updated, err := s.Update(ctx, a.WithFields(fields("A!", "a@x.com", "Sales")))
	require.NoError(t, err)
	assert.Equal(t, "A!", updated.Name)
	assert.Equal(t, "A!", s.List()[0].Name, "position unchanged")

	_, err = s.Update(ctx, a.WithFields(fields("A", "b@x.com", "Eng")))
	assert.True(t, repository.IsDuplicateEmail(err))
	assert.Equal(t, "a@x.com", s.List()[0].Email)

	assertPersisted(t, store, s)
}

func TestUpdate_UnknownID(t *testing.T) {
	s := newLoaded(t, kv.NewMemory(""), nil)
	_, err := s.Update(context.Background(), repository.UserRecord{ID: 9, Email: "z@x.com"})
	assert.True(t, repository.IsNotFound(err))
}

func TestMutations_RollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyKV{Store: kv.NewMemory("")}
	s := newLoaded(t, store, nil)
	a, err := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)
	_, err = s.Add(ctx, fields("B", "b@x.com", "Eng"))
	require.NoError(t, err)
	before := s.List()

	store.failSet.Store(true)

	_, err = s.Add(ctx, fields("C", "c@x.com", "Eng"))
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	_, err = s.Update(ctx, a.WithFields(fields("Z", "z@x.com", "Z")))
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, 1))

	assert.Equal(t, before, s.List())
	store.failSet.Store(false)
	assertPersisted(t, store.Store, s)
}

func TestLoad_SeedsAndReassignsIDs(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	src := &countingSource{inner: seed.Static{
		{ID: 10, Name: "Leanne", Email: "Sincere@april.biz", Extra: map[string]json.RawMessage{"username": json.RawMessage(`"Bret"`)}},
		{ID: 3, Name: "Ervin", Email: "Shanna@melissa.tv"},
	}}

	s := NewStore(store, src, Options{})
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(got))
	assert.Equal(t, `"Bret"`, string(got[0].Extra["username"]))
	assert.False(t, s.Loading())

	raw, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"name":"Leanne","email":"Sincere@april.biz","department":"","username":"Bret"},
		{"id":2,"name":"Ervin","email":"Shanna@melissa.tv","department":""}
	]`, string(raw))

	// segundo load: sale del snapshot
	_, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestLoad_EmptySnapshotTriggersSeed(t *testing.T) {
	for _, snapshot := range []string{`[]`, `null`} {
		t.Run(snapshot, func(t *testing.T) {
			ctx := context.Background()
			store := kv.NewMemory("")
			require.NoError(t, store.Set(ctx, DefaultKey, []byte(snapshot)))
			src := &countingSource{inner: seed.Static{{Name: "A", Email: "a@x.com"}}}

			s := newLoaded(t, store, src)
			assert.Equal(t, int32(1), src.calls.Load())
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestLoad_FetchFailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	store := kv.NewMemory("")
	s := NewStore(store, seed.Failing{Err: errors.New("offline")}, Options{})
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, s.Len())

	entries := logs.FilterMessage("seed fetch failed, store stays empty").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "static", entries[0].ContextMap()["url"])

	_, err = store.Get(context.Background(), DefaultKey)
	assert.True(t, kv.IsNotFound(err), "nothing persisted")
}

func TestLoad_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`{not json`)))
	_, err := NewStore(store, nil, Options{}).Load(ctx)
	assert.Error(t, err)
}

func TestLoad_ReloadDoesNotDropConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	store := newGatedKV(kv.NewMemory(""))
	s := newLoaded(t, store, seed.Static{{Name: "A", Email: "a@x.com"}})
	require.Equal(t, 1, s.Len())

	store.armed.Store(true)
	loadDone := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx)
		loadDone <- err
	}()
	<-store.entered

	addDone := make(chan error, 1)
	go func() {
		_, err := s.Add(ctx, fields("B", "b@x.com", "Ops"))
		addDone <- err
	}()

	close(store.gate)
	require.NoError(t, <-loadDone)
	require.NoError(t, <-addDone)

	assert.Equal(t, []int{1, 2}, ids(s.List()))
	assertPersisted(t, store, s)
}

func TestLoad_AddDuringSeedFetchWins(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	src := &blockingSource{
		inner:   seed.Static{{Name: "X", Email: "x@x.com"}, {Name: "Y", Email: "y@x.com"}},
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s := NewStore(store, src, Options{})

	loadDone := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx)
		loadDone <- err
	}()
	<-src.entered

	rec, err := s.Add(ctx, fields("B", "b@x.com", "Ops"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ID)

	close(src.gate)
	require.NoError(t, <-loadDone)

	got := s.List()
	require.Len(t, got, 1)
	assert.Equal(t, "b@x.com", got[0].Email)
	assertPersisted(t, store, s)
}

func TestLoad_ConcurrentCallersFetchOnce(t *testing.T) {
	src := &countingSource{inner: seed.Static{{Name: "A", Email: "a@x.com"}, {Name: "B", Email: "b@x.com"}}}
	s := NewStore(kv.NewMemory(""), src, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, []int{1, 2}, ids(s.List()))
}

func TestCustomKey(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory("")
	s := NewStore(store, nil, Options{Key: "people"})
	_, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)

	_, err = store.Get(ctx, "people")
	assert.NoError(t, err)
	_, err = store.Get(ctx, DefaultKey)
	assert.True(t, kv.IsNotFound(err))
}

// Propiedades: secuencias aleatorias de add/update/delete.
func TestProperties_RandomOps(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	store := kv.NewMemory("")
	s := newLoaded(t, store, nil)
	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com", "f@x.com"}

	for step := 0; step < 300; step++ {
		before := s.List()
		email := emails[rng.Intn(len(emails))]

		switch rng.Intn(3) {
		case 0:
			_, err := s.Add(ctx, fields("n", email, "d"))
			if errors.Is(err, repository.ErrDuplicateEmail) {
				assert.Equal(t, before, s.List(), "duplicate leaves store unchanged")
			} else {
				require.NoError(t, err)
			}
		case 1:
			if len(before) == 0 {
				continue
			}
			target := before[rng.Intn(len(before))]
			_, err := s.Update(ctx, target.WithFields(fields("u", email, "d")))
			if errors.Is(err, repository.ErrDuplicateEmail) {
				assert.Equal(t, before, s.List())
			} else {
				require.NoError(t, err)
			}
		case 2:
			if len(before) == 0 {
				continue
			}
			victim := rng.Intn(len(before))
			require.NoError(t, s.Delete(ctx, before[victim].ID))

			after := s.List()
			expected := append(append([]repository.UserRecord{}, before[:victim]...), before[victim+1:]...)
			require.Len(t, after, len(expected))
			for i := range after {
				assert.Equal(t, i+1, after[i].ID)
				assert.Equal(t, expected[i].Email, after[i].Email, "relative order preserved")
			}
		}

		// I1 y I2
		seen := map[string]bool{}
		for i, u := range s.List() {
			assert.Equal(t, i+1, u.ID)
			assert.False(t, seen[u.Email], "duplicate email %s", u.Email)
			seen[u.Email] = true
		}
	}
	assertPersisted(t, store, s)
}

func TestPage(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, kv.NewMemory(""), nil)
	for i := 0; i < 25; i++ {
		_, err := s.Add(ctx, fields("n", fmt.Sprintf("u%02d@x.com", i), "d"))
		require.NoError(t, err)
	}
	p := s.Page(3, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, ids(p.Items))
}

func TestGetAndPing(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, kv.NewMemory(""), nil)
	_, err := s.Add(ctx, fields("A", "a@x.com", "Eng"))
	require.NoError(t, err)

	u, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)

	_, err = s.Get(2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, s.Ping(ctx))
}
