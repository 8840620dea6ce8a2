package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore corre el contrato común contra cualquier driver.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "users")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	require.NoError(t, s.Set(ctx, "users", []byte(`[{"id":1}]`)))
	got, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	require.NoError(t, s.Set(ctx, "users", []byte(`[]`)))
	got, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, "users"))
	require.NoError(t, s.Delete(ctx, "users"), "delete de key ausente no falla")
	_, err = s.Get(ctx, "users")
	assert.True(t, IsNotFound(err))

	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory("")
	defer s.Close()
	assert.Equal(t, "memory", s.Driver())
	exerciseStore(t, s)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("")
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_PrefixIsolates(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("a")
	require.NoError(t, a.Set(ctx, "users", []byte("1")))
	_, err := NewMemory("b").Get(ctx, "users")
	assert.True(t, IsNotFound(err))
}

func TestFileStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kv")
	s, err := NewFile(root, "dash")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "file", s.Driver())
	exerciseStore(t, s)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s1, err := NewFile(root, "")
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "users", []byte(`[{"id":1}]`)))

	s2, err := NewFile(root, "")
	require.NoError(t, err)
	got, err := s2.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
}

func TestFileStore_EscapesKey(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFile(root, "")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape", []byte("x")))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..%2Fescape.json", entries[0].Name())
}

func TestFileStore_RootIsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	_, err := NewFile(p, "")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "kv.db")
	s, err := NewSQLite(context.Background(), path, "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "sqlite", s.Driver())
	exerciseStore(t, s)
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLite(context.Background(), "", "")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("USERDASH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("USERDASH_TEST_REDIS_ADDR no seteado")
	}
	s, err := NewRedis(context.Background(), Config{RedisAddr: addr, Prefix: "userdash-test"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "redis", s.Driver())
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("USERDASH_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("USERDASH_TEST_PG_DSN no seteado")
	}
	s, err := NewPostgres(context.Background(), dsn, "userdash-test")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "postgres", s.Driver())
	exerciseStore(t, s)
}

func TestPostgresStore_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Driver())

	s, err = New(ctx, Config{Driver: "FILE", FileRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", s.Driver())

	s, err = New(ctx, Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Driver())
	require.NoError(t, s.Close())

	_, err = New(ctx, Config{Driver: "mongo"})
	assert.Error(t, err)
}
