package users

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	dto "github.com/dropDatabas3/userdash/internal/http/dto/users"
	"github.com/dropDatabas3/userdash/internal/kv"
	"github.com/dropDatabas3/userdash/internal/seed"
	"github.com/dropDatabas3/userdash/internal/users"
)

func newService(t *testing.T, n int) (UserService, *users.Store) {
	t.Helper()
	src := make(seed.Static, n)
	for i := range src {
		src[i] = repository.UserRecord{Name: "U", Email: string(rune('a'+i)) + "@x.com", Department: "D"}
	}
	st := users.NewStore(kv.NewMemory(""), src, users.Options{})
	_, err := st.Load(context.Background())
	require.NoError(t, err)
	return NewUserService(st, 4), st
}

func TestList_DefaultAndMaxPageSize(t *testing.T) {
	s, _ := newService(t, 10)
	ctx := context.Background()

	p := s.List(ctx, 1, 0)
	assert.Equal(t, 4, p.PageSize)
	assert.Equal(t, 3, p.TotalPages)

	p = s.List(ctx, 1, 1000)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Len(t, p.Items, 10)
}

func TestCreate_ValidationError(t *testing.T) {
	s, st := newService(t, 0)

	_, err := s.Create(context.Background(), dto.UserRequest{Email: "bad"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "validation failed: department, email, name", verr.Error())
	assert.Equal(t, 0, st.Len())
}

func TestUpdate_KeepsExtra(t *testing.T) {
	st := users.NewStore(kv.NewMemory(""), seed.Static{{
		Name: "A", Email: "a@x.com", Department: "D",
		Extra: map[string]json.RawMessage{"phone": json.RawMessage(`"555"`)},
	}}, users.Options{})
	_, err := st.Load(context.Background())
	require.NoError(t, err)
	s := NewUserService(st, 0)

	u, err := s.Update(context.Background(), 1, dto.UserRequest{Name: "B", Email: "b@x.com", Department: "E"})
	require.NoError(t, err)
	assert.Equal(t, "B", u.Name)
	assert.Equal(t, `"555"`, string(u.Extra["phone"]))
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newService(t, 1)
	_, err := s.Update(context.Background(), 9, dto.UserRequest{Name: "B", Email: "b@x.com", Department: "E"})
	assert.True(t, repository.IsNotFound(err))
}
