package rate

import (
	"context"
	"os"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_FixedWindow(t *testing.T) {
	l := NewMemory(2, time.Minute)
	base := time.Date(2024, 1, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
	assert.Equal(t, int64(1), r.Remaining)
	assert.Equal(t, 50*time.Second, r.WindowTTL)

	r, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, r.Allowed)
	assert.Equal(t, int64(0), r.Remaining)

	r, _ = l.Allow(ctx, "1.2.3.4")
	assert.False(t, r.Allowed)
	assert.Equal(t, int64(3), r.CurrentHits)
	assert.Equal(t, 50*time.Second, r.RetryAfter)

	// otra key no comparte contador
	r, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, r.Allowed)

	// ventana siguiente
	l.now = func() time.Time { return base.Add(time.Minute) }
	r, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, r.Allowed)
	assert.Equal(t, int64(1), r.CurrentHits)
}

func TestRedis_FixedWindow(t *testing.T) {
	addr := os.Getenv("USERDASH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("USERDASH_TEST_REDIS_ADDR not set")
	}
	client := rdb.NewClient(&rdb.Options{Addr: addr})
	defer client.Close()

	l := NewRedis(client, "rl-test:"+time.Now().Format("150405.000")+":", 1, time.Minute)
	ctx := context.Background()

	r, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, r.Allowed)

	r, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, r.Allowed)
	assert.Greater(t, r.RetryAfter, time.Duration(0))
}
