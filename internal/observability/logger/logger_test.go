package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFrom_FallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("hello", UserID(3))
	var nilCtx context.Context
	From(nilCtx).Info("nil ctx")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["user_id"])
}

func TestToContext_ScopedLoggerWins(t *testing.T) {
	globalCore, globalLogs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(globalCore))
	defer restore()

	scopedCore, scopedLogs := observer.New(zapcore.InfoLevel)
	ctx := ToContext(context.Background(), zap.New(scopedCore).With(RequestID("rid-1")))

	From(ctx).Info("scoped")

	assert.Equal(t, 0, globalLogs.Len())
	require.Equal(t, 1, scopedLogs.Len())
	assert.Equal(t, "rid-1", scopedLogs.All()[0].ContextMap()["request_id"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestBuild_ProdAndDev(t *testing.T) {
	prod := build(Config{Env: "prod", Level: "warn", ServiceName: "userdash"})
	require.NotNil(t, prod)
	assert.False(t, prod.Core().Enabled(zapcore.InfoLevel))

	dev := build(Config{Env: "dev", Level: "debug"})
	require.NotNil(t, dev)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestEmail_IsMasked(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Info("dup", Email("ann.lee@example.com"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a…@e….com", logs.All()[0].ContextMap()["email"])
}
