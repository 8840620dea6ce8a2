package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler, mk("A"), mk("B"), mk("C")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), WithRecover())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-rid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "client-rid", seen)
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.From(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}), WithRequestID(), WithLogging())

	req := httptest.NewRequest(http.MethodPost, "/v1/users", nil)
	req.Header.Set("X-Request-ID", "rid-9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 2, logs.Len())
	inside := logs.All()[0]
	assert.Equal(t, "rid-9", inside.ContextMap()["request_id"])
	done := logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, done.Level)
	assert.Equal(t, int64(http.StatusTeapot), done.ContextMap()["status"])
	assert.Equal(t, "/v1/users", done.ContextMap()["path"])
}

func TestWithCORS(t *testing.T) {
	h := Chain(okHandler, WithCORS([]string{"http://app.test/"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://app.test")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "http://app.test", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	pre.Header.Set("Origin", "http://app.test")
	pre.Header.Set("Access-Control-Request-Method", "POST")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, pre)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestWithSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	Chain(okHandler, WithSecurityHeaders()).ServeHTTP(rr, req)

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

const testSecret = "0123456789abcdef0123456789abcdef"

func sign(t *testing.T, secret string, claims jwtv5.MapClaims) string {
	t.Helper()
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireBearer(t *testing.T) {
	var sub string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = GetSubject(r.Context())
		assert.NotNil(t, GetClaims(r.Context()))
	}), RequireBearer([]byte(testSecret), "userdash"))

	call := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/users", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := call("")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "TOKEN_MISSING")

	good := sign(t, testSecret, jwtv5.MapClaims{"sub": "admin", "iss": "userdash", "exp": time.Now().Add(time.Hour).Unix()})
	rr = call("Bearer " + good)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "admin", sub)

	wrongKey := sign(t, "ffffffffffffffffffffffffffffffff", jwtv5.MapClaims{"sub": "x", "iss": "userdash"})
	rr = call("Bearer " + wrongKey)
	assert.Contains(t, rr.Body.String(), "TOKEN_INVALID")

	wrongIss := sign(t, testSecret, jwtv5.MapClaims{"sub": "x", "iss": "other"})
	rr = call("Bearer " + wrongIss)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	expired := sign(t, testSecret, jwtv5.MapClaims{"sub": "x", "iss": "userdash", "exp": time.Now().Add(-time.Hour).Unix()})
	rr = call("Bearer " + expired)
	assert.Contains(t, rr.Body.String(), "TOKEN_EXPIRED")
}
