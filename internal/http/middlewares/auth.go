package middlewares

import (
	"errors"
	"net/http"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	httperrors "github.com/dropDatabas3/userdash/internal/http/errors"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// RequireBearer valida Authorization: Bearer <JWT HS256> firmado con secret
// y emitido por issuer (si issuer != ""). Guarda las claims en el contexto.
func RequireBearer(secret []byte, issuer string) Middleware {
	opts := []jwtv5.ParserOption{jwtv5.WithValidMethods([]string{"HS256"})}
	if issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(issuer))
	}
	parser := jwtv5.NewParser(opts...)
	keyfunc := func(*jwtv5.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="userdash", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims := jwtv5.MapClaims{}
			tk, err := parser.ParseWithClaims(raw, claims, keyfunc)
			if err != nil || !tk.Valid {
				logger.From(r.Context()).Debug("bearer rejected", logger.Op("RequireBearer"), logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="userdash", error="invalid_token"`)
				if errors.Is(err, jwtv5.ErrTokenExpired) {
					httperrors.WriteError(w, httperrors.ErrTokenExpired)
					return
				}
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithClaims(r.Context(), map[string]any(claims))
			if sub, _ := claims["sub"].(string); sub != "" {
				ctx = setSubject(ctx, sub)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
