package middlewares

import "context"

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxSubjectKey   ctxKey = "subject"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta claims en el contexto
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

func setSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxSubjectKey, sub)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims obtiene las claims JWT del contexto (nil si no hubo auth).
func GetClaims(ctx context.Context) map[string]any {
	if v, ok := ctx.Value(ctxClaimsKey).(map[string]any); ok {
		return v
	}
	return nil
}

// GetSubject devuelve el "sub" del token, o "" sin auth.
func GetSubject(ctx context.Context) string {
	if v, ok := ctx.Value(ctxSubjectKey).(string); ok {
		return v
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
