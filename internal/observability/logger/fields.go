package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/userdash/internal/util"
)

// Field es zap.Field, para armar listas de campos sin importar zap.
type Field = zap.Field

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field {
	return zap.Int64("duration_ms", d.Milliseconds())
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// UserID es el ID denso (1..N) del registro, no un identificador estable:
// cambia cuando se borra un usuario anterior.
func UserID(v int) zap.Field {
	return zap.Int("user_id", v)
}

// Email crea un campo con el email enmascarado.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

func Page(v int) zap.Field {
	return zap.Int("page", v)
}

func PageSize(v int) zap.Field {
	return zap.Int("page_size", v)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Driver identifica el backend de persistencia (memory, file, redis, ...).
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

func Key(v string) zap.Field {
	return zap.String("key", v)
}

func URL(v string) zap.Field {
	return zap.String("url", v)
}

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS ESTÁNDAR - GENÉRICOS
// =================================================================================

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
