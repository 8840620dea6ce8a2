// Package audit registra las mutaciones de usuarios hechas por la API.
package audit

import (
	"context"

	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// Event nombra una acción auditada.
type Event string

const (
	UserCreated   Event = "user.created"
	UserUpdated   Event = "user.updated"
	UserDeleted   Event = "user.deleted"
	UsersReloaded Event = "users.reloaded"
)

// Log escribe el evento en el logger "audit". actor vacío = "anonymous".
func Log(ctx context.Context, ev Event, actor string, fields ...logger.Field) {
	if actor == "" {
		actor = "anonymous"
	}
	all := append([]logger.Field{
		logger.String("event", string(ev)),
		logger.String("actor", actor),
	}, fields...)
	logger.From(ctx).Named("audit").Info(string(ev), all...)
}
