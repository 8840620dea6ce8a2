// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	dto "github.com/dropDatabas3/userdash/internal/http/dto/health"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	PersistenceCheck func(ctx context.Context) error // crítico
	Driver           string
	UserCount        func() int
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus),
		Driver:     s.deps.Driver,
		Version:    os.Getenv("SERVICE_VERSION"),
		Timestamp:  time.Now().UTC(),
	}

	switch {
	case s.deps.PersistenceCheck == nil:
		resp.Components["persistence"] = dto.HealthStatus{Status: "error", Message: "not initialized"}
		resp.Status = "unavailable"
	default:
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.deps.PersistenceCheck(pingCtx); err != nil {
			resp.Components["persistence"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			resp.Status = "unavailable"
			log.Error("persistence unavailable", logger.Err(err))
		} else {
			resp.Components["persistence"] = dto.HealthStatus{Status: "ok"}
		}
	}

	if s.deps.UserCount != nil {
		resp.Users = s.deps.UserCount()
	}
	return resp
}
