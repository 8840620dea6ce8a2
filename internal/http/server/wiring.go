// Package server arma el handler HTTP y corre el servidor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/userdash/internal/app"
	"github.com/dropDatabas3/userdash/internal/config"
	healthctrl "github.com/dropDatabas3/userdash/internal/http/controllers/health"
	usersctrl "github.com/dropDatabas3/userdash/internal/http/controllers/users"
	mw "github.com/dropDatabas3/userdash/internal/http/middlewares"
	"github.com/dropDatabas3/userdash/internal/http/router"
	healthsvc "github.com/dropDatabas3/userdash/internal/http/services/health"
	userssvc "github.com/dropDatabas3/userdash/internal/http/services/users"
	"github.com/dropDatabas3/userdash/internal/metrics"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/rate"
)

// BuildHandler arma el handler completo sobre c. reg nil = registry default.
// cleanup libera lo que el handler abrió (cliente Redis del rate limiter).
func BuildHandler(c *app.Container, reg prometheus.Registerer) (http.Handler, func() error, error) {
	metricsHandler, err := metrics.Register(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("server: metrics: %w", err)
	}

	cfg := c.Config
	limiter, cleanup := buildLimiter(cfg)

	var auth mw.Middleware
	if cfg.Auth.JWTSecret != "" {
		auth = mw.RequireBearer([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer)
	}

	health := healthsvc.NewHealthService(healthsvc.Deps{
		PersistenceCheck: c.Users.Ping,
		Driver:           c.KV.Driver(),
		UserCount:        c.Users.Len,
	})

	return router.New(router.Deps{
		Users:          usersctrl.NewUsersController(userssvc.NewUserService(c.Users, cfg.Dashboard.PageSize)),
		Health:         healthctrl.NewHealthController(health),
		Metrics:        metricsHandler,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		AuthMiddleware: auth,
		RateLimit:      mw.WithRateLimit(limiter, mw.IPRateKey),
	}), cleanup, nil
}

func buildLimiter(cfg *config.Config) (rate.Limiter, func() error) {
	noop := func() error { return nil }
	limit := cfg.Server.RateLimit.Max
	if limit <= 0 {
		return nil, noop
	}
	if strings.EqualFold(cfg.Server.RateLimit.Backend, "redis") {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			DB:       cfg.Storage.Redis.DB,
			Password: cfg.Storage.Redis.Password,
		})
		prefix := "rl:"
		if cfg.Storage.Prefix != "" {
			prefix = cfg.Storage.Prefix + ":rl:"
		}
		return rate.NewRedis(client, prefix, limit, cfg.RateLimitWindow()), client.Close
	}
	return rate.NewMemory(limit, cfg.RateLimitWindow()), noop
}

// Run carga el store, escucha en cfg.Server.Addr y apaga ordenadamente cuando ctx se cancela.
func Run(ctx context.Context, c *app.Container) error {
	ln, err := net.Listen("tcp", c.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", c.Config.Server.Addr, err)
	}
	return Serve(ctx, c, ln)
}

// Serve es Run sobre un listener ya abierto.
func Serve(ctx context.Context, c *app.Container, ln net.Listener) error {
	log := logger.From(ctx).With(logger.Component("server"))

	if _, err := c.Users.Load(ctx); err != nil {
		_ = ln.Close()
		return fmt.Errorf("server: load users: %w", err)
	}

	h, cleanup, err := BuildHandler(c, nil)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("cleanup failed", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       c.Config.ReadTimeout(),
		WriteTimeout:      c.Config.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", ln.Addr().String()), logger.Count(c.Users.Len()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
