package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML).
	App struct {
		// dev | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`

		// RateLimit aplica a las rutas de escritura. Max 0 = desactivado.
		RateLimit struct {
			Max     int    `yaml:"max"`
			Window  string `yaml:"window"`
			Backend string `yaml:"backend"` // memory | redis (usa storage.redis)
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	// Storage es el Persistence Adapter: un único key con el snapshot JSON.
	Storage struct {
		Driver string `yaml:"driver"` // memory | file | redis | sqlite | postgres
		Key    string `yaml:"key"`
		Prefix string `yaml:"prefix"`
		File   struct {
			Root string `yaml:"root"`
		} `yaml:"file"`
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
		} `yaml:"redis"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Seed struct {
		// URL vacía = modo offline (seed vacío)
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"seed"`

	Dashboard struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"dashboard"`

	Auth struct {
		// Si JWTSecret está vacío las rutas de escritura quedan abiertas (modo dev).
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
}

// DefaultSeedURL es el mock API público que provee los usuarios iniciales.
const DefaultSeedURL = "https://jsonplaceholder.typicode.com/users"

// Load lee el YAML en path (si path == "" o no existe, arranca de cero),
// aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	seedSet := false

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			seedSet = yamlHasKey(b, "seed", "url")
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyDefaults(seedSet)
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Normalizar rutas relativas respecto al directorio del YAML
	if path != "" {
		base := filepath.Dir(path)
		if p := c.Storage.File.Root; p != "" && !filepath.IsAbs(p) {
			c.Storage.File.Root = filepath.Clean(filepath.Join(base, p))
		}
		if p := c.Storage.SQLite.Path; p != "" && !filepath.IsAbs(p) {
			c.Storage.SQLite.Path = filepath.Clean(filepath.Join(base, p))
		}
	}

	return &c, nil
}

// Default devuelve la configuración por defecto (sin archivo, sin env).
func Default() *Config {
	var c Config
	c.applyDefaults(false)
	return &c
}

func (c *Config) applyDefaults(seedSet bool) {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.RateLimit.Window == "" {
		c.Server.RateLimit.Window = "1m"
	}
	if c.Server.RateLimit.Backend == "" {
		c.Server.RateLimit.Backend = "memory"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "users"
	}
	if c.Storage.File.Root == "" {
		c.Storage.File.Root = "./data/userdash"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/userdash.db"
	}
	// seed.url: "" explícito en YAML significa offline; ausente => mock API
	if !seedSet && c.Seed.URL == "" {
		c.Seed.URL = DefaultSeedURL
	}
	if c.Seed.Timeout == "" {
		c.Seed.Timeout = "10s"
	}
	if c.Dashboard.PageSize == 0 {
		c.Dashboard.PageSize = 10
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "userdash"
	}
}

// applyEnvOverrides pisa valores con variables USERDASH_*.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("USERDASH_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("USERDASH_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("USERDASH_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("USERDASH_CORS_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = splitCSV(v)
	}
	if v, ok := getEnvInt("USERDASH_RATE_LIMIT_MAX"); ok {
		c.Server.RateLimit.Max = v
	}
	if v, ok := getEnvStr("USERDASH_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("USERDASH_STORAGE_KEY"); ok {
		c.Storage.Key = v
	}
	if v, ok := getEnvStr("USERDASH_STORAGE_PREFIX"); ok {
		c.Storage.Prefix = v
	}
	if v, ok := getEnvStr("USERDASH_FILE_ROOT"); ok {
		c.Storage.File.Root = v
	}
	if v, ok := getEnvStr("USERDASH_REDIS_ADDR"); ok {
		c.Storage.Redis.Addr = v
	}
	if v, ok := getEnvInt("USERDASH_REDIS_DB"); ok {
		c.Storage.Redis.DB = v
	}
	if v, ok := getEnvStr("USERDASH_REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := getEnvStr("USERDASH_SQLITE_PATH"); ok {
		c.Storage.SQLite.Path = v
	}
	if v, ok := getEnvStr("USERDASH_PG_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := os.LookupEnv("USERDASH_SEED_URL"); ok {
		// vacío explícito => offline
		c.Seed.URL = strings.TrimSpace(v)
	}
	if v, ok := getEnvStr("USERDASH_SEED_TIMEOUT"); ok {
		c.Seed.Timeout = v
	}
	if v, ok := getEnvInt("USERDASH_PAGE_SIZE"); ok {
		c.Dashboard.PageSize = v
	}
	if v, ok := getEnvStr("USERDASH_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
}

// Validate chequea valores que harían fallar el arranque más adelante.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case "memory", "file", "redis", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: storage.driver %q no soportado (memory|file|redis|sqlite|postgres)", c.Storage.Driver)
	}
	if strings.EqualFold(c.Storage.Driver, "postgres") && strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
		return errors.New("config: storage.postgres.dsn requerido para driver postgres")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("config: storage.key no puede estar vacío")
	}
	if c.Dashboard.PageSize < 1 {
		return fmt.Errorf("config: dashboard.page_size debe ser >= 1 (got %d)", c.Dashboard.PageSize)
	}
	if c.Server.RateLimit.Max < 0 {
		return fmt.Errorf("config: server.rate_limit.max debe ser >= 0 (got %d)", c.Server.RateLimit.Max)
	}
	switch strings.ToLower(c.Server.RateLimit.Backend) {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: server.rate_limit.backend %q no soportado (memory|redis)", c.Server.RateLimit.Backend)
	}
	for name, v := range map[string]string{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.rate_limit.window": c.Server.RateLimit.Window,
		"seed.timeout":             c.Seed.Timeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return errors.New("config: auth.jwt_secret debe tener al menos 32 bytes")
	}
	return nil
}

// ReadTimeout ya validado por Validate.
func (c *Config) ReadTimeout() time.Duration  { return mustDuration(c.Server.ReadTimeout) }
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }
func (c *Config) SeedTimeout() time.Duration  { return mustDuration(c.Seed.Timeout) }

// RateLimitWindow ya validado por Validate.
func (c *Config) RateLimitWindow() time.Duration { return mustDuration(c.Server.RateLimit.Window) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// yamlHasKey indica si el documento define section.key, aunque sea vacío.
func yamlHasKey(b []byte, section, key string) bool {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return false
	}
	sec, ok := doc[section]
	if !ok {
		return false
	}
	_, ok = sec[key]
	return ok
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
