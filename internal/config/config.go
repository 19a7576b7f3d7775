// Package config carga la configuración YAML del servicio.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Cache struct {
		Driver string `yaml:"driver"` // memory | redis
		Redis  struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			// Prefix vacío en producción: el keyspace auth:* es contractual.
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		TTL              string `yaml:"ttl"`
		MultiDevice      bool   `yaml:"multi_device"`
		RefreshThreshold string `yaml:"refresh_threshold"`
	} `yaml:"session"`

	Tenant struct {
		Header        string   `yaml:"header"`
		SuperTenantID string   `yaml:"super_tenant_id"`
		SuperAdmin    string   `yaml:"super_admin"`
		// Allowlist: prefijos de path que bypassean la resolución de tenant.
		Allowlist []string `yaml:"allowlist"`
	} `yaml:"tenant"`

	Auth struct {
		// JWTSecret habilita aceptar un bearer JWT (HMAC) como principal ya
		// verificado. Vacío = deshabilitado.
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Storage struct {
		// DSN de PostgreSQL para el repositorio de credenciales.
		// Vacío = login deshabilitado (útil para correr solo el core).
		DSN string `yaml:"dsn"`
		// Migrate aplica las migraciones embebidas en el arranque.
		Migrate bool `yaml:"migrate"`
	} `yaml:"storage"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// FailOpen define la política ante outage del cache: true deja pasar,
		// false rechaza. Decisión operativa explícita, sin default implícito
		// más allá del fail-closed conservador.
		FailOpen bool       `yaml:"fail_open"`
		Rules    []RateRule `yaml:"rules"`
	} `yaml:"rate"`
}

// RateRule es una regla declarativa de rate limiting por operación.
type RateRule struct {
	Operation string `yaml:"operation"`
	KeyPrefix string `yaml:"key_prefix"`
	Window    string `yaml:"window"`
	Max       int64  `yaml:"max"`
	Dimension string `yaml:"dimension"` // global | ip
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "30m"
	}
	if c.Session.RefreshThreshold == "" {
		c.Session.RefreshThreshold = "10m"
	}
	if c.Tenant.Header == "" {
		c.Tenant.Header = "X-Tenant-Id"
	}
	if c.Tenant.SuperTenantID == "" {
		c.Tenant.SuperTenantID = "000000"
	}
	if c.Tenant.SuperAdmin == "" {
		c.Tenant.SuperAdmin = "admin"
	}
	if len(c.Tenant.Allowlist) == 0 {
		c.Tenant.Allowlist = []string{"/public/", "/healthz", "/metrics", "/v1/session/login"}
	}
	for i := range c.Rate.Rules {
		if c.Rate.Rules[i].Dimension == "" {
			c.Rate.Rules[i].Dimension = "global"
		}
		if c.Rate.Rules[i].Window == "" {
			c.Rate.Rules[i].Window = "1m"
		}
		if c.Rate.Rules[i].Max <= 0 {
			c.Rate.Rules[i].Max = 60
		}
	}

	// validate string durations
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return nil, fmt.Errorf("config: session.ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Session.RefreshThreshold); err != nil {
		return nil, fmt.Errorf("config: session.refresh_threshold: %w", err)
	}
	for _, r := range c.Rate.Rules {
		if r.Operation == "" {
			return nil, fmt.Errorf("config: rate rule sin operation")
		}
		if _, err := time.ParseDuration(r.Window); err != nil {
			return nil, fmt.Errorf("config: rate rule %q window: %w", r.Operation, err)
		}
		if r.Dimension != "global" && r.Dimension != "ip" {
			return nil, fmt.Errorf("config: rate rule %q dimension inválida: %s", r.Operation, r.Dimension)
		}
	}

	return &c, nil
}

// SessionTTL retorna el TTL de sesión ya parseado.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Session.TTL)
	return d
}

// SessionRefreshThreshold retorna el umbral de sliding expiration parseado.
func (c *Config) SessionRefreshThreshold() time.Duration {
	d, _ := time.ParseDuration(c.Session.RefreshThreshold)
	return d
}

// WindowDuration retorna la ventana de la regla ya parseada.
func (r RateRule) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(r.Window)
	return d
}
