package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  env: dev\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Cache.Driver != "memory" {
		t.Fatalf("expected memory driver default, got %q", cfg.Cache.Driver)
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL())
	}
	if cfg.SessionRefreshThreshold() != 10*time.Minute {
		t.Fatalf("expected 10m refresh threshold, got %v", cfg.SessionRefreshThreshold())
	}
	if cfg.Tenant.Header != "X-Tenant-Id" {
		t.Fatalf("expected default tenant header, got %q", cfg.Tenant.Header)
	}
	if cfg.Tenant.SuperTenantID != "000000" || cfg.Tenant.SuperAdmin != "admin" {
		t.Fatalf("unexpected sentinels: %q %q", cfg.Tenant.SuperTenantID, cfg.Tenant.SuperAdmin)
	}
	if len(cfg.Tenant.Allowlist) == 0 {
		t.Fatal("expected default allowlist")
	}
	if cfg.Rate.FailOpen {
		t.Fatal("fail_open must default to false (fail closed)")
	}
}

func TestLoadRateRules(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
rate:
  enabled: true
  rules:
    - operation: login
      window: 1m
      max: 10
      dimension: ip
    - operation: kickout
`))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Rate.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(cfg.Rate.Rules))
	}
	if cfg.Rate.Rules[0].Dimension != "ip" || cfg.Rate.Rules[0].WindowDuration() != time.Minute {
		t.Fatalf("unexpected first rule: %+v", cfg.Rate.Rules[0])
	}
	// Defaults por regla.
	if cfg.Rate.Rules[1].Dimension != "global" || cfg.Rate.Rules[1].Max != 60 {
		t.Fatalf("unexpected rule defaults: %+v", cfg.Rate.Rules[1])
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	if _, err := Load(writeConfig(t, "session:\n  ttl: never\n")); err == nil {
		t.Fatal("expected error for invalid session ttl")
	}
	if _, err := Load(writeConfig(t, `
rate:
  rules:
    - operation: login
      window: sometimes
`)); err == nil {
		t.Fatal("expected error for invalid rule window")
	}
}

func TestLoadRejectsRuleWithoutOperation(t *testing.T) {
	if _, err := Load(writeConfig(t, "rate:\n  rules:\n    - max: 5\n")); err == nil {
		t.Fatal("expected error for rule without operation")
	}
}

func TestLoadRejectsBadDimension(t *testing.T) {
	if _, err := Load(writeConfig(t, `
rate:
  rules:
    - operation: login
      dimension: user
`)); err == nil {
		t.Fatal("expected error for unknown dimension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
