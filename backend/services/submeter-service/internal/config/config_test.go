package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver=%q want memory", cfg.Storage.Driver)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Fatalf("addr=%q want :8080", cfg.HTTPAddress())
	}
	if cfg.Display.Currency != "PHP" {
		t.Fatalf("currency=%q want PHP", cfg.Display.Currency)
	}
	if cfg.WSPingInterval() != 30*time.Second {
		t.Fatalf("ping=%s want 30s", cfg.WSPingInterval())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SUBMETER_HTTP_PORT", ":9999")
	t.Setenv("SUBMETER_STORAGE_DRIVER", "Redis")
	t.Setenv("SUBMETER_REDIS_ADDR", "cache:6379")
	t.Setenv("SUBMETER_WS_WRITE_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddress() != ":9999" {
		t.Fatalf("addr=%q", cfg.HTTPAddress())
	}
	if cfg.Storage.Driver != "redis" || cfg.Redis.Addr != "cache:6379" {
		t.Fatalf("storage=%q redis=%q", cfg.Storage.Driver, cfg.Redis.Addr)
	}
	if cfg.WSWriteTimeout() != 2*time.Second {
		t.Fatalf("write timeout=%s want 2s", cfg.WSWriteTimeout())
	}
}

func TestValidateRequiresDriverSettings(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected dsn error")
	}

	cfg.Database.DSN = "postgres://localhost/submeter"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg.Storage.Driver = "etcd"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestWSAllowedOrigins(t *testing.T) {
	cfg := Default()
	if got := cfg.WSAllowedOrigins(); len(got) != 0 {
		t.Fatalf("default origins=%v want none", got)
	}
	cfg.WS.AllowedOrigins = " https://a.example , ,https://b.example"
	got := cfg.WSAllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("origins=%v", got)
	}
}
