package config_test

import (
	"testing"

	"github.com/tazhibayda/tasks-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()
	if cfg.Port != "8080" {
		t.Fatalf("port default: %q", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" || cfg.MongoDB != "tasks_db" {
		t.Fatalf("mongo defaults: %q %q", cfg.MongoURI, cfg.MongoDB)
	}
	if cfg.SessionTTLMin != 24*60 {
		t.Fatalf("session ttl default: %d", cfg.SessionTTLMin)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Fatalf("rate limit default: %d", cfg.RateLimitPerMin)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TASKS_PORT", "9090")
	t.Setenv("TASKS_RATE_LIMIT_PER_MIN", "3")
	t.Setenv("TASKS_DD_ENABLED", "true")

	cfg := config.Load()
	if cfg.Port != "9090" {
		t.Fatalf("port: %q", cfg.Port)
	}
	if cfg.RateLimitPerMin != 3 {
		t.Fatalf("rate limit: %d", cfg.RateLimitPerMin)
	}
	if !cfg.DDEnabled {
		t.Fatal("dd enabled not read")
	}
}
