package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":8080" {
		t.Errorf("Expected :8080, got %s", c.Addr)
	}
	if c.StoreDriver != "memory" {
		t.Errorf("Expected memory driver, got %s", c.StoreDriver)
	}
	if c.ActionTimeout != 60*time.Second || c.LeadTimeout != 120*time.Second || c.CancelTimeout != 30*time.Second {
		t.Errorf("Unexpected timeouts %+v", c)
	}
	if c.MaxRounds != 200 {
		t.Errorf("Expected 200 rounds, got %d", c.MaxRounds)
	}
	if c.CatalogPath() != filepath.Join("data", "catalog.yaml") {
		t.Errorf("Unexpected catalog path %s", c.CatalogPath())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9000")
	t.Setenv("ARENA_STORE_DRIVER", "sqlite")
	t.Setenv("ARENA_STORE_DSN", "arena.db")
	t.Setenv("ARENA_ACTION_TIMEOUT", "5s")
	t.Setenv("ARENA_LADDER_THRESHOLD", "300")
	t.Setenv("ARENA_MAX_ROUNDS", "50")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9000" || c.StoreDSN != "arena.db" || c.LadderThreshold != 300 {
		t.Errorf("Unexpected config %+v", c)
	}
	b := c.Battle()
	if b.Timeouts.Action != 5*time.Second || b.MaxRounds != 50 {
		t.Errorf("Unexpected battle config %+v", b)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"ARENA_STORE_DRIVER": "mongo"}},
		{"sqlite without dsn", map[string]string{"ARENA_STORE_DRIVER": "sqlite"}},
		{"zero timeout", map[string]string{"ARENA_CANCEL_TIMEOUT": "0s"}},
		{"bad duration", map[string]string{"ARENA_LEAD_TIMEOUT": "soon"}},
		{"no rounds", map[string]string{"ARENA_MAX_ROUNDS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
