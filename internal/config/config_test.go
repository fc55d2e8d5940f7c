package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Agent.MaxIterations != 6 {
		t.Errorf("MaxIterations = %d, want 6", cfg.Agent.MaxIterations)
	}
	if cfg.Tools.DefaultTimezone != "America/Sao_Paulo" {
		t.Errorf("DefaultTimezone = %s", cfg.Tools.DefaultTimezone)
	}
	if cfg.Tools.MaxDaysAhead != 365 {
		t.Errorf("MaxDaysAhead = %d", cfg.Tools.MaxDaysAhead)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Provider = %s", cfg.LLM.Provider)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.MaxIterations != 6 {
		t.Errorf("expected defaults, got MaxIterations = %d", cfg.Agent.MaxIterations)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balcao.json")
	body := `{"agent": {"max_iterations": 3}, "tools": {"default_timezone": "UTC"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", cfg.Agent.MaxIterations)
	}
	if cfg.Tools.DefaultTimezone != "UTC" {
		t.Errorf("DefaultTimezone = %s, want UTC", cfg.Tools.DefaultTimezone)
	}
	// Untouched sections keep their defaults.
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Provider = %s, want anthropic", cfg.LLM.Provider)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balcao.json")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Addr != ":9999" {
		t.Errorf("Addr = %s", loaded.Server.Addr)
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/x"
	if got := cfg.DBPath(); got != "/tmp/x/balcao.db" {
		t.Errorf("DBPath = %s", got)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
