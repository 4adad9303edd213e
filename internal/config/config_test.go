package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boothlag.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOTHLAG_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":50051" || cfg.Server.HTTPAddress != ":8080" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Ledger.Driver != "csv" {
		t.Fatalf("expected csv ledger by default, got %q", cfg.Ledger.Driver)
	}
	params := cfg.EngineParams()
	if params.Window != 40*24*time.Hour {
		t.Fatalf("unexpected window %v", params.Window)
	}
	if params.Buffer != 5.0/60 {
		t.Fatalf("unexpected buffer %v", params.Buffer)
	}
	if params.MinSupport != 2 {
		t.Fatalf("unexpected min support %d", params.MinSupport)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":6000"
ledger:
  driver: sqlite
  path: /tmp/ledger.db
engine:
  windowDays: 10
  bufferMinutes: 3
  minSupport: 4
cache:
  mode: none
`)
	t.Setenv("BOOTHLAG_WINDOW_DAYS", "14")
	t.Setenv("BOOTHLAG_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":6000" {
		t.Fatalf("file value not applied: %q", cfg.Server.Address)
	}
	if cfg.Server.HTTPAddress != ":8080" {
		t.Fatalf("default lost for unset key: %q", cfg.Server.HTTPAddress)
	}
	if cfg.Ledger.Driver != "sqlite" || cfg.Ledger.Path != "/tmp/ledger.db" {
		t.Fatalf("unexpected ledger config %+v", cfg.Ledger)
	}
	if cfg.Engine.WindowDays != 14 {
		t.Fatalf("env override not applied: %d", cfg.Engine.WindowDays)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("env log level not applied: %q", cfg.Logging.Level)
	}
	if got := cfg.EngineParams().Buffer; got != 3.0/60 {
		t.Fatalf("unexpected buffer %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"driver":     "ledger:\n  driver: postgres\n",
		"window":     "engine:\n  windowDays: 0\n",
		"buffer":     "engine:\n  bufferMinutes: -1\n",
		"support":    "engine:\n  minSupport: 1\n",
		"cache mode": "cache:\n  mode: disk\n",
		"redis addr": "cache:\n  mode: redis\n",
		"yaml":       "engine: [\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestMemoryLedgerNeedsNoPath(t *testing.T) {
	cfg, err := Load(writeConfig(t, "ledger:\n  driver: memory\n  path: \"\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.Driver != "memory" {
		t.Fatalf("unexpected driver %q", cfg.Ledger.Driver)
	}
}
