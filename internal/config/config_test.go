package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("STORE_ROOT_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.RootDir != "./data" {
		t.Errorf("Store.RootDir = %q, want ./data", cfg.Store.RootDir)
	}
	if cfg.History.DefaultRows != 100 {
		t.Errorf("History.DefaultRows = %d, want 100", cfg.History.DefaultRows)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_RootDirFromEnv(t *testing.T) {
	t.Setenv("STORE_ROOT_DIR", "/var/lib/rpki-ca-core")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.RootDir != "/var/lib/rpki-ca-core" {
		t.Fatalf("Store.RootDir = %q, want /var/lib/rpki-ca-core", cfg.Store.RootDir)
	}
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := Config{
		Store:   StoreConfig{RootDir: "./data"},
		History: HistoryConfig{DefaultRows: 10},
		Log:     LogConfig{Level: "verbose", Format: "json"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for invalid log level")
	}
}

func TestValidate_RejectsZeroDefaultRows(t *testing.T) {
	cfg := Config{
		Store:   StoreConfig{RootDir: "./data"},
		History: HistoryConfig{DefaultRows: 0},
		Log:     LogConfig{Level: "info", Format: "json"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for zero DefaultRows")
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := Config{
		Store:   StoreConfig{RootDir: "./data"},
		History: HistoryConfig{DefaultRows: 100},
		Log:     LogConfig{Level: "info", Format: "json"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}
