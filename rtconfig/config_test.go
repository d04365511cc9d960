package rtconfig

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PageStore.TotalPages != 4096 {
		t.Errorf("Expected TotalPages=4096, got %d", cfg.PageStore.TotalPages)
	}
	if cfg.Memory.MaxPages != 1024 {
		t.Errorf("Expected MaxPages=1024, got %d", cfg.Memory.MaxPages)
	}
	if cfg.Memory.MaxL2Tables != 16 {
		t.Errorf("Expected MaxL2Tables=16, got %d", cfg.Memory.MaxL2Tables)
	}
	if cfg.Module.MaxRiscvCodeSize != 1<<20 {
		t.Errorf("Expected MaxRiscvCodeSize=%d, got %d", 1<<20, cfg.Module.MaxRiscvCodeSize)
	}
	if cfg.Runtime.MaxInstances != 1 {
		t.Errorf("Expected MaxInstances=1, got %d", cfg.Runtime.MaxInstances)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.PageStore.TotalPages = 256
	cfg.Memory.MaxPages = 64
	cfg.Runtime.EnableTrace = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if loaded.PageStore.TotalPages != 256 {
		t.Errorf("TotalPages = %d, want 256", loaded.PageStore.TotalPages)
	}
	if loaded.Memory.MaxPages != 64 {
		t.Errorf("MaxPages = %d, want 64", loaded.Memory.MaxPages)
	}
	if !loaded.Runtime.EnableTrace {
		t.Error("EnableTrace = false, want true")
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.PageStore.TotalPages != DefaultConfig().PageStore.TotalPages {
		t.Errorf("LoadFrom() of missing file did not return defaults")
	}
}
