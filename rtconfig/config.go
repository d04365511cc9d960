// Package rtconfig loads the TOML-configurable limits a runtime host uses
// to size its PageStore, Memory and Module instances.
package rtconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable limit a runtime host needs before it can
// construct a pagestore.PageStore, memory.Memory and codemodule.Module.
type Config struct {
	// PageStore settings
	PageStore struct {
		TotalPages int `toml:"total_pages"`
	} `toml:"pagestore"`

	// Memory settings, applied per guest instance
	Memory struct {
		MaxPages    int `toml:"max_pages"`
		MaxL2Tables int `toml:"max_l2_tables"`
	} `toml:"memory"`

	// Module settings
	Module struct {
		MaxRiscvCodeSize int `toml:"max_riscv_code_size"`
	} `toml:"module"`

	// Runtime settings
	Runtime struct {
		MaxInstances int  `toml:"max_instances"`
		EnableTrace  bool `toml:"enable_trace"`
	} `toml:"runtime"`
}

// DefaultConfig returns a Config sized generously enough for a single
// instance demo host without reading any file.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.PageStore.TotalPages = 4096 // 4096 * 16KB = 64MB shared pool

	cfg.Memory.MaxPages = 1024 // 16MB per instance
	cfg.Memory.MaxL2Tables = 16

	cfg.Module.MaxRiscvCodeSize = 1 << 20 // 1MB of RISC-V source per module

	cfg.Runtime.MaxInstances = 1
	cfg.Runtime.EnableTrace = false

	return cfg
}

// GetConfigPath returns the platform-specific default config file path,
// creating its containing directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rv32jit")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rv32jit")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, returning defaults unchanged if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes configuration to path in TOML form.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
