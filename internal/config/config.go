// # internal/config/config.go
package config

import (
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Root         string   `toml:"root"`
	Extensions   []string `toml:"extensions"`
	Include      []string `toml:"include"`
	Exclude      []string `toml:"exclude"`
	ShowFullPath bool     `toml:"show_full_path"`
	BaseDir      string   `toml:"base_dir"`

	// Aliases is an ordered list, not a map: the first matching pattern and
	// the first resolving target win, independent of map iteration order.
	Aliases []Alias `toml:"alias"`
}

type Alias struct {
	Pattern string   `toml:"pattern"`
	Targets []string `toml:"targets"`
}

func Default() *Config {
	return &Config{
		Root:         ".",
		Extensions:   []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		ShowFullPath: true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	if len(cfg.Extensions) == 0 {
		cfg.Extensions = Default().Extensions
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	return cfg, nil
}

// LoadOrDefault recovers from an unreadable or invalid config file by falling
// back to defaults with an empty alias table. The build proceeds without
// aliasing rather than aborting.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("config unreadable, continuing with defaults", "path", path, "error", err)
		}
		return Default()
	}
	return cfg
}
