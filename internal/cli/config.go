package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the run flags. Values from tav.toml apply unless the
// matching flag is set on the command line.
//
//	registry = "npm"
//	versions = "minor"
//	limit = 4
//	install_limit = 2
//	install = ["npm", "install", "--no-save"]
//	test = ["mysql*"]
//
//	[env]
//	NODE_ENV = "test"
type fileConfig struct {
	Folders      []string          `toml:"folders"`
	Registry     string            `toml:"registry"`
	RegistryURL  string            `toml:"registry_url"`
	Versions     string            `toml:"versions"`
	Limit        int               `toml:"limit"`
	InstallLimit int               `toml:"install_limit"`
	ResolveLimit int               `toml:"resolve_limit"`
	Samples      int               `toml:"samples"`
	Seed         uint64            `toml:"seed"`
	Install      []string          `toml:"install"`
	PinFormat    string            `toml:"pin_format"`
	Test         []string          `toml:"test"`
	CacheURL     string            `toml:"cache_url"`
	Env          map[string]string `toml:"env"`
}

// loadConfig reads path. A missing file is not an error unless required.
func loadConfig(path string, required bool) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}
