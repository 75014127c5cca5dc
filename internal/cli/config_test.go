package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
folders = ["test/a", "test/b"]
registry = "pypi"
limit = 4
install = ["pip", "install"]
test = ["mysql*"]

[env]
NODE_ENV = "test"
`)

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if len(cfg.Folders) != 2 || cfg.Folders[1] != "test/b" {
		t.Errorf("Folders = %v", cfg.Folders)
	}
	if cfg.Registry != "pypi" || cfg.Limit != 4 {
		t.Errorf("Registry = %q, Limit = %d", cfg.Registry, cfg.Limit)
	}
	if strings.Join(cfg.Install, " ") != "pip install" {
		t.Errorf("Install = %v", cfg.Install)
	}
	if cfg.Env["NODE_ENV"] != "test" {
		t.Errorf("Env = %v", cfg.Env)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), configFile)

	if _, err := loadConfig(missing, false); err != nil {
		t.Errorf("optional missing config: %v", err)
	}
	if _, err := loadConfig(missing, true); err == nil {
		t.Error("required missing config: want error")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "limt = 3\n")

	_, err := loadConfig(path, true)
	if err == nil || !strings.Contains(err.Error(), "limt") {
		t.Errorf("loadConfig() error = %v, want unknown key limt", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, "limit = [\n")

	if _, err := loadConfig(path, true); err == nil {
		t.Error("loadConfig() want parse error")
	}
}
