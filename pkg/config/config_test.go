package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "name: hello\nport: 9000\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "hello" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CFG_NAME", "from-env")
	path := writeFile(t, "name: ${TEST_CFG_NAME}\nport: 1\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeFile(t, "port: -1\n")
	var cfg validatedConfig
	if err := Load(path, &cfg); err == nil {
		t.Fatal("validator rejection should surface")
	}
}

func TestLoadOrWarnMissingFileKeepsDefaults(t *testing.T) {
	cfg := testConfig{Name: "default", Port: 8000}
	LoadOrWarn(filepath.Join(t.TempDir(), "nope.yaml"), &cfg, testConfig{Name: "default", Port: 8000})
	if cfg.Name != "default" || cfg.Port != 8000 {
		t.Errorf("cfg = %+v, defaults lost", cfg)
	}
}

func TestLoadOrWarnBrokenFileRestoresFallback(t *testing.T) {
	path := writeFile(t, "{not yaml: [")
	cfg := testConfig{Name: "default", Port: 8000}
	LoadOrWarn(path, &cfg, testConfig{Name: "default", Port: 8000})
	if cfg.Name != "default" || cfg.Port != 8000 {
		t.Errorf("cfg = %+v, fallback not restored", cfg)
	}
}

func TestLoadOrWarnGoodFileApplies(t *testing.T) {
	path := writeFile(t, "name: loaded\nport: 1234\n")
	cfg := testConfig{Name: "default", Port: 8000}
	LoadOrWarn(path, &cfg, testConfig{Name: "default", Port: 8000})
	if cfg.Name != "loaded" || cfg.Port != 1234 {
		t.Errorf("cfg = %+v", cfg)
	}
}
