package internal

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.App.HTTP.Address() != "0.0.0.0:8000" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Host: "127.0.0.1", Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port above 65535 should fail")
	}
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero port should fail")
	}
}

func TestVaultConfig_PathRequired(t *testing.T) {
	cfg := VaultConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty vault path should fail")
	}
}

func TestEditConfig_ExtensionValidation(t *testing.T) {
	cfg := EditConfig{AllowedUploadExtensions: []string{"md"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension without dot should fail")
	}
	cfg.AllowedUploadExtensions = []string{".md", ".PNG"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dotted extensions should pass: %v", err)
	}
}

func TestEditConfig_ExtensionAllowed(t *testing.T) {
	cfg := EditConfig{AllowedUploadExtensions: []string{".md", ".png"}}
	if !cfg.ExtensionAllowed(".md") {
		t.Error(".md should be allowed")
	}
	if !cfg.ExtensionAllowed(".PNG") {
		t.Error("extension check should be case-insensitive")
	}
	if cfg.ExtensionAllowed(".exe") {
		t.Error(".exe should not be allowed")
	}
}

func TestReloadConfig_MinimumInterval(t *testing.T) {
	cfg := ReloadConfig{PollInterval: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero poll interval should fail")
	}
	cfg.PollInterval = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("interval of 1 should pass: %v", err)
	}
}

func TestFullConfig_ValidationPropagates(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Reload.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch reload error")
	}
}
