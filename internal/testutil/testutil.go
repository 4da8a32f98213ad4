// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jasminestrone/tachylite/internal/vault"
)

// TestVault creates a temporary vault directory with standard exclusions.
func TestVault(t *testing.T) (string, *vault.Vault) {
	t.Helper()
	dir := t.TempDir()
	v, err := vault.New(dir, []string{".obsidian", ".git", "_site"}, []string{"tachylite.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	return dir, v
}

// Seed writes a file under root, creating parent directories as needed.
// rel uses slashes regardless of platform.
func Seed(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
