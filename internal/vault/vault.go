// Package vault provides sandboxed access to the directory tree of user
// content: path validation, deterministic walking, wikilink target
// resolution, and atomic file operations.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one included file discovered by a walk.
type Entry struct {
	// Path is slash-separated and vault-root-relative.
	Path    string
	ModTime time.Time
}

// MtimeSeconds returns the entry's modification time as fractional unix seconds.
func (e Entry) MtimeSeconds() float64 {
	return MtimeSeconds(e.ModTime)
}

// MtimeSeconds converts a time to fractional unix seconds, the wire format
// used for all mtime fields.
func MtimeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Vault is a sandboxed view of a directory tree. All relative paths accepted
// by its methods are validated against the root and the exclusion sets before
// any filesystem access.
type Vault struct {
	root          string // absolute path to the vault directory
	excludedDirs  map[string]struct{}
	excludedFiles map[string]struct{}
}

// New creates a Vault rooted at the given directory, which must already exist.
func New(root string, excludedDirs, excludedFiles []string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	v := &Vault{
		root:          abs,
		excludedDirs:  make(map[string]struct{}, len(excludedDirs)),
		excludedFiles: make(map[string]struct{}, len(excludedFiles)),
	}
	for _, d := range excludedDirs {
		v.excludedDirs[d] = struct{}{}
	}
	for _, f := range excludedFiles {
		v.excludedFiles[f] = struct{}{}
	}
	return v, nil
}

// Root returns the absolute vault root.
func (v *Vault) Root() string {
	return v.root
}

// ExcludedDir reports whether a directory name is excluded.
func (v *Vault) ExcludedDir(name string) bool {
	_, ok := v.excludedDirs[name]
	return ok
}

// ExcludedFile reports whether a file name is excluded.
func (v *Vault) ExcludedFile(name string) bool {
	_, ok := v.excludedFiles[name]
	return ok
}

// Read returns the raw bytes of a vault file.
func (v *Vault) Read(rel string) ([]byte, error) {
	abs, _, err := v.SafePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", rel, err)
	}
	return data, nil
}

// Stat returns file info for a vault path.
func (v *Vault) Stat(rel string) (os.FileInfo, error) {
	abs, _, err := v.SafePath(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(abs)
}

// Write atomically writes content: tmp file, fsync, rename. Parent
// directories are created as needed.
func (v *Vault) Write(rel string, content []byte) error {
	abs, _, err := v.SafePath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tachylite-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file from the vault.
func (v *Vault) Delete(rel string) error {
	abs, _, err := v.SafePath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("vault: delete %s: %w", rel, err)
	}
	return nil
}
