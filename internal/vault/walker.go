package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Walk enumerates every included file under the vault root and returns its
// relative path and modification time.
//
// The traversal is iterative (explicit stack, no recursion) and deterministic:
// directory entries are visited in name order, so repeated walks over an
// unchanged tree yield identical sequences. Excluded directories are pruned
// without descending; excluded files are skipped. Symlinks are not followed
// for directory recursion, which avoids cycles; a symlink to a file is
// reported with its lstat mtime.
//
// Walk is a snapshot read with no side effects. Entries that disappear or
// become unreadable mid-walk are silently dropped.
func (v *Vault) Walk() ([]Entry, error) {
	if _, err := os.Stat(v.root); err != nil {
		return nil, fmt.Errorf("vault: walk root: %w", err)
	}

	var out []Entry
	stack := []string{v.root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir) // sorted by name
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				if !v.ExcludedDir(e.Name()) {
					stack = append(stack, filepath.Join(dir, e.Name()))
				}
				continue
			}
			if v.ExcludedFile(e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(v.root, filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			out = append(out, Entry{
				Path:    filepath.ToSlash(rel),
				ModTime: info.ModTime(),
			})
		}
	}
	return out, nil
}

// findByName walks the vault looking for the first included file with the
// given base name, returning its relative path.
func (v *Vault) findByName(name string) (string, bool) {
	stack := []string{v.root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				if !v.ExcludedDir(e.Name()) {
					stack = append(stack, filepath.Join(dir, e.Name()))
				}
				continue
			}
			if e.Name() != name || v.ExcludedFile(e.Name()) {
				continue
			}
			rel, err := filepath.Rel(v.root, filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			return filepath.ToSlash(rel), true
		}
	}
	return "", false
}
