package vault

import (
	"fmt"
	"os"
	"path"

	"github.com/jasminestrone/tachylite/internal/apperr"
)

// Resolve maps a caller-supplied note path to a concrete vault-relative file
// path: an exact match wins, otherwise the vault is searched for the first
// file with the same base name outside excluded directories. The returned
// path has passed the sandbox.
func (v *Vault) Resolve(rel string) (string, error) {
	abs, cleanRel, err := v.SafePath(rel)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return cleanRel, nil
	}
	if found, ok := v.findByName(path.Base(cleanRel)); ok {
		return found, nil
	}
	return "", fmt.Errorf("vault: %w: %s", apperr.ErrNotFound, rel)
}

// ResolveLink resolves a wikilink target (alias already stripped) to a
// vault-relative path, trying in order: the exact relative path, the path
// with ".md" appended, and finally a vault-wide search by base name (".md"
// appended when the target has no extension). The last step is O(vault size);
// a name index is a known future optimization.
func (v *Vault) ResolveLink(target string) (string, bool) {
	// Traversal attempts and excluded targets never resolve; the link is
	// simply treated as dead rather than failing the caller.
	abs, cleanRel, err := v.SafePath(target)
	if err != nil {
		return "", false
	}
	if _, statErr := os.Stat(abs); statErr == nil {
		return cleanRel, true
	}
	if _, statErr := os.Stat(abs + ".md"); statErr == nil {
		return cleanRel + ".md", true
	}

	name := path.Base(cleanRel)
	if path.Ext(name) == "" {
		name += ".md"
	}
	return v.findByName(name)
}
