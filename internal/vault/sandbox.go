package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jasminestrone/tachylite/internal/apperr"
)

// SafePath validates a caller-supplied relative path against the vault root.
// It returns the absolute path and the cleaned slash-separated relative path.
//
// Rejections:
//   - apperr.ErrPathOutsideVault when the resolved path is not a descendant
//     of the root (traversal via ".." or an absolute override)
//   - apperr.ErrPathExcluded when any path segment is an excluded directory
//     name or the final segment is an excluded file name
//
// Every read, write, or delete goes through here before touching the
// filesystem.
func (v *Vault) SafePath(rel string) (string, string, error) {
	if rel == "" {
		return "", "", fmt.Errorf("vault: %w: empty path", apperr.ErrPathOutsideVault)
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", "", fmt.Errorf("vault: %w: %s", apperr.ErrPathOutsideVault, rel)
	}
	abs, err := filepath.Abs(filepath.Join(v.root, cleaned))
	if err != nil {
		return "", "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("vault: %w: %s", apperr.ErrPathOutsideVault, rel)
	}

	// If the path exists, re-check after following symlinks so that a link
	// pointing outside the root cannot smuggle content in or out.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		rootResolved, rootErr := filepath.EvalSymlinks(v.root)
		if rootErr == nil &&
			!strings.HasPrefix(resolved, rootResolved+string(os.PathSeparator)) {
			return "", "", fmt.Errorf("vault: %w: %s", apperr.ErrPathOutsideVault, rel)
		}
	}

	cleanRel := filepath.ToSlash(cleaned)
	segments := strings.Split(cleanRel, "/")
	for _, seg := range segments[:len(segments)-1] {
		if v.ExcludedDir(seg) {
			return "", "", fmt.Errorf("vault: %w: %s", apperr.ErrPathExcluded, rel)
		}
	}
	last := segments[len(segments)-1]
	// The final segment may name a directory; both exclusion sets apply to it.
	if v.ExcludedDir(last) || v.ExcludedFile(last) {
		return "", "", fmt.Errorf("vault: %w: %s", apperr.ErrPathExcluded, rel)
	}
	return abs, cleanRel, nil
}
