// Package tree builds the nested folder/file structure served to the UI.
package tree

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jasminestrone/tachylite/internal/vault"
)

// Node is one entry in the UI tree. Folders carry Children (never null, may
// be empty); files carry Editable. The unused field keeps its zero value on
// the wire.
type Node struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" or "folder"
	Children []Node `json:"children"`
	Editable bool   `json:"editable"`
}

// Options scope a tree build to one caller.
type Options struct {
	// AllowEditAll marks every file editable regardless of ownership.
	AllowEditAll bool
	// Owned is the set of relative paths the caller's session created.
	Owned map[string]struct{}
}

// Build returns the vault's directory structure with folders sorted before
// files and both sorted case-insensitively by name at each level. A subtree
// that cannot be listed (permissions) yields an empty child list instead of
// failing the whole build.
func Build(v *vault.Vault, opts Options) []Node {
	return buildDir(v, "", opts)
}

func buildDir(v *vault.Vault, relDir string, opts Options) []Node {
	abs := filepath.Join(v.Root(), filepath.FromSlash(relDir))
	entries, err := os.ReadDir(abs)
	if err != nil {
		return []Node{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	nodes := []Node{}
	for _, e := range entries {
		name := e.Name()
		rel := path.Join(relDir, name)
		if e.IsDir() {
			if v.ExcludedDir(name) {
				continue
			}
			nodes = append(nodes, Node{
				Name:     name,
				Path:     rel,
				Type:     "folder",
				Children: buildDir(v, rel, opts),
			})
			continue
		}
		if v.ExcludedFile(name) {
			continue
		}
		editable := opts.AllowEditAll
		if !editable && opts.Owned != nil {
			_, editable = opts.Owned[rel]
		}
		nodes = append(nodes, Node{
			Name:     name,
			Path:     rel,
			Type:     "file",
			Editable: editable,
		})
	}
	return nodes
}
