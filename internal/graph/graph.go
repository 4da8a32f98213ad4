// Package graph builds the vault's containment and cross-reference graph.
package graph

import (
	"path"
	"regexp"
	"strings"

	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/vault"
)

var wikilinkRe = regexp.MustCompile(`\[\[([^\]|]+?)(?:\|[^\]]*?)?\]\]`)

// Node is one graph vertex: a vault file or an ancestor folder.
type Node struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Group string `json:"group"` // note, pdf, image, folder, other
	Links int    `json:"links"`
}

// Edge connects a folder to a direct child (kind "folder") or a note to a
// resolved wikilink target (kind "link").
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// Graph is the full nodes-and-edges payload.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build walks the vault and produces its graph: one node per included file,
// one node per ancestor folder that contains at least one included file,
// folder edges along the containment chain, and link edges for resolved
// wikilinks. Edges are deduplicated by (source, target) preserving first-seen
// order; self-links are dropped. An unreadable note is skipped so a single
// corrupt file never aborts the build.
func Build(v *vault.Vault) (*Graph, error) {
	entries, err := v.Walk()
	if err != nil {
		return nil, err
	}

	var (
		nodes   []Node
		index   = make(map[string]int)
		edges   []Edge
		folders = make(map[string]struct{})
	)
	addNode := func(n Node) {
		if _, ok := index[n.ID]; ok {
			return
		}
		index[n.ID] = len(nodes)
		nodes = append(nodes, n)
	}

	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Path))
		group := "other"
		switch {
		case ext == ".md":
			group = "note"
		case ext == ".pdf":
			group = "pdf"
		case markdown.IsImageExt(ext):
			group = "image"
		}
		name := path.Base(e.Path)
		if ext == ".md" {
			name = strings.TrimSuffix(name, ext)
		}
		addNode(Node{ID: e.Path, Name: name, Path: e.Path, Group: group})

		// Containment chain up to the vault root.
		child := e.Path
		for parent := path.Dir(e.Path); parent != "."; parent = path.Dir(parent) {
			if _, seen := folders[parent]; !seen {
				folders[parent] = struct{}{}
				addNode(Node{ID: parent, Name: path.Base(parent), Path: parent, Group: "folder"})
			}
			edges = append(edges, Edge{Source: parent, Target: child, Kind: "folder"})
			child = parent
		}
	}

	// Wikilink edges. Only notes are scanned; the node set is fixed by now.
	for _, n := range nodes {
		if n.Group != "note" {
			continue
		}
		data, err := v.Read(n.Path)
		if err != nil {
			continue
		}
		for _, m := range wikilinkRe.FindAllStringSubmatch(string(data), -1) {
			resolved, ok := v.ResolveLink(m[1])
			if !ok || resolved == n.Path {
				continue
			}
			if _, known := index[resolved]; !known {
				continue
			}
			edges = append(edges, Edge{Source: n.Path, Target: resolved, Kind: "link"})
		}
	}

	edges = dedupEdges(edges)

	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.Source]++
		counts[e.Target]++
	}
	for i := range nodes {
		nodes[i].Links = counts[nodes[i].ID]
	}

	if nodes == nil {
		nodes = []Node{}
	}
	return &Graph{Nodes: nodes, Edges: edges}, nil
}

func dedupEdges(edges []Edge) []Edge {
	type key struct{ source, target string }
	seen := make(map[key]struct{}, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		k := key{e.Source, e.Target}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
