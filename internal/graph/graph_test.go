package graph

import (
	"testing"

	"github.com/jasminestrone/tachylite/internal/testutil"
)

func findNode(g *Graph, id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

func countEdges(g *Graph, source, target string) int {
	n := 0
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			n++
		}
	}
	return n
}

func TestBuildFolderChain(t *testing.T) {
	dir, v := testutil.TestVault(t)
	testutil.Seed(t, dir, "Notes/Deep/leaf.md", "leaf")

	g, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, id := range []string{"Notes", "Notes/Deep", "Notes/Deep/leaf.md"} {
		if findNode(g, id) == nil {
			t.Errorf("node %q missing", id)
		}
	}
	if n := findNode(g, "Notes"); n != nil && n.Group != "folder" {
		t.Errorf("Notes group = %q", n.Group)
	}
	if countEdges(g, "Notes", "Notes/Deep") != 1 {
		t.Errorf("missing folder edge Notes -> Notes/Deep")
	}
	if countEdges(g, "Notes/Deep", "Notes/Deep/leaf.md") != 1 {
		t.Errorf("missing folder edge Notes/Deep -> leaf")
	}
}

func TestBuildLinkEdgesAndDedup(t *testing.T) {
	dir, v := testutil.TestVault(t)
	// A links to B twice and to a missing note once.
	testutil.Seed(t, dir, "Notes/A.md", "[[B]] again [[B]] and [[Missing]]")
	testutil.Seed(t, dir, "Notes/B.md", "plain")

	g, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if n := countEdges(g, "Notes/A.md", "Notes/B.md"); n != 1 {
		t.Errorf("A -> B edges = %d, want 1 after dedup", n)
	}
	for _, e := range g.Edges {
		if e.Kind == "link" && e.Target != "Notes/B.md" {
			t.Errorf("unexpected link edge to %q", e.Target)
		}
	}
}

func TestBuildSelfLinkDropped(t *testing.T) {
	dir, v := testutil.TestVault(t)
	testutil.Seed(t, dir, "self.md", "I link to [[self]]")

	g, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range g.Edges {
		if e.Kind == "link" {
			t.Errorf("self link survived: %+v", e)
		}
	}
}

func TestBuildGroupsAndLinkCounts(t *testing.T) {
	dir, v := testutil.TestVault(t)
	testutil.Seed(t, dir, "a.md", "see [[b]] and [[paper.pdf]]")
	testutil.Seed(t, dir, "b.md", "x")
	testutil.Seed(t, dir, "paper.pdf", "%PDF")
	testutil.Seed(t, dir, "pic.webp", "img")
	testutil.Seed(t, dir, "misc.csv", "1,2")

	g, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantGroups := map[string]string{
		"a.md":      "note",
		"paper.pdf": "pdf",
		"pic.webp":  "image",
		"misc.csv":  "other",
	}
	for id, group := range wantGroups {
		n := findNode(g, id)
		if n == nil {
			t.Fatalf("node %q missing", id)
		}
		if n.Group != group {
			t.Errorf("%s group = %q, want %q", id, n.Group, group)
		}
	}

	// Note names drop the .md suffix, other files keep theirs.
	if n := findNode(g, "a.md"); n.Name != "a" {
		t.Errorf("note name = %q, want a", n.Name)
	}
	if n := findNode(g, "paper.pdf"); n.Name != "paper.pdf" {
		t.Errorf("pdf name = %q", n.Name)
	}

	// a.md has two outgoing link edges, so degree 2.
	if n := findNode(g, "a.md"); n.Links != 2 {
		t.Errorf("a.md links = %d, want 2", n.Links)
	}
}

func TestBuildEmptyVault(t *testing.T) {
	_, v := testutil.TestVault(t)
	g, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Nodes == nil || len(g.Nodes) != 0 {
		t.Errorf("nodes = %#v, want empty non-nil", g.Nodes)
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges = %v, want none", g.Edges)
	}
}
