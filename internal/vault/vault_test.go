package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jasminestrone/tachylite/internal/apperr"
)

func testVault(t *testing.T) (string, *Vault) {
	t.Helper()
	dir := t.TempDir()
	v, err := New(dir, []string{".obsidian", ".git", "_site"}, []string{"tachylite.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	return dir, v
}

func seed(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	_, v := testVault(t)

	cases := []string{
		"../outside.md",
		"notes/../../outside.md",
		"/etc/passwd",
		"",
	}
	for _, rel := range cases {
		if _, _, err := v.SafePath(rel); !errors.Is(err, apperr.ErrPathOutsideVault) {
			t.Errorf("SafePath(%q) = %v, want ErrPathOutsideVault", rel, err)
		}
	}
}

func TestSafePathRejectsExcluded(t *testing.T) {
	_, v := testVault(t)

	cases := []string{
		".obsidian/workspace.json",
		"notes/.git/config",
		"tachylite.yaml",
		"folder/tachylite.yaml",
	}
	for _, rel := range cases {
		if _, _, err := v.SafePath(rel); !errors.Is(err, apperr.ErrPathExcluded) {
			t.Errorf("SafePath(%q) = %v, want ErrPathExcluded", rel, err)
		}
	}
}

func TestSafePathAcceptsNested(t *testing.T) {
	dir, v := testVault(t)

	abs, rel, err := v.SafePath("Notes/Deep/note.md")
	if err != nil {
		t.Fatalf("SafePath: %v", err)
	}
	if rel != "Notes/Deep/note.md" {
		t.Errorf("rel = %q", rel)
	}
	want := filepath.Join(dir, "Notes", "Deep", "note.md")
	if abs != want {
		t.Errorf("abs = %q, want %q", abs, want)
	}
}

func TestSafePathNormalizesDotSegments(t *testing.T) {
	_, v := testVault(t)

	_, rel, err := v.SafePath("Notes/./sub/../note.md")
	if err != nil {
		t.Fatalf("SafePath: %v", err)
	}
	if rel != "Notes/note.md" {
		t.Errorf("rel = %q, want Notes/note.md", rel)
	}
}

func TestWalkSkipsExclusions(t *testing.T) {
	dir, v := testVault(t)
	seed(t, dir, "a.md", "A")
	seed(t, dir, "Notes/b.md", "B")
	seed(t, dir, ".obsidian/workspace.json", "{}")
	seed(t, dir, "tachylite.yaml", "port: 1")
	seed(t, dir, "_site/index.html", "x")

	entries, err := v.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := make(map[string]bool, len(entries))
	for _, e := range entries {
		got[e.Path] = true
	}
	if len(got) != 2 || !got["a.md"] || !got["Notes/b.md"] {
		t.Errorf("walk = %v, want a.md and Notes/b.md only", got)
	}
}

func TestWalkDeterministic(t *testing.T) {
	dir, v := testVault(t)
	for _, rel := range []string{"z.md", "a.md", "Notes/m.md", "Notes/Sub/x.md", "img.png"} {
		seed(t, dir, rel, rel)
	}

	first, err := v.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	second, err := v.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("walk lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Fatalf("walk order differs at %d: %q vs %q", i, first[i].Path, second[i].Path)
		}
	}
}

func TestResolveExactAndByName(t *testing.T) {
	dir, v := testVault(t)
	seed(t, dir, "Notes/Deep/target.md", "hi")

	if got, err := v.Resolve("Notes/Deep/target.md"); err != nil || got != "Notes/Deep/target.md" {
		t.Errorf("exact resolve = %q, %v", got, err)
	}
	if got, err := v.Resolve("target.md"); err != nil || got != "Notes/Deep/target.md" {
		t.Errorf("name resolve = %q, %v", got, err)
	}
	if _, err := v.Resolve("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing resolve err = %v, want ErrNotFound", err)
	}
}

func TestResolveLink(t *testing.T) {
	dir, v := testVault(t)
	seed(t, dir, "Notes/Target.md", "hi")
	seed(t, dir, "docs/manual.pdf", "%PDF")

	cases := []struct {
		target string
		want   string
		ok     bool
	}{
		{"Notes/Target.md", "Notes/Target.md", true},
		{"Notes/Target", "Notes/Target.md", true},
		{"Target", "Notes/Target.md", true},
		{"Target.md", "Notes/Target.md", true},
		{"docs/manual.pdf", "docs/manual.pdf", true},
		{"manual.pdf", "docs/manual.pdf", true},
		{"Nope", "", false},
		{"../escape", "", false},
	}
	for _, c := range cases {
		got, ok := v.ResolveLink(c.target)
		if ok != c.ok || got != c.want {
			t.Errorf("ResolveLink(%q) = %q, %v; want %q, %v", c.target, got, ok, c.want, c.ok)
		}
	}
}

func TestWriteIsAtomicAndReadable(t *testing.T) {
	dir, v := testVault(t)

	if err := v.Write("Notes/new.md", []byte("body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := v.Read("Notes/new.md")
	if err != nil || string(data) != "body" {
		t.Fatalf("Read = %q, %v", data, err)
	}

	// No temp file debris.
	entries, err := os.ReadDir(filepath.Join(dir, "Notes"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "new.md" {
			t.Errorf("unexpected leftover %q", e.Name())
		}
	}
}

func TestDelete(t *testing.T) {
	dir, v := testVault(t)
	seed(t, dir, "gone.md", "x")

	if err := v.Delete("gone.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still exists after delete")
	}
}

func TestSymlinkEscapeRejected(t *testing.T) {
	dir, v := testVault(t)
	outside := t.TempDir()
	seed(t, outside, "secret.txt", "secret")

	link := filepath.Join(dir, "leak")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := v.Read("leak/secret.txt"); !errors.Is(err, apperr.ErrPathOutsideVault) {
		t.Errorf("read through symlink = %v, want ErrPathOutsideVault", err)
	}
}
