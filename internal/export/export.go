// Package export writes a read-only static snapshot of the vault that the
// embedded UI can serve from any plain file host.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jasminestrone/tachylite/internal/api"
	"github.com/jasminestrone/tachylite/internal/archive"
	"github.com/jasminestrone/tachylite/internal/graph"
	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/tree"
	"github.com/jasminestrone/tachylite/internal/vault"
	"github.com/jasminestrone/tachylite/internal/web"
)

// Builder produces a static snapshot of a vault under an output directory.
type Builder struct {
	vault  *vault.Vault
	logger *slog.Logger
	output string
}

// NewBuilder creates a Builder writing to outputDir.
func NewBuilder(v *vault.Vault, outputDir string, logger *slog.Logger) *Builder {
	return &Builder{vault: v, logger: logger, output: outputDir}
}

// Build clears the output directory (keeping any .git inside it) and writes
// the full snapshot: tree and graph JSON, one JSON per rendered note, raw
// copies of every included file, a timestamped zip, the entry page, and a
// .nojekyll marker.
func (b *Builder) Build() error {
	start := time.Now()
	if err := b.clearOutput(); err != nil {
		return err
	}

	entries, err := b.vault.Walk()
	if err != nil {
		return fmt.Errorf("export: walk vault: %w", err)
	}

	dataDir := filepath.Join(b.output, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	nodes := tree.Build(b.vault, tree.Options{})
	if err := b.writeJSON(filepath.Join(dataDir, "tree.json"), nodes); err != nil {
		return err
	}

	g, err := graph.Build(b.vault)
	if err != nil {
		return fmt.Errorf("export: build graph: %w", err)
	}
	if err := b.writeJSON(filepath.Join(dataDir, "graph.json"), g); err != nil {
		return err
	}
	b.logger.Info("graph written",
		slog.Int("nodes", len(g.Nodes)),
		slog.Int("edges", len(g.Edges)))

	renderer := markdown.NewRenderer("raw/")
	noteCount := 0
	for _, e := range entries {
		if strings.ToLower(path.Ext(e.Path)) != ".md" {
			continue
		}
		if err := b.writeNote(renderer, e); err != nil {
			return err
		}
		noteCount++
	}
	b.logger.Info("notes rendered", slog.Int("count", noteCount))

	for _, e := range entries {
		if err := b.copyRaw(e.Path); err != nil {
			return err
		}
	}
	b.logger.Info("raw files copied", slog.Int("count", len(entries)))

	zipName := archive.Name(start)
	if err := b.writeZip(zipName, entries); err != nil {
		return err
	}

	indexPath := filepath.Join(b.output, "index.html")
	if err := os.WriteFile(indexPath, web.StaticPage(zipName), 0o644); err != nil {
		return fmt.Errorf("export: write index.html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.output, ".nojekyll"), nil, 0o644); err != nil {
		return fmt.Errorf("export: write .nojekyll: %w", err)
	}

	b.logger.Info("export complete",
		slog.String("output", b.output),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// clearOutput empties the output directory but keeps a .git subdirectory so
// the snapshot can live in its own repository.
func (b *Builder) clearOutput() error {
	entries, err := os.ReadDir(b.output)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(b.output, 0o755)
		}
		return fmt.Errorf("export: read output dir: %w", err)
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(b.output, e.Name())); err != nil {
			return fmt.Errorf("export: clear output: %w", err)
		}
	}
	return nil
}

func (b *Builder) writeNote(renderer *markdown.Renderer, e vault.Entry) error {
	data, err := b.vault.Read(e.Path)
	if err != nil {
		return fmt.Errorf("export: read %s: %w", e.Path, err)
	}
	html, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("export: render %s: %w", e.Path, err)
	}
	base := path.Base(e.Path)
	note := api.NoteResponse{
		HTML:  html,
		Path:  e.Path,
		Name:  strings.TrimSuffix(base, path.Ext(base)),
		Mtime: e.MtimeSeconds(),
	}
	dest := filepath.Join(b.output, "data", "notes", filepath.FromSlash(e.Path)+".json")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return b.writeJSON(dest, note)
}

func (b *Builder) copyRaw(rel string) error {
	dest := filepath.Join(b.output, "raw", filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	src, err := os.Open(filepath.Join(b.vault.Root(), filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("export: open %s: %w", rel, err)
	}
	defer src.Close()
	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", dest, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("export: copy %s: %w", rel, err)
	}
	return nil
}

func (b *Builder) writeZip(name string, entries []vault.Entry) error {
	f, err := os.Create(filepath.Join(b.output, name))
	if err != nil {
		return fmt.Errorf("export: create zip: %w", err)
	}
	defer f.Close()
	if err := archive.Write(f, b.vault, entries); err != nil {
		return fmt.Errorf("export: write zip: %w", err)
	}
	b.logger.Info("archive written", slog.String("name", name), slog.Int("files", len(entries)))
	return nil
}

func (b *Builder) writeJSON(dest string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", filepath.Base(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", dest, err)
	}
	return nil
}
