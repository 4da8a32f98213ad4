package api

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jasminestrone/tachylite/internal/apperr"
	"github.com/jasminestrone/tachylite/internal/archive"
	"github.com/jasminestrone/tachylite/internal/fingerprint"
	"github.com/jasminestrone/tachylite/internal/graph"
	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/session"
	"github.com/jasminestrone/tachylite/internal/tree"
	"github.com/jasminestrone/tachylite/internal/vault"
)

// EditSettings are the write-access rules the service enforces, decoupled
// from the configuration structs so the API layer has no config dependency.
type EditSettings struct {
	// AllowAll lets any session edit or delete any file.
	AllowAll bool
	// AllowCreation enables the file-creation and upload endpoints.
	AllowCreation bool
	// AllowedUploadExtensions is the upload extension allow-list (with dots).
	AllowedUploadExtensions []string
}

func (e EditSettings) extensionAllowed(ext string) bool {
	for _, allowed := range e.AllowedUploadExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// Service coordinates the vault core for the API layer: resolution,
// rendering, tree/graph builds, change detection, and ownership checks.
type Service struct {
	vault    *vault.Vault
	renderer *markdown.Renderer
	fp       *fingerprint.Cache
	sessions *session.Store
	edit     EditSettings
}

// NewService creates a new API service.
func NewService(v *vault.Vault, renderer *markdown.Renderer, fp *fingerprint.Cache, sessions *session.Store, edit EditSettings) *Service {
	return &Service{vault: v, renderer: renderer, fp: fp, sessions: sessions, edit: edit}
}

// Sessions exposes the ownership store for cookie handling.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Edit exposes the write-access rules.
func (s *Service) Edit() EditSettings {
	return s.edit
}

func (s *Service) owns(sid, rel string) bool {
	if s.edit.AllowAll {
		return true
	}
	return s.sessions.Owns(sid, rel)
}

// Tree builds the UI tree scoped to the caller's ownership set.
func (s *Service) Tree(sid string) []tree.Node {
	return tree.Build(s.vault, tree.Options{
		AllowEditAll: s.edit.AllowAll,
		Owned:        s.sessions.OwnedPaths(sid),
	})
}

// Graph builds the containment and wikilink graph.
func (s *Service) Graph() (*graph.Graph, error) {
	return graph.Build(s.vault)
}

// GetNote resolves, reads, and renders a note.
func (s *Service) GetNote(notePath, sid string) (*NoteResponse, error) {
	rel, err := s.vault.Resolve(notePath)
	if err != nil {
		return nil, err
	}
	info, err := s.vault.Stat(rel)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("service: %w: %s", apperr.ErrNotFound, notePath)
	}
	data, err := s.vault.Read(rel)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(string(data))
	if err != nil {
		return nil, err
	}
	base := path.Base(rel)
	return &NoteResponse{
		HTML:     html,
		Path:     rel,
		Name:     strings.TrimSuffix(base, path.Ext(base)),
		Mtime:    vault.MtimeSeconds(info.ModTime()),
		Editable: s.owns(sid, rel),
	}, nil
}

// RawNote returns the raw markdown of a note the caller may edit.
func (s *Service) RawNote(notePath, sid string) (*RawNoteResponse, error) {
	rel, err := s.vault.Resolve(notePath)
	if err != nil {
		return nil, err
	}
	info, err := s.vault.Stat(rel)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("service: %w: %s", apperr.ErrNotFound, notePath)
	}
	if !s.owns(sid, rel) {
		return nil, fmt.Errorf("service: %w: %s", apperr.ErrForbidden, rel)
	}
	data, err := s.vault.Read(rel)
	if err != nil {
		return nil, err
	}
	return &RawNoteResponse{Content: string(data), Path: rel}, nil
}

// UpdateNote overwrites an existing note the caller owns.
func (s *Service) UpdateNote(notePath, sid string, content []byte) (*WriteResponse, error) {
	_, rel, err := s.vault.SafePath(notePath)
	if err != nil {
		return nil, err
	}
	info, err := s.vault.Stat(rel)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("service: %w: %s", apperr.ErrNotFound, notePath)
	}
	if !s.owns(sid, rel) {
		return nil, fmt.Errorf("service: %w: %s", apperr.ErrForbidden, rel)
	}
	if err := s.vault.Write(rel, content); err != nil {
		return nil, err
	}
	s.fp.Invalidate()
	info, err = s.vault.Stat(rel)
	if err != nil {
		return nil, err
	}
	return &WriteResponse{OK: true, Path: rel, Mtime: vault.MtimeSeconds(info.ModTime())}, nil
}

// DeleteNote removes a note the caller owns and forgets its ownership entry.
func (s *Service) DeleteNote(notePath, sid string) error {
	_, rel, err := s.vault.SafePath(notePath)
	if err != nil {
		return err
	}
	info, err := s.vault.Stat(rel)
	if err != nil || info.IsDir() {
		return fmt.Errorf("service: %w: %s", apperr.ErrNotFound, notePath)
	}
	if !s.owns(sid, rel) {
		return fmt.Errorf("service: %w: %s", apperr.ErrForbidden, rel)
	}
	if err := s.vault.Delete(rel); err != nil {
		return err
	}
	s.sessions.Remove(sid, rel)
	s.fp.Invalidate()
	return nil
}

// CreateNote creates an empty markdown file at a sanitized path and records
// the caller as its owner.
func (s *Service) CreateNote(rawPath, sid string) (string, error) {
	if !s.edit.AllowCreation {
		return "", fmt.Errorf("service: %w: file creation is disabled", apperr.ErrForbidden)
	}
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return "", fmt.Errorf("service: %w: path is required", apperr.ErrInvalid)
	}
	if !strings.HasSuffix(rawPath, ".md") {
		rawPath += ".md"
	}
	clean, err := securePath(rawPath)
	if err != nil {
		return "", err
	}
	abs, rel, err := s.vault.SafePath(clean)
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(abs); statErr == nil {
		return "", fmt.Errorf("service: %w: %s", apperr.ErrAlreadyExists, rel)
	}
	if err := s.vault.Write(rel, nil); err != nil {
		return "", err
	}
	s.sessions.Add(sid, rel)
	s.fp.Invalidate()
	return rel, nil
}

// Upload stores an uploaded file under an optional folder, renaming on
// collision, and records the caller as its owner.
func (s *Service) Upload(filename, folder, sid string, src io.Reader) (string, error) {
	if !s.edit.AllowCreation {
		return "", fmt.Errorf("service: %w: file uploads are disabled", apperr.ErrForbidden)
	}
	name := secureSegment(filename)
	if name == "" {
		return "", fmt.Errorf("service: %w: invalid filename", apperr.ErrInvalid)
	}
	ext := strings.ToLower(path.Ext(name))
	if !s.edit.extensionAllowed(ext) {
		return "", fmt.Errorf("service: %w: file type %s not allowed", apperr.ErrInvalid, ext)
	}

	destRel := name
	if folder = strings.TrimSpace(folder); folder != "" {
		cleanFolder, err := securePath(folder)
		if err != nil {
			return "", fmt.Errorf("service: %w: invalid folder", apperr.ErrInvalid)
		}
		destRel = path.Join(cleanFolder, name)
	}

	abs, rel, err := s.vault.SafePath(destRel)
	if err != nil {
		return "", err
	}

	// Collision handling: stem_1.ext, stem_2.ext, ...
	if _, statErr := os.Stat(abs); statErr == nil {
		stem := strings.TrimSuffix(name, ext)
		dir := path.Dir(rel)
		for counter := 1; ; counter++ {
			candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
			if dir != "." {
				candidate = path.Join(dir, candidate)
			}
			abs, rel, err = s.vault.SafePath(candidate)
			if err != nil {
				return "", err
			}
			if _, statErr := os.Stat(abs); errors.Is(statErr, os.ErrNotExist) {
				break
			}
		}
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("service: read upload: %w", err)
	}
	if err := s.vault.Write(rel, data); err != nil {
		return "", err
	}
	s.sessions.Add(sid, rel)
	s.fp.Invalidate()
	return rel, nil
}

// Check reports the current vault fingerprint and, when notePath is given,
// that note's mtime (null when it cannot be resolved).
func (s *Service) Check(notePath string) (*CheckResponse, error) {
	resp := &CheckResponse{}
	if notePath != "" {
		if rel, err := s.vault.Resolve(notePath); err == nil {
			if info, statErr := s.vault.Stat(rel); statErr == nil && !info.IsDir() {
				m := vault.MtimeSeconds(info.ModTime())
				resp.NoteMtime = &m
			}
		}
	}
	hash, err := s.fp.Hash()
	if err != nil {
		return nil, err
	}
	resp.TreeHash = hash
	return resp, nil
}

// RawFilePath resolves a path for byte streaming and returns its absolute
// location on disk.
func (s *Service) RawFilePath(rawPath string) (string, error) {
	rel, err := s.vault.Resolve(rawPath)
	if err != nil {
		return "", err
	}
	info, err := s.vault.Stat(rel)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("service: %w: %s", apperr.ErrNotFound, rawPath)
	}
	return filepath.Join(s.vault.Root(), filepath.FromSlash(rel)), nil
}

// WriteArchive streams a zip of every included vault file into w.
func (s *Service) WriteArchive(w io.Writer) error {
	entries, err := s.vault.Walk()
	if err != nil {
		return err
	}
	return archive.Write(w, s.vault, entries)
}

// securePath sanitizes each segment of a user-supplied path. A segment that
// sanitizes to nothing rejects the whole path.
func securePath(raw string) (string, error) {
	raw = strings.ReplaceAll(raw, `\`, "/")
	var clean []string
	for _, part := range strings.Split(raw, "/") {
		if part == "" {
			continue
		}
		seg := secureSegment(part)
		if seg == "" {
			return "", fmt.Errorf("service: %w: invalid path", apperr.ErrInvalid)
		}
		clean = append(clean, seg)
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("service: %w: invalid path", apperr.ErrInvalid)
	}
	return path.Join(clean...), nil
}

// secureSegment reduces one path segment to a safe file name: ASCII letters,
// digits, dash, underscore, and dot survive; spaces become underscores;
// everything else is dropped, and leading/trailing dots and underscores are
// trimmed so no hidden or traversal names come out.
func secureSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
