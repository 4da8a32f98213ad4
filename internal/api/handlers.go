package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jasminestrone/tachylite/internal/apperr"
	"github.com/jasminestrone/tachylite/internal/archive"
	"github.com/jasminestrone/tachylite/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	svc          *Service
	pollInterval int
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service, pollInterval int) *Handler {
	return &Handler{svc: svc, pollInterval: pollInterval}
}

// notePath extracts the vault path from a wildcard route. Encoded slashes
// from clients (topics%2Fnote.md) are supported.
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ensureSession returns the caller's session id, minting one and setting the
// cookie when the request carries none (or a stale one).
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && h.svc.Sessions().Valid(c.Value) {
		return c.Value
	}
	sid := h.svc.Sessions().Create()
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// sessionID returns the caller's session id without minting a new one.
func (h *Handler) sessionID(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// writeError maps service errors to HTTP responses.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrPathExcluded):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrPathOutsideVault):
		writeJSON(w, http.StatusForbidden, errorBody("path outside vault"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("file already exists"))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(action+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// Config handles GET /api/config.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	h.ensureSession(w, r)
	edit := h.svc.Edit()
	writeJSON(w, http.StatusOK, ConfigResponse{
		AllowEditAll:  edit.AllowAll,
		AllowCreation: edit.AllowCreation,
		PollInterval:  h.pollInterval,
	})
}

// Tree handles GET /api/tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	sid := h.ensureSession(w, r)
	writeJSON(w, http.StatusOK, h.svc.Tree(sid))
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph()
	if err != nil {
		writeError(w, err, "build graph")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Check handles GET /api/check.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Check(r.URL.Query().Get("note"))
	if err != nil {
		writeError(w, err, "check")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote handles GET /api/note/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sid := h.ensureSession(w, r)
	note, err := h.svc.GetNote(path, sid)
	if err != nil {
		writeError(w, err, "get note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// RawNote handles GET /api/note-raw/*.
func (h *Handler) RawNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	raw, err := h.svc.RawNote(path, h.sessionID(r))
	if err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, errorBody("You can only edit files you created"))
			return
		}
		writeError(w, err, "raw note")
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// UpdateNote handles PUT /api/note/*.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	resp, err := h.svc.UpdateNote(path, h.sessionID(r), []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, errorBody("You can only edit files you created"))
			return
		}
		writeError(w, err, "update note")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteNote handles DELETE /api/note/*.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteNote(path, h.sessionID(r)); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, errorBody("You can only delete files you created"))
			return
		}
		writeError(w, err, "delete note")
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// CreateFile handles POST /api/files/new.
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	sid := h.ensureSession(w, r)
	rel, err := h.svc.CreateNote(req.Path, sid)
	if err != nil {
		writeError(w, err, "create file")
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{OK: true, Path: rel})
}

// UploadFile handles POST /api/files/upload (multipart form with a "file"
// part and an optional "folder" field).
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file is required"))
		return
	}
	defer file.Close()

	sid := h.ensureSession(w, r)
	rel, err := h.svc.Upload(header.Filename, r.FormValue("folder"), sid, file)
	if err != nil {
		writeError(w, err, "upload file")
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{OK: true, Path: rel})
}

// DownloadAll handles GET /api/download-all, streaming a zip of the vault.
func (h *Handler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	name := archive.Name(time.Now())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := h.svc.WriteArchive(w); err != nil {
		slog.Error("archive stream failed", slog.String("error", err.Error()))
	}
}

// RawFile handles GET /raw/*, streaming vault file bytes with a guessed
// content type.
func (h *Handler) RawFile(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		http.NotFound(w, r)
		return
	}
	abs, err := h.svc.RawFilePath(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrPathExcluded) {
			http.NotFound(w, r)
		} else if errors.Is(err, apperr.ErrPathOutsideVault) {
			http.Error(w, "forbidden", http.StatusForbidden)
		} else {
			slog.Error("raw file failed", slog.String("path", path), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	http.ServeFile(w, r, abs)
}
