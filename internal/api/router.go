package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted. The raw file
// endpoint lives outside /api and is mounted separately by the caller via
// Handler.RawFile.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/config", h.Config)
	r.Get("/tree", h.Tree)
	r.Get("/graph", h.Graph)
	r.Get("/check", h.Check)

	// Notes.
	r.Get("/note/*", h.GetNote)
	r.Put("/note/*", h.UpdateNote)
	r.Delete("/note/*", h.DeleteNote)
	r.Get("/note-raw/*", h.RawNote)

	// File creation and uploads.
	r.Post("/files/new", h.CreateFile)
	r.Post("/files/upload", h.UploadFile)

	// Vault archive.
	r.Get("/download-all", h.DownloadAll)

	return r
}
