package api

// NoteResponse is the rendered view of a note.
type NoteResponse struct {
	HTML     string  `json:"html"`
	Path     string  `json:"path"`
	Name     string  `json:"name"`
	Mtime    float64 `json:"mtime"`
	Editable bool    `json:"editable"`
}

// RawNoteResponse carries the unrendered markdown of a note.
type RawNoteResponse struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}

// WriteResponse acknowledges a successful note update.
type WriteResponse struct {
	OK    bool    `json:"ok"`
	Path  string  `json:"path"`
	Mtime float64 `json:"mtime"`
}

// OKResponse acknowledges a mutation with no further payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// CreateResponse acknowledges a created or uploaded file.
type CreateResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

// CheckResponse is the change-detection poll payload. NoteMtime is null when
// no note was asked about or it could not be resolved.
type CheckResponse struct {
	NoteMtime *float64 `json:"note_mtime"`
	TreeHash  string   `json:"tree_hash"`
}

// ConfigResponse exposes the client-relevant slice of server configuration.
type ConfigResponse struct {
	AllowEditAll  bool `json:"allow_edit_all"`
	AllowCreation bool `json:"allow_file_creation"`
	PollInterval  int  `json:"poll_interval"`
}
