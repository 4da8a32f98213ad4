// Package archive packs vault files into zip archives for download and
// export.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/jasminestrone/tachylite/internal/vault"
)

// Write streams a deflate-compressed zip of the given entries into w,
// preserving relative layout. Entries that become unreadable mid-archive are
// skipped rather than aborting the stream.
func Write(w io.Writer, v *vault.Vault, entries []vault.Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		data, err := v.Read(e.Path)
		if err != nil {
			continue
		}
		f, err := zw.Create(e.Path)
		if err != nil {
			return fmt.Errorf("archive: create %s: %w", e.Path, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("archive: write %s: %w", e.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	return nil
}

// Name returns the timestamped archive file name for t.
func Name(t time.Time) string {
	return "notes_" + t.Format("2006-01-02_15-04-05") + ".zip"
}
