package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/jasminestrone/tachylite/internal/testutil"
)

func TestWriteRoundTrip(t *testing.T) {
	dir, v := testutil.TestVault(t)
	testutil.Seed(t, dir, "a.md", "alpha")
	testutil.Seed(t, dir, "Notes/b.md", "beta")

	entries, err := v.Walk()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, v, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip open: %v", err)
	}
	contents := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		contents[f.Name] = string(data)
	}
	if contents["a.md"] != "alpha" || contents["Notes/b.md"] != "beta" {
		t.Errorf("zip contents = %v", contents)
	}
}

func TestName(t *testing.T) {
	at := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	if got := Name(at); got != "notes_2026-08-31_14-05-09.zip" {
		t.Errorf("Name = %q", got)
	}
}
