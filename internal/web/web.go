// Package web carries the embedded single-page UI. The same page serves the
// live server and the static export; StaticPage flips the embedded endpoint
// switches so the page fetches pre-rendered JSON instead of the live API.
package web

import (
	_ "embed"
	"strings"
)

//go:embed index.html
var indexHTML string

// Page returns the entry page for the live server.
func Page() []byte {
	return []byte(indexHTML)
}

// StaticPage returns the entry page rewritten for a static deployment:
// read-only, no polling, and the download link pointing at zipName.
func StaticPage(zipName string) []byte {
	page := strings.Replace(indexHTML, "const STATIC_MODE = false;", "const STATIC_MODE = true;", 1)
	page = strings.Replace(page, `const ZIP_NAME = "";`, `const ZIP_NAME = "`+zipName+`";`, 1)
	return []byte(page)
}
