// Package markdown turns raw note text into display-ready HTML.
//
// Three rewrite passes run over the raw text, in a load-bearing order:
// embeds, then wikilinks, then bare-URL auto-linking. Only then is the text
// converted to HTML and post-processed. Each pass is a pure function so it
// can be tested in isolation.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var (
	embedRe    = regexp.MustCompile(`!\[\[([^\]|]+?)(?:\|[^\]]*?)?\]\]`)
	wikilinkRe = regexp.MustCompile(`\[\[([^\]|]+?)(?:\|([^\]]*?))?\]\]`)
	bareURLRe  = regexp.MustCompile(`https?://[^\s<>)\]]+`)

	externalAnchorRe = regexp.MustCompile(`<a href="(https?://[^"]+)"`)
)

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {},
}

// IsImageExt reports whether a lowercase extension is a displayable image type.
func IsImageExt(ext string) bool {
	_, ok := imageExts[ext]
	return ok
}

// Renderer converts note markdown to HTML. rawPrefix is the endpoint prefix
// used for embedded files: "/raw/" on the live server, "raw/" in the static
// export. Everything else is byte-identical between the two.
type Renderer struct {
	rawPrefix   string
	rawAnchorRe *regexp.Regexp
	md          goldmark.Markdown
}

// NewRenderer creates a Renderer that links raw files under rawPrefix.
func NewRenderer(rawPrefix string) *Renderer {
	return &Renderer{
		rawPrefix:   rawPrefix,
		rawAnchorRe: regexp.MustCompile(`<a href="(` + regexp.QuoteMeta(rawPrefix) + `[^"]+)"([^>]*)>`),
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(ghtml.WithHardWraps(), ghtml.WithUnsafe()),
		),
	}
}

// Render runs the rewrite passes, converts to HTML, and annotates external
// and raw-file anchors to open in a new browsing context.
func (r *Renderer) Render(text string) (string, error) {
	text = ExpandEmbeds(text, r.rawPrefix)
	text = ExpandWikilinks(text)
	text = AutoLinkURLs(text)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return r.annotateAnchors(buf.String()), nil
}

// ExpandEmbeds rewrites ![[target]] embeds: images become inline image
// references under rawPrefix, PDFs become #pdf: pseudo-links, anything else a
// generic #file: pseudo-link. An |alias suffix is ignored.
func ExpandEmbeds(text, rawPrefix string) string {
	return embedRe.ReplaceAllStringFunc(text, func(m string) string {
		target := embedRe.FindStringSubmatch(m)[1]
		switch ext := strings.ToLower(path.Ext(target)); {
		case IsImageExt(ext):
			return fmt.Sprintf("![%s](%s%s)", target, rawPrefix, escapeDest(target))
		case ext == ".pdf":
			return fmt.Sprintf("[%s](#pdf:%s)", target, escapeDest(target))
		default:
			return fmt.Sprintf("[%s](#file:%s)", target, escapeDest(target))
		}
	})
}

// ExpandWikilinks rewrites [[target]] and [[target|display]] into markdown
// links using the #pdf:, #img:, and #note: href conventions. Extensionless
// targets get ".md" appended before the #note: form is emitted.
func ExpandWikilinks(text string) string {
	return wikilinkRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := wikilinkRe.FindStringSubmatch(m)
		target := sub[1]
		display := sub[2]
		if display == "" {
			display = target
		}
		switch ext := strings.ToLower(path.Ext(target)); {
		case ext == ".pdf":
			return fmt.Sprintf("[%s](#pdf:%s)", display, escapeDest(target))
		case IsImageExt(ext):
			return fmt.Sprintf("[%s](#img:%s)", display, escapeDest(target))
		case ext == "":
			target += ".md"
		}
		return fmt.Sprintf("[%s](#note:%s)", display, escapeDest(target))
	})
}

// AutoLinkURLs wraps every bare http(s) URL into a markdown link to itself.
// A URL directly preceded by "(" is already a link destination (or inside a
// constructed link) and is left alone.
func AutoLinkURLs(text string) string {
	matches := bareURLRe.FindAllStringIndex(text, -1)
	if matches == nil {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[prev:start])
		url := text[start:end]
		if start > 0 && text[start-1] == '(' {
			b.WriteString(url)
		} else {
			fmt.Fprintf(&b, "[%s](%s)", url, url)
		}
		prev = end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// annotateAnchors marks absolute-URL anchors and raw-file anchors to open in
// a new browsing context without an opener handle.
func (r *Renderer) annotateAnchors(html string) string {
	html = externalAnchorRe.ReplaceAllString(html,
		`<a href="$1" target="_blank" rel="noopener noreferrer"`)
	html = r.rawAnchorRe.ReplaceAllStringFunc(html, func(m string) string {
		sub := r.rawAnchorRe.FindStringSubmatch(m)
		if strings.Contains(sub[2], "target=") {
			return m
		}
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer"%s>`, sub[1], sub[2])
	})
	return html
}

// escapeDest makes a vault path usable as a CommonMark link destination.
// Only spaces need escaping; consumers decode with decodeURIComponent.
func escapeDest(target string) string {
	return strings.ReplaceAll(target, " ", "%20")
}
