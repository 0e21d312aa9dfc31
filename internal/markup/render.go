// Package markup converts note content (markdown) into HTML that is safe to
// serve to third-party viewers of shared notes. Rendering goes through two
// stages: goldmark produces HTML, then bluemonday strips everything outside
// a fixed allow-list so script content embedded in a note never reaches the
// viewer.
package markup

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// policy is the fixed allow-list applied to rendered note HTML. Tags and
// attributes outside this set are removed, not escaped.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "b", "i", "strong", "em", "h1", "h2", "h3",
		"ul", "ol", "li", "a", "blockquote", "code", "pre",
		"img", "br", "hr", "table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowStandardURLs()
	return p
}()

// Render converts markdown source into sanitized HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}
