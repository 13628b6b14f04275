// Package mdhtml renders converted Markdown to HTML for previews.
package mdhtml

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// engine is safe for concurrent use.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Raw HTML must pass through so toggle <details> blocks survive; policy
	// strips everything else that is not allow-listed.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// policy is safe for concurrent use once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("details", "summary")
	// GFM task list checkboxes.
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Render converts markdown to a sanitized HTML fragment.
func Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return policy.SanitizeReader(&buf).String(), nil
}
