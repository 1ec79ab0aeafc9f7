// Package markdown converts content bodies to HTML and extracts the small
// amount of structure hooks need (headings).
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options tunes the converter.
type Options struct {
	// DisableGFM turns off tables, strikethrough, autolinks and task lists.
	DisableGFM bool
	// SafeHTML drops raw HTML blocks instead of passing them through.
	SafeHTML bool
}

// Converter renders markdown bodies (front matter already removed) to HTML.
// A Converter is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New builds a Converter.
func New(opts Options) *Converter {
	var exts []goldmark.Extender
	if !opts.DisableGFM {
		exts = append(exts, extension.GFM)
	}
	var rendererOpts []goldmark.Option
	rendererOpts = append(rendererOpts,
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	if !opts.SafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &Converter{md: goldmark.New(rendererOpts...)}
}

// ToHTML converts body to HTML.
func (c *Converter) ToHTML(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Heading is a heading found in a markdown body.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Headings parses body and returns its headings in document order.
func (c *Converter) Headings(body []byte) []Heading {
	root := c.md.Parser().Parse(text.NewReader(body))

	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: plainText(h, body)}
		if id, found := h.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

func plainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		}
		if s, ok := c.(*gmast.String); ok {
			buf.Write(s.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}
