package template

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// Document is a parsed theme template file. It is parsed fresh for every
// render so edits to the theme apply to the next pass.
type Document struct {
	// Markup is the inner content of the first <template> block.
	Markup string
	// Hook is the trimmed body of the first <script> block after the
	// template block, naming a registered pre-render hook. Empty when absent.
	Hook string
}

// ErrUnclosedTemplateTag reports a <template> block without its end tag.
var ErrUnclosedTemplateTag = stderrors.New("unclosed <template> tag")

// ParseDocument extracts the template and hook sections from a theme file.
func ParseDocument(src []byte) (Document, error) {
	z := html.NewTokenizer(bytes.NewReader(src))

	var doc Document
	found := false
	for !found {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return Document{}, errors.ErrMissingTemplateTag
			}
			return Document{}, fmt.Errorf("tokenize theme template: %w", z.Err())
		case html.StartTagToken:
			if isTag(z, atom.Template) {
				markup, err := innerRaw(z, atom.Template)
				if err != nil {
					return Document{}, err
				}
				doc.Markup = markup
				found = true
			}
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return doc, nil
		case html.StartTagToken:
			if isTag(z, atom.Script) {
				body, err := innerRaw(z, atom.Script)
				if err != nil {
					// An unterminated script is ignored like a missing one.
					return doc, nil
				}
				doc.Hook = strings.TrimSpace(body)
				return doc, nil
			}
		}
	}
}

// innerRaw returns the original bytes between the current start tag and its
// matching end tag. Nested elements of the same kind are balanced.
func innerRaw(z *html.Tokenizer, tag atom.Atom) (string, error) {
	var buf bytes.Buffer
	depth := 1
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if tag == atom.Template {
				return "", ErrUnclosedTemplateTag
			}
			return "", z.Err()
		case html.StartTagToken:
			if isTag(z, tag) {
				depth++
			}
		case html.EndTagToken:
			if isTag(z, tag) {
				depth--
				if depth == 0 {
					return buf.String(), nil
				}
			}
		}
		buf.Write(z.Raw())
	}
}

func isTag(z *html.Tokenizer, tag atom.Atom) bool {
	name, _ := z.TagName()
	return atom.Lookup(name) == tag
}
