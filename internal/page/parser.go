package page

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/frontmatter"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/markdown"
)

// Parser turns raw content units into page models.
type Parser struct {
	md  *markdown.Converter
	cfg *config.Config
}

// NewParser returns a Parser whose pages reference cfg.
func NewParser(md *markdown.Converter, cfg *config.Config) *Parser {
	if md == nil {
		md = markdown.New(markdown.Options{})
	}
	return &Parser{md: md, cfg: cfg}
}

// Parse splits raw into front matter and body, converts the body to HTML,
// and computes the page fingerprint. URL, Source and Output are left to the
// caller.
func (p *Parser) Parse(raw []byte) (*Model, error) {
	parts := frontmatter.Split(raw)

	fm, err := frontmatter.ParseYAML(parts.FrontMatter)
	if err != nil {
		return nil, err
	}

	html, err := p.md.ToHTML(parts.Body)
	if err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	fp, err := Fingerprint(fm, parts.Body)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	return &Model{
		ContentHTML: html,
		FrontMatter: fm,
		Config:      p.cfg,
		Body:        parts.Body,
		Fingerprint: fp,
	}, nil
}

// ParseFile reads and parses the content unit at path. Failures are
// reported as ContentParseError carrying path.
func (p *Parser) ParseFile(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ContentParseError(path, err)
	}
	if parts := frontmatter.Split(raw); parts.Unclosed {
		slog.Warn("Front matter has no closing delimiter; treating remainder as body", logfields.Path(path))
	}
	m, err := p.Parse(raw)
	if err != nil {
		return nil, errors.ContentParseError(path, err)
	}
	m.Source = path
	return m, nil
}
