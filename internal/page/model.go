// Package page holds the per-pass page model and the content parser that
// produces it.
package page

import (
	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/frontmatter"
)

// Model is one rendered page of a generation pass. It is built once per
// content unit and discarded at the end of the pass. Only Children is set
// after construction, once, when the unit is its folder's index.
type Model struct {
	URL         string
	ContentHTML string
	FrontMatter *frontmatter.FrontMatter
	Children    []*Model
	Config      *config.Config

	// Source and Output are the files the page was read from and written to.
	Source string
	Output string
	// Body is the markdown body with front matter removed.
	Body []byte
	// Fingerprint identifies the page's front matter and body content.
	Fingerprint string
}

// Title returns the title front matter field, or "".
func (m *Model) Title() string {
	return m.FrontMatter.String("title")
}

// IsIndex reports whether the page aggregates a folder.
func (m *Model) IsIndex() bool {
	return m.Children != nil
}

// Data returns the page as the map handed to template backends.
func (m *Model) Data() map[string]any {
	fm := m.FrontMatter.Map()
	children := make([]map[string]any, 0, len(m.Children))
	for _, c := range m.Children {
		children = append(children, c.Data())
	}

	data := map[string]any{
		"url":         m.URL,
		"contentHtml": m.ContentHTML,
		"content":     m.ContentHTML,
		"frontMatter": fm,
		"title":       m.Title(),
		"fingerprint": m.Fingerprint,
		"children":    children,
		"pages":       children,
	}
	if m.Config != nil {
		data["config"] = map[string]any{
			"site": map[string]any{
				"title":    m.Config.Site.Title,
				"base_url": m.Config.Site.BaseURL,
				"baseUrl":  m.Config.Site.BaseURL,
				"params":   m.Config.Site.Params,
			},
			"build": map[string]any{
				"sourceDir":        m.Config.Build.SourceDir,
				"outputDir":        m.Config.Build.OutputDir,
				"templateLanguage": string(m.Config.Build.TemplateLanguage),
				"siteMapPage":      m.Config.Build.SiteMapPage,
				"urlPrefix":        m.Config.Build.URLPrefix,
			},
		}
	}
	return data
}
