// Package paths translates source-relative locations into output paths,
// canonical page URLs, and theme-relative paths. All functions are pure.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// Mapper holds the roots and naming rules for one generation pass.
type Mapper struct {
	SourceRoot       string
	OutputRoot       string
	ThemeRoot        string
	IndexFile        string
	ContentExt       string
	URLPrefix        string
	FolderIndexStyle config.FolderIndexStyle
}

// NewMapper builds a Mapper from a configuration with defaults applied.
func NewMapper(cfg *config.Config) Mapper {
	return Mapper{
		SourceRoot:       filepath.Clean(cfg.Build.SourceDir),
		OutputRoot:       filepath.Clean(cfg.Build.OutputDir),
		ThemeRoot:        filepath.Clean(cfg.ThemeRoot()),
		IndexFile:        cfg.Build.IndexFile,
		ContentExt:       cfg.Build.ContentExtension,
		URLPrefix:        cfg.Build.URLPrefix,
		FolderIndexStyle: cfg.Build.FolderIndexStyle,
	}
}

// IsIndex reports whether sourcePath is a folder's designated index file.
func (m Mapper) IsIndex(sourcePath string) bool {
	return filepath.Base(sourcePath) == m.IndexFile
}

// IsContent reports whether sourcePath carries the content extension.
func (m Mapper) IsContent(sourcePath string) bool {
	return strings.HasSuffix(sourcePath, m.ContentExt)
}

// RawURL returns the slash-separated path of sourcePath relative to the
// source root with its extension stripped. For an index file the whole file
// name is stripped, so the result is the folder's own path ("" for the root).
func (m Mapper) RawURL(sourcePath string) string {
	rel, err := filepath.Rel(m.SourceRoot, sourcePath)
	if err != nil {
		rel = sourcePath
	}
	rel = filepath.ToSlash(rel)

	if m.IsIndex(sourcePath) {
		dir := path.Dir(rel)
		if dir == "." {
			return ""
		}
		return dir
	}
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// PageURL joins the URL prefix with RawURL. Folder URLs end in a slash so
// an index page's URL equals its folder's URL.
func (m Mapper) PageURL(sourcePath string) string {
	raw := m.RawURL(sourcePath)
	u := path.Join("/", m.URLPrefix, raw)
	if m.IsIndex(sourcePath) && !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// OutputHTMLPath returns where the rendered page for sourcePath is written.
//
// Content pages become <rawUrl>/index.html. Folder indices follow
// FolderIndexStyle: "directory" writes <folder>/index.html, "file" writes
// <folder>.html. The root index is always <output>/index.html.
func (m Mapper) OutputHTMLPath(sourcePath string) string {
	raw := filepath.FromSlash(m.RawURL(sourcePath))
	if m.IsIndex(sourcePath) {
		if raw == "" {
			return filepath.Join(m.OutputRoot, "index.html")
		}
		if m.FolderIndexStyle == config.FolderIndexFile {
			return filepath.Join(m.OutputRoot, raw+".html")
		}
	}
	return filepath.Join(m.OutputRoot, raw, "index.html")
}

// OutputCopyPath mirrors a non-content file under the output root, relative
// to the theme root if inside it, else relative to the source root.
func (m Mapper) OutputCopyPath(sourcePath string) (string, error) {
	if rel, ok := within(m.ThemeRoot, sourcePath); ok {
		return filepath.Join(m.OutputRoot, rel), nil
	}
	if rel, ok := within(m.SourceRoot, sourcePath); ok {
		return filepath.Join(m.OutputRoot, rel), nil
	}
	return "", errors.PathError(sourcePath)
}

// OutputPathFor joins an output-relative location (e.g. the site map page)
// with the output root.
func (m Mapper) OutputPathFor(rel string) string {
	return filepath.Join(m.OutputRoot, filepath.FromSlash(rel))
}

// URLFor returns the page URL of an output-relative location.
func (m Mapper) URLFor(rel string) string {
	return path.Join("/", m.URLPrefix, filepath.ToSlash(rel))
}

func within(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
