package config

import "git.home.luguber.info/inful/staticgen/internal/foundation/normalization"

// TemplateLanguage selects the markup substitution backend.
type TemplateLanguage string

const (
	TemplateLanguageHandlebars TemplateLanguage = "handlebars"
	TemplateLanguageMustache   TemplateLanguage = "mustache"
)

var templateLanguages = normalization.NewEnum("template_language", map[string]TemplateLanguage{
	"handlebars": TemplateLanguageHandlebars,
	"hbs":        TemplateLanguageHandlebars,
	"mustache":   TemplateLanguageMustache,
})

// FolderIndexStyle controls where a folder's index page is written.
type FolderIndexStyle string

const (
	FolderIndexDirectory FolderIndexStyle = "directory" // <folder>/index.html
	FolderIndexFile      FolderIndexStyle = "file"      // <folder>.html
)

var folderIndexStyles = normalization.NewEnum("folder_index_style", map[string]FolderIndexStyle{
	"directory": FolderIndexDirectory,
	"file":      FolderIndexFile,
})

// BarrierPolicy decides what happens to a continuation registered while
// another one is still waiting for outstanding writes.
type BarrierPolicy string

const (
	BarrierOverwrite BarrierPolicy = "overwrite" // later continuation replaces the unfired one
	BarrierQueue     BarrierPolicy = "queue"     // continuations fire in FIFO order
)

var barrierPolicies = normalization.NewEnum("barrier_policy", map[string]BarrierPolicy{
	"overwrite": BarrierOverwrite,
	"queue":     BarrierQueue,
	"fifo":      BarrierQueue,
})
