package template

import (
	"fmt"
	"sync"

	"github.com/aymerick/raymond"
	"github.com/cbroglie/mustache"

	"git.home.luguber.info/inful/staticgen/internal/config"
)

// Backend substitutes page data into template markup. Every backend
// supports field interpolation, dotted access into nested fields, iteration
// over children, and sections skipped on falsy or empty values.
type Backend interface {
	Name() string
	Render(markup string, data map[string]any) (string, error)
}

// NewBackend returns the backend for lang. Helpers apply to the handlebars
// backend only.
func NewBackend(lang config.TemplateLanguage, helpers map[string]any) (Backend, error) {
	switch lang {
	case config.TemplateLanguageMustache:
		return MustacheBackend{}, nil
	case config.TemplateLanguageHandlebars, "":
		return NewHandlebarsBackend(helpers), nil
	default:
		return nil, fmt.Errorf("unsupported template language %q", lang)
	}
}

// MustacheBackend is the logic-less backend.
type MustacheBackend struct{}

func (MustacheBackend) Name() string { return string(config.TemplateLanguageMustache) }

func (MustacheBackend) Render(markup string, data map[string]any) (string, error) {
	tmpl, err := mustache.ParseString(markup)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// HandlebarsBackend is the helper-extensible backend.
type HandlebarsBackend struct {
	mu      sync.RWMutex
	helpers map[string]any
}

// NewHandlebarsBackend returns a backend with the built-in helpers plus extra.
// Extra helpers override built-ins of the same name.
func NewHandlebarsBackend(extra map[string]any) *HandlebarsBackend {
	helpers := builtinHelpers()
	for name, fn := range extra {
		helpers[name] = fn
	}
	return &HandlebarsBackend{helpers: helpers}
}

func (*HandlebarsBackend) Name() string { return string(config.TemplateLanguageHandlebars) }

// RegisterHelper adds or replaces a helper. A helper must be a function
// returning exactly one value.
func (b *HandlebarsBackend) RegisterHelper(name string, fn any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.helpers[name] = fn
}

func (b *HandlebarsBackend) Render(markup string, data map[string]any) (out string, err error) {
	tpl, err := raymond.Parse(markup)
	if err != nil {
		return "", err
	}

	b.mu.RLock()
	helpers := make(map[string]any, len(b.helpers))
	for k, v := range b.helpers {
		helpers[k] = v
	}
	b.mu.RUnlock()

	// raymond reports bad helper signatures and some evaluation errors by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handlebars: %v", r)
		}
	}()
	tpl.RegisterHelpers(helpers)
	return tpl.Exec(data)
}
