// Package template resolves theme templates, runs their pre-render hooks,
// and substitutes page data through the configured template language.
package template

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/frontmatter"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/markdown"
	"git.home.luguber.info/inful/staticgen/internal/page"
)

// Engine renders pages through theme templates. An Engine belongs to one
// generation pass.
type Engine struct {
	themeRoot       string
	ext             string
	defaultTemplate string
	backend         Backend
	hooks           *Hooks
	markdown        *markdown.Converter
}

// Option configures an Engine.
type Option func(*Engine)

// WithHooks replaces the hook registry.
func WithHooks(h *Hooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithMarkdown sets the converter hooks use to inspect page bodies.
func WithMarkdown(md *markdown.Converter) Option {
	return func(e *Engine) {
		if md != nil {
			e.markdown = md
		}
	}
}

// WithHelpers registers extra handlebars helpers.
func WithHelpers(helpers map[string]any) Option {
	return func(e *Engine) {
		if hb, ok := e.backend.(*HandlebarsBackend); ok {
			for name, fn := range helpers {
				hb.RegisterHelper(name, fn)
			}
		}
	}
}

// NewEngine builds an Engine for cfg. Options are applied in order.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	backend, err := NewBackend(cfg.Build.TemplateLanguage, nil)
	if err != nil {
		return nil, errors.ConfigError("invalid template language").WithCause(err).Build()
	}
	e := &Engine{
		themeRoot:       cfg.ThemeRoot(),
		ext:             cfg.Build.TemplateFileExtension,
		defaultTemplate: cfg.Build.DefaultTemplate,
		backend:         backend,
		hooks:           NewHooks(),
		markdown:        markdown.New(markdown.Options{}),
	}
	if e.ext == "" {
		e.ext = config.DefaultTemplateExtension
	}
	if e.defaultTemplate == "" {
		e.defaultTemplate = config.DefaultTemplate
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Backend returns the active backend.
func (e *Engine) Backend() Backend { return e.backend }

// Extension returns the template file extension.
func (e *Engine) Extension() string { return e.ext }

// Path returns the theme file for a template name.
func (e *Engine) Path(name string) string {
	return filepath.Join(e.themeRoot, name+e.ext)
}

// Exists reports whether the theme provides name.
func (e *Engine) Exists(name string) bool {
	fi, err := os.Stat(e.Path(name))
	return err == nil && !fi.IsDir()
}

// TemplateFor returns the template a page asks for: frontMatter.template
// when set, otherwise the default template.
func (e *Engine) TemplateFor(p *page.Model) string {
	if name := p.FrontMatter.Template(); name != "" {
		return name
	}
	return e.defaultTemplate
}

// Load resolves and parses a theme template.
func (e *Engine) Load(name string) (Document, error) {
	file := e.Path(name)
	src, err := os.ReadFile(file)
	if err != nil {
		return Document{}, errors.TemplateNotFound(name, file, err)
	}
	doc, err := ParseDocument(src)
	if err != nil {
		return Document{}, errors.TemplateFormatError(file, err)
	}
	return doc, nil
}

// Render renders p through the named template. The hook named in the
// template's script section, if any, runs first and may mutate p.
func (e *Engine) Render(name string, p *page.Model) (string, error) {
	doc, err := e.Load(name)
	if err != nil {
		return "", err
	}

	if doc.Hook != "" {
		if err := e.runHook(doc.Hook, e.Path(name), p); err != nil {
			return "", err
		}
	}

	out, err := e.backend.Render(doc.Markup, p.Data())
	if err != nil {
		return "", errors.TemplateFormatError(e.Path(name), fmt.Errorf("%s render: %w", e.backend.Name(), err))
	}
	return out, nil
}

// RenderString renders inline markup for p with the active backend.
func (e *Engine) RenderString(markup string, p *page.Model) (string, error) {
	return e.backend.Render(markup, p.Data())
}

func (e *Engine) runHook(name, file string, p *page.Model) (err error) {
	hook, ok := e.hooks.Lookup(name)
	if !ok {
		return errors.HookError(name, file, errors.ErrHookNotFound)
	}
	if p.FrontMatter == nil {
		p.FrontMatter = frontmatter.New()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.HookError(name, file, fmt.Errorf("panic: %v", r))
		}
	}()
	if herr := hook(e, p); herr != nil {
		var classified *errors.ClassifiedError
		if stderrors.As(herr, &classified) {
			return herr
		}
		return errors.HookError(name, file, herr)
	}
	slog.Debug("Ran pre-render hook", logfields.Hook(name), logfields.URL(p.URL))
	return nil
}
