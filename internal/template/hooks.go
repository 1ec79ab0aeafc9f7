package template

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/staticgen/internal/page"
)

// Hook is a pre-render hook. It runs once per render, before substitution,
// and may adjust the page's front matter.
type Hook func(e *Engine, p *page.Model) error

// Built-in hook names.
const (
	HookReadingTime  = "reading-time"
	HookTitleFromURL = "title-from-url"
)

// wordsPerMinute drives the reading-time estimate.
const wordsPerMinute = 200

// Hooks is a registry of named pre-render hooks.
type Hooks struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewHooks returns a registry holding the built-in hooks.
func NewHooks() *Hooks {
	h := &Hooks{hooks: map[string]Hook{}}
	h.hooks[HookReadingTime] = readingTimeHook
	h.hooks[HookTitleFromURL] = titleFromURLHook
	return h
}

// Register adds a hook. Registering an existing name is an error.
func (h *Hooks) Register(name string, hook Hook) error {
	if name == "" || hook == nil {
		return fmt.Errorf("hook name and function are required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.hooks[name]; exists {
		return fmt.Errorf("hook %q already registered", name)
	}
	h.hooks[name] = hook
	return nil
}

// Lookup returns the hook registered under name.
func (h *Hooks) Lookup(name string) (Hook, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hook, ok := h.hooks[name]
	return hook, ok
}

// Names returns the registered hook names, sorted.
func (h *Hooks) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.hooks))
	for n := range h.hooks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// readingTimeHook sets frontMatter.readingTime to the estimated minutes
// needed to read the body, at least 1.
func readingTimeHook(_ *Engine, p *page.Model) error {
	words := len(strings.Fields(string(p.Body)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	p.FrontMatter.Set("readingTime", minutes)
	return nil
}

// titleFromURLHook fills a missing frontMatter.title from the first
// level-one heading, falling back to the last URL segment.
func titleFromURLHook(e *Engine, p *page.Model) error {
	if p.Title() != "" {
		return nil
	}
	for _, h := range e.markdown.Headings(p.Body) {
		if h.Level == 1 && h.Text != "" {
			p.FrontMatter.Set("title", h.Text)
			return nil
		}
	}
	p.FrontMatter.Set("title", TitleFromURL(p.URL))
	return nil
}

// TitleFromURL derives a human title from the last segment of a URL:
// "/blog/my-first_post" becomes "My First Post". The root URL yields "Home".
func TitleFromURL(u string) string {
	slug := path.Base(strings.TrimSuffix(u, "/"))
	if slug == "" || slug == "/" || slug == "." {
		return "Home"
	}
	slug = strings.TrimSuffix(slug, path.Ext(slug))
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == utf8.RuneError })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
