package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// Default values applied when a field is omitted.
const (
	DefaultTemplateExtension = ".html"
	DefaultURLPrefix         = "/"
	DefaultContentExtension  = ".md"
	DefaultIndexFile         = "index.md"
	DefaultThemeDir          = ".theme"
	DefaultTemplate          = "main"
	DefaultDebounce          = 300 * time.Millisecond
	DefaultServePort         = 1318
	DefaultNotifySubject     = "staticgen.passes"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	bc := &cfg.Build

	var err error
	if bc.TemplateLanguage, err = templateLanguages.Parse(string(bc.TemplateLanguage), TemplateLanguageHandlebars); err != nil {
		return err
	}
	if bc.FolderIndexStyle, err = folderIndexStyles.Parse(string(bc.FolderIndexStyle), FolderIndexDirectory); err != nil {
		return err
	}
	if bc.BarrierPolicy, err = barrierPolicies.Parse(string(bc.BarrierPolicy), BarrierOverwrite); err != nil {
		return err
	}

	if bc.TemplateFileExtension == "" {
		bc.TemplateFileExtension = DefaultTemplateExtension
	}
	bc.TemplateFileExtension = dotted(bc.TemplateFileExtension)
	if bc.ContentExtension == "" {
		bc.ContentExtension = DefaultContentExtension
	}
	bc.ContentExtension = dotted(bc.ContentExtension)
	if bc.URLPrefix == "" {
		bc.URLPrefix = DefaultURLPrefix
	}
	if bc.IndexFile == "" {
		bc.IndexFile = DefaultIndexFile
	}
	if bc.ThemeDir == "" {
		bc.ThemeDir = DefaultThemeDir
	}
	if bc.DefaultTemplate == "" {
		bc.DefaultTemplate = DefaultTemplate
	}
	return nil
}

// RuntimeDefaultApplier handles watch, serve, and notify defaults.
type RuntimeDefaultApplier struct{}

func (r *RuntimeDefaultApplier) Domain() string { return "runtime" }

func (r *RuntimeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Watch.Schedule < 0 {
		cfg.Watch.Schedule = 0
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultServePort
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	return nil
}

// ApplyDefaults runs every domain applier in order. Unknown enumeration
// values are reported as configuration errors.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{&BuildDefaultApplier{}, &RuntimeDefaultApplier{}}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return errors.ConfigError("invalid configuration").
				WithContext("domain", a.Domain()).
				WithCause(fmt.Errorf("%w: %w", errors.ErrConfigInvalid, err)).
				Build()
		}
	}
	return nil
}

func dotted(ext string) string {
	if ext != "" && ext[0] != '.' {
		return "." + ext
	}
	return ext
}
