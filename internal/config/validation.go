package config

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	var problems []error

	bc := cfg.Build
	if strings.TrimSpace(bc.SourceDir) == "" {
		problems = append(problems, stderrors.New("build.source_dir is required"))
	}
	if strings.TrimSpace(bc.OutputDir) == "" {
		problems = append(problems, stderrors.New("build.output_dir is required"))
	}
	if bc.SourceDir != "" && bc.OutputDir != "" && filepath.Clean(bc.SourceDir) == filepath.Clean(bc.OutputDir) {
		problems = append(problems, stderrors.New("build.output_dir must differ from build.source_dir"))
	}
	if strings.ContainsAny(bc.ThemeDir, `/\`) {
		problems = append(problems, fmt.Errorf("build.theme_dir %q must be a single directory name", bc.ThemeDir))
	}
	if strings.ContainsAny(bc.IndexFile, `/\`) {
		problems = append(problems, fmt.Errorf("build.index_file %q must be a file name", bc.IndexFile))
	}
	for i, p := range bc.Copy {
		if p.Src == "" || p.Dst == "" {
			problems = append(problems, fmt.Errorf("build.copy[%d] requires src and dst", i))
		}
	}
	if cfg.Serve.Port < 0 || cfg.Serve.Port > 65535 {
		problems = append(problems, fmt.Errorf("serve.port %d out of range", cfg.Serve.Port))
	}

	if len(problems) == 0 {
		return nil
	}
	b := errors.ConfigError("configuration validation failed").
		WithCause(fmt.Errorf("%w: %w", errors.ErrConfigInvalid, stderrors.Join(problems...)))
	if cfg.file != "" {
		b = b.WithPath(cfg.file)
	}
	return b.Build()
}
