package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = "staticgen.yaml"

// Config represents the staticgen configuration. It is read-only to the
// generation pipeline; a new value is loaded for every pass.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Build   BuildConfig   `yaml:"build"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Serve   ServeConfig   `yaml:"serve,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`

	// file is the path the configuration was loaded from, empty for in-memory configs.
	file string
}

// SiteConfig is exposed to templates as config.site.
type SiteConfig struct {
	Title   string         `yaml:"title,omitempty"`
	BaseURL string         `yaml:"base_url,omitempty"`
	Params  map[string]any `yaml:"params,omitempty"`
}

// BuildConfig drives a generation pass.
type BuildConfig struct {
	SourceDir             string           `yaml:"source_dir"`
	OutputDir             string           `yaml:"output_dir"`
	TemplateLanguage      TemplateLanguage `yaml:"template_language,omitempty"`
	TemplateFileExtension string           `yaml:"template_file_extension,omitempty"`
	SiteMapPage           string           `yaml:"site_map_page,omitempty"`
	Scripts               []string         `yaml:"scripts,omitempty"`
	Styles                []string         `yaml:"styles,omitempty"`
	Copy                  []CopyPair       `yaml:"copy,omitempty"`
	URLPrefix             string           `yaml:"url_prefix,omitempty"`
	ContentExtension      string           `yaml:"content_extension,omitempty"`
	IndexFile             string           `yaml:"index_file,omitempty"`
	ThemeDir              string           `yaml:"theme_dir,omitempty"`
	DefaultTemplate       string           `yaml:"default_template,omitempty"`
	FolderIndexStyle      FolderIndexStyle `yaml:"folder_index_style,omitempty"`
	ContinueOnError       bool             `yaml:"continue_on_error,omitempty"`
	BarrierPolicy         BarrierPolicy    `yaml:"barrier_policy,omitempty"`
}

// CopyPair is a file or directory copied verbatim after the main pass.
type CopyPair struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}

// WatchConfig configures the file-change notifier and periodic regeneration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// Schedule, when non-zero, regenerates the site on a fixed interval.
	Schedule time.Duration `yaml:"schedule,omitempty"`
}

// ServeConfig configures the preview HTTP server.
type ServeConfig struct {
	Port    int   `yaml:"port,omitempty"`
	Metrics *bool `yaml:"metrics,omitempty"`
}

// MetricsEnabled reports whether /metrics should be exposed. Defaults to true.
func (s ServeConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// HistoryConfig configures the optional pass history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig configures pass-completed notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ThemeRoot returns the absolute-or-relative path of the theme directory.
func (c *Config) ThemeRoot() string {
	return filepath.Join(c.Build.SourceDir, c.Build.ThemeDir)
}

// File returns the path the configuration was loaded from.
func (c *Config) File() string {
	return c.file
}

// Load loads, normalizes, and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithPath(configPath).
			WithCause(err).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.ConfigError("failed to read config file").
			WithPath(configPath).
			WithCause(err).
			Build()
	}

	cfg, err := Parse(data, filepath.Dir(configPath))
	if err != nil {
		return nil, err
	}
	cfg.file = configPath
	return cfg, nil
}

// Parse decodes a configuration document. Relative paths are resolved
// against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.ConfigError("failed to unmarshal config").
			WithCause(fmt.Errorf("%w: %w", errors.ErrConfigInvalid, err)).
			Build()
	}

	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	normalizePaths(&cfg, baseDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizePaths makes every configured file location relative to baseDir.
func normalizePaths(cfg *Config, baseDir string) {
	cfg.Build.SourceDir = normalizePath(baseDir, cfg.Build.SourceDir)
	cfg.Build.OutputDir = normalizePath(baseDir, cfg.Build.OutputDir)
	for i, s := range cfg.Build.Scripts {
		cfg.Build.Scripts[i] = normalizePath(baseDir, s)
	}
	for i, s := range cfg.Build.Styles {
		cfg.Build.Styles[i] = normalizePath(baseDir, s)
	}
	for i, p := range cfg.Build.Copy {
		cfg.Build.Copy[i] = CopyPair{Src: normalizePath(baseDir, p.Src), Dst: normalizePath(baseDir, p.Dst)}
	}
	if cfg.History.Path != "" {
		cfg.History.Path = normalizePath(baseDir, cfg.History.Path)
	}
}

func normalizePath(baseDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) || baseDir == "" || baseDir == "." {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
