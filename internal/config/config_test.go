package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "build:\n  source_dir: src\n  output_dir: dist\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.Equal(t, filepath.Join(dir, "src"), cfg.Build.SourceDir)
	require.Equal(t, filepath.Join(dir, "dist"), cfg.Build.OutputDir)
	require.Equal(t, TemplateLanguageHandlebars, cfg.Build.TemplateLanguage)
	require.Equal(t, ".html", cfg.Build.TemplateFileExtension)
	require.Equal(t, ".md", cfg.Build.ContentExtension)
	require.Equal(t, "index.md", cfg.Build.IndexFile)
	require.Equal(t, ".theme", cfg.Build.ThemeDir)
	require.Equal(t, "main", cfg.Build.DefaultTemplate)
	require.Equal(t, "/", cfg.Build.URLPrefix)
	require.Equal(t, FolderIndexDirectory, cfg.Build.FolderIndexStyle)
	require.Equal(t, BarrierOverwrite, cfg.Build.BarrierPolicy)
	require.Empty(t, cfg.Build.SiteMapPage)
	require.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	require.Equal(t, DefaultServePort, cfg.Serve.Port)
	require.True(t, cfg.Serve.MetricsEnabled())
	require.Equal(t, DefaultNotifySubject, cfg.Notify.Subject)
	require.Equal(t, path, cfg.File())
	require.Equal(t, filepath.Join(dir, "src", ".theme"), cfg.ThemeRoot())
}

func TestLoad_FullDocument(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Docs
  params:
    author: Ada
build:
  source_dir: content
  output_dir: /tmp/out
  template_language: Mustache
  template_file_extension: tpl
  site_map_page: sitemap.html
  scripts: [vendor/app.js]
  styles: [vendor/site.css]
  copy:
    - src: out/index.html
      dst: out/404.html
  folder_index_style: file
  barrier_policy: queue
  continue_on_error: true
watch:
  debounce: 1s
  schedule: 5m
serve:
  port: 9000
  metrics: false
history:
  path: history.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.Equal(t, "Docs", cfg.Site.Title)
	require.Equal(t, "Ada", cfg.Site.Params["author"])
	require.Equal(t, "/tmp/out", cfg.Build.OutputDir)
	require.Equal(t, TemplateLanguageMustache, cfg.Build.TemplateLanguage)
	require.Equal(t, ".tpl", cfg.Build.TemplateFileExtension)
	require.Equal(t, []string{filepath.Join(dir, "vendor/app.js")}, cfg.Build.Scripts)
	require.Equal(t, []string{filepath.Join(dir, "vendor/site.css")}, cfg.Build.Styles)
	require.Equal(t, []CopyPair{{Src: filepath.Join(dir, "out/index.html"), Dst: filepath.Join(dir, "out/404.html")}}, cfg.Build.Copy)
	require.Equal(t, FolderIndexFile, cfg.Build.FolderIndexStyle)
	require.Equal(t, BarrierQueue, cfg.Build.BarrierPolicy)
	require.True(t, cfg.Build.ContinueOnError)
	require.Equal(t, time.Second, cfg.Watch.Debounce)
	require.Equal(t, 5*time.Minute, cfg.Watch.Schedule)
	require.Equal(t, 9000, cfg.Serve.Port)
	require.False(t, cfg.Serve.MetricsEnabled())
	require.Equal(t, filepath.Join(dir, "history.db"), cfg.History.Path)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("STATICGEN_TEST_OUT", "public")
	path := writeConfig(t, "build:\n  source_dir: src\n  output_dir: ${STATICGEN_TEST_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "public"), cfg.Build.OutputDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "build: [unclosed\n"},
		{"missing source", "build:\n  output_dir: dist\n"},
		{"missing output", "build:\n  source_dir: src\n"},
		{"same dirs", "build:\n  source_dir: site\n  output_dir: site\n"},
		{"unknown language", "build:\n  source_dir: src\n  output_dir: dist\n  template_language: jinja\n"},
		{"unknown index style", "build:\n  source_dir: src\n  output_dir: dist\n  folder_index_style: flat\n"},
		{"unknown policy", "build:\n  source_dir: src\n  output_dir: dist\n  barrier_policy: reject\n"},
		{"incomplete copy pair", "build:\n  source_dir: src\n  output_dir: dist\n  copy:\n    - src: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
			require.True(t, stderrors.Is(err, errors.ErrConfigInvalid))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryConfig, classified.Category())
	require.True(t, classified.IsFatal())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Site", cfg.Site.Title)
	require.Equal(t, "sitemap.html", filepath.Base(cfg.Build.SiteMapPage))

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}

func TestApplyDefaults_InMemory(t *testing.T) {
	cfg := &Config{Build: BuildConfig{SourceDir: "src", OutputDir: "dist", ContentExtension: "markdown"}}
	require.NoError(t, ApplyDefaults(cfg))
	require.NoError(t, Validate(cfg))
	require.Equal(t, ".markdown", cfg.Build.ContentExtension)
}
