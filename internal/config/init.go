package config

import (
	"os"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

const exampleConfig = `# staticgen configuration
site:
  title: My Site
  base_url: https://example.com
  params: {}

build:
  source_dir: src
  output_dir: dist
  # handlebars (helpers available) or mustache (logic-less)
  template_language: handlebars
  template_file_extension: .html
  # Remove to disable site map generation.
  site_map_page: sitemap.html
  # Copied to <output_dir>/js and <output_dir>/css after the main pass.
  scripts: []
  styles: []
  # Copied verbatim after the main pass.
  copy:
    - src: dist/index.html
      dst: dist/404.html
  url_prefix: /
  theme_dir: .theme
  default_template: main
  # directory: <folder>/index.html, file: <folder>.html
  folder_index_style: directory
  continue_on_error: false
  # overwrite: a newer request replaces a waiting one, queue: requests run in order
  barrier_policy: overwrite

watch:
  debounce: 300ms
  # Periodic regeneration interval; omit to disable.
  # schedule: 10m

serve:
  port: 1318
  metrics: true

history:
  # SQLite file recording pass history, empty to disable.
  path: ""

notify:
  nats_url: "${STATICGEN_NATS_URL}"
  subject: staticgen.passes
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithPath(configPath).
			Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.ConfigError("failed to write config file").
			WithPath(configPath).
			WithCause(err).
			Build()
	}
	return nil
}
