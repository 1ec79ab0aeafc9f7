package generator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticgen/internal/barrier"
	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/notify"
)

const (
	mainTemplate = `<template><h1>{{title}}</h1>{{{contentHtml}}}` +
		`<ul>{{#each children}}<li>{{url}}</li>{{/each}}</ul></template>`
	siteMapMarkup = `<template>{{#each pages}}<a href="{{url}}">{{title}}</a>{{/each}}</template>`
)

type site struct {
	root string
	cfg  *config.Config
}

// newSite lays out root/src with the given files (paths relative to src) and
// returns a config generating into root/dist.
func newSite(t *testing.T, files map[string]string, mutate ...func(*config.BuildConfig)) *site {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, "src", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	cfg := &config.Config{
		Build: config.BuildConfig{
			SourceDir: filepath.Join(root, "src"),
			OutputDir: filepath.Join(root, "dist"),
		},
	}
	for _, m := range mutate {
		m(&cfg.Build)
	}
	require.NoError(t, config.ApplyDefaults(cfg))
	return &site{root: root, cfg: cfg}
}

func (s *site) out(rel string) string {
	return filepath.Join(s.cfg.Build.OutputDir, filepath.FromSlash(rel))
}

func (s *site) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(s.out(rel))
	require.NoError(t, err)
	return string(data)
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	require.NoError(t, filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	}))
	return files
}

func newGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g := New(opts...)
	t.Cleanup(g.Close)
	return g
}

func waitRun(t *testing.T, run *Run) (*Report, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()
	report, err := run.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return report, err
}

func blogSite(t *testing.T, mutate ...func(*config.BuildConfig)) *site {
	return newSite(t, map[string]string{
		"index.md":             "---\ntitle: Home\n---\nWelcome",
		"blog/index.md":        "---\ntitle: Blog\n---\nPosts",
		"blog/post1.md":        "---\ntitle: First\n---\n# Hello",
		"img/logo.png":         "png",
		".theme/main.html":     mainTemplate,
		".theme/sitemap.html":  siteMapMarkup,
		".theme/css/site.css":  "body{}",
		".theme/partials.html": "<template>unused</template>",
	}, append([]func(*config.BuildConfig){func(b *config.BuildConfig) { b.SiteMapPage = "sitemap.html" }}, mutate...)...)
}

func TestGenerate_BlogScenario(t *testing.T) {
	s := blogSite(t)
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)

	for _, rel := range []string{"index.html", "blog/index.html", "blog/post1/index.html", "sitemap.html"} {
		require.FileExists(t, s.out(rel))
	}
	require.FileExists(t, s.out("img/logo.png"))
	require.FileExists(t, s.out("css/site.css"))
	require.NoFileExists(t, s.out("partials.html"))
	require.NoDirExists(t, s.out(".theme"))

	siteMap := s.read(t, "sitemap.html")
	require.Contains(t, siteMap, `<a href="/">Home</a>`)
	require.Contains(t, siteMap, `<a href="/blog/">Blog</a>`)
	require.Contains(t, siteMap, `<a href="/blog/post1">First</a>`)

	blog := s.read(t, "blog/index.html")
	require.Contains(t, blog, "<h1>Blog</h1>")
	require.Contains(t, blog, "<ul><li>/blog/post1</li></ul>")

	post := s.read(t, "blog/post1/index.html")
	require.Contains(t, post, `<h1 id="hello">Hello</h1>`)
	require.Contains(t, post, "<ul></ul>")

	require.Len(t, report.Pages, 3)
	require.Equal(t, 4, report.Written)
	require.Equal(t, 2, report.Copied)
	require.Zero(t, report.FailedWrites)
	require.NotEmpty(t, report.PassID)
}

func TestGenerate_FolderIndexChildrenInEnumerationOrder(t *testing.T) {
	s := newSite(t, map[string]string{
		"docs/a.md":        "---\ntitle: A\n---\na",
		"docs/b.md":        "---\ntitle: B\n---\nb",
		"docs/index.md":    "---\ntitle: Docs\n---\n",
		".theme/main.html": mainTemplate,
	})
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)

	require.Contains(t, s.read(t, "docs/index.html"), "<ul><li>/docs/a</li><li>/docs/b</li></ul>")
	require.Contains(t, s.read(t, "docs/a/index.html"), "<ul></ul>")

	urls := make([]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		urls = append(urls, p.URL)
	}
	require.Equal(t, []string{"/docs/a", "/docs/b", "/docs/"}, urls)
}

func TestGenerate_FileIndexStyle(t *testing.T) {
	s := blogSite(t, func(b *config.BuildConfig) { b.FolderIndexStyle = config.FolderIndexFile })
	g := newGenerator(t)

	_, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.FileExists(t, s.out("blog.html"))
	require.FileExists(t, s.out("index.html"))
	require.FileExists(t, s.out("blog/post1/index.html"))
}

func TestGenerate_IdempotentRegeneration(t *testing.T) {
	s := blogSite(t)
	g := newGenerator(t)

	first, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	before := snapshot(t, s.cfg.Build.OutputDir)

	require.NoError(t, os.WriteFile(s.out("stale.html"), []byte("old"), 0o600))

	second, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, before, snapshot(t, s.cfg.Build.OutputDir))
	require.NotEqual(t, first.PassID, second.PassID)
	for i := range first.Pages {
		require.Equal(t, first.Pages[i].Fingerprint, second.Pages[i].Fingerprint)
	}
}

func TestGenerate_MissingTemplateTagWritesNothing(t *testing.T) {
	s := newSite(t, map[string]string{
		"a.md":             "---\ntitle: A\n---\nbody",
		".theme/main.html": "<h1>{{title}}</h1>",
	})
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrMissingTemplateTag)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.NoFileExists(t, s.out("a/index.html"))
}

func TestGenerate_ContinueOnErrorKeepsGoing(t *testing.T) {
	s := newSite(t, map[string]string{
		"docs/index.md":    "---\ntitle: Docs\n---\n",
		"docs/a.md":        "---\ntemplate: missing\n---\nbody",
		"docs/b.md":        "---\ntitle: B\n---\nbody",
		".theme/main.html": mainTemplate,
	}, func(b *config.BuildConfig) { b.ContinueOnError = true })
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Errors, 1)
	require.ErrorIs(t, report.Errors[0], errors.ErrTemplateNotFound)
	require.NoFileExists(t, s.out("docs/a/index.html"))
	require.FileExists(t, s.out("docs/b/index.html"))

	index := s.read(t, "docs/index.html")
	require.Contains(t, index, "<li>/docs/b</li>")
	require.NotContains(t, index, "/docs/a")
}

func TestGenerate_SiteMapTitlesUntitledPagesFromURL(t *testing.T) {
	s := newSite(t, map[string]string{
		"getting-started.md":  "no front matter here",
		"about.md":            "---\ntitle: About Us\n---\nbody",
		".theme/main.html":    mainTemplate,
		".theme/sitemap.html": siteMapMarkup,
	}, func(b *config.BuildConfig) { b.SiteMapPage = "sitemap.html" })
	g := newGenerator(t)

	_, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)

	siteMap := s.read(t, "sitemap.html")
	require.Contains(t, siteMap, `<a href="/getting-started">Getting Started</a>`)
	require.Contains(t, siteMap, `<a href="/about">About Us</a>`)
	require.Contains(t, s.read(t, "getting-started/index.html"), "<h1></h1>")
}

func TestGenerate_MalformedFrontMatterIsPageLocal(t *testing.T) {
	s := newSite(t, map[string]string{
		"bad.md":           "---\ntitle: [unclosed\n---\nbody",
		"good.md":          "---\ntitle: Good\n---\nbody",
		".theme/main.html": mainTemplate,
	})
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Errors, 1)
	require.ErrorIs(t, report.Errors[0], errors.ErrFrontMatterInvalid)
	require.FileExists(t, s.out("good/index.html"))
	require.NoFileExists(t, s.out("bad/index.html"))
}

func TestGenerate_MalformedFolderIndexStillRendersChildren(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/index.md":    "---\n: [\n---\n",
		"blog/post.md":     "---\ntitle: Post\n---\nbody",
		".theme/main.html": mainTemplate,
	})
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.FileExists(t, s.out("blog/post/index.html"))
	require.NoFileExists(t, s.out("blog/index.html"))
}

func TestGenerate_PostProcessCopies(t *testing.T) {
	s := newSite(t, map[string]string{
		"index.md":         "---\ntitle: Home\n---\n",
		".theme/main.html": mainTemplate,
	})
	assets := filepath.Join(s.root, "assets")
	require.NoError(t, os.MkdirAll(assets, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "app.js"), []byte("js"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "app.css"), []byte("css"), 0o600))
	s.cfg.Build.Scripts = []string{filepath.Join(assets, "app.js")}
	s.cfg.Build.Styles = []string{filepath.Join(assets, "app.css")}
	s.cfg.Build.Copy = []config.CopyPair{{Src: s.out("index.html"), Dst: s.out("home.html")}}
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, s.read(t, "index.html"), s.read(t, "home.html"))
	require.Equal(t, "js", s.read(t, "js/app.js"))
	require.Equal(t, "css", s.read(t, "css/app.css"))
	require.Equal(t, 3, report.Copied)
}

func TestGenerate_FailedCopyIsCountedNotFatal(t *testing.T) {
	s := newSite(t, map[string]string{
		"index.md":         "---\ntitle: Home\n---\n",
		".theme/main.html": mainTemplate,
	})
	s.cfg.Build.Copy = []config.CopyPair{{Src: filepath.Join(s.root, "missing"), Dst: s.out("x")}}
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.FailedWrites)
	require.True(t, errors.HasCategory(report.Errors[0], errors.CategoryFileSystem))
}

func TestGenerate_MissingSourceIsFatal(t *testing.T) {
	s := newSite(t, map[string]string{})
	s.cfg.Build.SourceDir = filepath.Join(s.root, "nope")
	g := newGenerator(t)

	report, err := waitRun(t, g.Generate(t.Context(), s.cfg))
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
}

func TestGenerate_CancelledContextAbortsPass(t *testing.T) {
	s := blogSite(t)
	g := newGenerator(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	report, err := waitRun(t, g.Generate(ctx, s.cfg))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.NoFileExists(t, s.out("sitemap.html"))
}

// gate blocks the event loop until the returned func is called, so that
// several Generate calls queue up before any of them runs.
func gate(t *testing.T, g *Generator) func() {
	t.Helper()
	release := make(chan struct{})
	require.True(t, g.loop.Post(func() { <-release }))
	var once sync.Once
	open := func() { once.Do(func() { close(release) }) }
	t.Cleanup(open)
	return open
}

func TestGenerate_OverwriteSupersedesPendingPass(t *testing.T) {
	s := blogSite(t)
	g := newGenerator(t, WithBarrierPolicy(barrier.PolicyOverwrite))

	open := gate(t, g)
	first := g.Generate(t.Context(), s.cfg)
	second := g.Generate(t.Context(), s.cfg)
	third := g.Generate(t.Context(), s.cfg)
	open()

	r1, err := waitRun(t, first)
	require.ErrorIs(t, err, errors.ErrSuperseded)
	require.Equal(t, OutcomeSuperseded, r1.Outcome)

	r2, err := waitRun(t, second)
	require.ErrorIs(t, err, errors.ErrSuperseded)
	require.Equal(t, OutcomeSuperseded, r2.Outcome)
	require.Empty(t, r2.Pages)

	r3, err := waitRun(t, third)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, r3.Outcome)
	require.FileExists(t, s.out("sitemap.html"))
}

func TestGenerate_QueueRunsEveryPass(t *testing.T) {
	s := blogSite(t, func(b *config.BuildConfig) { b.BarrierPolicy = config.BarrierQueue })
	g := newGenerator(t)

	open := gate(t, g)
	runs := []*Run{g.Generate(t.Context(), s.cfg), g.Generate(t.Context(), s.cfg)}
	open()

	for _, run := range runs {
		report, err := waitRun(t, run)
		require.NoError(t, err)
		require.Len(t, report.Pages, 3)
	}
	require.FileExists(t, s.out("sitemap.html"))
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (c *captureNotifier) PassCompleted(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func TestGenerate_RecordsHistoryAndNotifies(t *testing.T) {
	s := newSite(t, map[string]string{
		"bad.md":           "---\n: [\n---\n",
		"good.md":          "---\ntitle: Good\n---\n",
		".theme/main.html": mainTemplate,
	})
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	notifier := &captureNotifier{}
	g := newGenerator(t, WithEventStore(store), WithNotifier(notifier))

	run := g.Generate(WithTrigger(t.Context(), "watch"), s.cfg)
	_, err = waitRun(t, run)
	require.NoError(t, err)

	events, err := store.GetByPassID(t.Context(), run.ID())
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type())
	}
	require.Equal(t, []string{eventstore.TypePassStarted, eventstore.TypePageFailed, eventstore.TypePassCompleted}, types)

	projection := eventstore.NewPassHistoryProjection(store, 10)
	require.NoError(t, projection.Rebuild(t.Context()))
	summary, ok := projection.Pass(run.ID())
	require.True(t, ok)
	require.Equal(t, "warning", summary.Status)
	require.Equal(t, "watch", summary.Trigger)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.msgs, 1)
	require.Equal(t, run.ID(), notifier.msgs[0].PassID)
	require.Equal(t, "warning", notifier.msgs[0].Outcome)
	require.Len(t, notifier.msgs[0].Errors, 1)
}

func TestGenerate_AfterCloseFails(t *testing.T) {
	s := blogSite(t)
	g := New()
	g.Close()

	_, err := g.Generate(t.Context(), s.cfg).Wait(t.Context())
	require.Error(t, err)
}
