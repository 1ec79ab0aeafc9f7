package generator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/frontmatter"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
	"git.home.luguber.info/inful/staticgen/internal/output"
	"git.home.luguber.info/inful/staticgen/internal/page"
	"git.home.luguber.info/inful/staticgen/internal/paths"
	"git.home.luguber.info/inful/staticgen/internal/template"
	"git.home.luguber.info/inful/staticgen/internal/walker"
)

const siteMapTemplate = "sitemap"

type triggerKey struct{}

// WithTrigger labels the passes generated under ctx with what caused them
// ("cli", "watch", "schedule"). The label is recorded in pass history.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the label set by WithTrigger, or "".
func TriggerFrom(ctx context.Context) string {
	s, _ := ctx.Value(triggerKey{}).(string)
	return s
}

// GenerationContext is the state of one pass. It is created when the pass
// starts, only touched on the event loop, and dropped when the pass settles.
type GenerationContext struct {
	Config *config.Config
	Mapper paths.Mapper
	Engine *template.Engine
	Parser *page.Parser
	// Pages holds every page whose output was issued, in walk order.
	Pages  []*page.Model
	Report *Report

	ctx      context.Context
	gen      *Generator
	run      *Run
	writer   *output.Writer
	recorder metrics.Recorder
	fatal    error
	// settled is set once the pass reported its result; operations of a
	// superseded pass that finish later no longer touch the report.
	settled bool
}

func (g *Generator) newContext(ctx context.Context, cfg *config.Config, run *Run) (*GenerationContext, error) {
	engine, err := template.NewEngine(cfg,
		template.WithHooks(g.hooks),
		template.WithHelpers(g.helpers),
		template.WithMarkdown(g.markdown),
	)
	if err != nil {
		return nil, err
	}
	return &GenerationContext{
		Config:   cfg,
		Mapper:   paths.NewMapper(cfg),
		Engine:   engine,
		Parser:   page.NewParser(g.markdown, cfg),
		Report:   newReport(run.id),
		ctx:      ctx,
		gen:      g,
		run:      run,
		writer:   g.writer,
		recorder: g.recorder,
	}, nil
}

// generateContent walks the source tree and issues every page write and
// file copy. It stops at the first fatal error.
func (gc *GenerationContext) generateContent() {
	opts := walker.Options{
		ThemeDir:    gc.Config.Build.ThemeDir,
		TemplateExt: gc.Engine.Extension(),
	}
	for batch, err := range walker.Batches(gc.Mapper.SourceRoot, opts) {
		if err != nil {
			gc.fatal = errors.WrapError(err, errors.CategoryFileSystem, "failed to read source directory").
				WithPath(batch.Dir).
				Fatal().
				Build()
			return
		}
		if err := gc.ctx.Err(); err != nil {
			gc.fatal = err
			return
		}
		if err := gc.processDir(batch); err != nil {
			gc.fatal = err
			return
		}
	}
}

// processDir renders the content units of one directory and mirrors its
// other files. The folder index renders last, with the directory's other
// pages as children.
func (gc *GenerationContext) processDir(batch walker.Batch) error {
	slog.Debug("Processing folder", logfields.PassID(gc.run.id), logfields.Dir(batch.Dir))

	var siblings []*page.Model
	var index string
	for _, file := range batch.Files {
		switch {
		case gc.Mapper.IsIndex(file):
			index = file
		case gc.Mapper.IsContent(file):
			p, ok := gc.parse(file)
			if !ok {
				continue
			}
			written, err := gc.render(gc.Engine.TemplateFor(p), p)
			if err != nil {
				return err
			}
			if written {
				siblings = append(siblings, p)
			}
		default:
			if err := gc.mirror(file); err != nil {
				return err
			}
		}
	}

	if index == "" {
		return nil
	}
	p, ok := gc.parse(index)
	if !ok {
		return nil
	}
	p.Children = siblings
	if p.Children == nil {
		p.Children = []*page.Model{}
	}
	_, err := gc.render(gc.Engine.TemplateFor(p), p)
	return err
}

// parse reads a content unit. A parse failure only costs that page.
func (gc *GenerationContext) parse(file string) (*page.Model, bool) {
	p, err := gc.Parser.ParseFile(file)
	if err != nil {
		gc.pageFailed(file, err)
		return nil, false
	}
	p.URL = gc.Mapper.PageURL(file)
	p.Output = gc.Mapper.OutputHTMLPath(file)
	return p, true
}

// render renders p and issues its write, reporting whether the write was
// issued. Template and hook errors abort the pass unless
// build.continue_on_error is set.
func (gc *GenerationContext) render(name string, p *page.Model) (bool, error) {
	html, err := gc.Engine.Render(name, p)
	if err != nil {
		if gc.Config.Build.ContinueOnError {
			gc.pageFailed(p.Source, err)
			return false, nil
		}
		gc.recorder.IncPageResult(metrics.ResultFailed)
		gc.recordFailure(p.Source, err)
		return false, err
	}

	slog.Debug("Generating",
		logfields.Source(p.Source),
		logfields.Output(p.Output),
		logfields.Template(name))
	gc.recorder.IncPageResult(metrics.ResultSuccess)
	if p.Source != "" {
		gc.Pages = append(gc.Pages, p)
		gc.Report.Pages = append(gc.Report.Pages, PageEntry{
			URL:         p.URL,
			Source:      p.Source,
			Output:      p.Output,
			Fingerprint: p.Fingerprint,
		})
	}
	gc.writer.WriteFile(p.Output, []byte(html), gc.writeDone)
	return true, nil
}

// mirror copies a non-content file to its mirrored output location.
func (gc *GenerationContext) mirror(file string) error {
	dst, err := gc.Mapper.OutputCopyPath(file)
	if err != nil {
		return err
	}
	slog.Debug("Copying", logfields.Source(file), logfields.Output(dst))
	gc.writer.Copy(file, dst, gc.copyDone)
	return nil
}

// copyThemeAssets mirrors every non-template file of the theme directory
// relative to the theme root.
func (gc *GenerationContext) copyThemeAssets() {
	root := gc.Mapper.ThemeRoot
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return
	}
	for batch, err := range walker.Batches(root, walker.Options{TemplateExt: gc.Engine.Extension()}) {
		if err != nil {
			gc.fatal = errors.WrapError(err, errors.CategoryFileSystem, "failed to read theme directory").
				WithPath(batch.Dir).
				Fatal().
				Build()
			return
		}
		for _, file := range batch.Files {
			if err := gc.mirror(file); err != nil {
				gc.fatal = err
				return
			}
		}
	}
}

// postProcess runs after every content write has settled: the site map,
// the configured copies, then external scripts and styles.
func (gc *GenerationContext) postProcess() {
	if err := gc.renderSiteMap(); err != nil {
		gc.fatal = err
		return
	}

	build := gc.Config.Build
	for _, pair := range build.Copy {
		slog.Info("Copying", logfields.Source(pair.Src), logfields.Output(pair.Dst))
		gc.writer.Copy(pair.Src, pair.Dst, gc.copyDone)
	}
	for _, script := range build.Scripts {
		gc.writer.Copy(script, filepath.Join(gc.Mapper.OutputRoot, "js", filepath.Base(script)), gc.copyDone)
	}
	for _, style := range build.Styles {
		gc.writer.Copy(style, filepath.Join(gc.Mapper.OutputRoot, "css", filepath.Base(style)), gc.copyDone)
	}
}

// renderSiteMap writes the site map page listing every rendered page. It
// uses the theme's sitemap template when present, otherwise the default one.
func (gc *GenerationContext) renderSiteMap() error {
	rel := gc.Config.Build.SiteMapPage
	if rel == "" {
		return nil
	}

	children := make([]*page.Model, 0, len(gc.Pages))
	for _, rendered := range gc.Pages {
		children = append(children, siteMapEntry(rendered))
	}
	p := &page.Model{
		URL:         gc.Mapper.URLFor(rel),
		FrontMatter: frontmatter.FromPairs("template", siteMapTemplate, "title", "Site Map"),
		Children:    children,
		Config:      gc.Config,
		Output:      gc.Mapper.OutputPathFor(rel),
	}

	name := siteMapTemplate
	if !gc.Engine.Exists(name) {
		name = gc.Config.Build.DefaultTemplate
		if name == "" {
			name = config.DefaultTemplate
		}
	}
	slog.Info("Generating site map", logfields.Output(p.Output), logfields.Count(len(children)))
	_, err := gc.render(name, p)
	return err
}

// siteMapEntry returns p for listing in the site map. A page without a title
// is listed under a copy titled from its URL slug.
func siteMapEntry(p *page.Model) *page.Model {
	if p.Title() != "" {
		return p
	}
	entry := *p
	entry.FrontMatter = p.FrontMatter.Clone()
	entry.FrontMatter.Set("title", template.TitleFromURL(p.URL))
	return &entry
}

func (gc *GenerationContext) writeDone(err error) {
	if gc.settled {
		return
	}
	if err != nil {
		gc.Report.FailedWrites++
		gc.Report.Errors = append(gc.Report.Errors, err)
		return
	}
	gc.Report.Written++
}

func (gc *GenerationContext) copyDone(err error) {
	if gc.settled {
		return
	}
	if err != nil {
		gc.Report.FailedWrites++
		gc.Report.Errors = append(gc.Report.Errors, err)
		return
	}
	gc.Report.Copied++
}

// pageFailed records a page-local failure and lets the pass continue.
func (gc *GenerationContext) pageFailed(path string, err error) {
	slog.Error("Page generation failed", logfields.PassID(gc.run.id), logfields.Path(path), logfields.Error(err))
	gc.recorder.IncPageResult(metrics.ResultFailed)
	gc.Report.Errors = append(gc.Report.Errors, err)
	gc.recordFailure(path, err)
}

func (gc *GenerationContext) recordFailure(path string, err error) {
	gc.gen.record(gc.ctx, gc, func() (eventstore.Event, error) {
		return eventstore.NewPageFailed(gc.run.id, eventstore.PageFailure{
			Path:     path,
			Category: string(errors.GetCategory(err)),
			Error:    err.Error(),
		})
	})
}
