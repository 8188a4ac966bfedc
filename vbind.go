// Package vbind assembles a data-binding engine from project configuration.
//
// A project is described by a vbind.yaml file naming a root template, an
// optional data file and the component types the templates may use:
//
//	cfg, err := config.LoadFromDir(".")
//	app, err := vbind.New(cfg)
//	root, doc, err := app.Mount()
//
// For one-off rendering without a project, use RenderString:
//
//	html, err := vbind.RenderString(`<p>{{ user.name | upper }}</p>`, data)
package vbind

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/render"
	"github.com/vango-dev/vbind/pkg/scope"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// App is an engine configured from a project.
type App struct {
	config   *config.Config
	engine   *scope.Engine
	logger   *slog.Logger
	registry *prometheus.Registry
}

// New validates cfg and builds an engine with every configured component
// defined. opts are applied after the options derived from cfg.
func New(cfg *config.Config, opts ...scope.Option) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: cfg.Log.NewLogger(os.Stderr),
	}

	base := []scope.Option{
		scope.WithLogger(app.logger),
		scope.WithCache(cfg.CacheEnabled()),
		scope.WithPoolCap(cfg.PoolCap),
	}
	if cfg.Templates != "" {
		base = append(base, scope.WithTemplateLoader(scope.FSLoader{FS: os.DirFS(cfg.TemplatesPath())}))
	}
	if cfg.Metrics {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		base = append(base, scope.WithMetrics(app.registry))
	}
	app.engine = scope.New(append(base, opts...)...)

	for name, comp := range cfg.Components {
		tmpl, err := cfg.ReadTemplate(comp)
		if err != nil {
			return nil, err
		}
		app.engine.Define(name, scope.Definition{
			Template:    tmpl,
			TemplateURL: comp.URL,
			Inner:       comp.Inner,
			Directive:   comp.Directive,
			Isolate:     comp.Isolate,
			Restrict: scope.Restrict{
				Parents:  comp.Restrict.Parents,
				Children: comp.Restrict.Children,
			},
			Model: modelOf(comp.Data),
		})
	}
	return app, nil
}

// modelOf returns a model factory handing each instance its own copy of
// data.
func modelOf(data map[string]any) func() any {
	return func() any {
		if m, ok := expr.Clone(data).(map[string]any); ok && m != nil {
			return m
		}
		return map[string]any{}
	}
}

// Config returns the project configuration.
func (a *App) Config() *config.Config { return a.config }

// Engine returns the configured engine.
func (a *App) Engine() *scope.Engine { return a.engine }

// Logger returns the project logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the metrics registry, or nil when metrics are off.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Mount renders the configured root template with the configured data and
// waits for deferred work such as template loads.
func (a *App) Mount() (*scope.Component, *vdom.Node, error) {
	if a.config.Root == "" {
		return nil, nil, errors.New(errors.CodeConfigInvalid).WithDetail("no root template configured")
	}
	b, err := os.ReadFile(a.config.RootPath())
	if err != nil {
		return nil, nil, errors.New(errors.CodeConfigInvalid).WithDetail(a.config.Root).Wrap(err)
	}
	data, err := a.config.LoadData()
	if err != nil {
		return nil, nil, err
	}
	return a.MountTemplate(string(b), data)
}

// MountTemplate mounts tmpl with model as an anonymous root.
func (a *App) MountTemplate(tmpl string, model any) (*scope.Component, *vdom.Node, error) {
	root, doc, err := a.engine.MountTemplate(tmpl, model)
	if err != nil {
		return nil, nil, err
	}
	a.engine.Drain()
	return root, doc, nil
}

// Render mounts the project root and writes its markup to w.
func (a *App) Render(w io.Writer, pretty bool) error {
	_, doc, err := a.Mount()
	if err != nil {
		return err
	}
	return render.NewRenderer(render.RendererConfig{Pretty: pretty}).RenderToWriter(w, doc)
}

// RenderString renders tmpl against data with a default engine. data may be
// a map or a pointer to a struct; nil renders against an empty map.
func RenderString(tmpl string, data any, opts ...scope.Option) (string, error) {
	engine := scope.New(opts...)
	_, doc, err := engine.MountTemplate(tmpl, data)
	if err != nil {
		return "", err
	}
	engine.Drain()
	return render.NewRenderer(render.RendererConfig{}).RenderToString(doc)
}
