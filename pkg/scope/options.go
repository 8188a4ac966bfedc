package scope

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/filter"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// Default tracer name for engine spans.
const defaultTracerName = "vbind"

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	// Logger receives lifecycle and evaluation diagnostics.
	// Default: slog.Default()
	Logger *slog.Logger

	// Parser turns expression source into an Expression.
	// Default: expr.Default
	Parser expr.Parser

	// Filters resolves filter names used in pipelines.
	// Default: filter.Builtins()
	Filters *filter.Registry

	// Scanner discovers expression nodes and child components in a view.
	// Default: DOMScanner
	Scanner Scanner

	// Builder registers the dependency watches of displayed components.
	// Default: the dependency builder
	Builder Builder

	// Scheduler runs deferred work such as event delivery.
	// Default: a new Queue
	Scheduler Scheduler

	// Loader fetches templates referenced by TemplateURL.
	// Default: nil (components with a TemplateURL fail to init)
	Loader TemplateLoader

	// NewView creates the view adapter for a component.
	// Default: NewDOMView
	NewView func(target *vdom.Node, inner bool) View

	// Cacheable enables pooling of destroyed named components.
	// Default: true
	Cacheable bool

	// PoolCap limits pooled instances per component name. Zero means
	// unbounded.
	PoolCap int

	// Registerer enables Prometheus metrics when non-nil.
	Registerer prometheus.Registerer

	// Tracer creates render and init spans.
	// Default: otel.Tracer("vbind")
	Tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*EngineConfig)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *EngineConfig) {
		c.Logger = l
	}
}

// WithParser replaces the expression parser.
func WithParser(p expr.Parser) Option {
	return func(c *EngineConfig) {
		c.Parser = p
	}
}

// WithFilters sets the filter registry.
func WithFilters(r *filter.Registry) Option {
	return func(c *EngineConfig) {
		c.Filters = r
	}
}

// WithScanner replaces the view scanner.
func WithScanner(s Scanner) Option {
	return func(c *EngineConfig) {
		c.Scanner = s
	}
}

// WithBuilder replaces the dependency builder.
func WithBuilder(b Builder) Option {
	return func(c *EngineConfig) {
		c.Builder = b
	}
}

// WithScheduler sets the scheduler used for deferred work.
func WithScheduler(s Scheduler) Option {
	return func(c *EngineConfig) {
		c.Scheduler = s
	}
}

// WithTemplateLoader sets the loader used for TemplateURL.
func WithTemplateLoader(l TemplateLoader) Option {
	return func(c *EngineConfig) {
		c.Loader = l
	}
}

// WithViewFactory replaces the view adapter constructor.
func WithViewFactory(fn func(target *vdom.Node, inner bool) View) Option {
	return func(c *EngineConfig) {
		c.NewView = fn
	}
}

// WithCache enables or disables component pooling.
func WithCache(enabled bool) Option {
	return func(c *EngineConfig) {
		c.Cacheable = enabled
	}
}

// WithPoolCap limits pooled instances per component name.
func WithPoolCap(n int) Option {
	return func(c *EngineConfig) {
		c.PoolCap = n
	}
}

// WithMetrics registers engine metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *EngineConfig) {
		c.Registerer = reg
	}
}

// WithTracer sets the tracer for render and init spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *EngineConfig) {
		c.Tracer = t
	}
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() EngineConfig {
	return EngineConfig{
		Logger:    slog.Default(),
		Parser:    expr.Default,
		Filters:   filter.Builtins(),
		Scanner:   DOMScanner{},
		Cacheable: true,
		Tracer:    otel.Tracer(defaultTracerName),
	}
}
