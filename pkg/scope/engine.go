package scope

import (
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/filter"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// Hooks are the lifecycle callbacks of a component. Nil hooks are skipped.
type Hooks struct {
	// OnCreate runs when an instance is created or taken from the pool.
	OnCreate func(c *Component)

	// OnInit runs after the view has been scanned. A non-nil error aborts
	// initialization and destroys the component; return ErrAbort to abort
	// without a warning.
	OnInit func(c *Component, tmpl string) error

	OnDisplay func(c *Component)
	OnSuspend func(c *Component)
	OnDestroy func(c *Component)
}

// Restrict limits where a named component may appear.
type Restrict struct {
	// Parents lists the component names allowed as parent.
	Parents []string

	// Children lists the component names allowed as children.
	Children []string
}

// Definition describes a named component type.
type Definition struct {
	Hooks

	// Template is the markup of the component view.
	Template string

	// TemplateURL names a template fetched through the engine's
	// TemplateLoader. It takes precedence over Template.
	TemplateURL string

	// Inner inserts the template inside the host element instead of
	// replacing it.
	Inner bool

	// Directive components may be suspended in any state and are never
	// pooled.
	Directive bool

	// Restrict validates parent and child names.
	Restrict Restrict

	// Isolate lists model paths whose changes do not propagate to
	// descendants.
	Isolate []string

	// Model returns a fresh model for each instance. When nil the model is
	// an empty map[string]any.
	Model func() any
}

func (d *Definition) newModel() any {
	if d.Model != nil {
		if m := d.Model(); m != nil {
			return m
		}
	}
	return map[string]any{}
}

// Engine owns component definitions, the live registry, the pool and the
// collaborators shared by every component it creates.
type Engine struct {
	logger    *slog.Logger
	parser    expr.Parser
	filters   *filter.Registry
	scanner   Scanner
	builder   Builder
	sched     Scheduler
	loader    TemplateLoader
	newView   func(target *vdom.Node, inner bool) View
	cacheable bool
	metrics   *metrics
	tracer    trace.Tracer

	defs     map[string]*Definition
	registry *Registry
	pool     *Pool
	parsed   map[string]*expr.Expression
	nextID   uint64
}

// New creates an engine.
func New(opts ...Option) *Engine {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(&config)
	}

	e := &Engine{
		logger:    config.Logger,
		parser:    config.Parser,
		filters:   config.Filters,
		scanner:   config.Scanner,
		builder:   config.Builder,
		sched:     config.Scheduler,
		loader:    config.Loader,
		newView:   config.NewView,
		cacheable: config.Cacheable,
		tracer:    config.Tracer,
		defs:      make(map[string]*Definition),
		registry:  NewRegistry(),
		pool:      NewPool(config.PoolCap),
		parsed:    make(map[string]*expr.Expression),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.parser == nil {
		e.parser = expr.Default
	}
	if e.filters == nil {
		e.filters = filter.Builtins()
	}
	if e.scanner == nil {
		e.scanner = DOMScanner{}
	}
	if e.builder == nil {
		e.builder = &dependencyBuilder{engine: e}
	}
	if e.sched == nil {
		e.sched = NewQueue()
	}
	if e.newView == nil {
		e.newView = func(target *vdom.Node, inner bool) View {
			return NewDOMView(target, inner)
		}
	}
	if config.Registerer != nil {
		e.metrics = newMetrics(config.Registerer)
	}
	if e.tracer == nil {
		e.tracer = defaultEngineConfig().Tracer
	}
	return e
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Filters returns the filter registry.
func (e *Engine) Filters() *filter.Registry { return e.filters }

// Scheduler returns the scheduler used for deferred work.
func (e *Engine) Scheduler() Scheduler { return e.sched }

// Registry returns the live component registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Pool returns the pool of reusable named components.
func (e *Engine) Pool() *Pool { return e.pool }

// Define registers a named component type. Names are case-insensitive.
func (e *Engine) Define(name string, def Definition) {
	d := def
	e.defs[strings.ToLower(name)] = &d
}

// Definition returns the definition registered under name.
func (e *Engine) Definition(name string) (*Definition, bool) {
	d, ok := e.defs[strings.ToLower(name)]
	return d, ok
}

// IsDefined reports whether name is a registered component type.
func (e *Engine) IsDefined(name string) bool {
	_, ok := e.defs[strings.ToLower(name)]
	return ok
}

// Get returns the live component with the given id, or nil.
func (e *Engine) Get(id string) *Component {
	return e.registry.Get(id)
}

// Drain runs deferred work until the scheduler is empty. It is a no-op for
// schedulers that cannot be drained.
func (e *Engine) Drain() int {
	if d, ok := e.sched.(interface{ Drain() int }); ok {
		return d.Drain()
	}
	return 0
}

// NewInstanceOf creates a component of the named type on target. A pooled
// instance is reused when available.
func (e *Engine) NewInstanceOf(name string, target *vdom.Node) (*Component, error) {
	name = strings.ToLower(name)
	def, ok := e.defs[name]
	if !ok {
		return nil, vberrors.New(vberrors.CodeUnknownComponent).WithDetail(name)
	}

	c := e.pool.Take(name)
	if c != nil {
		e.metrics.poolHit(name, e.pool.Len(name))
		c.reset()
		e.logger.Debug("component reused", "component", c.id, "name", name)
	} else {
		c = e.allocate(name)
	}

	c.def = def
	c.template = def.Template
	c.templateURL = def.TemplateURL
	c.directive = def.Directive
	c.restrict = def.Restrict
	c.isolate = def.Isolate
	c.hooks = def.Hooks
	c.model = def.newModel()
	c.view = e.newView(target, def.Inner)

	if c.hooks.OnCreate != nil {
		c.hooks.OnCreate(c)
	}
	return c, nil
}

// NewInstance creates an anonymous component whose template is tmpl. The
// template replaces target when the view is initialized.
func (e *Engine) NewInstance(tmpl string, target *vdom.Node) *Component {
	c := e.allocate("")
	c.template = tmpl
	c.model = map[string]any{}
	c.view = e.newView(target, false)
	return c
}

// Mount creates, initializes and displays a component of the named type on
// host.
func (e *Engine) Mount(name string, host *vdom.Node) (*Component, error) {
	c, err := e.NewInstanceOf(name, host)
	if err != nil {
		return nil, err
	}
	if err := c.Init(); err != nil {
		return nil, err
	}
	c.Display()
	return c, nil
}

// MountTemplate creates an anonymous root component from tmpl with the
// given model, initializes and displays it inside a new document. The
// document fragment is returned for serialization.
func (e *Engine) MountTemplate(tmpl string, model any) (*Component, *vdom.Node, error) {
	doc, host := NewDocument()
	c := e.NewInstance(tmpl, host)
	if model != nil {
		c.model = model
	}
	if err := c.Init(); err != nil {
		return nil, nil, err
	}
	c.Display()
	return c, doc, nil
}

// NewDocument returns an empty document fragment and the mount point inside
// it.
func NewDocument() (doc, host *vdom.Node) {
	host = vdom.Text("")
	doc = vdom.Fragment(host)
	return doc, host
}

func (e *Engine) allocate(name string) *Component {
	e.nextID++
	c := &Component{
		engine: e,
		id:     "C_" + strconv.FormatUint(e.nextID, 10),
		name:   name,
		state:  StateCreated,
		events: make(map[string][]Handler),
		props:  newChangeRoot(),
	}
	return c
}

// parse returns the cached expression for src.
func (e *Engine) parse(src string) (*expr.Expression, error) {
	if ex, ok := e.parsed[src]; ok {
		return ex, nil
	}
	ex, err := e.parser.Parse(src)
	if err != nil {
		return nil, err
	}
	e.parsed[src] = ex
	return ex, nil
}
