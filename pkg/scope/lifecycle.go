package scope

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	vberrors "github.com/vango-dev/vbind/internal/errors"
)

// ErrAbort may be returned by an OnInit hook to stop initialization
// quietly.
var ErrAbort = errors.New("scope: init aborted")

// Init scans the view of a created component and moves it to inited. When
// the component has a TemplateURL the template is loaded through the
// engine's TemplateLoader and the component is displayed once loaded.
// Init on a component that is not in the created state is a no-op.
func (c *Component) Init() error {
	if c.pooled {
		return vberrors.New(vberrors.CodeDestroyed).WithDetail(c.id)
	}
	if c.state != StateCreated {
		return nil
	}
	e := c.engine
	if e.registry.Add(c) {
		e.metrics.componentAdded()
	}

	if c.templateURL != "" {
		if e.loader == nil {
			err := vberrors.New(vberrors.CodeTemplateLoadFailed).WithDetailf("%s: no template loader", c.templateURL)
			e.logger.Warn("component init failed", "component", c.id, "name", c.name, "error", err)
			c.Destroy()
			return err
		}
		url := c.templateURL
		gen := c.gen
		e.sched.Schedule(func() {
			e.loader.Load(url, func(tmpl string, err error) {
				if c.state != StateCreated || c.gen != gen {
					return
				}
				if err != nil {
					e.logger.Warn("template load failed", "component", c.id, "name", c.name, "url", url, "error", err)
					c.Destroy()
					return
				}
				c.template = tmpl
				if c.initView(tmpl) == nil {
					c.Display()
				}
			})
		})
		return nil
	}

	return c.initView(c.template)
}

func (c *Component) initView(tmpl string) error {
	e := c.engine
	_, span := e.tracer.Start(context.Background(), "vbind.init")
	span.SetAttributes(
		attribute.String("vbind.component.id", c.id),
		attribute.String("vbind.component.name", c.name),
	)
	defer span.End()

	if !c.view.Init(tmpl, c) {
		err := vberrors.New(vberrors.CodeInitAborted).WithDetailf("%s: view init failed", c.id)
		span.SetStatus(codes.Error, err.Error())
		c.Destroy()
		return err
	}

	if err := e.scanner.Scan(c.view, c); err != nil {
		e.logger.Warn("view scan failed", "component", c.id, "name", c.name, "error", err)
	}

	if c.hooks.OnInit != nil {
		if err := c.hooks.OnInit(c, tmpl); err != nil {
			if errors.Is(err, ErrAbort) {
				e.logger.Debug("component init aborted", "component", c.id, "name", c.name)
			} else {
				e.logger.Warn("component init aborted", "component", c.id, "name", c.name, "error", err)
			}
			span.SetStatus(codes.Error, err.Error())
			c.Destroy()
			return vberrors.New(vberrors.CodeInitAborted).WithDetail(c.id).Wrap(err)
		}
	}

	// A hook may have destroyed or displayed the component itself.
	if c.state != StateCreated {
		return nil
	}
	c.state = StateInited
	e.logger.Debug("component inited", "component", c.id, "name", c.name, "state", c.state.String())
	return nil
}

// Display attaches the view of an inited or suspended component. The first
// display renders the component tree and registers its dependency watches;
// inited children are brought to displayed without another render.
func (c *Component) Display() {
	if c.state != StateInited && c.state != StateSuspend {
		return
	}
	e := c.engine
	resume := c.state == StateSuspend

	c.view.Display(c)
	if !resume {
		e.Render(c)
		e.builder.Build(c)
	}
	c.state = StateDisplayed
	e.logger.Debug("component displayed", "component", c.id, "name", c.name, "state", c.state.String(), "resume", resume)
	if c.hooks.OnDisplay != nil {
		c.hooks.OnDisplay(c)
	}
	if !resume {
		c.displayChildren()
	}
}

func (c *Component) displayChildren() {
	e := c.engine
	for _, child := range c.Children() {
		if child.state != StateInited {
			continue
		}
		child.view.Display(child)
		e.builder.Build(child)
		child.state = StateDisplayed
		e.logger.Debug("component displayed", "component", child.id, "name", child.name, "state", child.state.String())
		if child.hooks.OnDisplay != nil {
			child.hooks.OnDisplay(child)
		}
		child.displayChildren()
	}
}

// Suspend detaches the view of a displayed component. Directives can be
// suspended from any live state.
func (c *Component) Suspend(keepPlaceholder bool) {
	if c.state == StateDestroyed || c.state == StateSuspend {
		return
	}
	if !c.directive && c.state != StateDisplayed {
		return
	}
	c.view.Suspend(c, keepPlaceholder)
	if c.hooks.OnSuspend != nil {
		c.hooks.OnSuspend(c)
	}
	c.state = StateSuspend
	c.engine.logger.Debug("component suspended", "component", c.id, "name", c.name, "state", c.state.String())
}

// Destroy tears down the component and its descendants. Named components
// return to the pool when caching is enabled; others are released.
func (c *Component) Destroy() {
	if c.state == StateDestroyed || c.pooled {
		return
	}
	e := c.engine
	e.logger.Debug("component destroying", "component", c.id, "name", c.name, "state", c.state.String())

	if p := c.parent; p != nil {
		p.removeChild(c)
	}
	if c.view != nil {
		c.view.Destroy(c)
	}
	for len(c.children) > 0 {
		child := c.children[0]
		child.Destroy()
		if len(c.children) > 0 && c.children[0] == child {
			c.removeChild(child)
		}
	}
	c.expNodes = nil
	c.props = newChangeRoot()
	c.gen++

	if c.hooks.OnDestroy != nil {
		c.hooks.OnDestroy(c)
	}

	if e.cacheable && c.name != "" && !c.directive && e.pool.Put(c) {
		c.state = StateCreated
		c.pooled = true
		c.view = nil
		c.events = make(map[string][]Handler)
		c.watcher = nil
		e.metrics.pooled(c.name, e.pool.Len(c.name))
		return
	}

	c.state = StateDestroyed
	c.view = nil
	c.model = nil
	c.events = nil
	c.watcher = nil
	c.hooks = Hooks{}
	if e.registry.Remove(c.id) {
		e.metrics.componentRemoved()
	}
}
