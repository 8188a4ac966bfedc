package scope

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind/pkg/render"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// memoKey identifies a computed origin within one render pass.
type memoKey struct {
	origin string
	comp   *Component
}

// renderPass carries the value cache of a single render.
type renderPass struct {
	engine    *Engine
	memo      map[memoKey]string
	evaluated int
	failures  int
}

// Render recomputes every expression node of c and its descendants.
func (e *Engine) Render(c *Component) {
	e.RenderContext(context.Background(), c)
}

// RenderContext is Render with a span parented on ctx.
func (e *Engine) RenderContext(ctx context.Context, c *Component) {
	if c == nil || c.state == StateDestroyed {
		return
	}
	e.renderWith(ctx, c, true)
}

// Render recomputes the expression nodes of c and its descendants.
func (c *Component) Render() {
	c.engine.Render(c)
}

// renderOwn recomputes only the expression nodes of c.
func (e *Engine) renderOwn(c *Component) {
	e.renderWith(context.Background(), c, false)
}

func (e *Engine) renderWith(ctx context.Context, c *Component, deep bool) {
	start := time.Now()
	_, span := e.tracer.Start(ctx, "vbind.render",
		trace.WithAttributes(
			attribute.String("vbind.component.id", c.id),
			attribute.String("vbind.component.name", c.name),
			attribute.Bool("vbind.render.deep", deep),
		),
	)
	defer span.End()

	pass := &renderPass{engine: e, memo: make(map[memoKey]string)}
	if deep {
		pass.render(c)
	} else {
		pass.renderNodes(c.expNodes)
	}

	span.SetAttributes(
		attribute.Int("vbind.expressions", pass.evaluated),
		attribute.Int("vbind.expression_failures", pass.failures),
	)
	if pass.failures > 0 {
		span.SetStatus(codes.Error, "expression evaluation failed")
	}
	e.metrics.observeRender(time.Since(start), pass.evaluated)
}

func (p *renderPass) render(c *Component) {
	if c.state == StateDestroyed {
		return
	}
	p.renderNodes(c.expNodes)
	children := c.Children()
	for i := len(children) - 1; i >= 0; i-- {
		p.render(children[i])
	}
}

func (p *renderPass) renderNodes(nodes []*ExpNode) {
	nodes = append([]*ExpNode(nil), nodes...)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		c := n.Component
		if c == nil || c.state == StateDestroyed {
			continue
		}
		key := memoKey{origin: n.Origin, comp: c}
		val, ok := p.memo[key]
		if !ok {
			val = p.engine.compute(c, n, p)
			p.memo[key] = val
		}
		if n.ToHTML {
			p.engine.renderHTML(n, val)
			continue
		}
		writeNode(n, val)
	}
}

// renderHTML materializes val as an anonymous sub-component in place of the
// previous one. Equal consecutive values leave the view untouched.
func (e *Engine) renderHTML(n *ExpNode, val string) {
	if n.rendered && n.lastVal == val {
		return
	}
	c := n.Component

	tmpl := val
	if !vdom.IsMarkup(val) {
		tmpl = render.EscapeHTML(val)
	}

	var target *vdom.Node
	if old := n.lastComp; old != nil {
		anchor := vdom.Comment("")
		if nodes := viewNodes(old); len(nodes) > 0 && vdom.InsertBefore(anchor, nodes[0]) {
			old.Destroy()
			target = vdom.Text("")
			anchor.ReplaceWith(target)
		} else {
			old.Destroy()
		}
	} else if n.Node != nil && n.Node.Parent != nil {
		target = n.Node
	}
	n.lastComp = nil
	n.lastVal = val
	n.rendered = true

	if target == nil {
		e.logger.Debug("raw markup target detached", "component", c.id, "origin", n.Origin)
		return
	}

	sub := c.CreateSubComponent(tmpl, target)
	if err := sub.Init(); err != nil {
		return
	}
	n.lastComp = sub
	if c.state == StateDisplayed {
		sub.Display()
	}
}

func viewNodes(c *Component) []*vdom.Node {
	if nv, ok := c.view.(NodeView); ok {
		return nv.Nodes()
	}
	return nil
}

// writeNode stores val on the node of n and keeps live properties of form
// controls in sync.
func writeNode(n *ExpNode, val string) {
	node := n.Node
	if node == nil {
		return
	}
	if n.Attr != "" {
		node.SetAttr(n.Attr, val)
		switch n.Attr {
		case "value":
			if node.Tag == "input" || node.Tag == "textarea" || node.Tag == "select" {
				node.SetProp("value", val)
			}
		case "checked", "selected":
			if node.Tag == "input" || node.Tag == "option" {
				node.SetProp(n.Attr, val != "" && val != "false")
			}
		}
		return
	}
	node.SetText(val)
	if p := node.Parent; p != nil && p.Tag == "textarea" {
		p.SetProp("value", p.TextContent())
	}
}
