package scope

import (
	"io/fs"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// View adapts a component to its presentation.
type View interface {
	// Init materializes tmpl for c. Returning false aborts initialization.
	Init(tmpl string, c *Component) bool

	// Display attaches the view, restoring it after a suspend.
	Display(c *Component)

	// Destroy detaches the view permanently.
	Destroy(c *Component)

	// Suspend detaches the view, leaving a placeholder when
	// keepPlaceholder is set so that Display can restore it in place.
	Suspend(c *Component, keepPlaceholder bool)
}

// NodeView is a View backed by vdom nodes.
type NodeView interface {
	View

	// Nodes returns the top-level nodes owned by the view.
	Nodes() []*vdom.Node
}

// DOMView is the vdom implementation of View.
type DOMView struct {
	host        *vdom.Node
	inner       bool
	nodes       []*vdom.Node
	placeholder *vdom.Node
}

// NewDOMView creates a view on host. With inner set the template becomes
// the content of host; otherwise it replaces host.
func NewDOMView(host *vdom.Node, inner bool) *DOMView {
	return &DOMView{host: host, inner: inner}
}

// Host returns the node the view was created on.
func (v *DOMView) Host() *vdom.Node { return v.host }

// Nodes implements NodeView.
func (v *DOMView) Nodes() []*vdom.Node {
	return append([]*vdom.Node(nil), v.nodes...)
}

// Init implements View.
func (v *DOMView) Init(tmpl string, c *Component) bool {
	if v.host == nil {
		return false
	}
	if tmpl == "" && v.host.Kind == vdom.KindElement {
		v.nodes = []*vdom.Node{v.host}
		return true
	}

	frag, err := vdom.Parse(tmpl)
	if err != nil {
		c.engine.logger.Warn("template parse failed", "component", c.id, "name", c.name, "error", err)
		return false
	}
	nodes := append([]*vdom.Node(nil), frag.Children...)

	if v.inner && v.host.Kind == vdom.KindElement {
		v.host.SetChildren(nodes...)
		v.nodes = []*vdom.Node{v.host}
		return true
	}

	if len(nodes) == 0 {
		nodes = []*vdom.Node{vdom.Text("")}
	}
	if !v.host.ReplaceWith(nodes...) {
		c.engine.logger.Warn("view host is detached", "component", c.id, "name", c.name)
		return false
	}
	v.nodes = nodes
	return true
}

// Display implements View.
func (v *DOMView) Display(c *Component) {
	if v.placeholder == nil {
		return
	}
	for _, n := range v.nodes {
		vdom.InsertBefore(n, v.placeholder)
	}
	v.placeholder.Remove()
	v.placeholder = nil
}

// Suspend implements View.
func (v *DOMView) Suspend(c *Component, keepPlaceholder bool) {
	if len(v.nodes) == 0 || v.placeholder != nil {
		return
	}
	if keepPlaceholder && v.nodes[0].Parent != nil {
		ph := vdom.Comment(" " + c.id + " ")
		if vdom.InsertBefore(ph, v.nodes[0]) {
			v.placeholder = ph
		}
	}
	for _, n := range v.nodes {
		n.Remove()
	}
}

// Destroy implements View.
func (v *DOMView) Destroy(c *Component) {
	for _, n := range v.nodes {
		n.Remove()
	}
	if v.placeholder != nil {
		v.placeholder.Remove()
		v.placeholder = nil
	}
	v.nodes = nil
}

// TemplateLoader fetches templates by URL. done may be called
// synchronously; the engine defers the call onto its scheduler.
type TemplateLoader interface {
	Load(url string, done func(tmpl string, err error))
}

// FSLoader loads templates from a file system.
type FSLoader struct {
	FS fs.FS
}

// Load implements TemplateLoader.
func (l FSLoader) Load(url string, done func(string, error)) {
	if l.FS == nil {
		done("", vberrors.New(vberrors.CodeTemplateLoadFailed).WithDetail(url))
		return
	}
	b, err := fs.ReadFile(l.FS, url)
	if err != nil {
		done("", vberrors.New(vberrors.CodeTemplateLoadFailed).WithDetail(url).Wrap(err))
		return
	}
	done(string(b), nil)
}
