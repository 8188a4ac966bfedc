package scope

import (
	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// State is a lifecycle state of a component.
type State uint8

const (
	StateCreated State = iota
	StateInited
	StateDisplayed
	StateSuspend
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInited:
		return "inited"
	case StateDisplayed:
		return "displayed"
	case StateSuspend:
		return "suspend"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ExpNode binds the expressions of one text node or attribute to the
// component that owns them.
type ExpNode struct {
	// Origin is the source text with {{exp}} placeholders.
	Origin string

	// Keys are the placeholder contents in order of first appearance.
	Keys []string

	// Exps maps each key to its parsed expression.
	Exps map[string]*expr.Expression

	// Node is the text node or element written by the renderer.
	Node *vdom.Node

	// Attr names the attribute written on Node. Empty for text nodes.
	Attr string

	// Component owns the node.
	Component *Component

	// ToHTML renders the value as markup through a sub-component.
	ToHTML bool

	lastVal  string
	lastComp *Component
	rendered bool
}

// Component is a UI unit: a view, a model and its child components.
type Component struct {
	engine *Engine
	id     string
	name   string
	state  State
	gen    uint64
	pooled bool

	parent   *Component
	children []*Component

	def         *Definition
	template    string
	templateURL string
	directive   bool
	restrict    Restrict
	isolate     []string
	hooks       Hooks

	model    any
	view     View
	expNodes []*ExpNode
	events   map[string][]Handler
	props    *changeRoot
	watcher  WatchFunc
}

// ID returns the process-unique id.
func (c *Component) ID() string { return c.id }

// Name returns the component type name, empty for anonymous components.
func (c *Component) Name() string { return c.name }

// State returns the lifecycle state.
func (c *Component) State() State { return c.state }

// Parent returns the parent component, or nil for roots.
func (c *Component) Parent() *Component { return c.parent }

// Children returns a copy of the child list in creation order.
func (c *Component) Children() []*Component {
	return append([]*Component(nil), c.children...)
}

// ExpNodes returns the expression nodes owned by the component.
func (c *Component) ExpNodes() []*ExpNode {
	return append([]*ExpNode(nil), c.expNodes...)
}

// Model returns the component model.
func (c *Component) Model() any { return c.model }

// SetModel replaces the model of a component that has not been displayed.
func (c *Component) SetModel(m any) {
	if c.state == StateCreated || c.state == StateInited {
		c.model = m
	}
}

// View returns the view adapter.
func (c *Component) View() View { return c.view }

// Engine returns the engine that created the component.
func (c *Component) Engine() *Engine { return c.engine }

// IsDirective reports whether the component is a directive.
func (c *Component) IsDirective() bool { return c.directive }

// Template returns the component template.
func (c *Component) Template() string { return c.template }

// SetHooks replaces the lifecycle hooks.
func (c *Component) SetHooks(h Hooks) { c.hooks = h }

// AddExpNode registers an expression node on the component. Scanners call
// it while walking the view.
func (c *Component) AddExpNode(n *ExpNode) {
	n.Component = c
	c.expNodes = append(c.expNodes, n)
}

// Add appends child to the children of c, detaching it from any previous
// parent.
func (c *Component) Add(child *Component) *Component {
	if child == nil || child == c {
		return c
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = c
	c.children = append(c.children, child)
	return c
}

func (c *Component) removeChild(child *Component) {
	for i, x := range c.children {
		if x == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// reset prepares a pooled instance for reuse.
func (c *Component) reset() {
	c.state = StateCreated
	c.pooled = false
	c.gen++
	c.parent = nil
	c.children = nil
	c.expNodes = nil
	c.events = make(map[string][]Handler)
	c.props = newChangeRoot()
	c.watcher = nil
}
