package scope

import (
	"reflect"
	"strings"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// Data returns the value of path resolved through the scope chain of c, or
// nil when it is undefined.
func (c *Component) Data(path string) any {
	e := c.engine
	ex, err := e.parse(path)
	if err != nil {
		e.logger.Debug("data: invalid path", "component", c.id, "path", path, "error", err)
		return nil
	}
	v, err := e.value(c, ex)
	if err != nil {
		e.logger.Debug("data: undefined", "component", c.id, "path", path, "error", err)
		return nil
	}
	return v
}

// SetData assigns v at path on the component that owns it. A single
// segment path that no scope defines is created on c. Watchers of the
// owner are notified and dependent views re-rendered.
func (c *Component) SetData(path string, v any) error {
	e := c.engine
	if c.state == StateDestroyed {
		return vberrors.New(vberrors.CodeDestroyed).WithDetail(c.id)
	}
	ex, err := e.parse(path)
	if err != nil {
		e.logger.Warn("setData: invalid path", "component", c.id, "path", path, "error", err)
		return err
	}
	if len(ex.Words) != 1 || !ex.Words[0].IsVar() || len(ex.Filters) > 0 {
		err := vberrors.New(vberrors.CodeNotAssignable).WithDetail(path)
		e.logger.Warn("setData: not assignable", "component", c.id, "path", path)
		return err
	}

	b, err := e.bind(c, ex.VarTree[ex.Words[0].Var])
	if err != nil {
		e.logger.Debug("setData failed", "component", c.id, "path", path, "error", err)
		return err
	}

	old, getErr := expr.Get(b.owner.model, b.path)
	kind := ChangeUpdate
	if getErr != nil {
		kind = ChangeAdd
		old = nil
	}
	if err := expr.Set(b.owner.model, b.path, v); err != nil {
		e.logger.Debug("setData failed", "component", c.id, "path", path, "error", err)
		return err
	}
	e.notify(b.owner, b.path, kind, v, old)
	return nil
}

// Find returns the children of c named name ("*" for any) whose model
// fields equal every entry of conds. Children are visited newest first;
// recursive search descends depth first, including into matches.
func (c *Component) Find(name string, conds map[string]any, recursive bool) []*Component {
	name = strings.ToLower(name)
	var out []*Component
	children := c.Children()
	for i := len(children) - 1; i >= 0; i-- {
		comp := children[i]
		if (name == "*" || comp.name == name) && matches(comp, conds) {
			out = append(out, comp)
		}
		if recursive && len(comp.children) > 0 {
			out = append(out, comp.Find(name, conds, true)...)
		}
	}
	return out
}

func matches(c *Component, conds map[string]any) bool {
	for k, want := range conds {
		got, err := expr.Get(c.model, expr.Path{k})
		if err != nil || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// CreateSubComponentOf creates a named child of c on target. Restrict
// rules of both parent and child are enforced.
func (c *Component) CreateSubComponentOf(name string, target *vdom.Node) (*Component, error) {
	e := c.engine
	name = strings.ToLower(name)
	def, ok := e.defs[name]
	if !ok {
		return nil, vberrors.New(vberrors.CodeUnknownComponent).WithDetail(name)
	}
	if c.name != "" && len(def.Restrict.Parents) > 0 && !containsName(def.Restrict.Parents, c.name) {
		return nil, vberrors.New(vberrors.CodeRestrictViolation).WithDetailf("%s cannot be a child of %s", name, c.name)
	}
	if len(c.restrict.Children) > 0 && !containsName(c.restrict.Children, name) {
		return nil, vberrors.New(vberrors.CodeRestrictViolation).WithDetailf("%s cannot contain %s", c.name, name)
	}
	child, err := e.NewInstanceOf(name, target)
	if err != nil {
		return nil, err
	}
	c.Add(child)
	return child, nil
}

// CreateSubComponent creates an anonymous child of c from tmpl on target.
func (c *Component) CreateSubComponent(tmpl string, target *vdom.Node) *Component {
	child := c.engine.NewInstance(tmpl, target)
	c.Add(child)
	return child
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
