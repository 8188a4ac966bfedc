package scope

import (
	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
)

// binding is the absolute location of a variable: a path relative to the
// model of its owning component.
type binding struct {
	owner    *Component
	path     expr.Path
	resolved bool
}

// ResolveScope returns the nearest component, starting at c and walking up
// the parent chain, whose model defines probe. It returns nil when no
// component does.
func ResolveScope(c *Component, probe expr.Path) *Component {
	for s := c; s != nil; s = s.parent {
		if s.state == StateDestroyed {
			continue
		}
		if expr.Has(s.model, probe) {
			return s
		}
	}
	return nil
}

// bind resolves v from the point of view of c. Computed keys are evaluated
// first and substituted into the path. An unresolved variable binds to c.
func (e *Engine) bind(c *Component, v *expr.Var) (binding, error) {
	path := make(expr.Path, 0, len(v.Steps))
	for _, s := range v.Steps {
		if s.Kind != expr.StepVar {
			path = append(path, s.Key)
			continue
		}
		sub, ok := v.SubVars[s.Var]
		if !ok {
			return binding{}, vberrors.New(vberrors.CodeParse).WithDetailf("%s: missing sub-variable %s", v.Name, s.Var)
		}
		sb, err := e.bind(c, sub)
		if err != nil {
			return binding{}, err
		}
		key, err := expr.Get(sb.owner.model, sb.path)
		if err != nil {
			return binding{}, err
		}
		path = append(path, key)
	}

	if v.IsThis() {
		return binding{owner: c, path: path[1:], resolved: true}, nil
	}

	probe := path
	if v.WatchDepth > 0 && v.WatchDepth < len(path) {
		probe = path[:v.WatchDepth]
	}
	if owner := ResolveScope(c, probe); owner != nil {
		return binding{owner: owner, path: path, resolved: true}, nil
	}
	return binding{owner: c, path: path}, nil
}

// Closest returns the component that owns path from the point of view of c,
// or nil when no component in the chain defines it.
func (c *Component) Closest(path string) *Component {
	ex, err := c.engine.parse(path)
	if err != nil {
		c.engine.logger.Debug("closest: invalid path", "component", c.id, "path", path, "error", err)
		return nil
	}
	vars := ex.Vars()
	if len(vars) != 1 {
		return nil
	}
	b, err := c.engine.bind(c, vars[0])
	if err != nil || !b.resolved {
		return nil
	}
	return b.owner
}
