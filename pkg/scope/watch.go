package scope

import (
	"fmt"
	"strings"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
)

// ChangeKind tells whether a change created or replaced a value.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
)

// Change describes one assignment made through SetData.
type Change struct {
	Kind ChangeKind
	Path string
	New  any
	Old  any
}

// WatchFunc receives changes of a watched path.
type WatchFunc func(ch Change)

// Watch is a subscription on the change root of an owning component.
type Watch struct {
	// Segments is the watched path relative to the owner model.
	Segments []string

	// Func receives matching changes. Nil for render watches.
	Func WatchFunc

	comp   *Component
	gen    uint64
	render bool
}

func (w *Watch) live() bool {
	return w.comp != nil && w.comp.state != StateDestroyed && !w.comp.pooled && w.comp.gen == w.gen
}

func (w *Watch) key() string {
	return fmt.Sprintf("%s/%d/%t/%s", w.comp.id, w.gen, w.render, strings.Join(w.Segments, "."))
}

// changeRoot is the per-component change tracking state.
type changeRoot struct {
	watches []*Watch
	keys    map[string]bool
}

func newChangeRoot() *changeRoot {
	return &changeRoot{keys: make(map[string]bool)}
}

func (r *changeRoot) add(w *Watch) bool {
	if w.render {
		k := w.key()
		if r.keys[k] {
			return false
		}
		r.keys[k] = true
	}
	r.watches = append(r.watches, w)
	return true
}

// Watchers returns the number of live watches on the change root of c.
func (c *Component) Watchers() int {
	n := 0
	for _, w := range c.props.watches {
		if w.live() {
			n++
		}
	}
	return n
}

// Watch calls fn when path changes. The path "*" watches every change made
// on c; any other path must contain exactly one variable and is watched on
// the component that owns it.
func (c *Component) Watch(path string, fn WatchFunc) *Component {
	e := c.engine
	if c.state == StateDestroyed || fn == nil {
		return c
	}
	if path == "*" {
		c.watcher = fn
		return c
	}
	ex, err := e.parse(path)
	if err != nil {
		e.logger.Warn("watch: invalid path", "component", c.id, "path", path, "error", err)
		return c
	}
	vars := ex.Vars()
	switch len(vars) {
	case 0:
		return c
	case 1:
	default:
		e.logger.Warn("watch ignored",
			"component", c.id,
			"path", path,
			"error", vberrors.New(vberrors.CodeWatchMultipleVars).WithDetail(path),
		)
		return c
	}
	e.builder.BuildExpModel(c, vars[0], &Watch{Func: fn})
	return c
}

// Builder registers dependency watches for displayed components.
type Builder interface {
	// Build watches every variable used by the expression nodes of c.
	Build(c *Component)

	// BuildExpModel attaches w, on behalf of c, to the change root of the
	// component that owns v.
	BuildExpModel(c *Component, v *expr.Var, w *Watch)
}

// dependencyBuilder re-renders a component when a variable its expression
// nodes depend on changes.
type dependencyBuilder struct {
	engine *Engine
}

// Build implements Builder.
func (b *dependencyBuilder) Build(c *Component) {
	for _, n := range c.expNodes {
		for _, k := range n.Keys {
			if ex := n.Exps[k]; ex != nil {
				b.buildExpression(c, ex)
			}
		}
	}
}

func (b *dependencyBuilder) buildExpression(c *Component, ex *expr.Expression) {
	for _, v := range ex.VarTree {
		b.buildVar(c, v)
	}
	for _, call := range ex.Filters {
		for _, a := range call.Args {
			if a.Exp != nil {
				b.buildExpression(c, a.Exp)
			}
		}
	}
}

func (b *dependencyBuilder) buildVar(c *Component, v *expr.Var) {
	b.BuildExpModel(c, v, &Watch{render: true})
	for _, sub := range v.SubVars {
		b.buildVar(c, sub)
	}
}

// BuildExpModel implements Builder.
func (b *dependencyBuilder) BuildExpModel(c *Component, v *expr.Var, w *Watch) {
	owner := c
	if bd, err := b.engine.bind(c, v); err == nil {
		owner = bd.owner
	}
	segs := v.Segments()
	if v.IsThis() && len(segs) > 0 {
		segs = segs[1:]
	}
	w.Segments = segs
	w.comp = c
	w.gen = c.gen
	owner.props.add(w)
}

// notify delivers a change made on owner to its watches and re-renders the
// components whose expressions depend on path. Descendant watches are
// skipped when path is isolated on owner.
func (e *Engine) notify(owner *Component, path expr.Path, kind ChangeKind, newV, oldV any) {
	ch := Change{Kind: kind, Path: path.String(), New: newV, Old: oldV}
	isolated := owner.isIsolated(path)

	root := owner.props
	watches := root.watches[:0]
	var dirty []*Component
	seen := map[*Component]bool{}
	var calls []*Watch
	for _, w := range root.watches {
		if !w.live() {
			if w.render {
				delete(root.keys, w.key())
			}
			continue
		}
		watches = append(watches, w)
		if !overlaps(w.Segments, path) {
			continue
		}
		if isolated && w.comp != owner {
			continue
		}
		if w.render {
			if !seen[w.comp] {
				seen[w.comp] = true
				dirty = append(dirty, w.comp)
			}
			continue
		}
		calls = append(calls, w)
	}
	root.watches = watches

	for _, w := range calls {
		e.callWatch(owner, w.Func, ch)
	}
	if owner.watcher != nil {
		e.callWatch(owner, owner.watcher, ch)
	}

	if owner.state == StateDisplayed && !seen[owner] {
		dirty = append([]*Component{owner}, dirty...)
	}
	for _, c := range dirty {
		if c.state == StateDisplayed {
			e.renderOwn(c)
		}
	}
}

func (e *Engine) callWatch(owner *Component, fn WatchFunc, ch Change) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("watcher panicked", "component", owner.id, "path", ch.Path, "panic", fmt.Sprint(r))
		}
	}()
	fn(ch)
}

// isIsolated reports whether path lies under one of the isolated paths of
// c.
func (c *Component) isIsolated(path expr.Path) bool {
	for _, iso := range c.isolate {
		segs := strings.Split(iso, ".")
		if len(segs) > len(path) {
			continue
		}
		match := true
		for i, s := range segs {
			if expr.KeyString(path[i]) != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// overlaps reports whether a change at path affects a watch on segs: one
// must be a prefix of the other.
func overlaps(segs []string, path expr.Path) bool {
	n := len(segs)
	if len(path) < n {
		n = len(path)
	}
	for i := 0; i < n; i++ {
		if segs[i] != expr.KeyString(path[i]) {
			return false
		}
	}
	return true
}
