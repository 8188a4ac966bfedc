package scope

import (
	"regexp"
	"strings"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/filter"
)

// placeholder matches {{exp}} inside an origin string.
var placeholder = regexp.MustCompile(`(?s)\{\{(.+?)\}\}`)

// Eval evaluates src against the scope chain of c, filters included.
func (c *Component) Eval(src string) (any, error) {
	ex, err := c.engine.parse(src)
	if err != nil {
		return nil, err
	}
	return c.engine.evaluate(c, ex)
}

// evaluate computes the value of ex including its filter pipeline.
func (e *Engine) evaluate(c *Component, ex *expr.Expression) (any, error) {
	v, err := e.value(c, ex)
	if err != nil {
		return nil, err
	}
	if len(ex.Filters) == 0 {
		return v, nil
	}
	if expr.IsComposite(v) {
		v = expr.Clone(v)
	}
	for _, call := range ex.Filters {
		f, ok := e.filters.Lookup(call.Name)
		if !ok {
			return nil, vberrors.New(vberrors.CodeUnknownFilter).WithDetail(call.Name)
		}
		args := make([]any, len(call.Args))
		for i, a := range call.Args {
			if a.Exp == nil {
				args[i] = a.Literal
				continue
			}
			av, err := e.evaluate(c, a.Exp)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}
		out, err := f.To(v, args...)
		if err != nil {
			return nil, vberrors.New(vberrors.CodeFilterFailed).WithDetail(call.Name).Wrap(err)
		}
		v = out
	}
	return v, nil
}

// value computes the raw value of the words of ex. A single word yields its
// value unchanged; several words are joined as text.
func (e *Engine) value(c *Component, ex *expr.Expression) (any, error) {
	switch len(ex.Words) {
	case 0:
		return nil, nil
	case 1:
		return e.word(c, ex, ex.Words[0])
	}
	var b strings.Builder
	for _, w := range ex.Words {
		v, err := e.word(c, ex, w)
		if err != nil {
			return nil, err
		}
		b.WriteString(filter.String(v))
	}
	return b.String(), nil
}

func (e *Engine) word(c *Component, ex *expr.Expression, w expr.Word) (any, error) {
	if !w.IsVar() {
		return w.Value, nil
	}
	v, ok := ex.VarTree[w.Var]
	if !ok {
		return nil, vberrors.New(vberrors.CodeParse).WithDetail(w.Var)
	}
	b, err := e.bind(c, v)
	if err != nil {
		return nil, err
	}
	return expr.Get(b.owner.model, b.path)
}

// compute renders the origin of n with every placeholder substituted.
// Failed expressions substitute as empty text and are counted on pass.
func (e *Engine) compute(c *Component, n *ExpNode, pass *renderPass) string {
	values := make(map[string]string, len(n.Keys))
	for _, k := range n.Keys {
		ex, ok := n.Exps[k]
		if !ok {
			continue
		}
		v, err := e.evaluate(c, ex)
		if pass != nil {
			pass.evaluated++
		}
		if err != nil {
			e.logger.Debug("expression failed", "component", c.id, "expression", k, "error", err)
			e.metrics.exprError(err)
			if pass != nil {
				pass.failures++
			}
			v = nil
		}
		values[k] = filter.String(v)
	}
	return substitute(n.Origin, values)
}

// substitute replaces every {{k}} in origin whose key is in values.
func substitute(origin string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(origin, func(m string) string {
		k := m[2 : len(m)-2]
		if v, ok := values[k]; ok {
			return v
		}
		return m
	})
}
