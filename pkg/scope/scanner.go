package scope

import (
	"regexp"
	"strings"

	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// Scanner discovers the expression nodes and child components of a view.
// It runs once per component, during Init.
type Scanner interface {
	Scan(v View, c *Component) error
}

// rawPlaceholder matches {{{exp}}}.
var rawPlaceholder = regexp.MustCompile(`(?s)\{\{\{(.+?)\}\}\}`)

// DOMScanner scans NodeView views. Elements named after a defined
// component become child components and are left to their own scan.
type DOMScanner struct{}

// Scan implements Scanner.
func (DOMScanner) Scan(v View, c *Component) error {
	nv, ok := v.(NodeView)
	if !ok {
		return nil
	}
	s := &scan{comp: c}
	if hv, ok := v.(interface{ Host() *vdom.Node }); ok {
		s.host = hv.Host()
	}
	for _, n := range nv.Nodes() {
		s.node(n)
	}
	return nil
}

type scan struct {
	comp *Component
	host *vdom.Node
}

func (s *scan) node(n *vdom.Node) {
	switch n.Kind {
	case vdom.KindText:
		s.text(n)
		return
	case vdom.KindComment:
		return
	case vdom.KindElement:
		if n != s.host && s.comp.engine.IsDefined(n.Tag) {
			s.child(n)
			return
		}
		s.attrs(n)
	}
	for _, child := range append([]*vdom.Node(nil), n.Children...) {
		s.node(child)
	}
}

func (s *scan) child(n *vdom.Node) {
	c := s.comp
	child, err := c.CreateSubComponentOf(n.Tag, n)
	if err != nil {
		c.engine.logger.Warn("child component skipped", "component", c.id, "tag", n.Tag, "error", err)
		return
	}
	if err := child.Init(); err != nil {
		c.engine.logger.Debug("child component init failed", "component", child.id, "error", err)
	}
}

func (s *scan) attrs(n *vdom.Node) {
	for _, a := range n.Attrs {
		if !strings.Contains(a.Value, "{{") {
			continue
		}
		// Raw markup has no meaning in an attribute; {{{x}}} reads as {{x}}.
		src := rawPlaceholder.ReplaceAllString(a.Value, "{{$1}}")
		if en := s.expNode(src, n, a.Key, false); en != nil {
			s.comp.AddExpNode(en)
		}
	}
}

func (s *scan) text(n *vdom.Node) {
	if !strings.Contains(n.Text, "{{") {
		return
	}
	if !rawPlaceholder.MatchString(n.Text) {
		if en := s.expNode(n.Text, n, "", false); en != nil {
			s.comp.AddExpNode(en)
		}
		return
	}

	// Raw placeholders get a text node of their own.
	var parts []*vdom.Node
	var exps []*ExpNode
	src := n.Text
	last := 0
	for _, m := range rawPlaceholder.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > last {
			t := vdom.Text(src[last:m[0]])
			parts = append(parts, t)
			if en := s.expNode(t.Text, t, "", false); en != nil {
				exps = append(exps, en)
			}
		}
		origin := "{{" + src[m[2]:m[3]] + "}}"
		t := vdom.Text(origin)
		parts = append(parts, t)
		if en := s.expNode(origin, t, "", true); en != nil {
			exps = append(exps, en)
		}
		last = m[1]
	}
	if last < len(src) {
		t := vdom.Text(src[last:])
		parts = append(parts, t)
		if en := s.expNode(t.Text, t, "", false); en != nil {
			exps = append(exps, en)
		}
	}
	if !n.ReplaceWith(parts...) {
		return
	}
	for _, en := range exps {
		s.comp.AddExpNode(en)
	}
}

// expNode parses the placeholders of origin. Placeholders that fail to
// parse are logged and left as text.
func (s *scan) expNode(origin string, n *vdom.Node, attr string, toHTML bool) *ExpNode {
	e := s.comp.engine
	en := &ExpNode{
		Origin: origin,
		Exps:   make(map[string]*expr.Expression),
		Node:   n,
		Attr:   attr,
		ToHTML: toHTML,
	}
	for _, m := range placeholder.FindAllStringSubmatch(origin, -1) {
		k := m[1]
		if _, ok := en.Exps[k]; ok {
			continue
		}
		ex, err := e.parse(k)
		if err != nil {
			e.logger.Warn("invalid expression", "component", s.comp.id, "expression", k, "error", err)
			continue
		}
		en.Keys = append(en.Keys, k)
		en.Exps[k] = ex
	}
	if len(en.Keys) == 0 {
		return nil
	}
	return en
}
