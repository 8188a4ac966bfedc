package vdom

import "strings"

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindElement  NodeKind = iota // <div>, <input>, custom tags
	KindText                     // Plain text node
	KindComment                  // <!-- placeholder -->
	KindFragment                 // Grouping without wrapper
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value string
}

// Node is a mutable document node.
type Node struct {
	Kind     NodeKind
	Tag      string         // Lowercase tag name for elements
	Attrs    []Attr         // Ordered attributes
	Props    map[string]any // Live element properties
	Text     string         // For KindText and KindComment
	Parent   *Node
	Children []*Node
}

// Element creates an element node and adopts the given children.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	n := &Node{Kind: KindElement, Tag: strings.ToLower(tag), Attrs: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Comment creates a comment node, used for view placeholders.
func Comment(content string) *Node {
	return &Node{Kind: KindComment, Text: content}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*Node) *Node {
	n := &Node{Kind: KindFragment}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// HasAttrs reports whether the node has an attribute surface.
// Only elements do; text writes go to the node value instead.
func (n *Node) HasAttrs() bool {
	return n != nil && n.Kind == KindElement
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its original position if present.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: name, Value: value})
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Prop returns a live property.
func (n *Node) Prop(name string) (any, bool) {
	v, ok := n.Props[name]
	return v, ok
}

// SetProp sets a live property.
func (n *Node) SetProp(name string, v any) {
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[name] = v
}

// SetText sets the value of a text or comment node.
func (n *Node) SetText(s string) {
	n.Text = s
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	// Snapshot so fn may restructure the subtree it just visited.
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		c.Walk(fn)
	}
}

// Find returns the first descendant (or n itself) matching fn.
func (n *Node) Find(fn func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if fn(x) {
			found = x
			return false
		}
		return true
	})
	return found
}

// FindTag returns the first element with the given tag.
func (n *Node) FindTag(tag string) *Node {
	return n.Find(func(x *Node) bool {
		return x.Kind == KindElement && x.Tag == tag
	})
}
