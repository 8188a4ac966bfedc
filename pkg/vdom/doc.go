// Package vdom provides the mutable document tree that vbind views render
// into.
//
// A Node is an element, a text node, a comment or a fragment. Unlike an
// immutable virtual DOM, nodes keep a Parent pointer and are edited in place:
// the engine writes attribute and text values directly, inserts placeholder
// comments next to views, and splices component templates into their host
// position.
//
// # Core Types
//
// Node is the building block. Attr is one ordered attribute. Elements also
// carry live properties (Props) for values that differ from their markup
// attribute, such as the current value of an input.
//
// # Parsing
//
// Parse turns an HTML template string into a fragment whose children are the
// top-level template nodes:
//
//	frag, err := vdom.Parse(`<p class="{{cls}}">Hello {{name}}</p>`)
//
// # Editing
//
//	vdom.InsertBefore(placeholder, node)
//	node.ReplaceWith(frag.Children...)
//	node.Remove()
package vdom
