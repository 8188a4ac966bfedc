package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/vbind/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used for inspection as it changes text content.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// OmitComments drops comment nodes, including view placeholders.
	OmitComments bool
}

// Renderer serializes vdom trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a node tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.Node) error {
	return r.renderNode(w, node, 0)
}

// String renders node with the default configuration, returning "" on a
// write error. Useful in tests and logs.
func String(node *vdom.Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderToString(node)
	return s
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *vdom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		return r.renderText(w, node)
	case vdom.KindComment:
		if r.config.OmitComments {
			return nil
		}
		_, err := fmt.Fprintf(w, "<!--%s-->", node.Text)
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *vdom.Node, depth int) error {
	tag := node.Tag

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if r.config.Pretty {
			w.Write([]byte{'\n'})
		}
		return nil
	}

	// A textarea's live value wins over its markup content.
	if tag == "textarea" {
		if v, ok := node.Prop("value"); ok {
			if _, err := io.WriteString(w, EscapeHTML(fmt.Sprint(v))); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "</%s>", tag)
			return err
		}
	}

	if rawTextElements[tag] {
		for _, child := range node.Children {
			if _, err := io.WriteString(w, child.TextContent()); err != nil {
				return err
			}
		}
	} else {
		hasChildren := len(node.Children) > 0
		if r.config.Pretty && hasChildren {
			w.Write([]byte{'\n'})
		}
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth+1); err != nil {
				return err
			}
		}
		if r.config.Pretty && hasChildren {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}
	return nil
}

// renderText renders a text node with HTML escaping.
func (r *Renderer) renderText(w io.Writer, node *vdom.Node) error {
	text := node.Text
	if r.config.Pretty {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
	}
	_, err := io.WriteString(w, EscapeHTML(text))
	return err
}

// renderAttributes renders attributes in document order.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.Node) error {
	for _, a := range node.Attrs {
		if isBooleanAttr(a.Key) && (a.Value == "" || a.Value == a.Key) {
			if _, err := fmt.Fprintf(w, " %s", a.Key); err != nil {
				return err
			}
			continue
		}
		if isBooleanAttr(a.Key) && a.Value == "false" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Key, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	return nil
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
