package vdom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// bodyContext is the fragment parsing context for templates.
var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Parse parses an HTML template into a fragment. Custom element names are
// preserved lowercased; self-closing syntax is not honoured for non-void
// elements, as in browsers.
func Parse(src string) (*Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), bodyContext)
	if err != nil {
		return nil, err
	}
	frag := Fragment()
	for _, hn := range nodes {
		if n := convert(hn); n != nil {
			frag.AppendChild(n)
		}
	}
	return frag, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level templates.
func MustParse(src string) *Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return Text(hn.Data)
	case html.CommentNode:
		return Comment(hn.Data)
	case html.ElementNode:
		attrs := make([]Attr, 0, len(hn.Attr))
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Key: key, Value: a.Val})
		}
		n := Element(hn.Data, attrs)
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if cn := convert(c); cn != nil {
				n.AppendChild(cn)
			}
		}
		return n
	default:
		return nil
	}
}

// IsMarkup reports whether s is already well-formed markup: it must start
// with a tag, end with a tag, and contain at least one element.
func IsMarkup(s string) bool {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "<") || !strings.HasSuffix(t, ">") {
		return false
	}
	frag, err := Parse(t)
	if err != nil {
		return false
	}
	for _, c := range frag.Children {
		if c.Kind == KindElement {
			return true
		}
	}
	return false
}
