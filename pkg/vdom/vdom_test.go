package vdom

import "testing"

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindComment, "Comment"},
		{KindFragment, "Fragment"},
		{NodeKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("NodeKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	n := Element("INPUT", []Attr{{Key: "type", Value: "text"}})
	if n.Tag != "input" {
		t.Errorf("Tag = %q, want lowercase", n.Tag)
	}

	n.SetAttr("value", "a")
	n.SetAttr("type", "email")
	if len(n.Attrs) != 2 || n.Attrs[0].Key != "type" || n.Attrs[0].Value != "email" {
		t.Errorf("SetAttr should update in place, got %+v", n.Attrs)
	}
	if v, ok := n.Attr("value"); !ok || v != "a" {
		t.Errorf("Attr(value) = %q, %v", v, ok)
	}

	n.RemoveAttr("type")
	if _, ok := n.Attr("type"); ok {
		t.Error("type should be removed")
	}

	if Text("x").HasAttrs() {
		t.Error("text nodes have no attribute surface")
	}
	if !n.HasAttrs() {
		t.Error("elements have an attribute surface")
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	a, b := Text("a"), Text("b")
	p := Element("div", nil, a, b)

	ph := Comment("ph")
	if !InsertBefore(ph, b) {
		t.Fatal("InsertBefore failed")
	}
	if p.Children[1] != ph {
		t.Errorf("placeholder should be at index 1, got %d", ph.Index())
	}

	c := Text("c")
	if !InsertAfter(c, b) {
		t.Fatal("InsertAfter failed")
	}
	if got := p.TextContent(); got != "abc" {
		t.Errorf("TextContent() = %q, want %q", got, "abc")
	}

	if InsertBefore(Text("x"), Text("detached")) {
		t.Error("insert next to a detached node should fail")
	}
}

func TestRemoveAndReplace(t *testing.T) {
	host := Element("my-comp", nil)
	p := Element("div", nil, Text("<"), host, Text(">"))

	frag := Fragment(Element("span", nil, Text("x")), Text("y"))
	if !host.ReplaceWith(frag) {
		t.Fatal("ReplaceWith failed")
	}
	if host.Parent != nil {
		t.Error("replaced node should be detached")
	}
	if len(p.Children) != 4 || p.Children[1].Tag != "span" {
		t.Errorf("unexpected children after replace: %d", len(p.Children))
	}
	for _, c := range p.Children {
		if c.Parent != p {
			t.Error("every child should point to its parent")
		}
	}

	p.Children[1].Remove()
	if got := p.TextContent(); got != "<y>" {
		t.Errorf("TextContent() = %q", got)
	}

	// Removing twice is harmless.
	x := Text("x")
	x.Remove()
	x.Remove()
}

func TestAppendChildMovesNode(t *testing.T) {
	n := Text("n")
	a := Element("a", nil, n)
	b := Element("b", nil)

	b.AppendChild(n)
	if len(a.Children) != 0 || len(b.Children) != 1 || n.Parent != b {
		t.Error("AppendChild should detach from the previous parent")
	}
}

func TestParse(t *testing.T) {
	frag, err := Parse(`<div class="{{cls}}"><user-card name="x"></user-card>Hi {{name}}</div><!--c-->`)
	if err != nil {
		t.Fatal(err)
	}
	if frag.Kind != KindFragment || len(frag.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(frag.Children))
	}

	div := frag.Children[0]
	if v, _ := div.Attr("class"); v != "{{cls}}" {
		t.Errorf("class = %q", v)
	}
	if card := frag.FindTag("user-card"); card == nil || card.Parent != div {
		t.Error("custom element should be preserved under div")
	}
	if frag.Children[1].Kind != KindComment {
		t.Error("comment should be preserved")
	}
	if div.Children[1].Text != "Hi {{name}}" {
		t.Errorf("text = %q", div.Children[1].Text)
	}
}

func TestIsMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<b>bold</b>", true},
		{"  <p>x</p>\n", true},
		{"plain text", false},
		{"a < b > c", false},
		{"<>", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMarkup(tt.in); got != tt.want {
			t.Errorf("IsMarkup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
