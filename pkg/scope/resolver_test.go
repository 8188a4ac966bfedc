package scope

import (
	"testing"

	vberrors "github.com/vango-dev/vbind/internal/errors"
)

func newShadowEngine() *Engine {
	e := newTestEngine()
	e.Define("outer", Definition{
		Template: `<div class="outer"><inner></inner></div>`,
		Model: mapModel(
			"a", map[string]any{"b": map[string]any{"c": "outer-c"}},
			"x", "outer-x",
		),
	})
	e.Define("inner", Definition{
		Template: `<p>{{a.b.c}}</p><span>{{x}}</span>`,
		Model:    mapModel("x", "inner-x"),
	})
	return e
}

func TestNearestScopeWins(t *testing.T) {
	e := newShadowEngine()
	root, doc := mount(t, e, "outer")

	want := `<div class="outer"><p>outer-c</p><span>inner-x</span></div>`
	if got := html(doc); got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	inner := root.Children()[0]
	if got := inner.Closest("a.b.c"); got != root {
		t.Errorf("Closest(a.b.c) = %v, want root", got)
	}
	if got := inner.Closest("x"); got != inner {
		t.Errorf("Closest(x) = %v, want inner", got)
	}
	if got := inner.Closest("missing"); got != nil {
		t.Errorf("Closest(missing) = %v, want nil", got)
	}
	if got := inner.Data("x"); got != "inner-x" {
		t.Errorf("Data(x) = %v, want inner-x", got)
	}
	if got := root.Data("x"); got != "outer-x" {
		t.Errorf("root Data(x) = %v, want outer-x", got)
	}
}

func TestThisBypassesSearch(t *testing.T) {
	e := newShadowEngine()
	root, _ := mount(t, e, "outer")
	inner := root.Children()[0]

	if got := inner.Data("this.a"); got != nil {
		t.Errorf("Data(this.a) = %v, want nil", got)
	}
	if got := inner.Data("this.x"); got != "inner-x" {
		t.Errorf("Data(this.x) = %v, want inner-x", got)
	}
}

func TestSubVariableKeys(t *testing.T) {
	e := newTestEngine()
	model := map[string]any{
		"items": []any{"zero", "one", "two"},
		"sel":   map[string]any{"index": 2},
		"names": map[string]any{"k": "value"},
		"key":   "k",
	}
	c, doc, err := e.MountTemplate(`<p>{{items[sel.index]}}/{{names[key]}}</p>`, model)
	if err != nil {
		t.Fatal(err)
	}
	if got := html(doc); got != "<p>two/value</p>" {
		t.Errorf("html = %q", got)
	}
	if got := c.Data("items.length"); got != 3 {
		t.Errorf("Data(items.length) = %v, want 3", got)
	}
}

func TestSetDataResolvesOwner(t *testing.T) {
	e := newShadowEngine()
	root, doc := mount(t, e, "outer")
	inner := root.Children()[0]

	if err := inner.SetData("a.b.c", "changed"); err != nil {
		t.Fatalf("SetData(a.b.c) error = %v", err)
	}
	if got := root.Data("a.b.c"); got != "changed" {
		t.Errorf("root Data(a.b.c) = %v, want changed", got)
	}
	if _, ok := inner.Model().(map[string]any)["a"]; ok {
		t.Error("SetData created a on the inner component")
	}
	want := `<div class="outer"><p>changed</p><span>inner-x</span></div>`
	if got := html(doc); got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestSetDataUndefined(t *testing.T) {
	e := newShadowEngine()
	root, _ := mount(t, e, "outer")
	inner := root.Children()[0]

	if err := inner.SetData("fresh", 1); err != nil {
		t.Fatalf("SetData(fresh) error = %v", err)
	}
	if got := inner.Data("fresh"); got != 1 {
		t.Errorf("inner Data(fresh) = %v, want 1", got)
	}
	if got := root.Data("fresh"); got != nil {
		t.Errorf("root Data(fresh) = %v, want nil", got)
	}

	err := inner.SetData("no.such.path", 1)
	if !vberrors.HasCode(err, vberrors.CodePathNotFound) {
		t.Errorf("SetData(no.such.path) error = %v, want %s", err, vberrors.CodePathNotFound)
	}
	if got := inner.Data("no.such.path"); got != nil {
		t.Errorf("Data(no.such.path) = %v, want nil", got)
	}
}

func TestSetDataNotAssignable(t *testing.T) {
	e := newTestEngine()
	c, _, err := e.MountTemplate(`<p></p>`, map[string]any{"a": "x"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		code string
	}{
		{"a | upper", vberrors.CodeNotAssignable},
		{"'lit'", vberrors.CodeNotAssignable},
		{"a..b", vberrors.CodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if err := c.SetData(tt.path, 1); !vberrors.HasCode(err, tt.code) {
				t.Errorf("SetData(%q) error = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestStructModel(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Admin bool
	}
	e := newTestEngine()
	e.Define("profile", Definition{
		Template: `<p>{{user.name}} {{user.admin}}</p>`,
		Model:    func() any { return &struct{ User *user }{User: &user{Name: "ada"}} },
	})
	c, doc := mount(t, e, "profile")
	if got := html(doc); got != "<p>ada false</p>" {
		t.Errorf("html = %q", got)
	}
	if err := c.SetData("user.name", "grace"); err != nil {
		t.Fatal(err)
	}
	if got := html(doc); got != "<p>grace false</p>" {
		t.Errorf("html after SetData = %q", got)
	}
}
