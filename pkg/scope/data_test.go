package scope

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/vbind/pkg/expr"
)

func TestFind(t *testing.T) {
	e := newTestEngine()
	e.Define("item", Definition{})
	e.Define("group", Definition{})

	parent := e.NewInstance("", nil)
	add := func(to *Component, kind, name string) *Component {
		c, err := to.CreateSubComponentOf(kind, nil)
		if err != nil {
			t.Fatal(err)
		}
		c.Model().(map[string]any)["name"] = name
		return c
	}
	x1 := add(parent, "item", "x")
	add(parent, "item", "y")
	g := add(parent, "group", "x")
	x3 := add(g, "item", "x")

	tests := []struct {
		name      string
		kind      string
		conds     map[string]any
		recursive bool
		want      []*Component
	}{
		{"any named x", "*", map[string]any{"name": "x"}, false, []*Component{g, x1}},
		{"items named x", "item", map[string]any{"name": "x"}, false, []*Component{x1}},
		{"recursive", "*", map[string]any{"name": "x"}, true, []*Component{g, x3, x1}},
		{"case-insensitive name", "ITEM", map[string]any{"name": "x"}, true, []*Component{x3, x1}},
		{"no match", "*", map[string]any{"name": "z"}, true, nil},
		{"missing field", "*", map[string]any{"size": 1}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parent.Find(tt.kind, tt.conds, tt.recursive)
			if len(got) != len(tt.want) {
				t.Fatalf("Find() returned %d components, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Find()[%d] = %s, want %s", i, got[i].ID(), tt.want[i].ID())
				}
			}
		})
	}
}

func TestPoolReuse(t *testing.T) {
	e := newTestEngine()
	created := 0
	e.Define("row", Definition{
		Template: `<li>{{n}}</li>`,
		Model:    mapModel("n", 1),
		Hooks:    Hooks{OnCreate: func(*Component) { created++ }},
	})

	list := e.NewInstance("", nil)
	first, err := list.CreateSubComponentOf("row", nil)
	if err != nil {
		t.Fatal(err)
	}
	first.Model().(map[string]any)["n"] = 99
	first.On("x", func(*Component, ...any) bool { return true })
	first.Destroy()

	if e.Pool().Len("row") != 1 {
		t.Fatalf("pool len = %d, want 1", e.Pool().Len("row"))
	}
	if len(list.Children()) != 0 {
		t.Error("pooled component still attached")
	}

	second, err := e.NewInstanceOf("row", nil)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatal("NewInstanceOf allocated instead of reusing the pooled instance")
	}
	if second.State() != StateCreated {
		t.Errorf("state = %s, want created", second.State())
	}
	if len(second.Children()) != 0 || len(second.ExpNodes()) != 0 {
		t.Error("reused component kept children or expression nodes")
	}
	if got := second.Data("n"); got != 1 {
		t.Errorf("Data(n) = %v, want a fresh model", got)
	}
	if len(second.events) != 0 {
		t.Error("reused component kept event handlers")
	}
	if created != 2 {
		t.Errorf("OnCreate calls = %d, want 2", created)
	}
}

func TestPoolCap(t *testing.T) {
	e := newTestEngine(WithPoolCap(1))
	e.Define("row", Definition{})
	a, _ := e.NewInstanceOf("row", nil)
	b, _ := e.NewInstanceOf("row", nil)
	a.Destroy()
	b.Destroy()

	if e.Pool().Len("row") != 1 {
		t.Errorf("pool len = %d, want 1", e.Pool().Len("row"))
	}
	if b.State() != StateDestroyed {
		t.Errorf("overflow instance state = %s, want destroyed", b.State())
	}
}

func TestWatch(t *testing.T) {
	e := newTestEngine()
	c, _, err := e.MountTemplate(`<p>{{count}}</p>`, map[string]any{"count": 1, "user": map[string]any{"name": "a"}})
	if err != nil {
		t.Fatal(err)
	}

	var changes []Change
	c.Watch("count", func(ch Change) { changes = append(changes, ch) })
	var all []Change
	c.Watch("*", func(ch Change) { all = append(all, ch) })
	var userChanges int
	c.Watch("user", func(Change) { userChanges++ })

	if err := c.SetData("count", 2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetData("user.name", "b"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetData("extra", true); err != nil {
		t.Fatal(err)
	}

	if len(changes) != 1 {
		t.Fatalf("count changes = %d, want 1", len(changes))
	}
	want := Change{Kind: ChangeUpdate, Path: "count", New: 2, Old: 1}
	if changes[0] != want {
		t.Errorf("change = %+v, want %+v", changes[0], want)
	}
	if userChanges != 1 {
		t.Errorf("user watcher calls = %d, want 1", userChanges)
	}
	if len(all) != 3 {
		t.Fatalf("'*' changes = %d, want 3", len(all))
	}
	if all[2].Kind != ChangeAdd || all[2].Path != "extra" {
		t.Errorf("last change = %+v, want add of extra", all[2])
	}
}

func TestWatchMultipleVariablesIsIgnored(t *testing.T) {
	two := &expr.Expression{
		Source: "a b",
		Words:  []expr.Word{{Text: "a", Var: "a"}, {Text: "b", Var: "b"}},
		VarTree: map[string]*expr.Var{
			"a": {Name: "a", Steps: []expr.Step{{Kind: expr.StepField, Key: "a"}}, WatchDepth: 1},
			"b": {Name: "b", Steps: []expr.Step{{Kind: expr.StepField, Key: "b"}}, WatchDepth: 1},
		},
	}
	parser := expr.ParserFunc(func(src string) (*expr.Expression, error) {
		if src == "a b" {
			return two, nil
		}
		return expr.Parse(src)
	})
	e := newTestEngine(WithParser(parser))
	c, _, err := e.MountTemplate(`<p></p>`, map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}

	before := c.Watchers()
	called := false
	c.Watch("a b", func(Change) { called = true })
	if c.Watchers() != before {
		t.Error("watch with two variables was registered")
	}
	if err := c.SetData("a", 3); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("ignored watcher was called")
	}
}

func TestIsolatedPathsDoNotPropagate(t *testing.T) {
	e := newTestEngine()
	e.Define("shell", Definition{
		Template: `<div><p>{{a}}</p><leaf></leaf></div>`,
		Isolate:  []string{"a"},
		Model:    mapModel("a", "1", "b", "1"),
	})
	e.Define("leaf", Definition{Template: `<span>{{a}}{{b}}</span>`})

	root, doc := mount(t, e, "shell")
	if got := html(doc); got != "<div><p>1</p><span>11</span></div>" {
		t.Fatalf("html = %q", got)
	}

	if err := root.SetData("a", "2"); err != nil {
		t.Fatal(err)
	}
	if got := html(doc); got != "<div><p>2</p><span>11</span></div>" {
		t.Errorf("html after isolated change = %q", got)
	}

	if err := root.SetData("b", "2"); err != nil {
		t.Fatal(err)
	}
	if got := html(doc); got != "<div><p>2</p><span>22</span></div>" {
		t.Errorf("html after propagated change = %q", got)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestEngine(WithMetrics(reg))
	e.Define("row", Definition{Template: `<li>{{n | nosuch}}</li>`, Model: mapModel("n", 1)})

	_, host := NewDocument()
	c, err := e.Mount("row", host)
	if err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(e.metrics.renderPasses); got != 1 {
		t.Errorf("render passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(e.metrics.componentsLive); got != 1 {
		t.Errorf("live components = %v, want 1", got)
	}
	if got := testutil.ToFloat64(e.metrics.exprErrors.WithLabelValues("unknown_filter")); got != 1 {
		t.Errorf("unknown filter errors = %v, want 1", got)
	}

	c.Destroy()
	if _, err := e.NewInstanceOf("row", nil); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(e.metrics.poolHits); got != 1 {
		t.Errorf("pool hits = %v, want 1", got)
	}

	if n, err := testutil.GatherAndCount(reg, "vbind_render_passes_total"); err != nil || n != 1 {
		t.Errorf("gathered render pass series = %d (%v), want 1", n, err)
	}
}
