package scope

import (
	"reflect"
	"testing"
)

func newChain(e *Engine, n int) []*Component {
	chain := make([]*Component, n)
	for i := range chain {
		chain[i] = e.NewInstance("", nil)
		if i > 0 {
			chain[i-1].Add(chain[i])
		}
	}
	return chain
}

func TestEmitStartsAtParentAndHalts(t *testing.T) {
	e := newTestEngine()
	chain := newChain(e, 4)
	root, grand, parent, leaf := chain[0], chain[1], chain[2], chain[3]

	var got []string
	record := func(name string, ret bool) Handler {
		return func(src *Component, args ...any) bool {
			if src != leaf {
				t.Errorf("%s: src = %v, want leaf", name, src.ID())
			}
			got = append(got, name)
			return ret
		}
	}
	leaf.On("ping", record("leaf", true))
	parent.On("ping", record("parent", true))
	grand.On("ping", record("grand-1", false))
	grand.On("ping", record("grand-2", true))
	root.On("ping", record("root", true))

	leaf.Emit("ping", 1)
	if len(got) != 0 {
		t.Fatalf("Emit delivered synchronously: %v", got)
	}
	e.Drain()

	want := []string{"parent", "grand-1", "grand-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("handlers = %v, want %v", got, want)
	}
}

func TestEmitPassesArguments(t *testing.T) {
	e := newTestEngine()
	chain := newChain(e, 2)
	var args []any
	chain[0].On("save", func(src *Component, a ...any) bool {
		args = a
		return true
	})
	chain[1].Emit("save", "doc", 3)
	e.Drain()
	if !reflect.DeepEqual(args, []any{"doc", 3}) {
		t.Errorf("args = %v", args)
	}
}

func TestBroadcastStopsInHandledBranches(t *testing.T) {
	e := newTestEngine()
	root := e.NewInstance("", nil)
	a := e.NewInstance("", nil)
	a1 := e.NewInstance("", nil)
	b := e.NewInstance("", nil)
	b1 := e.NewInstance("", nil)
	b1x := e.NewInstance("", nil)
	root.Add(a).Add(b)
	a.Add(a1)
	b.Add(b1)
	b1.Add(b1x)

	var got []string
	on := func(c *Component, name string) {
		c.On("refresh", func(src *Component, args ...any) bool {
			if src != root {
				t.Errorf("%s: src = %s, want root", name, src.ID())
			}
			got = append(got, name)
			return true
		})
	}
	on(a, "a")
	on(a1, "a1")
	on(b1, "b1")
	on(b1x, "b1x")

	root.Broadcast("refresh")
	e.Drain()

	want := []string{"a", "b1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("handlers = %v, want %v", got, want)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	e := newTestEngine()
	chain := newChain(e, 3)
	var got []string
	chain[1].On("x", func(*Component, ...any) bool { panic("boom") })
	chain[1].On("x", func(*Component, ...any) bool { got = append(got, "sibling"); return true })
	chain[0].On("x", func(*Component, ...any) bool { got = append(got, "root"); return true })

	chain[2].Emit("x")
	e.Drain()

	if !reflect.DeepEqual(got, []string{"sibling", "root"}) {
		t.Errorf("handlers = %v", got)
	}
}

func TestOffAndDestroyedTargets(t *testing.T) {
	e := newTestEngine(WithCache(false))
	chain := newChain(e, 3)
	calls := 0
	chain[0].On("x", func(*Component, ...any) bool { calls++; return true })
	chain[1].On("x", func(*Component, ...any) bool { calls++; return true })
	chain[1].Off("x")

	chain[2].Emit("x")
	e.Drain()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	chain[2].Emit("x")
	chain[2].Destroy()
	e.Drain()
	if calls != 2 {
		t.Errorf("calls after emit then destroy = %d, want 2", calls)
	}
}

func TestEmitUsesParentAtCallTime(t *testing.T) {
	e := newTestEngine(WithCache(false))
	a := e.NewInstance("", nil)
	b := e.NewInstance("", nil)
	child := e.NewInstance("", nil)
	a.Add(child)

	var got []string
	a.On("closed", func(*Component, ...any) bool { got = append(got, "a"); return true })
	b.On("closed", func(*Component, ...any) bool { got = append(got, "b"); return true })

	child.Emit("closed")
	b.Add(child)
	e.Drain()
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("moved emitter delivered to %v, want [a]", got)
	}

	got = nil
	child.Emit("closed")
	child.Destroy()
	e.Drain()
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("destroyed emitter delivered to %v, want [b]", got)
	}
}

func TestEmitSkipsDestroyedAncestor(t *testing.T) {
	e := newTestEngine(WithCache(false))
	chain := newChain(e, 3)
	calls := 0
	chain[0].On("x", func(*Component, ...any) bool { calls++; return true })
	chain[1].On("x", func(*Component, ...any) bool { calls++; return true })

	chain[2].Emit("x")
	chain[1].Destroy()
	e.Drain()
	if calls != 0 {
		t.Errorf("calls = %d, want 0 once the parent is destroyed", calls)
	}
}

func TestBroadcastFromDestroyedSource(t *testing.T) {
	e := newTestEngine(WithCache(false))
	chain := newChain(e, 2)
	calls := 0
	chain[1].On("x", func(*Component, ...any) bool { calls++; return true })

	chain[0].Broadcast("x")
	chain[0].Destroy()
	e.Drain()
	if calls != 0 {
		t.Errorf("calls = %d, want 0 for a destroyed subtree", calls)
	}
}

func TestSchedulerDefersNestedTasks(t *testing.T) {
	q := NewQueue()
	var got []int
	q.Schedule(func() {
		got = append(got, 1)
		q.Schedule(func() { got = append(got, 3) })
	})
	q.Schedule(func() { got = append(got, 2) })

	if n := q.Tick(); n != 2 {
		t.Errorf("Tick() = %d, want 2", n)
	}
	if q.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", q.Pending())
	}
	q.Drain()
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("order = %v", got)
	}
}
