package snapshot

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vbind/pkg/render"
	"github.com/vango-dev/vbind/pkg/scope"
	"github.com/vango-dev/vbind/pkg/vdom"
)

type counter struct {
	Count int    `msgpack:"count"`
	Label string `msgpack:"label"`
}

func newEngine() *scope.Engine {
	e := scope.New(scope.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.Define("board", scope.Definition{
		Template: `<div><h1>{{title}}</h1><tally></tally></div>`,
		Model: func() any {
			return map[string]any{"title": "draft", "$secret": "x"}
		},
	})
	e.Define("tally", scope.Definition{
		Template: `<span>{{label}}={{count}}</span>`,
		Model:    func() any { return &counter{Label: "n"} },
	})
	return e
}

func mount(t *testing.T, e *scope.Engine) (*scope.Component, *vdom.Node) {
	t.Helper()
	doc, host := scope.NewDocument()
	root, err := e.Mount("board", host)
	if err != nil {
		t.Fatal(err)
	}
	return root, doc
}

func TestSnapshotRestore(t *testing.T) {
	root, _ := mount(t, newEngine())
	if err := root.SetData("title", "final"); err != nil {
		t.Fatal(err)
	}
	tally := root.Children()[0]
	if err := tally.SetData("count", 7); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	fresh, doc := mount(t, newEngine())
	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(s.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(s.Entries))
	}
	res, err := Restore(fresh, s)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if res.Restored != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}

	want := `<div><h1>final</h1><span>n=7</span></div>`
	if got := render.String(doc); got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if got := fresh.Model().(map[string]any)["$secret"]; got != "x" {
		t.Errorf("internal key = %v, want the fresh model value", got)
	}
}

func TestSnapshotSkipsInternalKeys(t *testing.T) {
	root, _ := mount(t, newEngine())
	root.Model().(map[string]any)["$secret"] = "changed"

	s, err := Take(root)
	if err != nil {
		t.Fatal(err)
	}
	fresh, _ := mount(t, newEngine())
	if _, err := Restore(fresh, s); err != nil {
		t.Fatal(err)
	}
	if got := fresh.Model().(map[string]any)["$secret"]; got != "x" {
		t.Errorf("internal key restored as %v", got)
	}
}

func TestRestoreSkipsMismatchedTree(t *testing.T) {
	root, _ := mount(t, newEngine())
	s, err := Take(root)
	if err != nil {
		t.Fatal(err)
	}
	s.Entries[1].Name = "other"
	s.Entries = append(s.Entries, Entry{Path: []int{5}, Name: "tally"})

	fresh, _ := mount(t, newEngine())
	res, err := Restore(fresh, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Restored != 1 || res.Skipped != 2 {
		t.Errorf("result = %+v, want 1 restored and 2 skipped", res)
	}
}

func TestDecodeRejectsOtherVersions(t *testing.T) {
	data, err := (&Snapshot{Version: 99}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data); err == nil {
		t.Error("Decode() accepted an unknown version")
	}
	if _, err := Decode([]byte("not msgpack")); err == nil {
		t.Error("Decode() accepted garbage")
	}
}

func TestTakeRejectsCyclicModel(t *testing.T) {
	root, _ := mount(t, newEngine())
	loop := map[string]any{}
	loop["self"] = loop
	root.Model().(map[string]any)["loop"] = loop

	if _, err := Take(root); err == nil {
		t.Error("Take() accepted a cyclic model")
	}
}
