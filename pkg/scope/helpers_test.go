package scope

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vbind/pkg/filter"
	"github.com/vango-dev/vbind/pkg/render"
	"github.com/vango-dev/vbind/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func mapModel(kv ...any) func() any {
	return func() any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}
		return m
	}
}

func mount(t *testing.T, e *Engine, name string) (*Component, *vdom.Node) {
	t.Helper()
	doc, host := NewDocument()
	c, err := e.Mount(name, host)
	if err != nil {
		t.Fatalf("Mount(%q) error = %v", name, err)
	}
	return c, doc
}

func html(doc *vdom.Node) string {
	return render.String(doc)
}

func filterFunc(fn func(subject any) any) filter.Func {
	return func(subject any, _ ...any) (any, error) {
		return fn(subject), nil
	}
}
