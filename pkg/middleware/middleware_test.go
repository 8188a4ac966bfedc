package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRouter(mw func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/events/{type}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return r
}

func serve(h http.Handler, target string) {
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total uint64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
	}
	return total
}

func TestPrometheusRecordsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(WithRegistry(reg)))

	serve(r, "/events/inc")
	serve(r, "/events/dec")
	serve(r, "/ok")
	serve(r, "/boom")

	counter := func(route, status string) float64 {
		mfs, err := reg.Gather()
		if err != nil {
			t.Fatal(err)
		}
		for _, mf := range mfs {
			if mf.GetName() != "vbind_http_requests_total" {
				continue
			}
			for _, m := range mf.GetMetric() {
				if label(m, "route") == route && label(m, "status") == status {
					return m.GetCounter().GetValue()
				}
			}
		}
		return 0
	}

	tests := []struct {
		route  string
		status string
		want   float64
	}{
		{"/events/{type}", "202", 2},
		{"/ok", "200", 1},
		{"/boom", "500", 1},
	}
	for _, tt := range tests {
		if got := counter(tt.route, tt.status); got != tt.want {
			t.Errorf("requests{route=%q,status=%q} = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
	if got := histogramCount(t, reg, "vbind_http_request_duration_seconds"); got != 4 {
		t.Errorf("duration samples = %d, want 4", got)
	}
	if n, err := testutil.GatherAndCount(reg, "vbind_http_requests_total"); err != nil || n != 3 {
		t.Errorf("GatherAndCount() = %d, %v; want 3 series", n, err)
	}
}

func TestPrometheusOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(
		WithRegistry(reg),
		WithNamespace("preview"),
		WithSubsystem(""),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{0.1, 1}),
	))
	serve(r, "/ok")

	if n, err := testutil.GatherAndCount(reg, "preview_requests_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount(preview_requests_total) = %d, %v; want 1", n, err)
	}
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

type recordedSpan struct {
	trace.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) { s.name = name }

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	trace.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{
		Span:  noop.Span{},
		name:  name,
		attrs: map[attribute.Key]attribute.Value{},
	}
	s.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	trace.TracerProvider
	tracer *recordingTracer
	name   string
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.name = name
	return p.tracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{
		TracerProvider: noop.NewTracerProvider(),
		tracer:         &recordingTracer{Tracer: noop.Tracer{}},
	}
}

func TestOpenTelemetrySpans(t *testing.T) {
	tp := newRecordingProvider()
	r := newRouter(OpenTelemetry(WithTracerProvider(tp), WithTracerName("preview")))

	serve(r, "/events/inc")
	serve(r, "/boom")

	if tp.name != "preview" {
		t.Errorf("tracer name = %q, want preview", tp.name)
	}
	spans := tp.tracer.spans
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}

	ev := spans[0]
	if ev.name != "HTTP GET /events/{type}" {
		t.Errorf("span name = %q", ev.name)
	}
	if got := ev.attrs["http.target"].AsString(); got != "/events/inc" {
		t.Errorf("http.target = %q", got)
	}
	if got := ev.attrs["http.status_code"].AsInt64(); got != http.StatusAccepted {
		t.Errorf("http.status_code = %d", got)
	}
	if ev.status == codes.Error || !ev.ended {
		t.Errorf("span status = %v, ended = %v", ev.status, ev.ended)
	}
	if spans[1].status != codes.Error {
		t.Errorf("5xx span status = %v, want error", spans[1].status)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	tp := newRecordingProvider()
	r := newRouter(OpenTelemetry(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/ok" }),
	))

	serve(r, "/ok")
	serve(r, "/boom")

	if len(tp.tracer.spans) != 1 {
		t.Errorf("spans = %d, want 1", len(tp.tracer.spans))
	}
}
