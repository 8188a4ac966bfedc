package scope

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	vberrors "github.com/vango-dev/vbind/internal/errors"
)

const metricsNamespace = "vbind"

// metrics holds the Prometheus collectors of an engine. A nil *metrics
// records nothing.
type metrics struct {
	renderPasses   prometheus.Counter
	renderDuration prometheus.Histogram
	expressions    prometheus.Counter
	exprErrors     *prometheus.CounterVec
	componentsLive prometheus.Gauge
	poolHits       prometheus.Counter
	poolSize       *prometheus.GaugeVec
	events         *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		renderPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "render_passes_total",
			Help:      "Total number of render passes",
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Render pass duration in seconds",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),

		expressions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "expressions_evaluated_total",
			Help:      "Total number of expressions evaluated",
		}),

		exprErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "expression_errors_total",
			Help:      "Total expression evaluation failures by reason",
		}, []string{"reason"}),

		componentsLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "components_live",
			Help:      "Number of registered components",
		}),

		poolHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pool_hits_total",
			Help:      "Total number of components reused from the pool",
		}),

		poolSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pool_size",
			Help:      "Pooled components by name",
		}, []string{"name"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_dispatched_total",
			Help:      "Total handler invocations by propagation kind",
		}, []string{"kind"}),
	}
}

func (m *metrics) observeRender(d time.Duration, evaluated int) {
	if m == nil {
		return
	}
	m.renderPasses.Inc()
	m.renderDuration.Observe(d.Seconds())
	m.expressions.Add(float64(evaluated))
}

func (m *metrics) exprError(err error) {
	if m == nil {
		return
	}
	m.exprErrors.WithLabelValues(errorReason(err)).Inc()
}

func (m *metrics) componentAdded() {
	if m == nil {
		return
	}
	m.componentsLive.Inc()
}

func (m *metrics) componentRemoved() {
	if m == nil {
		return
	}
	m.componentsLive.Dec()
}

func (m *metrics) poolHit(name string, size int) {
	if m == nil {
		return
	}
	m.poolHits.Inc()
	m.poolSize.WithLabelValues(name).Set(float64(size))
}

func (m *metrics) pooled(name string, size int) {
	if m == nil {
		return
	}
	m.poolSize.WithLabelValues(name).Set(float64(size))
}

func (m *metrics) dispatched(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// errorReason maps an evaluation error to a low-cardinality label.
func errorReason(err error) string {
	var ve *vberrors.Error
	if !errors.As(err, &ve) {
		return "other"
	}
	switch ve.Code {
	case vberrors.CodePathNotFound:
		return "path_not_found"
	case vberrors.CodeTypeMismatch:
		return "type_mismatch"
	case vberrors.CodeParse:
		return "parse"
	case vberrors.CodeUnknownFilter:
		return "unknown_filter"
	case vberrors.CodeFilterFailed:
		return "filter_failed"
	default:
		return "other"
	}
}
