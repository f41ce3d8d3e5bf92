package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	stages        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	states        *prometheus.HistogramVec
	warnings      prometheus.Counter
	cache         *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerset_stage_total",
				Help: "Pipeline stages run, by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "powerset_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"stage"},
		),
		states: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "powerset_automaton_states",
				Help:    "Number of states per automaton, by kind",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"kind"},
		),
		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "powerset_validation_warnings_total",
				Help: "Definition problems dropped during validation",
			},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerset_cache_total",
				Help: "Cache lookups and writes, by key type and result",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerset_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerset_http_requests_total",
				Help: "HTTP requests served, by route and status",
			},
			[]string{"method", "route", "status"},
		),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "powerset_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.stages, m.stageDuration, m.states, m.warnings,
		m.cache, m.cacheBytes, m.requests, m.reqDuration)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) complete(stage string, duration time.Duration, err error) {
	m.stages.WithLabelValues(stage, outcome(err)).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// OnValidate records the size of a validated definition.
func (m *Metrics) OnValidate(_ context.Context, states, warnings int, err error) {
	m.stages.WithLabelValues("validate", outcome(err)).Inc()
	if err == nil {
		m.states.WithLabelValues("nfa").Observe(float64(states))
	}
	m.warnings.Add(float64(warnings))
}

func (m *Metrics) OnConvertStart(context.Context, int) {}

// OnConvertComplete records a finished subset construction.
func (m *Metrics) OnConvertComplete(_ context.Context, dfaStates int, duration time.Duration, err error) {
	m.complete("convert", duration, err)
	if err == nil {
		m.states.WithLabelValues("dfa").Observe(float64(dfaStates))
	}
}

func (m *Metrics) OnMinimizeStart(context.Context, int) {}

// OnMinimizeComplete records a finished minimization.
func (m *Metrics) OnMinimizeComplete(_ context.Context, minStates int, duration time.Duration, err error) {
	m.complete("minimize", duration, err)
	if err == nil {
		m.states.WithLabelValues("minimal").Observe(float64(minStates))
	}
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

// OnRenderComplete records a finished render.
func (m *Metrics) OnRenderComplete(_ context.Context, format string, duration time.Duration, err error) {
	m.complete("render_"+format, duration, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cache.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

// OnResponse records a served request.
func (m *Metrics) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.reqDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
