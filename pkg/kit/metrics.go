package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService    = "service"
	labelMethod     = "method"
	labelPath       = "path"
	labelStatus     = "status"
	labelCollection = "collection"
	labelOp         = "op"

	defaultStatusCode = http.StatusOK
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	Mutations *prometheus.CounterVec
	Invoices  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelService, labelMethod, labelPath},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizrec_mutations_total",
				Help: "Persisted collection mutations",
			},
			[]string{labelCollection, labelOp},
		),
		Invoices: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bizrec_invoices_rendered_total",
				Help: "Invoices rendered",
			},
		),
	}

	reg.MustRegister(m.Requests, m.Latency, m.Mutations, m.Invoices)
	return m
}

// Mutation counts a persisted change. Safe on a nil receiver.
func (m *Metrics) Mutation(collection, op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(collection, op).Inc()
}

// InvoiceRendered is safe on a nil receiver.
func (m *Metrics) InvoiceRendered() {
	if m == nil {
		return
	}
	m.Invoices.Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{
				ResponseWriter: w,
				status:         defaultStatusCode,
			}

			start := time.Now()
			next.ServeHTTP(sw, r)

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(sw.status)).
				Inc()
		})
	}
}
