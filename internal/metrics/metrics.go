// Package metrics exposes Prometheus collectors for the studio services.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atelier"

// Registry owns the collectors and the registry they are registered on.
type Registry struct {
	reg *prometheus.Registry

	calculations    prometheus.Counter
	published       *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	invoices        prometheus.Counter
	httpRequests    *prometheus.CounterVec
	advisory        *prometheus.CounterVec
	exportDocuments *prometheus.CounterVec
}

// New builds a Registry with Go runtime and process collectors included.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		calculations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Cost calculations run.",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_published_total",
			Help:      "Quotes published or re-published, by whether the price was overridden.",
		}, []string{"override"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_transitions_total",
			Help:      "Quote status transitions, by event.",
		}, []string{"event"}),
		invoices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Invoices issued from approved quotes.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern and status code.",
		}, []string{"route", "code"}),
		advisory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_requests_total",
			Help:      "Finished advisory requests, by outcome.",
		}, []string{"outcome"}),
		exportDocuments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Quote documents rendered, by format.",
		}, []string{"format"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.calculations,
		r.published,
		r.transitions,
		r.invoices,
		r.httpRequests,
		r.advisory,
		r.exportDocuments,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) CalculationRun() { r.calculations.Inc() }

func (r *Registry) QuotePublished(overridden bool) {
	r.published.WithLabelValues(strconv.FormatBool(overridden)).Inc()
}

func (r *Registry) QuoteTransitioned(event string) {
	r.transitions.WithLabelValues(event).Inc()
}

func (r *Registry) InvoiceIssued() { r.invoices.Inc() }

func (r *Registry) AdvisoryFinished(outcome string) {
	r.advisory.WithLabelValues(outcome).Inc()
}

func (r *Registry) ExportRendered(format string) {
	r.exportDocuments.WithLabelValues(format).Inc()
}

func (r *Registry) HTTPRequest(route string, code int) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
