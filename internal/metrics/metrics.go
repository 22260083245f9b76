// Package metrics holds the Prometheus counters for authentication, access
// control, filtering and push delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carejournal"

// Login outcomes.
const (
	LoginSuccess   = "success"
	LoginFailure   = "failure"
	LoginThrottled = "throttled"
)

// Metrics is the set of domain counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Logins           *prometheus.CounterVec
	SignOuts         prometheus.Counter
	GuardDenials     *prometheus.CounterVec
	FilterRejections prometheus.Counter
	PushMessages     *prometheus.CounterVec
	PushTokens       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the counters and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		SignOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_outs_total",
			Help:      "Successful sign-outs.",
		}),
		GuardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_denials_total",
			Help:      "Requests rejected by an access guard.",
		}, []string{"guard", "status"}),
		FilterRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_rejections_total",
			Help:      "List requests rejected because of a malformed filter.",
		}),
		PushMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_messages_total",
			Help:      "Push notifications dispatched by outcome.",
		}, []string{"outcome"}),
		PushTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_tokens_total",
			Help:      "Device tokens addressed by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Logins,
		m.SignOuts,
		m.GuardDenials,
		m.FilterRejections,
		m.PushMessages,
		m.PushTokens,
	)
	return m
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Login records a login attempt.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// SignOut records a successful sign-out.
func (m *Metrics) SignOut() {
	if m == nil {
		return
	}
	m.SignOuts.Inc()
}

// GuardDenied records a request rejected by guard with the given status.
func (m *Metrics) GuardDenied(guard string, status int) {
	if m == nil {
		return
	}
	m.GuardDenials.WithLabelValues(guard, http.StatusText(status)).Inc()
}

// FilterRejected records a malformed list filter.
func (m *Metrics) FilterRejected() {
	if m == nil {
		return
	}
	m.FilterRejections.Inc()
}

// PushSent records one dispatched message and its per-token results.
func (m *Metrics) PushSent(success, failure, unregistered int) {
	if m == nil {
		return
	}
	m.PushMessages.WithLabelValues("sent").Inc()
	m.PushTokens.WithLabelValues("success").Add(float64(success))
	m.PushTokens.WithLabelValues("failure").Add(float64(failure))
	m.PushTokens.WithLabelValues("unregistered").Add(float64(unregistered))
}

// PushFailed records a message the transport could not dispatch.
func (m *Metrics) PushFailed() {
	if m == nil {
		return
	}
	m.PushMessages.WithLabelValues("failed").Inc()
}
