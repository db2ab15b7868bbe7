// Package metrics exposes prometheus counters for the token lifecycle.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes used as the "result" label.
const (
	RefreshSuccess    = "success"
	RefreshRejected   = "rejected"
	RefreshNoToken    = "no_token"
	RefreshReused     = "reused"
	RefreshConnection = "unavailable"
)

// Metrics groups the client counters. A nil *Metrics records nothing.
type Metrics struct {
	refreshes     *prometheus.CounterVec
	retries       prometheus.Counter
	invalidations *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_token_refresh_total",
			Help: "Access token refresh attempts by result",
		}, []string{"result"}),
		retries: f.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_request_retries_total",
			Help: "Requests re-issued after a token refresh",
		}),
		invalidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_session_invalidations_total",
			Help: "Sessions cleared because they could not be recovered",
		}, []string{"reason"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_requests_total",
			Help: "Backend requests by endpoint and status class",
		}, []string{"endpoint", "class"}),
	}
}

func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) Invalidation(reason string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(reason).Inc()
}

// Request counts a finished request. status 0 means no response was received.
func (m *Metrics) Request(endpoint string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Counters renders every counter gathered from g as one
// `name{label="value"} count` line, in gather order.
func Counters(g prometheus.Gatherer) ([]string, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			name := f.GetName()
			if pairs := m.GetLabel(); len(pairs) > 0 {
				labels := make([]string, 0, len(pairs))
				for _, l := range pairs {
					labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
				}
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
		}
	}
	return lines, nil
}
