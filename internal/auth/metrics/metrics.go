// Package metrics exposes Prometheus counters for the credential flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "siteauth"

// Flow names used as the "flow" label.
const (
	FlowSetup            = "setup"
	FlowSetupUpdate      = "setup_update"
	FlowInvitationCheck  = "invitation_check"
	FlowInvitationAccept = "invitation_accept"
	FlowResetRequest     = "reset_request"
	FlowResetConfirm     = "reset_confirm"
	FlowResetAll         = "reset_all"
	FlowLogin            = "login"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	flows        *prometheus.CounterVec
	mail         *prometheus.CounterVec
	housekeeping *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		flows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_total",
			Help:      "Credential flow outcomes by flow and result",
		}, []string{"flow", "outcome"}),
		mail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "messages_total",
			Help:      "Outbound messages by kind and result (sent, failed, dropped)",
		}, []string{"kind", "result"}),
		housekeeping: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "deleted_total",
			Help:      "Expired records removed by housekeeping",
		}, []string{"table"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "queue_depth",
			Help:      "Messages waiting for a mail worker",
		}),
	}

	reg.MustRegister(m.flows, m.mail, m.housekeeping, m.queueDepth)
	return m
}

// NewRegistry returns a registry carrying the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (m *Metrics) Flow(flow, outcome string) {
	if m == nil {
		return
	}
	m.flows.WithLabelValues(flow, outcome).Inc()
}

func (m *Metrics) Mail(kind, result string) {
	if m == nil {
		return
	}
	m.mail.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Housekeeping(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.housekeeping.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
