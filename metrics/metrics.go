// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus metrics for workflow operations and the
// HTTP API. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-vote/workflow"
)

const (
	Namespace         = "quickly_vote"
	WorkflowSubsystem = "workflow"
	APISubsystem      = "api"
	ResultOK          = "ok"
)

type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal        *prometheus.CounterVec
	EventsTotal            *prometheus.CounterVec
	PhaseTransitionsTotal  *prometheus.CounterVec
	Workflows              prometheus.Gauge
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WorkflowSubsystem,
			Name:      "operations_total",
			Help:      "Workflow operations by result code.",
		}, []string{"operation", "result"}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WorkflowSubsystem,
			Name:      "events_total",
			Help:      "Accepted workflow events by kind.",
		}, []string{"kind"}),
		PhaseTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WorkflowSubsystem,
			Name:      "phase_transitions_total",
			Help:      "Phase transitions by target phase.",
		}, []string{"to"}),
		Workflows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: WorkflowSubsystem,
			Name:      "workflows",
			Help:      "Workflows currently hosted.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_total",
			Help:      "Total number of requests.",
		}, []string{"method", "route", "status"}),
		RequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.OperationsTotal,
		m.EventsTotal,
		m.PhaseTransitionsTotal,
		m.Workflows,
		m.RequestsTotal,
		m.RequestDurationSeconds,
	)
	// Every phase except the initial one can be a transition target.
	for _, p := range workflow.Phases()[1:] {
		m.PhaseTransitionsTotal.WithLabelValues(p.String())
	}
	return m
}

// Operation counts one workflow operation. Failures are labelled with their
// workflow error code.
func (m *Metrics) Operation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = workflow.Code(err)
	}
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveEvent is meant to be subscribed to the notification bus.
func (m *Metrics) ObserveEvent(ev workflow.Event) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == workflow.EventWorkflowStatusChange {
		m.PhaseTransitionsTotal.WithLabelValues(ev.To.String()).Inc()
	}
}

func (m *Metrics) SetWorkflows(n int) {
	if m == nil {
		return
	}
	m.Workflows.Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
