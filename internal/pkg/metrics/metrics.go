// Package metrics defines the custom Prometheus metrics of the CardDemo
// terminal and its development API. Metrics register themselves with the
// default registry on package load via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carddemo"

// ── Dev API ──────────────────────────────────────────────────────────────────

// LoginsTotal counts sign-on attempts.
// Label:
//   - result: "ok", "user_not_found", "invalid_credentials", "bad_request" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of sign-on attempts, by result.",
	},
	[]string{"result"},
)

// BillPaymentsTotal counts bill payment requests.
// Label:
//   - result: "paid", "nothing_to_pay", "conflict" or "error"
var BillPaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bill_payments_total",
		Help:      "Total number of bill payment requests, by result.",
	},
	[]string{"result"},
)

// AuditEventsTotal counts audit events written or dropped by the dispatcher.
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by result (stored/failed/dropped).",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending audit events per dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures dequeue-to-persistence time of one event.
var AuditProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of audit event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Terminal ─────────────────────────────────────────────────────────────────

// ScreenTransitionsTotal counts the step a screen ends in after a key press.
// Labels:
//   - screen: catalog name, e.g. "bill-payment"
//   - step: "input", "confirm", "processing", "success", "already-done", "error"
var ScreenTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "screen_transitions_total",
		Help:      "Total number of screen state transitions, by screen and resulting step.",
	},
	[]string{"screen", "step"},
)

// KeyPressesTotal counts dispatched function keys.
// Labels:
//   - screen: catalog name
//   - key: ENTER, F3, F4, F5, F12, ESC, or "other" for anything else
//   - result: "ok", "unbound", "disabled", "busy" or "error"
var KeyPressesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "key_presses_total",
		Help:      "Total number of terminal key presses, by screen, key and result.",
	},
	[]string{"screen", "key", "result"},
)

// SessionsTotal counts terminal session lifecycle events.
// Label:
//   - event: "login", "logout", "refresh" or "expired"
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of terminal session events.",
	},
	[]string{"event"},
)

// GatewayRequestDuration measures calls from the terminal to the REST API.
// Labels:
//   - method: HTTP method
//   - route: API route template, e.g. "/api/accounts/:accountId"
//   - status: HTTP status code, or "transport" when no response arrived
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of REST API calls made by the terminal.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
