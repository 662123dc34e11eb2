// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics defines the Prometheus collectors exported on /metrics.

Collectors are registered on the default registry at package init via promauto,
so importing the package is enough to expose them.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # Auth Events

const (
	EventRegister = "register"
	EventLogin    = "login"
	EventRefresh  = "refresh"
	EventLogout   = "logout"
	EventGate     = "authorize"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// httpRequests counts finished requests by route pattern and status.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"method", "route", "status"})

	// httpDuration tracks handler latency.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// authEvents counts session lifecycle outcomes.
	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_auth_events_total",
		Help: "Total number of authentication events by outcome",
	}, []string{"event", "outcome"})

	// rateLimited counts requests rejected by the rate limiter.
	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_rate_limit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuthEvent records the outcome of a session operation.
func RecordAuthEvent(event string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	authEvents.WithLabelValues(event, outcome).Inc()
}

// RecordRateLimited records one rejected request.
func RecordRateLimited() {
	rateLimited.Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
