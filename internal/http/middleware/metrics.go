// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. The route
// label is the registered Gin pattern, so /wish/:request_id and
// /celebrations/:date stay one series each.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

// Caller label values.
const (
	callerAnonymous     = "anonymous"
	callerAuthenticated = "authenticated"
)

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route, status and caller kind.",
	}, []string{"method", "route", "status", "caller"})

	// Wish generation waits on remote models, so the tail is long.
	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
	}, []string{"method", "route"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Requests currently being served.",
	})

	httpReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_idempotent_replays_total",
		Help: "Responses served from a remembered Idempotency-Key.",
	}, []string{"route"})
)

func callerKind(c *gin.Context) string {
	if IsAuthenticated(c) {
		return callerAuthenticated
	}
	return callerAnonymous
}

// Metrics instruments every request. It must run before Authenticate and
// IdempotencyValidator; their context keys are read after c.Next.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		defer httpInflight.Dec()
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m := c.Request.Method
		httpReqs.WithLabelValues(m, route, strconv.Itoa(c.Writer.Status()), callerKind(c)).Inc()
		httpLat.WithLabelValues(m, route).Observe(time.Since(start).Seconds())
		if IsReplay(c) {
			httpReplays.WithLabelValues(route).Inc()
		}
	}
}
