package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companyblog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "companyblog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "companyblog_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "companyblog_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// otherLabel groups requests that did not match a known route or verb.
const otherLabel = "other"

// routePatterns lists every path the router serves, with ids collapsed to ":id".
var routePatterns = map[string]bool{
	"/":                          true,
	"/metrics":                   true,
	"/v1/healthcheck":            true,
	"/v1/admin/users":            true,
	"/v1/admin/users/:id":        true,
	"/v1/users/register":         true,
	"/v1/users/activate":         true,
	"/v1/users/login":            true,
	"/v1/users/logout":           true,
	"/v1/account":                true,
	"/v1/blogs":                  true,
	"/v1/blogs/:id":              true,
	"/v1/companies":              true,
	"/v1/companies/:id":          true,
	"/v1/companies/:id/blogs":    true,
	"/entities/blog":             true,
	"/entities/blog/":            true,
	"/entities/blog/new":         true,
	"/entities/blog/view/:id":    true,
	"/entities/blog/edit/:id":    true,
	"/entities/company":          true,
	"/entities/company/":         true,
	"/entities/company/view/:id": true,
}

var methodLabels = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

func observeRequest(method, path string, status int, elapsed time.Duration) {
	labels := prometheus.Labels{"method": methodLabel(method), "path": routeLabel(path), "status": strconv.Itoa(status)}
	httpRequestsTotal.With(labels).Inc()
	httpRequestDuration.With(labels).Observe(elapsed.Seconds())
}

func methodLabel(method string) string {
	if methodLabels[method] {
		return method
	}
	return otherLabel
}

// routeLabel maps a request path onto its route pattern so label cardinality stays bounded.
func routeLabel(path string) string {
	pattern := normalizePath(path)
	if routePatterns[pattern] {
		return pattern
	}
	return otherLabel
}

// normalizePath replaces numeric segments with ":id".
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
