package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tileshop/backend/internal/infrastructure/telemetry"
)

var (
	requestSizeBuckets  = []float64{100, 1000, 10000, 100000, 1000000, 5000000}
	responseSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 5000000, 20000000}
)

type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	requestSize     *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	histogram := func(name, desc, unit string, buckets []float64) (*telemetry.Histogram, error) {
		return telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: name, Description: desc, Unit: unit, Boundaries: buckets})
	}

	var (
		m    httpMetrics
		errs [5]error
	)
	m.requestTotal, errs[0] = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}")
	m.requestDuration, errs[1] = histogram("http_server_request_duration_seconds", "HTTP request latency", "s", telemetry.HTTPDurationBuckets)
	m.requestSize, errs[2] = histogram("http_server_request_size_bytes", "HTTP request body size", "By", requestSizeBuckets)
	// PDF downloads land in the upper buckets
	m.responseSize, errs[3] = histogram("http_server_response_size_bytes", "HTTP response body size", "By", responseSizeBuckets)
	m.activeRequests, errs[4] = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// HTTPMetrics records request count, latency, sizes and in-flight requests.
// A nil meter, or one whose instruments cannot be created, yields a pass-through.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := c.Request.ContentLength

		m.activeRequests.Add(ctx, 1)
		c.Next()
		m.activeRequests.Add(ctx, -1)

		m.record(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start), requestSize, c.Writer.Size())
	}
}

func passThrough(c *gin.Context) { c.Next() }

func (m *httpMetrics) record(ctx context.Context, method, route string, status int, elapsed time.Duration, requestSize int64, responseSize int) {
	base := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
	}
	m.requestTotal.Inc(ctx, append(base, telemetry.AttrHTTPStatusCode.Int(status))...)
	m.requestDuration.RecordDuration(ctx, elapsed, base...)
	if requestSize > 0 {
		m.requestSize.Record(ctx, float64(requestSize), base...)
	}
	if responseSize > 0 {
		m.responseSize.Record(ctx, float64(responseSize), base...)
	}
}

// routePattern returns the matched route ("/api/v1/invoices/:ref") so raw
// invoice numbers never become label values
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
