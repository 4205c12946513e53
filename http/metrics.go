package http

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type serverMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func (s *Server) initMetrics() {
	var err error

	s.metrics.requests, err = s.Meter.Int64Counter("http.server.request.count",
		metric.WithDescription("The number of completed requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		s.Logger.Warn("creating request counter", "error", err)
		s.metrics.requests = noop.Int64Counter{}
	}

	s.metrics.duration, err = s.Meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time from request line to closed connection"),
		metric.WithUnit("ms"))
	if err != nil {
		s.Logger.Warn("creating duration histogram", "error", err)
		s.metrics.duration = noop.Float64Histogram{}
	}
}

func (m serverMetrics) record(ctx context.Context, method string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}
