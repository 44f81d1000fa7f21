package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts describes an instrument
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter is a monotonically increasing int64 instrument
type Counter struct {
	c metric.Int64Counter
}

// NewCounter creates a counter on the global meter. Instrument errors
// degrade to a no-op counter so metrics never break request handling.
func NewCounter(opts MetricOpts) *Counter {
	m := meter()
	c, err := m.Int64Counter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(defaultUnit(opts.Unit)),
	)
	if err != nil {
		otel.Handle(err)
		return &Counter{}
	}
	return &Counter{c: c}
}

// Add increments the counter by n
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	if c == nil || c.c == nil {
		return
	}
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Inc increments the counter by one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Histogram records float64 distributions
type Histogram struct {
	h metric.Float64Histogram
}

// NewHistogram creates a histogram on the global meter
func NewHistogram(opts MetricOpts) *Histogram {
	h, err := meter().Float64Histogram(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(defaultUnit(opts.Unit)),
	)
	if err != nil {
		otel.Handle(err)
		return &Histogram{}
	}
	return &Histogram{h: h}
}

// Record adds one observation
func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	if h == nil || h.h == nil {
		return
	}
	h.h.Record(ctx, v, metric.WithAttributes(attrs...))
}

func meter() metric.Meter {
	if t := Get(); t != nil && t.meter != nil {
		return t.meter
	}
	return otel.Meter(instrumentationName)
}

func defaultUnit(u string) string {
	if u == "" {
		return "1"
	}
	return u
}
