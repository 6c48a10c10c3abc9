// Package observe holds the OpenTelemetry metric instruments of the
// pronunciation service and the HTTP middleware that feeds them.
//
// Tests should build a [Metrics] with [NewMetrics] over their own
// [metric.MeterProvider]; production code calls [InitProvider] first so the
// instruments are exported to Prometheus.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Halleck45/OpenPronounce"

// Metrics holds all instruments. The OTel types are safe for concurrent use.
type Metrics struct {
	// Requests counts HTTP requests. Attributes: endpoint, status.
	Requests metric.Int64Counter

	// Score records every final pronunciation score.
	Score metric.Float64Histogram

	// StageDuration records scoring pipeline latencies. Attribute: stage.
	StageDuration metric.Float64Histogram

	// WordErrors counts mispronounced or missing words.
	WordErrors metric.Int64Counter
}

// latencyBuckets are in seconds; transcription and synthesis dominate.
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Requests, err = m.Int64Counter("pronounce.requests",
		metric.WithDescription("HTTP requests by endpoint and status."),
	); err != nil {
		return nil, err
	}
	if met.Score, err = m.Float64Histogram("pronounce.score",
		metric.WithDescription("Final pronunciation scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("pronounce.stage.duration",
		metric.WithDescription("Latency of each scoring pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.WordErrors, err = m.Int64Counter("pronounce.word_errors",
		metric.WithDescription("Words flagged as mispronounced or missing."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordAnalysis records the outcome of one scored recording.
func (m *Metrics) RecordAnalysis(ctx context.Context, score float64, wordErrors int) {
	m.Score.Record(ctx, score)
	if wordErrors > 0 {
		m.WordErrors.Add(ctx, int64(wordErrors))
	}
}

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, endpoint string, status int) {
	m.Requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	))
}
