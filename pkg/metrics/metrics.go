// Package metrics declares the OpenTelemetry instruments recorded by the MRZ
// pipeline. The meter provider is installed by the serve command; instruments
// are exported through the Prometheus endpoint of the API server.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Pipeline bundles the instruments recorded per MRZ read. A nil *Pipeline is
// valid and records nothing, which keeps the core testable without a meter
// provider.
type Pipeline struct {
	reads     metric.Int64Counter
	recognize metric.Float64Histogram
	bands     metric.Int64Histogram
}

// NewPipeline creates the pipeline instruments on the global meter provider.
func NewPipeline() (*Pipeline, error) {
	meter := otel.Meter("mrzreader/pipeline")

	reads, err := meter.Int64Counter("mrz_reads_total",
		metric.WithDescription("Completed MRZ reads by trust level"))
	if err != nil {
		return nil, fmt.Errorf("could not create reads counter: %w", err)
	}

	recognize, err := meter.Float64Histogram("mrz_recognize_duration_seconds",
		metric.WithDescription("Recognizer invocation latency per candidate band"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create recognize histogram: %w", err)
	}

	bands, err := meter.Int64Histogram("mrz_candidate_bands",
		metric.WithDescription("Candidate MRZ bands produced per request"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 4, 5))
	if err != nil {
		return nil, fmt.Errorf("could not create bands histogram: %w", err)
	}

	return &Pipeline{reads: reads, recognize: recognize, bands: bands}, nil
}

// ObserveRead records one completed read with its trust classification and the
// number of candidate bands the normalizer produced.
func (p *Pipeline) ObserveRead(ctx context.Context, trust string, bands int) {
	if p == nil {
		return
	}
	p.reads.Add(ctx, 1, metric.WithAttributes(attribute.String("trust", trust)))
	p.bands.Record(ctx, int64(bands))
}

// ObserveRecognize records the latency of one recognizer invocation and
// whether it succeeded.
func (p *Pipeline) ObserveRecognize(ctx context.Context, d time.Duration, ok bool) {
	if p == nil {
		return
	}
	p.recognize.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("ok", ok)))
}
