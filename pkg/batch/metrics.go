package batch

import (
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/haivivi/wordsplice"

// Metrics holds the batch instruments.
type Metrics struct {
	// Words counts processed entries. Attributes: status (ok, failed) and
	// kind for failures.
	Words metric.Int64Counter

	// WordDuration is the time from decomposition to stored file.
	WordDuration metric.Float64Histogram

	// Samples counts samples written to output files.
	Samples metric.Int64Counter

	// InFlight is the number of words being processed.
	InFlight metric.Int64UpDownCounter
}

var durationBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Words, err = m.Int64Counter("wordsplice.words",
		metric.WithDescription("Processed table entries by status and failure kind."),
	); err != nil {
		return nil, err
	}
	if met.WordDuration, err = m.Float64Histogram("wordsplice.word.duration",
		metric.WithDescription("Time to synthesize and store one word."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Samples, err = m.Int64Counter("wordsplice.samples",
		metric.WithDescription("PCM samples written to output files."),
	); err != nil {
		return nil, err
	}
	if met.InFlight, err = m.Int64UpDownCounter("wordsplice.words.in_flight",
		metric.WithDescription("Words currently being processed."),
	); err != nil {
		return nil, err
	}
	return met, nil
}
