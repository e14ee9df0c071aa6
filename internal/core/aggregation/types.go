package aggregation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
)

// Granularity is the width of a bucket.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Duration returns the bucket width.
func (g Granularity) Duration() time.Duration {
	if g == GranularityDay {
		return 24 * time.Hour
	}
	return time.Hour
}

// BucketKey uniquely identifies a bucket.
type BucketKey struct {
	PatientID   string
	Metric      v1.Metric
	Granularity Granularity
	Start       time.Time // truncated to the bucket boundary, UTC
}

// HourKey builds the key of the hour bucket containing t.
func HourKey(patientID string, metric v1.Metric, t time.Time) BucketKey {
	return BucketKey{PatientID: patientID, Metric: metric, Granularity: GranularityHour, Start: HourStart(t)}
}

// DayKey builds the key of the day bucket containing t.
func DayKey(patientID string, metric v1.Metric, t time.Time) BucketKey {
	return BucketKey{PatientID: patientID, Metric: metric, Granularity: GranularityDay, Start: DayStart(t)}
}

// End returns the exclusive end of the bucket window.
func (k BucketKey) End() time.Time {
	return k.Start.Add(k.Granularity.Duration())
}

func (k BucketKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.PatientID, k.Metric, k.Granularity, k.Start.UTC().Format(time.RFC3339))
}

// Aggregate is the metric-specific value of a bucket. The set of implementations is
// closed: StepsAggregate, HeartRateAggregate, SpO2Aggregate.
type Aggregate interface {
	Metric() v1.Metric
	isAggregate()
}

// StepsAggregate is the step total of a bucket.
type StepsAggregate struct {
	Sum decimal.Decimal `json:"sum"`
}

// HeartRateAggregate holds bpm statistics. Sum is kept so that day averages
// are exact weighted averages of the hours.
type HeartRateAggregate struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
	Avg decimal.Decimal `json:"avg"`
	Sum decimal.Decimal `json:"sum"`
}

// SpO2Aggregate holds oxygen saturation statistics in percent.
type SpO2Aggregate struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
	Avg decimal.Decimal `json:"avg"`
	Sum decimal.Decimal `json:"sum"`
}

func (StepsAggregate) Metric() v1.Metric     { return v1.MetricSteps }
func (HeartRateAggregate) Metric() v1.Metric { return v1.MetricHeartRate }
func (SpO2Aggregate) Metric() v1.Metric      { return v1.MetricSpO2 }

func (StepsAggregate) isAggregate()     {}
func (HeartRateAggregate) isAggregate() {}
func (SpO2Aggregate) isAggregate()      {}

// Bucket is a materialized hour or day aggregate.
type Bucket struct {
	Key              BucketKey `json:"-"`
	Aggregate        Aggregate `json:"aggregate"`
	SampleCount      int64     `json:"sample_count"`
	LastAggregatedAt time.Time `json:"last_aggregated_at"`
}

// Columns is the storage shape of an Aggregate: one nullable column per statistic.
type Columns struct {
	Sum decimal.NullDecimal
	Min decimal.NullDecimal
	Max decimal.NullDecimal
	Avg decimal.NullDecimal
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ToColumns flattens an aggregate for storage.
func ToColumns(a Aggregate) Columns {
	switch v := a.(type) {
	case StepsAggregate:
		return Columns{Sum: valid(v.Sum)}
	case HeartRateAggregate:
		return Columns{Sum: valid(v.Sum), Min: valid(v.Min), Max: valid(v.Max), Avg: valid(v.Avg)}
	case SpO2Aggregate:
		return Columns{Sum: valid(v.Sum), Min: valid(v.Min), Max: valid(v.Max), Avg: valid(v.Avg)}
	}
	return Columns{}
}

// FromColumns rebuilds the aggregate for metric from stored columns.
func FromColumns(metric v1.Metric, c Columns) (Aggregate, error) {
	switch metric {
	case v1.MetricSteps:
		if !c.Sum.Valid {
			return nil, fmt.Errorf("steps bucket missing sum")
		}
		return StepsAggregate{Sum: c.Sum.Decimal}, nil
	case v1.MetricHeartRate, v1.MetricSpO2:
		if !c.Sum.Valid || !c.Min.Valid || !c.Max.Valid || !c.Avg.Valid {
			return nil, fmt.Errorf("%s bucket missing statistics", metric)
		}
		if metric == v1.MetricHeartRate {
			return HeartRateAggregate{Min: c.Min.Decimal, Max: c.Max.Decimal, Avg: c.Avg.Decimal, Sum: c.Sum.Decimal}, nil
		}
		return SpO2Aggregate{Min: c.Min.Decimal, Max: c.Max.Decimal, Avg: c.Avg.Decimal, Sum: c.Sum.Decimal}, nil
	}
	return nil, fmt.Errorf("unsupported metric %q", metric)
}
