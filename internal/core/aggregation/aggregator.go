package aggregation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
)

// AvgScale is the number of decimal places kept for averages.
const AvgScale = 4

// Reducer defines the rollup semantics of one metric.
// To add a metric: implement Reducer and register it in Reducers.
type Reducer interface {
	// FromSamples folds the raw values of one hour. values is never empty.
	FromSamples(values []decimal.Decimal) Aggregate

	// FromHours folds the hour buckets of one day. hours is never empty.
	FromHours(hours []Bucket) Aggregate
}

// Reducers is the registry of rollup semantics per metric.
var Reducers = map[v1.Metric]Reducer{
	v1.MetricSteps:     stepsReducer{},
	v1.MetricHeartRate: statsReducer{build: func(s stats) Aggregate { return HeartRateAggregate(s) }},
	v1.MetricSpO2:      statsReducer{build: func(s stats) Aggregate { return SpO2Aggregate(s) }},
}

// stepsReducer sums step counts.
type stepsReducer struct{}

func (stepsReducer) FromSamples(values []decimal.Decimal) Aggregate {
	return StepsAggregate{Sum: decimal.Sum(values[0], values[1:]...)}
}

func (stepsReducer) FromHours(hours []Bucket) Aggregate {
	total := decimal.Zero
	for _, h := range hours {
		total = total.Add(h.Aggregate.(StepsAggregate).Sum)
	}
	return StepsAggregate{Sum: total}
}

// stats mirrors the field layout shared by HeartRateAggregate and SpO2Aggregate.
type stats struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
	Avg decimal.Decimal `json:"avg"`
	Sum decimal.Decimal `json:"sum"`
}

// statsReducer computes min/max/avg, with avg recomputed from the exact sum and count.
type statsReducer struct {
	build func(stats) Aggregate
}

func (r statsReducer) FromSamples(values []decimal.Decimal) Aggregate {
	return r.build(stats{
		Min: decimal.Min(values[0], values[1:]...),
		Max: decimal.Max(values[0], values[1:]...),
		Sum: decimal.Sum(values[0], values[1:]...),
		Avg: Mean(decimal.Sum(values[0], values[1:]...), int64(len(values))),
	})
}

func (r statsReducer) FromHours(hours []Bucket) Aggregate {
	var (
		out   stats
		count int64
	)
	for i, h := range hours {
		s := statsOf(h.Aggregate)
		if i == 0 {
			out.Min, out.Max, out.Sum = s.Min, s.Max, s.Sum
		} else {
			out.Min = decimal.Min(out.Min, s.Min)
			out.Max = decimal.Max(out.Max, s.Max)
			out.Sum = out.Sum.Add(s.Sum)
		}
		count += h.SampleCount
	}
	out.Avg = Mean(out.Sum, count)
	return r.build(out)
}

func statsOf(a Aggregate) stats {
	switch v := a.(type) {
	case HeartRateAggregate:
		return stats(v)
	case SpO2Aggregate:
		return stats(v)
	}
	return stats{}
}

// Mean divides sum by count, rounded to AvgScale places. Zero count yields zero.
func Mean(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.DivRound(decimal.NewFromInt(count), AvgScale)
}

// ComputeHour derives the hour bucket for key from every sample stored in its window.
// Returns nil when there are no samples: absence, not zero, means "no data".
func ComputeHour(key BucketKey, samples []v1.Sample, now time.Time) (*Bucket, error) {
	if key.Granularity != GranularityHour {
		return nil, fmt.Errorf("compute hour: key %s is not an hour bucket", key)
	}
	reducer, ok := Reducers[key.Metric]
	if !ok {
		return nil, fmt.Errorf("compute hour: unsupported metric %q", key.Metric)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	end := key.End()
	values := make([]decimal.Decimal, 0, len(samples))
	for _, s := range samples {
		if s.PatientID != key.PatientID || s.Metric != key.Metric {
			return nil, fmt.Errorf("compute hour: sample %s does not belong to %s", s.Key(), key)
		}
		if s.SampleTime.Before(key.Start) || !s.SampleTime.Before(end) {
			return nil, fmt.Errorf("compute hour: sample time %s outside [%s, %s)", s.SampleTime, key.Start, end)
		}
		values = append(values, s.Value)
	}

	return &Bucket{
		Key:              key,
		Aggregate:        reducer.FromSamples(values),
		SampleCount:      int64(len(values)),
		LastAggregatedAt: now,
	}, nil
}

// ComputeDay derives the day bucket for key from the hour buckets that exist in it.
// Missing hours contribute nothing. Returns nil when no hour bucket exists.
func ComputeDay(key BucketKey, hours []Bucket, now time.Time) (*Bucket, error) {
	if key.Granularity != GranularityDay {
		return nil, fmt.Errorf("compute day: key %s is not a day bucket", key)
	}
	reducer, ok := Reducers[key.Metric]
	if !ok {
		return nil, fmt.Errorf("compute day: unsupported metric %q", key.Metric)
	}
	if len(hours) == 0 {
		return nil, nil
	}

	end := key.End()
	var count int64
	for _, h := range hours {
		if h.Key.Granularity != GranularityHour || h.Key.PatientID != key.PatientID || h.Key.Metric != key.Metric {
			return nil, fmt.Errorf("compute day: bucket %s does not belong to %s", h.Key, key)
		}
		if h.Key.Start.Before(key.Start) || !h.Key.Start.Before(end) {
			return nil, fmt.Errorf("compute day: hour %s outside [%s, %s)", h.Key.Start, key.Start, end)
		}
		if h.Aggregate == nil || h.Aggregate.Metric() != key.Metric {
			return nil, fmt.Errorf("compute day: hour %s has no %s aggregate", h.Key.Start, key.Metric)
		}
		count += h.SampleCount
	}

	return &Bucket{
		Key:              key,
		Aggregate:        reducer.FromHours(hours),
		SampleCount:      count,
		LastAggregatedAt: now,
	}, nil
}
