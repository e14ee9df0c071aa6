package projection

import (
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreagg "github.com/vitalink/vitalink-core/internal/core/aggregation"
)

// convertToPoints maps stored buckets one to one.
func convertToPoints(buckets []coreagg.Bucket) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, HistoryPoint{
			WindowStart:      b.Key.Start,
			WindowEnd:        b.Key.End(),
			Values:           b.Aggregate,
			SampleCount:      b.SampleCount,
			LastAggregatedAt: b.LastAggregatedAt,
		})
	}
	return points
}

// fold merges buckets with the metric's day semantics: sums add, min/max combine,
// averages are weighted by sample count.
func fold(metric v1.Metric, buckets []coreagg.Bucket, start, end time.Time) HistoryPoint {
	var (
		count int64
		last  time.Time
	)
	for _, b := range buckets {
		count += b.SampleCount
		if b.LastAggregatedAt.After(last) {
			last = b.LastAggregatedAt
		}
	}
	return HistoryPoint{
		WindowStart:      start,
		WindowEnd:        end,
		Values:           coreagg.Reducers[metric].FromHours(buckets),
		SampleCount:      count,
		LastAggregatedAt: last,
	}
}

// rollupTotal folds every day bucket into a single point for the whole range.
// An empty range yields no points rather than a zero-filled one.
func rollupTotal(metric v1.Metric, buckets []coreagg.Bucket, start, end time.Time) []HistoryPoint {
	if len(buckets) == 0 {
		return []HistoryPoint{}
	}
	return []HistoryPoint{fold(metric, buckets, start, end)}
}

// rollupToWeek groups day buckets into ISO weeks (Monday 00:00 UTC).
// buckets must be ordered by start.
func rollupToWeek(metric v1.Metric, buckets []coreagg.Bucket) []HistoryPoint {
	points := []HistoryPoint{}

	var (
		current []coreagg.Bucket
		week    time.Time
	)
	flush := func() {
		if len(current) > 0 {
			points = append(points, fold(metric, current, week, week.AddDate(0, 0, 7)))
		}
	}

	for _, b := range buckets {
		start := weekStart(b.Key.Start)
		if !start.Equal(week) {
			flush()
			current = nil
			week = start
		}
		current = append(current, b)
	}
	flush()

	return points
}

func weekStart(t time.Time) time.Time {
	day := coreagg.DayStart(t)
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	return day.AddDate(0, 0, -offset)
}
