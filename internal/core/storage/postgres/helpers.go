package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanSampleRow scans one vital_samples row. Timestamps are normalized to UTC so that
// natural keys read back compare equal to the ones written.
func scanSampleRow(row scanner) (*v1.Sample, error) {
	var s v1.Sample
	if err := row.Scan(
		&s.PatientID,
		&s.Metric,
		&s.DeviceID,
		&s.SampleTime,
		&s.Value,
		&s.ReceivedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan sample row: %w", err)
	}
	s.SampleTime = s.SampleTime.UTC()
	s.ReceivedAt = s.ReceivedAt.UTC()
	return &s, nil
}

// scanBucketRow scans one vital_buckets row and rebuilds its typed aggregate.
func scanBucketRow(row scanner) (*aggregation.Bucket, error) {
	var (
		b    aggregation.Bucket
		cols aggregation.Columns
	)
	if err := row.Scan(
		&b.Key.PatientID,
		&b.Key.Metric,
		&b.Key.Granularity,
		&b.Key.Start,
		&cols.Sum,
		&cols.Min,
		&cols.Max,
		&cols.Avg,
		&b.SampleCount,
		&b.LastAggregatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan bucket row: %w", err)
	}

	agg, err := aggregation.FromColumns(b.Key.Metric, cols)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", b.Key, err)
	}
	b.Aggregate = agg
	b.Key.Start = b.Key.Start.UTC()
	b.LastAggregatedAt = b.LastAggregatedAt.UTC()
	return &b, nil
}

func listSamples(ctx context.Context, q querier, patientID string, metric v1.Metric, start, end time.Time) ([]v1.Sample, error) {
	rows, err := q.QueryContext(ctx, queryListSamples, patientID, string(metric), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []v1.Sample
	for rows.Next() {
		s, err := scanSampleRow(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return samples, nil
}

func listBuckets(ctx context.Context, q querier, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error) {
	rows, err := q.QueryContext(ctx, queryListBuckets, patientID, string(metric), string(granularity), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []aggregation.Bucket
	for rows.Next() {
		b, err := scanBucketRow(rows)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buckets: %w", err)
	}
	return buckets, nil
}
