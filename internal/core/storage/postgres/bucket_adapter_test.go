package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
	"github.com/vitalink/vitalink-core/internal/core/partition"
	"github.com/vitalink/vitalink-core/internal/core/storage"
)

var bucketHour = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func bucketRowColumns() []string {
	return []string{
		"patient_id", "metric", "granularity", "bucket_start",
		"sum_value", "min_value", "max_value", "avg_value",
		"sample_count", "last_aggregated_at",
	}
}

func TestBucketAdapter_RecomputeUpsertsInsideLockedTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	key := aggregation.HourKey("patient-1", v1.MetricSteps, bucketHour)
	computedAt := bucketHour.Add(90 * time.Minute)
	durableAt := computedAt.Add(time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryLockBucket)).
		WithArgs(partition.LockKey(key.String())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(queryListSamples)).
		WithArgs("patient-1", "steps", key.Start, key.End()).
		WillReturnRows(sqlmock.NewRows(sampleRowColumns()).
			AddRow("patient-1", "steps", "watch-1", bucketHour.Add(5*time.Minute), "120", computedAt).
			AddRow("patient-1", "steps", "watch-1", bucketHour.Add(20*time.Minute), "80", computedAt))
	mock.ExpectQuery(regexp.QuoteMeta(queryUpsertBucket)).
		WithArgs("patient-1", "steps", "hour", key.Start, "200", nil, nil, nil, int64(2), computedAt).
		WillReturnRows(sqlmock.NewRows([]string{"last_aggregated_at"}).AddRow(durableAt))
	mock.ExpectCommit()

	bucket, err := adapter.Recompute(context.Background(), key, func(ctx context.Context, src storage.SourceReader) (*aggregation.Bucket, error) {
		samples, err := src.ListSamples(ctx, key.PatientID, key.Metric, key.Start, key.End())
		if err != nil {
			return nil, err
		}
		return aggregation.ComputeHour(key, samples, computedAt)
	})
	require.NoError(t, err)
	require.True(t, bucket.Aggregate.(aggregation.StepsAggregate).Sum.Equal(decimal.NewFromInt(200)))
	require.Equal(t, int64(2), bucket.SampleCount)
	// The stored timestamp wins when it is newer.
	require.Equal(t, durableAt, bucket.LastAggregatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_RecomputeDeletesEmptyWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	key := aggregation.DayKey("patient-1", v1.MetricHeartRate, bucketHour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryLockBucket)).
		WithArgs(partition.LockKey(key.String())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteBucket)).
		WithArgs("patient-1", "heart_rate", "day", key.Start).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bucket, err := adapter.Recompute(context.Background(), key, func(context.Context, storage.SourceReader) (*aggregation.Bucket, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Nil(t, bucket)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_RecomputeRollsBackOnComputeError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	key := aggregation.HourKey("patient-1", v1.MetricSteps, bucketHour)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryLockBucket)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = adapter.Recompute(context.Background(), key, func(context.Context, storage.SourceReader) (*aggregation.Bucket, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_RecomputeRollsBackOnUpsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	key := aggregation.HourKey("patient-1", v1.MetricSteps, bucketHour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryLockBucket)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(queryUpsertBucket)).
		WillReturnError(errors.New("serialization failure"))
	mock.ExpectRollback()

	_, err = adapter.Recompute(context.Background(), key, func(context.Context, storage.SourceReader) (*aggregation.Bucket, error) {
		return &aggregation.Bucket{
			Key:              key,
			Aggregate:        aggregation.StepsAggregate{Sum: decimal.NewFromInt(1)},
			SampleCount:      1,
			LastAggregatedAt: bucketHour,
		}, nil
	})
	require.ErrorContains(t, err, "upsert bucket")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_GetBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	key := aggregation.HourKey("patient-1", v1.MetricHeartRate, bucketHour)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetBucket)).
		WithArgs("patient-1", "heart_rate", "hour", key.Start).
		WillReturnRows(sqlmock.NewRows(bucketRowColumns()).
			AddRow("patient-1", "heart_rate", "hour", bucketHour, "240", "70", "90", "80.0000", int64(3), bucketHour))

	bucket, err := adapter.GetBucket(context.Background(), key)
	require.NoError(t, err)
	hr, ok := bucket.Aggregate.(aggregation.HeartRateAggregate)
	require.True(t, ok)
	require.True(t, hr.Min.Equal(decimal.NewFromInt(70)))
	require.True(t, hr.Max.Equal(decimal.NewFromInt(90)))
	require.True(t, hr.Avg.Equal(decimal.NewFromInt(80)))
	require.Equal(t, key, bucket.Key)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_GetBucketNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	mock.ExpectQuery(regexp.QuoteMeta(queryGetBucket)).
		WillReturnRows(sqlmock.NewRows(bucketRowColumns()))

	_, err = adapter.GetBucket(context.Background(), aggregation.HourKey("patient-1", v1.MetricSteps, bucketHour))
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_ListBucketsRejectsCorruptRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	mock.ExpectQuery(regexp.QuoteMeta(queryListBuckets)).
		WithArgs("patient-1", "spo2", "hour", bucketHour, bucketHour.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows(bucketRowColumns()).
			AddRow("patient-1", "spo2", "hour", bucketHour, "97", nil, nil, nil, int64(1), bucketHour))

	_, err = adapter.ListBuckets(context.Background(), "patient-1", v1.MetricSpO2, aggregation.GranularityHour, bucketHour, bucketHour.Add(24*time.Hour))
	require.ErrorContains(t, err, "missing statistics")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_LatestBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	old := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryLatestBucket)).
		WithArgs("patient-1", "steps", "day").
		WillReturnRows(sqlmock.NewRows(bucketRowColumns()).
			AddRow("patient-1", "steps", "day", old, "4200", nil, nil, nil, int64(12), old.Add(25*time.Hour)))

	bucket, err := adapter.LatestBucket(context.Background(), "patient-1", v1.MetricSteps, aggregation.GranularityDay)
	require.NoError(t, err)
	require.Equal(t, aggregation.DayKey("patient-1", v1.MetricSteps, old), bucket.Key)
	require.Equal(t, int64(12), bucket.SampleCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketAdapter_LatestBucketEmptySeries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewBucketAdapter(db)
	mock.ExpectQuery(regexp.QuoteMeta(queryLatestBucket)).
		WithArgs("patient-1", "spo2", "day").
		WillReturnRows(sqlmock.NewRows(bucketRowColumns()))

	_, err = adapter.LatestBucket(context.Background(), "patient-1", v1.MetricSpO2, aggregation.GranularityDay)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
