package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/core/partition"
	"github.com/vitalink/vitalink-core/internal/core/storage"
)

// BucketAdapter implements storage.BucketStore using PostgreSQL.
// Each Recompute is one transaction holding a transaction-scoped advisory lock on the
// bucket key, so the read of the sources and the write of the result are atomic with
// respect to other recomputes of the same bucket. Readers use plain committed reads.
type BucketAdapter struct {
	db *sql.DB
}

var _ storage.BucketStore = (*BucketAdapter)(nil)

// NewBucketAdapter creates a BucketAdapter sharing the given connection.
func NewBucketAdapter(db *sql.DB) *BucketAdapter {
	return &BucketAdapter{db: db}
}

// txReader exposes a recompute transaction as a storage.SourceReader.
type txReader struct {
	tx *sql.Tx
}

func (r txReader) ListSamples(ctx context.Context, patientID string, metric v1.Metric, start, end time.Time) ([]v1.Sample, error) {
	return listSamples(ctx, r.tx, patientID, metric, start, end)
}

func (r txReader) ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error) {
	return listBuckets(ctx, r.tx, patientID, metric, granularity, start, end)
}

// Recompute locks the bucket key, runs compute against the transaction and writes
// (or deletes) the bucket before committing. Any error rolls the whole unit back.
func (a *BucketAdapter) Recompute(ctx context.Context, key aggregation.BucketKey, compute storage.ComputeFunc) (*aggregation.Bucket, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, coreerrors.Transient("recompute: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryLockBucket, partition.LockKey(key.String())); err != nil {
		return nil, coreerrors.Transient("recompute: lock bucket", err)
	}

	bucket, err := compute(ctx, txReader{tx: tx})
	if err != nil {
		return nil, err
	}

	if bucket == nil {
		if _, err := tx.ExecContext(ctx, queryDeleteBucket,
			key.PatientID, string(key.Metric), string(key.Granularity), key.Start,
		); err != nil {
			return nil, coreerrors.Transient("recompute: delete bucket", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, coreerrors.Transient("recompute: commit", err)
		}
		slog.Debug("[BucketAdapter] Removed empty bucket", "bucket", key.String())
		return nil, nil
	}

	stored := *bucket
	stored.Key = key
	cols := aggregation.ToColumns(stored.Aggregate)

	var lastAggregatedAt time.Time
	if err := tx.QueryRowContext(ctx, queryUpsertBucket,
		key.PatientID,
		string(key.Metric),
		string(key.Granularity),
		key.Start,
		cols.Sum,
		cols.Min,
		cols.Max,
		cols.Avg,
		stored.SampleCount,
		stored.LastAggregatedAt,
	).Scan(&lastAggregatedAt); err != nil {
		return nil, coreerrors.Transient("recompute: upsert bucket", err)
	}
	stored.LastAggregatedAt = lastAggregatedAt.UTC()

	if err := tx.Commit(); err != nil {
		return nil, coreerrors.Transient("recompute: commit", err)
	}

	slog.Debug("[BucketAdapter] Stored bucket",
		"bucket", key.String(),
		"sample_count", stored.SampleCount)
	return &stored, nil
}

// GetBucket reads one committed bucket.
func (a *BucketAdapter) GetBucket(ctx context.Context, key aggregation.BucketKey) (*aggregation.Bucket, error) {
	row := a.db.QueryRowContext(ctx, queryGetBucket,
		key.PatientID, string(key.Metric), string(key.Granularity), key.Start)
	b, err := scanBucketRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, coreerrors.Transient("get bucket", err)
	}
	return b, nil
}

// ListBuckets reads committed buckets of one series in [start, end).
func (a *BucketAdapter) ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error) {
	buckets, err := listBuckets(ctx, a.db, patientID, metric, granularity, start, end)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}

// LatestBucket reads the newest committed bucket of one series.
func (a *BucketAdapter) LatestBucket(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity) (*aggregation.Bucket, error) {
	row := a.db.QueryRowContext(ctx, queryLatestBucket, patientID, string(metric), string(granularity))
	b, err := scanBucketRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, coreerrors.Transient("latest bucket", err)
	}
	return b, nil
}
