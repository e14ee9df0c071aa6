package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
)

// ErrDuplicate is returned when a sample with the same natural key already exists.
var ErrDuplicate = errors.New("sample already exists")

// ErrNotFound is returned when a sample or bucket does not exist.
var ErrNotFound = errors.New("not found")

// EventStore is the append-only store of raw samples.
type EventStore interface {
	// PutSample inserts the sample if its natural key is absent and returns ErrDuplicate otherwise.
	// The first write is authoritative: an existing sample is never modified.
	PutSample(ctx context.Context, sample *v1.Sample) error

	// GetSample returns the stored sample for key, or ErrNotFound.
	GetSample(ctx context.Context, key v1.SampleKey) (*v1.Sample, error)

	// ListSamples returns samples with start <= sample_time < end ordered by sample_time, device_id.
	ListSamples(ctx context.Context, patientID string, metric v1.Metric, start, end time.Time) ([]v1.Sample, error)

	// LastReceivedAt returns the latest received_at for the patient. ok is false when
	// no sample has been stored.
	LastReceivedAt(ctx context.Context, patientID string) (at time.Time, ok bool, err error)
}

// SourceReader is the read view handed to a ComputeFunc. Within BucketStore.Recompute it
// observes the same snapshot the result is written into.
type SourceReader interface {
	ListSamples(ctx context.Context, patientID string, metric v1.Metric, start, end time.Time) ([]v1.Sample, error)
	ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error)
}

// ComputeFunc derives a bucket from its sources. Returning nil means the window is empty
// and any existing bucket must be removed.
type ComputeFunc func(ctx context.Context, src SourceReader) (*aggregation.Bucket, error)

// BucketStore holds materialized hour and day buckets.
type BucketStore interface {
	// Recompute runs compute and writes its result as one unit, serialized per bucket key.
	// Concurrent callers for the same key never interleave their read and write.
	// A failed or cancelled call leaves the previous bucket untouched.
	// last_aggregated_at never moves backwards.
	Recompute(ctx context.Context, key aggregation.BucketKey, compute ComputeFunc) (*aggregation.Bucket, error)

	// GetBucket returns the committed bucket for key, or ErrNotFound. Never blocks on Recompute.
	GetBucket(ctx context.Context, key aggregation.BucketKey) (*aggregation.Bucket, error)

	// ListBuckets returns committed buckets with start <= bucket start < end ordered by start.
	ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error)

	// LatestBucket returns the committed bucket with the greatest start in the series,
	// however old, or ErrNotFound when the series has none.
	LatestBucket(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity) (*aggregation.Bucket, error)
}
