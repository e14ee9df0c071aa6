// Package memory provides an in-process implementation of the sample and bucket stores.
// It backs database.type=memory and the unit tests of every layer above storage.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
	"github.com/vitalink/vitalink-core/internal/core/partition"
	"github.com/vitalink/vitalink-core/internal/core/storage"
)

// Store implements storage.EventStore and storage.BucketStore.
//
// Samples and buckets are guarded by RW mutexes held only for map access.
// Recompute additionally holds a per-stripe lock (partition.For) for the whole
// read-compute-write, which is what serializes concurrent recomputes of one bucket.
// Readers never touch the stripe locks.
type Store struct {
	samplesMu sync.RWMutex
	samples   map[string]v1.Sample // natural key -> sample
	series    map[string][]string  // patient|metric -> natural keys
	received  map[string]time.Time // patient -> latest received_at

	bucketsMu sync.RWMutex
	buckets   map[string]map[int64]aggregation.Bucket // patient|metric|granularity -> start -> bucket

	stripes [partition.Count]chan struct{}
}

var (
	_ storage.EventStore   = (*Store)(nil)
	_ storage.BucketStore  = (*Store)(nil)
	_ storage.SourceReader = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		samples:  make(map[string]v1.Sample),
		series:   make(map[string][]string),
		received: make(map[string]time.Time),
		buckets:  make(map[string]map[int64]aggregation.Bucket),
	}
	for i := range s.stripes {
		s.stripes[i] = make(chan struct{}, 1)
	}
	return s
}

func seriesKey(patientID string, metric v1.Metric) string {
	return patientID + "|" + string(metric)
}

func bucketSeriesKey(patientID string, metric v1.Metric, g aggregation.Granularity) string {
	return patientID + "|" + string(metric) + "|" + string(g)
}

// PutSample stores the sample unless its natural key is already present.
func (s *Store) PutSample(ctx context.Context, sample *v1.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := sample.Key().String()

	s.samplesMu.Lock()
	defer s.samplesMu.Unlock()

	if _, exists := s.samples[key]; exists {
		return storage.ErrDuplicate
	}
	s.samples[key] = *sample
	sk := seriesKey(sample.PatientID, sample.Metric)
	s.series[sk] = append(s.series[sk], key)
	if sample.ReceivedAt.After(s.received[sample.PatientID]) {
		s.received[sample.PatientID] = sample.ReceivedAt
	}
	return nil
}

// GetSample returns the stored sample for key.
func (s *Store) GetSample(ctx context.Context, key v1.SampleKey) (*v1.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.samplesMu.RLock()
	defer s.samplesMu.RUnlock()

	sample, ok := s.samples[key.String()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &sample, nil
}

// ListSamples returns the samples of one series in [start, end).
func (s *Store) ListSamples(ctx context.Context, patientID string, metric v1.Metric, start, end time.Time) ([]v1.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.samplesMu.RLock()
	var out []v1.Sample
	for _, key := range s.series[seriesKey(patientID, metric)] {
		sample := s.samples[key]
		if !sample.SampleTime.Before(start) && sample.SampleTime.Before(end) {
			out = append(out, sample)
		}
	}
	s.samplesMu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SampleTime.Equal(out[j].SampleTime) {
			return out[i].SampleTime.Before(out[j].SampleTime)
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out, nil
}

// LastReceivedAt returns the latest received_at recorded for the patient.
func (s *Store) LastReceivedAt(ctx context.Context, patientID string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	s.samplesMu.RLock()
	defer s.samplesMu.RUnlock()

	at, ok := s.received[patientID]
	return at, ok, nil
}

// Recompute runs compute under the bucket's stripe lock and commits the result.
// The context is checked once more before the write, so an expired deadline
// never replaces the previous bucket.
func (s *Store) Recompute(ctx context.Context, key aggregation.BucketKey, compute storage.ComputeFunc) (*aggregation.Bucket, error) {
	stripe := s.stripes[partition.For(key.String())]
	select {
	case stripe <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("recompute %s: acquire lock: %w", key, ctx.Err())
	}
	defer func() { <-stripe }()

	bucket, err := compute(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recompute %s: %w", key, err)
	}

	series := bucketSeriesKey(key.PatientID, key.Metric, key.Granularity)
	start := key.Start.UnixNano()

	s.bucketsMu.Lock()
	defer s.bucketsMu.Unlock()

	if bucket == nil {
		delete(s.buckets[series], start)
		return nil, nil
	}

	stored := *bucket
	stored.Key = key
	if prev, ok := s.buckets[series][start]; ok && prev.LastAggregatedAt.After(stored.LastAggregatedAt) {
		stored.LastAggregatedAt = prev.LastAggregatedAt
	}
	if s.buckets[series] == nil {
		s.buckets[series] = make(map[int64]aggregation.Bucket)
	}
	s.buckets[series][start] = stored
	return &stored, nil
}

// GetBucket returns the committed bucket for key.
func (s *Store) GetBucket(ctx context.Context, key aggregation.BucketKey) (*aggregation.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.bucketsMu.RLock()
	defer s.bucketsMu.RUnlock()

	b, ok := s.buckets[bucketSeriesKey(key.PatientID, key.Metric, key.Granularity)][key.Start.UnixNano()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

// ListBuckets returns committed buckets of one series whose start is in [start, end).
func (s *Store) ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity, start, end time.Time) ([]aggregation.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.bucketsMu.RLock()
	var out []aggregation.Bucket
	for _, b := range s.buckets[bucketSeriesKey(patientID, metric, granularity)] {
		if !b.Key.Start.Before(start) && b.Key.Start.Before(end) {
			out = append(out, b)
		}
	}
	s.bucketsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.Start.Before(out[j].Key.Start) })
	return out, nil
}

// LatestBucket returns the committed bucket with the greatest start in one series.
func (s *Store) LatestBucket(ctx context.Context, patientID string, metric v1.Metric, granularity aggregation.Granularity) (*aggregation.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.bucketsMu.RLock()
	defer s.bucketsMu.RUnlock()

	var latest *aggregation.Bucket
	for _, b := range s.buckets[bucketSeriesKey(patientID, metric, granularity)] {
		if latest == nil || b.Key.Start.After(latest.Key.Start) {
			b := b
			latest = &b
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}
