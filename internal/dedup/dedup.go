// Package dedup decides whether an incoming sample is new or a re-delivery.
package dedup

import (
	"context"
	"errors"
	"log/slog"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/core/storage"
	"github.com/vitalink/vitalink-core/internal/metrics"
)

// Decision is the outcome of a deduplication check.
type Decision int

const (
	// DecisionAccepted means the sample was new and is now stored.
	DecisionAccepted Decision = iota + 1
	// DecisionDuplicateIgnored means a sample with the same natural key was already stored.
	DecisionDuplicateIgnored
)

func (d Decision) String() string {
	switch d {
	case DecisionAccepted:
		return "accepted"
	case DecisionDuplicateIgnored:
		return "duplicate_ignored"
	default:
		return "unknown"
	}
}

// Deduplicator stores samples at most once per natural key.
//
// The check and the insert are one operation: the store's uniqueness constraint decides
// which of several concurrent deliveries wins, so there is no read-then-write race.
type Deduplicator struct {
	store   storage.EventStore
	metrics *metrics.Metrics
}

// New creates a Deduplicator backed by store.
func New(store storage.EventStore, m *metrics.Metrics) *Deduplicator {
	if store == nil {
		panic("dedup: store must not be nil")
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Deduplicator{store: store, metrics: m}
}

// Check inserts sample if its natural key is absent. A duplicate never mutates the stored
// sample, whatever its value. Store failures are returned as TransientStorageError.
func (d *Deduplicator) Check(ctx context.Context, sample *v1.Sample) (Decision, error) {
	sample.SampleTime = v1.NormalizeTime(sample.SampleTime)

	err := d.store.PutSample(ctx, sample)
	if err == nil {
		return DecisionAccepted, nil
	}
	if !errors.Is(err, storage.ErrDuplicate) {
		if coreerrors.IsTransient(err) {
			return 0, err
		}
		return 0, coreerrors.Transient("put sample", err)
	}

	slog.Debug("[Dedup] Duplicate sample ignored", "key", sample.Key().String())
	d.reportConflict(ctx, sample)
	return DecisionDuplicateIgnored, nil
}

// reportConflict flags a re-delivery whose value differs from the stored one. Failing to
// load the stored sample only loses the warning, never the decision.
func (d *Deduplicator) reportConflict(ctx context.Context, incoming *v1.Sample) {
	stored, err := d.store.GetSample(ctx, incoming.Key())
	if err != nil {
		slog.Debug("[Dedup] Could not load stored sample for conflict check",
			"key", incoming.Key().String(),
			"error", err)
		return
	}
	if stored.Value.Equal(incoming.Value) {
		return
	}

	conflict := &coreerrors.DuplicateConflict{
		Key:           incoming.Key().String(),
		StoredValue:   stored.Value.String(),
		IncomingValue: incoming.Value.String(),
	}
	d.metrics.DuplicateConflicts.Inc()
	slog.Warn("[Dedup] Data integrity warning: conflicting duplicate",
		"patient_id", incoming.PatientID,
		"device_id", incoming.DeviceID,
		"metric", incoming.Metric,
		"error", conflict)
}
