package dedup_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/core/storage"
	"github.com/vitalink/vitalink-core/internal/core/storage/memory"
	"github.com/vitalink/vitalink-core/internal/dedup"
	"github.com/vitalink/vitalink-core/internal/metrics"
	storagemocks "github.com/vitalink/vitalink-core/internal/mocks/storage"
)

var sampleTime = time.Date(2026, 3, 2, 10, 5, 0, 0, time.UTC)

func steps(value int64) *v1.Sample {
	return &v1.Sample{
		PatientID:  "patient-1",
		Metric:     v1.MetricSteps,
		DeviceID:   "watch-1",
		SampleTime: sampleTime,
		Value:      decimal.NewFromInt(value),
		ReceivedAt: sampleTime.Add(time.Minute),
	}
}

func TestCheck_FirstDeliveryAccepted(t *testing.T) {
	store := memory.NewStore()
	d := dedup.New(store, nil)

	decision, err := d.Check(context.Background(), steps(120))
	require.NoError(t, err)
	assert.Equal(t, dedup.DecisionAccepted, decision)

	stored, err := store.GetSample(context.Background(), steps(120).Key())
	require.NoError(t, err)
	assert.Equal(t, "120", stored.Value.String())
}

func TestCheck_RedeliveryIgnored(t *testing.T) {
	store := memory.NewStore()
	m := metrics.NewNop()
	d := dedup.New(store, m)
	ctx := context.Background()

	_, err := d.Check(ctx, steps(120))
	require.NoError(t, err)

	decision, err := d.Check(ctx, steps(120))
	require.NoError(t, err)
	assert.Equal(t, dedup.DecisionDuplicateIgnored, decision)
	assert.Zero(t, testutil.ToFloat64(m.DuplicateConflicts))
}

func TestCheck_ConflictingRedeliveryKeepsFirstValue(t *testing.T) {
	store := memory.NewStore()
	m := metrics.NewNop()
	d := dedup.New(store, m)
	ctx := context.Background()

	_, err := d.Check(ctx, steps(120))
	require.NoError(t, err)

	decision, err := d.Check(ctx, steps(999))
	require.NoError(t, err)
	assert.Equal(t, dedup.DecisionDuplicateIgnored, decision)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicateConflicts))

	stored, err := store.GetSample(ctx, steps(0).Key())
	require.NoError(t, err)
	assert.Equal(t, "120", stored.Value.String())
}

func TestCheck_NormalizesSampleTime(t *testing.T) {
	store := memory.NewStore()
	d := dedup.New(store, nil)
	ctx := context.Background()

	_, err := d.Check(ctx, steps(120))
	require.NoError(t, err)

	// Same instant in another zone with sub-microsecond noise is the same sample.
	shifted := steps(120)
	shifted.SampleTime = sampleTime.In(time.FixedZone("UTC+2", 2*60*60)).Add(300 * time.Nanosecond)
	decision, err := d.Check(ctx, shifted)
	require.NoError(t, err)
	assert.Equal(t, dedup.DecisionDuplicateIgnored, decision)
}

func TestCheck_ConcurrentIdenticalDeliveries(t *testing.T) {
	store := memory.NewStore()
	d := dedup.New(store, nil)
	ctx := context.Background()

	const n = 50
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		ignored  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := d.Check(ctx, steps(120))
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			switch decision {
			case dedup.DecisionAccepted:
				accepted++
			case dedup.DecisionDuplicateIgnored:
				ignored++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, n-1, ignored)

	samples, err := store.ListSamples(ctx, "patient-1", v1.MetricSteps, sampleTime, sampleTime.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestCheck_StoreFailureIsTransient(t *testing.T) {
	store := storagemocks.NewEventStore(t)
	store.EXPECT().PutSample(mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	decision, err := dedup.New(store, nil).Check(context.Background(), steps(120))
	require.Error(t, err)
	assert.True(t, coreerrors.IsTransient(err))
	assert.Zero(t, decision)
}

func TestCheck_ConflictLookupFailureStillIgnores(t *testing.T) {
	store := storagemocks.NewEventStore(t)
	store.EXPECT().PutSample(mock.Anything, mock.Anything).Return(storage.ErrDuplicate).Once()
	store.EXPECT().GetSample(mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	decision, err := dedup.New(store, nil).Check(context.Background(), steps(120))
	require.NoError(t, err)
	assert.Equal(t, dedup.DecisionDuplicateIgnored, decision)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "accepted", dedup.DecisionAccepted.String())
	assert.Equal(t, "duplicate_ignored", dedup.DecisionDuplicateIgnored.String())
	assert.Equal(t, "unknown", dedup.Decision(0).String())
}
