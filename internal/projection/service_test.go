package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalink/vitalink-core/internal/aggregation"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreagg "github.com/vitalink/vitalink-core/internal/core/aggregation"
	"github.com/vitalink/vitalink-core/internal/core/storage/memory"
	"github.com/vitalink/vitalink-core/internal/registry"
	regstorage "github.com/vitalink/vitalink-core/internal/registry/storage"
)

var (
	now      = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) // Monday
	sunday   = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	received = time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
)

type fixture struct {
	store      *memory.Store
	aggregator *aggregation.Service
	queue      *aggregation.MemoryQueue
	svc        *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	queue := aggregation.NewMemoryQueue()
	agg := aggregation.NewService(store, queue, nil, aggregation.ServiceParameter{Now: func() time.Time { return now }})
	patients := registry.NewRegistry(regstorage.NewMemoryRepository(
		registry.Patient{ID: "patient-2", DisplayName: "Grace", Devices: []registry.Device{{ID: "watch-2"}}},
		registry.Patient{ID: "patient-1", DisplayName: "Ada", Devices: []registry.Device{{ID: "watch-1"}}},
	))
	svc := NewService(store, store, patients, agg, Parameter{Now: func() time.Time { return now }})
	return &fixture{store: store, aggregator: agg, queue: queue, svc: svc}
}

func (f *fixture) ingest(t *testing.T, metric v1.Metric, at time.Time, value string) {
	t.Helper()
	s := &v1.Sample{
		PatientID:  "patient-1",
		Metric:     metric,
		DeviceID:   "watch-1",
		SampleTime: at,
		Value:      decimal.RequireFromString(value),
		ReceivedAt: received,
	}
	require.NoError(t, f.store.PutSample(context.Background(), s))
	require.Empty(t, f.aggregator.Trigger(context.Background(), []aggregation.Window{aggregation.WindowOf(s)}))
}

func TestService_Latest(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, v1.MetricSteps, sunday.Add(9*time.Hour), "5000")
	f.ingest(t, v1.MetricSteps, monday.Add(10*time.Hour+5*time.Minute), "120")
	f.ingest(t, v1.MetricSteps, monday.Add(10*time.Hour+35*time.Minute), "80")
	f.ingest(t, v1.MetricHeartRate, monday.Add(10*time.Hour), "70")
	f.ingest(t, v1.MetricHeartRate, monday.Add(11*time.Hour), "90")

	summary, err := f.svc.Latest(context.Background(), "patient-1")
	require.NoError(t, err)

	assert.Equal(t, "patient-1", summary.PatientID)
	assert.Equal(t, "Ada", summary.DisplayName)
	assert.True(t, summary.GeneratedAt.Equal(now))

	require.NotNil(t, summary.Steps)
	assert.Equal(t, "2026-03-02", summary.Steps.Date)
	assert.Equal(t, "200", summary.Steps.Values.(coreagg.StepsAggregate).Sum.String())
	assert.Equal(t, int64(2), summary.Steps.SampleCount)

	require.NotNil(t, summary.HeartRate)
	hr := summary.HeartRate.Values.(coreagg.HeartRateAggregate)
	assert.Equal(t, "70", hr.Min.String())
	assert.Equal(t, "90", hr.Max.String())
	assert.Equal(t, "80", hr.Avg.String())

	assert.Nil(t, summary.SpO2)
	require.NotNil(t, summary.LastSyncAt)
	assert.True(t, summary.LastSyncAt.Equal(received))
}

func TestService_LatestUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Latest(context.Background(), "patient-9")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestService_LatestReturnsOldDayBucket(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, v1.MetricSteps, monday.AddDate(0, 0, -45).Add(9*time.Hour), "300")
	f.ingest(t, v1.MetricSpO2, monday.AddDate(0, 0, -400).Add(7*time.Hour), "97")

	summary, err := f.svc.Latest(context.Background(), "patient-1")
	require.NoError(t, err)

	require.NotNil(t, summary.Steps)
	assert.Equal(t, "2026-01-16", summary.Steps.Date)
	assert.Equal(t, "300", summary.Steps.Values.(coreagg.StepsAggregate).Sum.String())

	require.NotNil(t, summary.SpO2)
	assert.Equal(t, "2025-01-26", summary.SpO2.Date)
	assert.Nil(t, summary.HeartRate)
}

func TestService_LatestPicksNewestAcrossGap(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, v1.MetricHeartRate, monday.AddDate(0, 0, -20).Add(8*time.Hour), "60")
	f.ingest(t, v1.MetricHeartRate, monday.AddDate(0, 0, -6).Add(8*time.Hour), "75")
	f.ingest(t, v1.MetricHeartRate, monday.AddDate(0, 0, -13).Add(8*time.Hour), "90")

	summary, err := f.svc.Latest(context.Background(), "patient-1")
	require.NoError(t, err)

	require.NotNil(t, summary.HeartRate)
	assert.Equal(t, "2026-02-24", summary.HeartRate.Date)
	assert.Equal(t, "75", summary.HeartRate.Values.(coreagg.HeartRateAggregate).Max.String())
	assert.Equal(t, int64(1), summary.HeartRate.SampleCount)
}

func TestService_Summary(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, v1.MetricSpO2, monday.Add(8*time.Hour), "97")

	require.NoError(t, f.queue.Enqueue(context.Background(), aggregation.PendingWindow{
		Window:        aggregation.Window{PatientID: "patient-1", Metric: v1.MetricSteps, HourStart: monday},
		Attempts:      1,
		NextAttemptAt: now.Add(time.Minute),
	}))

	summary, err := f.svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PendingAggregations)
	require.Len(t, summary.Patients, 2)
	assert.Equal(t, "patient-1", summary.Patients[0].PatientID)
	assert.NotNil(t, summary.Patients[0].SpO2)
	assert.Equal(t, "patient-2", summary.Patients[1].PatientID)
	assert.Nil(t, summary.Patients[1].Steps)
	assert.Nil(t, summary.Patients[1].LastSyncAt)
}

type brokenBuckets struct{}

func (brokenBuckets) ListBuckets(context.Context, string, v1.Metric, coreagg.Granularity, time.Time, time.Time) ([]coreagg.Bucket, error) {
	return nil, errors.New("database is down")
}

func (brokenBuckets) LatestBucket(context.Context, string, v1.Metric, coreagg.Granularity) (*coreagg.Bucket, error) {
	return nil, errors.New("database is down")
}

func TestService_SummaryFailsOnStoreError(t *testing.T) {
	f := newFixture(t)
	f.svc.buckets = brokenBuckets{}

	_, err := f.svc.Summary(context.Background())
	require.Error(t, err)
}

func TestService_History(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, v1.MetricHeartRate, sunday.Add(9*time.Hour), "60")
	f.ingest(t, v1.MetricHeartRate, monday.Add(9*time.Hour), "70")
	f.ingest(t, v1.MetricHeartRate, monday.Add(9*time.Hour+time.Minute), "80")
	f.ingest(t, v1.MetricHeartRate, monday.Add(10*time.Hour), "120")

	query := func(granularity string) *HistoryResponse {
		t.Helper()
		resp, err := f.svc.History(context.Background(), HistoryQuery{
			PatientID:   "patient-1",
			Metric:      v1.MetricHeartRate,
			Granularity: granularity,
			Start:       sunday,
			End:         monday.Add(24 * time.Hour),
		})
		require.NoError(t, err)
		return resp
	}

	hours := query("hour")
	require.Len(t, hours.Points, 3)
	assert.True(t, hours.Points[1].WindowStart.Equal(monday.Add(9*time.Hour)))
	assert.True(t, hours.Points[1].WindowEnd.Equal(monday.Add(10*time.Hour)))
	assert.Equal(t, "75", hours.Points[1].Values.(coreagg.HeartRateAggregate).Avg.String())

	days := query("day")
	require.Len(t, days.Points, 2)
	assert.Equal(t, int64(3), days.Points[1].SampleCount)
	assert.Equal(t, "90", days.Points[1].Values.(coreagg.HeartRateAggregate).Avg.String())

	// Sunday closes one ISO week, Monday opens the next.
	weeks := query("week")
	require.Len(t, weeks.Points, 2)
	assert.True(t, weeks.Points[0].WindowStart.Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)))
	assert.True(t, weeks.Points[1].WindowStart.Equal(monday))
	assert.True(t, weeks.Points[1].WindowEnd.Equal(monday.AddDate(0, 0, 7)))

	total := query("total")
	require.Len(t, total.Points, 1)
	hr := total.Points[0].Values.(coreagg.HeartRateAggregate)
	assert.Equal(t, "60", hr.Min.String())
	assert.Equal(t, "120", hr.Max.String())
	assert.Equal(t, "82.5", hr.Avg.String())
	assert.Equal(t, int64(4), total.Points[0].SampleCount)
}

func TestService_HistoryEmptyRange(t *testing.T) {
	f := newFixture(t)

	for _, g := range []string{"hour", "day", "week", "total"} {
		resp, err := f.svc.History(context.Background(), HistoryQuery{
			PatientID: "patient-1", Metric: v1.MetricSteps, Granularity: g, Start: sunday, End: monday,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Points, g)
	}
}

func TestService_HistoryValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		q    HistoryQuery
		want error
	}{
		{
			name: "unsupported metric",
			q:    HistoryQuery{PatientID: "patient-1", Metric: "weight", Start: sunday, End: monday},
			want: ErrInvalidQuery,
		},
		{
			name: "invalid granularity",
			q:    HistoryQuery{PatientID: "patient-1", Metric: v1.MetricSteps, Granularity: "5m", Start: sunday, End: monday},
			want: ErrInvalidQuery,
		},
		{
			name: "end before start",
			q:    HistoryQuery{PatientID: "patient-1", Metric: v1.MetricSteps, Start: monday, End: sunday},
			want: ErrInvalidQuery,
		},
		{
			name: "range too long",
			q:    HistoryQuery{PatientID: "patient-1", Metric: v1.MetricSteps, Start: sunday.AddDate(-2, 0, 0), End: monday},
			want: ErrInvalidQuery,
		},
		{
			name: "unknown patient",
			q:    HistoryQuery{PatientID: "patient-9", Metric: v1.MetricSteps, Start: sunday, End: monday},
			want: ErrPatientNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.History(context.Background(), tt.q)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWeekStart(t *testing.T) {
	assert.True(t, weekStart(monday.Add(5*time.Hour)).Equal(monday))
	assert.True(t, weekStart(sunday.Add(23*time.Hour)).Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)))
	assert.True(t, weekStart(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)).Equal(monday))
}
