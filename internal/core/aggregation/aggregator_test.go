package aggregation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
)

var (
	hour10 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	now    = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
)

func sample(metric v1.Metric, at time.Time, value int64) v1.Sample {
	return v1.Sample{
		PatientID:  "patient-1",
		Metric:     metric,
		DeviceID:   "watch-1",
		SampleTime: at,
		Value:      decimal.NewFromInt(value),
		ReceivedAt: now,
	}
}

func decimalEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeHour_StepsSum(t *testing.T) {
	key := HourKey("patient-1", v1.MetricSteps, hour10)
	samples := []v1.Sample{
		sample(v1.MetricSteps, hour10.Add(5*time.Minute), 120),
		sample(v1.MetricSteps, hour10.Add(20*time.Minute), 80),
	}

	bucket, err := ComputeHour(key, samples, now)
	require.NoError(t, err)
	require.NotNil(t, bucket)

	agg, ok := bucket.Aggregate.(StepsAggregate)
	require.True(t, ok)
	decimalEq(t, "200", agg.Sum)
	assert.Equal(t, int64(2), bucket.SampleCount)
	assert.Equal(t, now, bucket.LastAggregatedAt)
	assert.Equal(t, key, bucket.Key)
}

func TestComputeHour_HeartRateStats(t *testing.T) {
	key := HourKey("patient-1", v1.MetricHeartRate, hour10)
	samples := []v1.Sample{
		sample(v1.MetricHeartRate, hour10.Add(1*time.Minute), 70),
		sample(v1.MetricHeartRate, hour10.Add(2*time.Minute), 90),
		sample(v1.MetricHeartRate, hour10.Add(3*time.Minute), 80),
	}

	bucket, err := ComputeHour(key, samples, now)
	require.NoError(t, err)

	agg, ok := bucket.Aggregate.(HeartRateAggregate)
	require.True(t, ok)
	decimalEq(t, "70", agg.Min)
	decimalEq(t, "90", agg.Max)
	decimalEq(t, "80", agg.Avg)
	decimalEq(t, "240", agg.Sum)
	assert.Equal(t, int64(3), bucket.SampleCount)
}

func TestComputeHour_SpO2AvgRounded(t *testing.T) {
	key := HourKey("patient-1", v1.MetricSpO2, hour10)
	samples := []v1.Sample{
		sample(v1.MetricSpO2, hour10.Add(1*time.Minute), 97),
		sample(v1.MetricSpO2, hour10.Add(2*time.Minute), 98),
		sample(v1.MetricSpO2, hour10.Add(3*time.Minute), 98),
	}

	bucket, err := ComputeHour(key, samples, now)
	require.NoError(t, err)

	agg, ok := bucket.Aggregate.(SpO2Aggregate)
	require.True(t, ok)
	decimalEq(t, "97", agg.Min)
	decimalEq(t, "98", agg.Max)
	decimalEq(t, "97.6667", agg.Avg)
}

func TestComputeHour_NoSamplesMeansNoBucket(t *testing.T) {
	bucket, err := ComputeHour(HourKey("patient-1", v1.MetricSteps, hour10), nil, now)
	require.NoError(t, err)
	assert.Nil(t, bucket)
}

func TestComputeHour_IsPure(t *testing.T) {
	key := HourKey("patient-1", v1.MetricHeartRate, hour10)
	samples := []v1.Sample{
		sample(v1.MetricHeartRate, hour10.Add(1*time.Minute), 61),
		sample(v1.MetricHeartRate, hour10.Add(7*time.Minute), 77),
		sample(v1.MetricHeartRate, hour10.Add(59*time.Minute), 104),
	}

	first, err := ComputeHour(key, samples, now)
	require.NoError(t, err)
	second, err := ComputeHour(key, samples, now)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestComputeHour_RejectsForeignSamples(t *testing.T) {
	key := HourKey("patient-1", v1.MetricSteps, hour10)

	_, err := ComputeHour(key, []v1.Sample{sample(v1.MetricSteps, hour10.Add(time.Hour), 5)}, now)
	require.Error(t, err, "sample at the exclusive end belongs to the next hour")

	_, err = ComputeHour(key, []v1.Sample{sample(v1.MetricHeartRate, hour10, 5)}, now)
	require.Error(t, err)

	_, err = ComputeHour(DayKey("patient-1", v1.MetricSteps, hour10), nil, now)
	require.Error(t, err)
}

func TestComputeDay_FromHours(t *testing.T) {
	day := DayStart(hour10)
	h1, err := ComputeHour(HourKey("patient-1", v1.MetricHeartRate, hour10), []v1.Sample{
		sample(v1.MetricHeartRate, hour10.Add(time.Minute), 60),
		sample(v1.MetricHeartRate, hour10.Add(2*time.Minute), 70),
		sample(v1.MetricHeartRate, hour10.Add(3*time.Minute), 80),
	}, now)
	require.NoError(t, err)

	hour14 := hour10.Add(4 * time.Hour)
	h2, err := ComputeHour(HourKey("patient-1", v1.MetricHeartRate, hour14), []v1.Sample{
		sample(v1.MetricHeartRate, hour14.Add(time.Minute), 120),
	}, now)
	require.NoError(t, err)

	bucket, err := ComputeDay(DayKey("patient-1", v1.MetricHeartRate, day), []Bucket{*h1, *h2}, now)
	require.NoError(t, err)

	agg := bucket.Aggregate.(HeartRateAggregate)
	decimalEq(t, "60", agg.Min)
	decimalEq(t, "120", agg.Max)
	decimalEq(t, "330", agg.Sum)
	// Weighted by sample count: 330 / 4, not the mean of hour averages (70 + 120) / 2.
	decimalEq(t, "82.5", agg.Avg)
	assert.Equal(t, int64(4), bucket.SampleCount)
	assert.Equal(t, day, bucket.Key.Start)
}

func TestComputeDay_StepsSumOfHours(t *testing.T) {
	h1, err := ComputeHour(HourKey("patient-1", v1.MetricSteps, hour10), []v1.Sample{
		sample(v1.MetricSteps, hour10, 120),
		sample(v1.MetricSteps, hour10.Add(30*time.Minute), 80),
	}, now)
	require.NoError(t, err)
	hour23 := DayStart(hour10).Add(23 * time.Hour)
	h2, err := ComputeHour(HourKey("patient-1", v1.MetricSteps, hour23), []v1.Sample{
		sample(v1.MetricSteps, hour23.Add(59*time.Minute), 1000),
	}, now)
	require.NoError(t, err)

	bucket, err := ComputeDay(DayKey("patient-1", v1.MetricSteps, hour10), []Bucket{*h1, *h2}, now)
	require.NoError(t, err)
	decimalEq(t, "1200", bucket.Aggregate.(StepsAggregate).Sum)
	assert.Equal(t, int64(3), bucket.SampleCount)
}

func TestComputeDay_NoHoursMeansNoBucket(t *testing.T) {
	bucket, err := ComputeDay(DayKey("patient-1", v1.MetricSteps, hour10), nil, now)
	require.NoError(t, err)
	assert.Nil(t, bucket)
}

func TestComputeDay_RejectsHourFromOtherDay(t *testing.T) {
	nextDay := DayStart(hour10).Add(24 * time.Hour)
	h, err := ComputeHour(HourKey("patient-1", v1.MetricSteps, nextDay), []v1.Sample{
		sample(v1.MetricSteps, nextDay, 10),
	}, now)
	require.NoError(t, err)

	_, err = ComputeDay(DayKey("patient-1", v1.MetricSteps, hour10), []Bucket{*h}, now)
	require.Error(t, err)
}

func TestColumnsRoundTrip(t *testing.T) {
	agg := HeartRateAggregate{
		Min: decimal.NewFromInt(60),
		Max: decimal.NewFromInt(90),
		Avg: decimal.RequireFromString("72.3333"),
		Sum: decimal.NewFromInt(217),
	}

	cols := ToColumns(agg)
	assert.True(t, cols.Min.Valid)

	back, err := FromColumns(v1.MetricHeartRate, cols)
	require.NoError(t, err)
	assert.Equal(t, agg, back)

	steps := ToColumns(StepsAggregate{Sum: decimal.NewFromInt(5)})
	assert.False(t, steps.Min.Valid)
	assert.False(t, steps.Avg.Valid)

	_, err = FromColumns(v1.MetricSpO2, steps)
	require.Error(t, err)
}

func TestReducersCoverEveryMetric(t *testing.T) {
	for _, m := range v1.Metrics {
		_, ok := Reducers[m]
		assert.True(t, ok, "no reducer for %s", m)
	}
}
