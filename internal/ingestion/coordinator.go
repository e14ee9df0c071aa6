package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitalink/vitalink-core/internal/aggregation"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/dedup"
	"github.com/vitalink/vitalink-core/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultClockSkewTolerance = 5 * time.Minute
	defaultMaxBatchSize       = 1000
	defaultWorkerCount        = 8
)

// Physiological bounds outside which a reading is a device fault, not a measurement.
var (
	heartRateMin = decimal.NewFromInt(20)
	heartRateMax = decimal.NewFromInt(300)
	spo2Min      = decimal.Zero
	spo2Max      = decimal.NewFromInt(100)
)

// ErrBatchTooLarge is returned when a batch exceeds the configured sample limit.
var ErrBatchTooLarge = errors.New("batch exceeds maximum size")

// SourceValidator confirms that a device is registered to a patient.
type SourceValidator interface {
	ValidateSource(ctx context.Context, patientID, deviceID string) error
}

// Aggregator recomputes the buckets touched by stored samples and reports windows it
// could not rebuild yet.
type Aggregator interface {
	Trigger(ctx context.Context, windows []aggregation.Window) []aggregation.Window
}

// Parameter holds coordinator options.
type Parameter struct {
	// ClockSkewTolerance is how far in the future a sample_time may be.
	ClockSkewTolerance time.Duration
	MaxBatchSize       int
	// WorkerCount bounds concurrent puts within one batch.
	WorkerCount int
	Now         func() time.Time
}

func (p Parameter) normalized() Parameter {
	n := p
	if n.ClockSkewTolerance <= 0 {
		n.ClockSkewTolerance = defaultClockSkewTolerance
	}
	if n.MaxBatchSize <= 0 {
		n.MaxBatchSize = defaultMaxBatchSize
	}
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	if n.Now == nil {
		n.Now = func() time.Time { return time.Now().UTC() }
	}
	return n
}

// Coordinator drives a batch through validation, deduplicated storage and aggregation.
type Coordinator struct {
	sources    SourceValidator
	dedup      *dedup.Deduplicator
	aggregator Aggregator
	metrics    *metrics.Metrics
	opts       Parameter
}

// NewCoordinator wires the ingestion pipeline.
func NewCoordinator(sources SourceValidator, d *dedup.Deduplicator, agg Aggregator, m *metrics.Metrics, opts Parameter) *Coordinator {
	if sources == nil {
		panic("ingestion: source validator must not be nil")
	}
	if d == nil {
		panic("ingestion: deduplicator must not be nil")
	}
	if agg == nil {
		panic("ingestion: aggregator must not be nil")
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Coordinator{
		sources:    sources,
		dedup:      d,
		aggregator: agg,
		metrics:    m,
		opts:       opts.normalized(),
	}
}

// MaxBatchSize is the largest accepted batch.
func (c *Coordinator) MaxBatchSize() int {
	return c.opts.MaxBatchSize
}

// Ingest stores every valid, new sample of the batch and recomputes the touched windows.
//
// Each sample gets its own outcome; a rejected or failed sample never blocks its siblings.
// An error is returned only when the batch as a whole cannot be processed: a malformed
// envelope, an oversized batch, or an unreachable registry.
func (c *Coordinator) Ingest(ctx context.Context, req *v1.IngestRequest) (*v1.IngestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Samples) > c.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d samples, limit %d", ErrBatchTooLarge, len(req.Samples), c.opts.MaxBatchSize)
	}

	result := &v1.IngestResult{
		BatchID:  uuid.NewString(),
		Outcomes: make([]v1.Outcome, len(req.Samples)),
	}
	for i := range result.Outcomes {
		result.Outcomes[i].Index = i
	}

	if err := c.sources.ValidateSource(ctx, req.PatientID, req.DeviceID); err != nil {
		var ve *coreerrors.ValidationError
		if !errors.As(err, &ve) {
			return nil, coreerrors.Transient("validate source", err)
		}
		slog.Warn("[Ingestion] Rejecting batch from unregistered source",
			"batch_id", result.BatchID,
			"patient_id", req.PatientID,
			"device_id", req.DeviceID,
			"reason", ve.Reason)
		for i, in := range req.Samples {
			c.reject(&result.Outcomes[i], in.Metric, ve)
		}
		result.Tally()
		return result, nil
	}

	receivedAt := c.opts.Now()
	windows := make(map[string]aggregation.Window)
	touched := make([]string, len(req.Samples))

	samples := make([]*v1.Sample, len(req.Samples))
	for i, in := range req.Samples {
		sample, err := c.toSample(req, in, receivedAt)
		if err != nil {
			c.reject(&result.Outcomes[i], in.Metric, err)
			continue
		}
		samples[i] = sample
	}

	g := new(errgroup.Group)
	g.SetLimit(c.opts.WorkerCount)
	for i, sample := range samples {
		if sample == nil {
			continue
		}
		g.Go(func() error {
			c.put(ctx, sample, &result.Outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	for i, sample := range samples {
		if sample == nil || result.Outcomes[i].Status != v1.OutcomeAccepted {
			continue
		}
		w := aggregation.WindowOf(sample)
		windows[w.String()] = w
		touched[i] = w.String()
	}

	if len(windows) > 0 {
		list := make([]aggregation.Window, 0, len(windows))
		for _, w := range windows {
			list = append(list, w)
		}

		pending := make(map[string]bool)
		for _, w := range c.aggregator.Trigger(ctx, list) {
			pending[w.String()] = true
		}
		for i, key := range touched {
			if key != "" && pending[key] {
				result.Outcomes[i].AggregationPending = true
			}
		}
	}

	result.Tally()
	slog.Info("[Ingestion] Batch processed",
		"batch_id", result.BatchID,
		"patient_id", req.PatientID,
		"device_id", req.DeviceID,
		"accepted", result.Accepted,
		"duplicates", result.Duplicates,
		"rejected", result.Rejected,
		"aggregation_pending", result.AggregationPending)
	return result, nil
}

// put stores one validated sample and records its outcome.
func (c *Coordinator) put(ctx context.Context, sample *v1.Sample, out *v1.Outcome) {
	decision, err := c.dedup.Check(ctx, sample)
	if err != nil {
		slog.Error("[Ingestion] Failed to store sample",
			"key", sample.Key().String(),
			"error", err)
		out.Status = v1.OutcomeRejected
		out.Reason = coreerrors.ReasonStorageUnavailable
		c.count(string(sample.Metric), out.Status)
		return
	}

	switch decision {
	case dedup.DecisionAccepted:
		out.Status = v1.OutcomeAccepted
	default:
		out.Status = v1.OutcomeDuplicateIgnored
	}
	c.count(string(sample.Metric), out.Status)
}

func (c *Coordinator) reject(out *v1.Outcome, metric string, err error) {
	out.Status = v1.OutcomeRejected
	out.Reason = coreerrors.ReasonOf(err, coreerrors.ReasonStorageUnavailable)
	slog.Debug("[Ingestion] Sample rejected", "index", out.Index, "reason", out.Reason, "error", err)

	// Keep label cardinality bounded: unknown metric names are not used as labels.
	if !v1.Metric(metric).Valid() {
		metric = "unknown"
	}
	c.count(metric, out.Status)
}

func (c *Coordinator) count(metric string, status v1.OutcomeStatus) {
	c.metrics.SamplesIngested.WithLabelValues(metric, string(status)).Inc()
}

// toSample validates one submitted reading and converts it into a storable sample.
func (c *Coordinator) toSample(req *v1.IngestRequest, in v1.SampleInput, receivedAt time.Time) (*v1.Sample, error) {
	if in.Metric == "" {
		return nil, coreerrors.Validationf(coreerrors.ReasonMissingMetric, "metric is required")
	}
	metric, err := v1.ParseMetric(in.Metric)
	if err != nil {
		return nil, &coreerrors.ValidationError{Reason: coreerrors.ReasonUnsupportedMetric, Message: err.Error()}
	}

	if in.SampleTime.IsZero() {
		return nil, coreerrors.Validationf(coreerrors.ReasonMissingSampleTime, "sample_time is required")
	}
	sampleTime := v1.NormalizeTime(in.SampleTime)
	if limit := receivedAt.Add(c.opts.ClockSkewTolerance); sampleTime.After(limit) {
		return nil, coreerrors.Validationf(coreerrors.ReasonFutureSampleTime,
			"sample_time %s is after %s", sampleTime.Format(time.RFC3339), limit.Format(time.RFC3339))
	}

	if err := validateValue(metric, in.Value); err != nil {
		return nil, err
	}

	return &v1.Sample{
		PatientID:  req.PatientID,
		Metric:     metric,
		DeviceID:   req.DeviceID,
		SampleTime: sampleTime,
		Value:      in.Value,
		ReceivedAt: receivedAt,
	}, nil
}

func validateValue(metric v1.Metric, value decimal.Decimal) error {
	switch metric {
	case v1.MetricSteps:
		if value.IsNegative() {
			return coreerrors.Validationf(coreerrors.ReasonValueOutOfRange, "steps must be >= 0, got %s", value)
		}
		if !value.Equal(value.Truncate(0)) {
			return coreerrors.Validationf(coreerrors.ReasonValueNotInteger, "steps must be an integer, got %s", value)
		}
	case v1.MetricHeartRate:
		if value.LessThan(heartRateMin) || value.GreaterThan(heartRateMax) {
			return coreerrors.Validationf(coreerrors.ReasonValueOutOfRange,
				"heart_rate must be in [%s, %s], got %s", heartRateMin, heartRateMax, value)
		}
	case v1.MetricSpO2:
		if value.LessThan(spo2Min) || value.GreaterThan(spo2Max) {
			return coreerrors.Validationf(coreerrors.ReasonValueOutOfRange,
				"spo2 must be in [%s, %s], got %s", spo2Min, spo2Max, value)
		}
	}
	return nil
}
