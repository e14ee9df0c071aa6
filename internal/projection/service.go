package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreagg "github.com/vitalink/vitalink-core/internal/core/aggregation"
	"github.com/vitalink/vitalink-core/internal/core/storage"
	"github.com/vitalink/vitalink-core/internal/registry"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 8
	maxHistoryRange    = 366 * 24 * time.Hour
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrPatientNotFound is returned for patients missing from the registry.
	ErrPatientNotFound = errors.New("patient not found")
)

// BucketReader reads materialized buckets. Reads take no bucket locks.
type BucketReader interface {
	ListBuckets(ctx context.Context, patientID string, metric v1.Metric, granularity coreagg.Granularity, start, end time.Time) ([]coreagg.Bucket, error)
	LatestBucket(ctx context.Context, patientID string, metric v1.Metric, granularity coreagg.Granularity) (*coreagg.Bucket, error)
}

// SyncReader reports when a patient's samples last arrived.
type SyncReader interface {
	LastReceivedAt(ctx context.Context, patientID string) (time.Time, bool, error)
}

// PatientDirectory lists registered patients.
type PatientDirectory interface {
	GetPatient(ctx context.Context, patientID string) (*registry.Patient, error)
	ListPatients(ctx context.Context) ([]registry.Patient, error)
}

// PendingCounter reports how many windows await a retried recompute.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int, error)
}

// Parameter holds reader options.
type Parameter struct {
	// Concurrency bounds patients summarized in parallel.
	Concurrency int
	Now         func() time.Time
}

func (p Parameter) normalized() Parameter {
	n := p
	if n.Concurrency <= 0 {
		n.Concurrency = defaultConcurrency
	}
	if n.Now == nil {
		n.Now = func() time.Time { return time.Now().UTC() }
	}
	return n
}

// Service serves summaries from materialized buckets.
//
// A summary reflects every sample whose triggering aggregation completed before the read.
// Samples whose recompute is still pending show up once the retry succeeds.
type Service struct {
	buckets  BucketReader
	received SyncReader
	patients PatientDirectory
	pending  PendingCounter
	opts     Parameter
}

// NewService creates a summary reader. pending may be nil.
func NewService(buckets BucketReader, received SyncReader, patients PatientDirectory, pending PendingCounter, opts Parameter) *Service {
	return &Service{
		buckets:  buckets,
		received: received,
		patients: patients,
		pending:  pending,
		opts:     opts.normalized(),
	}
}

// Latest returns the most recent day bucket per metric for one patient.
func (s *Service) Latest(ctx context.Context, patientID string) (*PatientSummary, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup patient %s: %w", patientID, err)
	}
	return s.summarize(ctx, *p, s.opts.Now())
}

// Summary returns the summary of every registered patient.
func (s *Service) Summary(ctx context.Context) (*FleetSummary, error) {
	now := s.opts.Now()

	patients, err := s.patients.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	summaries := make([]PatientSummary, len(patients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, p := range patients {
		g.Go(func() error {
			summary, err := s.summarize(gctx, p, now)
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pending := 0
	if s.pending != nil {
		if pending, err = s.pending.PendingCount(ctx); err != nil {
			// The summary is still correct; only the pending indicator is unknown.
			slog.Warn("[Projection] Could not read pending aggregation count", "error", err)
			pending = -1
		}
	}

	return &FleetSummary{
		GeneratedAt:         now,
		PendingAggregations: pending,
		Patients:            summaries,
	}, nil
}

func (s *Service) summarize(ctx context.Context, p registry.Patient, now time.Time) (*PatientSummary, error) {
	summary := &PatientSummary{
		PatientID:   p.ID,
		DisplayName: p.DisplayName,
		GeneratedAt: now,
	}

	views := map[v1.Metric]**DayView{
		v1.MetricSteps:     &summary.Steps,
		v1.MetricHeartRate: &summary.HeartRate,
		v1.MetricSpO2:      &summary.SpO2,
	}
	for _, metric := range v1.Metrics {
		latest, err := s.buckets.LatestBucket(ctx, p.ID, metric, coreagg.GranularityDay)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read latest %s day of %s: %w", metric, p.ID, err)
		}
		*views[metric] = &DayView{
			Date:             latest.Key.Start.Format(time.DateOnly),
			Values:           latest.Aggregate,
			SampleCount:      latest.SampleCount,
			LastAggregatedAt: latest.LastAggregatedAt,
		}
	}

	lastSync, ok, err := s.received.LastReceivedAt(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("read last sync of %s: %w", p.ID, err)
	}
	if ok {
		summary.LastSyncAt = &lastSync
	}
	return summary, nil
}

// History returns the buckets of one metric in [Start, End). Hour and day read stored
// buckets; week and total fold day buckets.
func (s *Service) History(ctx context.Context, q HistoryQuery) (*HistoryResponse, error) {
	if err := validateHistory(&q); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, q.PatientID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, q.PatientID)
		}
		return nil, fmt.Errorf("lookup patient %s: %w", q.PatientID, err)
	}

	source := coreagg.GranularityDay
	if q.Granularity == string(coreagg.GranularityHour) {
		source = coreagg.GranularityHour
	}
	buckets, err := s.buckets.ListBuckets(ctx, q.PatientID, q.Metric, source, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("read %s buckets: %w", source, err)
	}

	var points []HistoryPoint
	switch q.Granularity {
	case "week":
		points = rollupToWeek(q.Metric, buckets)
	case "total":
		points = rollupTotal(q.Metric, buckets, q.Start, q.End)
	default:
		points = convertToPoints(buckets)
	}

	return &HistoryResponse{
		PatientID:   q.PatientID,
		Metric:      q.Metric,
		Granularity: q.Granularity,
		Start:       q.Start,
		End:         q.End,
		Points:      points,
	}, nil
}

func validateHistory(q *HistoryQuery) error {
	if q.PatientID == "" {
		return invalidQueryf("patient_id is required")
	}
	if !q.Metric.Valid() {
		return invalidQueryf("unsupported metric %q", q.Metric)
	}
	if q.Granularity == "" {
		q.Granularity = string(coreagg.GranularityHour)
	}
	switch q.Granularity {
	case "hour", "day", "week", "total":
	default:
		return invalidQueryf("invalid granularity: %s (must be hour, day, week, or total)", q.Granularity)
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return invalidQueryf("start and end are required")
	}
	q.Start, q.End = q.Start.UTC(), q.End.UTC()
	if !q.End.After(q.Start) {
		return invalidQueryf("end time must be after start time")
	}
	if q.End.Sub(q.Start) > maxHistoryRange {
		return invalidQueryf("range exceeds %d days", int(maxHistoryRange.Hours()/24))
	}
	return nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
