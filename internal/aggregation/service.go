package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/core/storage"
	"github.com/vitalink/vitalink-core/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// ServiceParameter controls recompute fan-out, retry behavior and the clock.
type ServiceParameter struct {
	Concurrency int
	Retry       RetryPolicy
	Now         func() time.Time
}

func (p ServiceParameter) normalized() ServiceParameter {
	n := p
	if n.Concurrency <= 0 {
		n.Concurrency = defaultConcurrency
	}
	n.Retry = n.Retry.normalized()
	if n.Now == nil {
		n.Now = func() time.Time { return time.Now().UTC() }
	}
	return n
}

// Service rebuilds hour and day buckets from their sources.
//
// Every recompute is a full replay of the window (samples for an hour, hour buckets
// for a day), so running it again, concurrently, or late is always safe. The store
// serializes recomputes of one bucket; this service only decides what to rebuild.
type Service struct {
	buckets storage.BucketStore
	queue   PendingQueue
	metrics *metrics.Metrics
	opts    ServiceParameter
}

// NewService creates an aggregation service. queue may be nil, in which case failed
// windows are reported but not retried.
func NewService(buckets storage.BucketStore, queue PendingQueue, m *metrics.Metrics, opts ServiceParameter) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		buckets: buckets,
		queue:   queue,
		metrics: m,
		opts:    opts.normalized(),
	}
}

func (s *Service) observe(g aggregation.Granularity, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.Recomputes.WithLabelValues(string(g), status).Inc()
	s.metrics.RecomputeDuration.WithLabelValues(string(g)).Observe(time.Since(start).Seconds())
}

// RecomputeHour rebuilds the hour bucket starting at hourStart from every stored sample
// in [hourStart, hourStart+1h). An hour without samples ends up without a bucket.
func (s *Service) RecomputeHour(ctx context.Context, patientID string, metric v1.Metric, hourStart time.Time) (*aggregation.Bucket, error) {
	key := aggregation.HourKey(patientID, metric, hourStart)
	started := time.Now()

	bucket, err := s.buckets.Recompute(ctx, key, func(ctx context.Context, src storage.SourceReader) (*aggregation.Bucket, error) {
		samples, err := src.ListSamples(ctx, key.PatientID, key.Metric, key.Start, key.End())
		if err != nil {
			return nil, err
		}
		return aggregation.ComputeHour(key, samples, s.opts.Now())
	})
	s.observe(aggregation.GranularityHour, started, err)
	if err != nil {
		return nil, fmt.Errorf("recompute hour %s: %w", key, err)
	}
	return bucket, nil
}

// RecomputeDay rebuilds the day bucket starting at dayStart from the hour buckets that
// exist in that day. Missing hours contribute nothing.
func (s *Service) RecomputeDay(ctx context.Context, patientID string, metric v1.Metric, dayStart time.Time) (*aggregation.Bucket, error) {
	key := aggregation.DayKey(patientID, metric, dayStart)
	started := time.Now()

	bucket, err := s.buckets.Recompute(ctx, key, func(ctx context.Context, src storage.SourceReader) (*aggregation.Bucket, error) {
		hours, err := src.ListBuckets(ctx, key.PatientID, key.Metric, aggregation.GranularityHour, key.Start, key.End())
		if err != nil {
			return nil, err
		}
		return aggregation.ComputeDay(key, hours, s.opts.Now())
	})
	s.observe(aggregation.GranularityDay, started, err)
	if err != nil {
		return nil, fmt.Errorf("recompute day %s: %w", key, err)
	}
	return bucket, nil
}

// recomputeWindows rebuilds every distinct hour, then every distinct day, and returns
// the failed windows keyed by Window.String(). A day failure fails every window in it.
func (s *Service) recomputeWindows(ctx context.Context, windows []Window) map[string]windowFailure {
	hours := make(map[string]Window)
	days := make(map[string][]Window)
	for _, w := range windows {
		w.HourStart = aggregation.HourStart(w.HourStart)
		if _, seen := hours[w.String()]; seen {
			continue
		}
		hours[w.String()] = w
		days[w.DayKey().String()] = append(days[w.DayKey().String()], w)
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]windowFailure)
	)
	fail := func(w Window, err error) {
		mu.Lock()
		defer mu.Unlock()
		if _, exists := failed[w.String()]; !exists {
			failed[w.String()] = windowFailure{window: w, err: err}
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for _, w := range hours {
		g.Go(func() error {
			if _, err := s.RecomputeHour(ctx, w.PatientID, w.Metric, w.HourStart); err != nil {
				fail(w, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Days run after all hours so each day sees every hour rebuilt by this call.
	g = new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for _, members := range days {
		g.Go(func() error {
			day := members[0].DayKey()
			if _, err := s.RecomputeDay(ctx, day.PatientID, day.Metric, day.Start); err != nil {
				for _, w := range members {
					fail(w, err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return failed
}

type windowFailure struct {
	window Window
	err    error
}

// Trigger recomputes the buckets touched by windows. Windows whose recomputation failed
// are scheduled for retry and returned; the caller reports them as aggregation pending.
// Trigger itself never fails: a failed window is a delayed bucket, not a lost sample.
func (s *Service) Trigger(ctx context.Context, windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}

	failed := s.recomputeWindows(ctx, windows)
	if len(failed) == 0 {
		return nil
	}

	now := s.opts.Now()
	out := make([]Window, 0, len(failed))
	for _, f := range failed {
		w, err := f.window, f.err
		out = append(out, w)
		slog.Warn("[Aggregator] Recompute failed, scheduling retry",
			"window", w.String(),
			"transient", coreerrors.IsTransient(err),
			"error", err)

		if s.queue == nil {
			continue
		}
		// Enqueue outside the caller's deadline: the samples are already stored and
		// the retry record must not be lost because the request timed out.
		enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if qerr := s.queue.Enqueue(enqueueCtx, PendingWindow{
			Window:        w,
			Attempts:      1,
			FirstFailedAt: now,
			NextAttemptAt: now.Add(s.opts.Retry.Backoff(1)),
			LastError:     err.Error(),
		}); qerr != nil {
			slog.Error("[Aggregator] Failed to schedule retry", "window", w.String(), "error", qerr)
		}
		cancel()
	}
	s.refreshPendingGauge(ctx)

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// RecomputeRange replays every hour and then every day overlapping [start, end) for one
// series. It is the manual re-trigger for buckets left stale by exhausted retries.
// Returns the number of hour and day windows rebuilt.
func (s *Service) RecomputeRange(ctx context.Context, patientID string, metric v1.Metric, start, end time.Time) (hours int, days int, err error) {
	if !end.After(start) {
		return 0, 0, fmt.Errorf("recompute range: end must be after start")
	}

	var windows []Window
	for _, h := range aggregation.Starts(aggregation.GranularityHour, start, end) {
		windows = append(windows, Window{PatientID: patientID, Metric: metric, HourStart: h})
	}

	// Only entries that were pending before the replay started are cleared; a failure
	// recorded during the replay bumps the version and stays queued.
	var cleared []PendingWindow
	if s.queue != nil {
		if cleared, err = s.queue.Lookup(ctx, windows); err != nil {
			slog.Warn("[Aggregator] Could not read pending windows before replay", "error", err)
			cleared = nil
		}
	}

	if failed := s.recomputeWindows(ctx, windows); len(failed) > 0 {
		return 0, 0, fmt.Errorf("recompute range: %d of %d windows failed: %w", len(failed), len(windows), firstError(failed))
	}

	if len(cleared) > 0 {
		for _, pw := range cleared {
			if err := s.queue.Remove(ctx, pw); err != nil {
				slog.Warn("[Aggregator] Failed to clear pending window after replay", "window", pw.Window.String(), "error", err)
			}
		}
		s.refreshPendingGauge(ctx)
	}

	days = len(aggregation.Starts(aggregation.GranularityDay, start, end))
	slog.Info("[Aggregator] Range recomputed",
		"patient_id", patientID,
		"metric", metric,
		"hours", len(windows),
		"days", days)
	return len(windows), days, nil
}

// ProcessDue retries windows whose backoff has elapsed. Returns how many were processed.
// A window reaching MaxAttempts is dropped with an AggregationExhausted alert; its
// buckets stay stale until re-triggered by new samples or RecomputeRange.
func (s *Service) ProcessDue(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, nil
	}

	now := s.opts.Now()
	due, err := s.queue.Due(ctx, now, s.opts.Retry.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("read due windows: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	windows := make([]Window, len(due))
	for i, pw := range due {
		windows[i] = pw.Window
	}
	failed := s.recomputeWindows(ctx, windows)

	for _, pw := range due {
		f, stillFailing := failed[pw.Window.String()]
		if !stillFailing {
			// Conditional on the version read above: a failure recorded since then stays queued.
			if err := s.queue.Remove(ctx, pw); err != nil {
				return 0, err
			}
			slog.Info("[Aggregator] Retry succeeded", "window", pw.Window.String(), "attempts", pw.Attempts+1)
			continue
		}

		ferr := f.err
		pw.Attempts++
		pw.LastError = ferr.Error()
		if pw.Attempts >= s.opts.Retry.MaxAttempts {
			if err := s.queue.Remove(ctx, pw); err != nil {
				return 0, err
			}
			exhausted := &coreerrors.AggregationExhausted{
				Window:   pw.Window.String(),
				Attempts: pw.Attempts,
				Since:    pw.FirstFailedAt,
				Err:      ferr,
			}
			s.metrics.AggregationExhausted.Inc()
			slog.Error("[Aggregator] Aggregation exhausted, bucket left stale until re-triggered",
				"window", pw.Window.String(),
				"attempts", pw.Attempts,
				"first_failed_at", pw.FirstFailedAt,
				"error", exhausted)
			continue
		}

		pw.NextAttemptAt = now.Add(s.opts.Retry.Backoff(pw.Attempts))
		if err := s.queue.Reschedule(ctx, pw); err != nil {
			return 0, err
		}
		slog.Warn("[Aggregator] Retry failed, backing off",
			"window", pw.Window.String(),
			"attempts", pw.Attempts,
			"next_attempt_at", pw.NextAttemptAt,
			"error", ferr)
	}

	s.refreshPendingGauge(ctx)
	return len(due), nil
}

// PendingCount returns the number of windows awaiting retry.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, nil
	}
	return s.queue.Len(ctx)
}

// RetryBatchSize is the number of due windows read per ProcessDue call.
func (s *Service) RetryBatchSize() int {
	return s.opts.Retry.BatchSize
}

// firstError picks the error of the earliest failed window so reports are stable.
func firstError(failed map[string]windowFailure) error {
	var (
		first string
		err   error
	)
	for key, f := range failed {
		if err == nil || key < first {
			first, err = key, f.err
		}
	}
	return err
}

func (s *Service) refreshPendingGauge(ctx context.Context) {
	n, err := s.PendingCount(context.WithoutCancel(ctx))
	if err != nil {
		slog.Debug("[Aggregator] Could not read pending window count", "error", err)
		return
	}
	s.metrics.PendingWindows.Set(float64(n))
}
