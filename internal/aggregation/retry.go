package aggregation

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	"github.com/vitalink/vitalink-core/internal/core/aggregation"
)

const (
	defaultBaseBackoff = 2 * time.Second
	defaultMaxBackoff  = 5 * time.Minute
	defaultMaxAttempts = 8
	defaultBatchSize   = 100
)

// Window is one touched hour of one patient's metric: the unit of recomputation.
// Recomputing a window rebuilds its hour bucket, then the day bucket containing it.
type Window struct {
	PatientID string    `json:"patient_id"`
	Metric    v1.Metric `json:"metric"`
	HourStart time.Time `json:"hour_start"`
}

// WindowOf returns the window a sample falls into.
func WindowOf(s *v1.Sample) Window {
	return Window{PatientID: s.PatientID, Metric: s.Metric, HourStart: aggregation.HourStart(s.SampleTime)}
}

func (w Window) String() string {
	return fmt.Sprintf("%s|%s|%s", w.PatientID, w.Metric, w.HourStart.UTC().Format(time.RFC3339))
}

// HourKey is the hour bucket rebuilt for this window.
func (w Window) HourKey() aggregation.BucketKey {
	return aggregation.HourKey(w.PatientID, w.Metric, w.HourStart)
}

// DayKey is the day bucket rebuilt after the hour.
func (w Window) DayKey() aggregation.BucketKey {
	return aggregation.DayKey(w.PatientID, w.Metric, w.HourStart)
}

// PendingWindow is a window whose recomputation failed and awaits retry.
// Version identifies one stored state of the entry: the queue bumps it whenever a new
// failure is recorded for a window that is already pending.
type PendingWindow struct {
	Window        Window    `json:"window"`
	Attempts      int       `json:"attempts"`
	FirstFailedAt time.Time `json:"first_failed_at"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
	LastError     string    `json:"last_error,omitempty"`
	Version       int64     `json:"version"`
}

// merge records a new failure of an already pending window. Attempts and FirstFailedAt
// are kept; the earlier next attempt wins.
func (pw PendingWindow) merge(failure PendingWindow) PendingWindow {
	next := pw
	next.Version++
	next.LastError = failure.LastError
	if failure.NextAttemptAt.Before(next.NextAttemptAt) {
		next.NextAttemptAt = failure.NextAttemptAt
	}
	return next
}

// PendingQueue holds windows awaiting retry, ordered by next attempt time.
// Implementations must be safe for concurrent use.
//
// Reschedule and Remove are conditional on the Version read through Due or Lookup.
// A failure enqueued while a retry is in flight bumps the version, so the retry's
// Remove leaves the newer entry queued instead of dropping it.
type PendingQueue interface {
	// Enqueue adds the window with Version 1. For an already pending window it records
	// the failure and bumps the version, keeping the attempt count.
	Enqueue(ctx context.Context, pw PendingWindow) error

	// Due returns up to limit windows whose NextAttemptAt is not after now, earliest first.
	Due(ctx context.Context, now time.Time, limit int) ([]PendingWindow, error)

	// Lookup returns the stored state of those windows that are pending.
	Lookup(ctx context.Context, windows []Window) ([]PendingWindow, error)

	// Reschedule overwrites the stored state if its version still equals pw.Version.
	Reschedule(ctx context.Context, pw PendingWindow) error

	// Remove drops the window if its stored version still equals pw.Version.
	// Removing an absent or newer entry is not an error.
	Remove(ctx context.Context, pw PendingWindow) error

	// Len returns the number of pending windows.
	Len(ctx context.Context) (int, error)
}

// RetryPolicy bounds exponential backoff for failed windows.
type RetryPolicy struct {
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxAttempts int
	BatchSize   int
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseBackoff: defaultBaseBackoff,
		MaxBackoff:  defaultMaxBackoff,
		MaxAttempts: defaultMaxAttempts,
		BatchSize:   defaultBatchSize,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	n := p
	if n.BaseBackoff <= 0 {
		n.BaseBackoff = defaultBaseBackoff
	}
	if n.MaxBackoff < n.BaseBackoff {
		n.MaxBackoff = n.BaseBackoff
	}
	if n.MaxAttempts <= 0 {
		n.MaxAttempts = defaultMaxAttempts
	}
	if n.BatchSize <= 0 {
		n.BatchSize = defaultBatchSize
	}
	return n
}

// Backoff returns the delay before the next attempt after the given number of failed
// attempts: base * 2^(attempts-1), capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	p = p.normalized()
	if attempts < 1 {
		attempts = 1
	}
	d := p.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return d
}
