package aggregation

import (
	"context"
	"log/slog"
	"time"
)

// maxConsecutiveBatches bounds one drain so a persistently failing backlog cannot
// monopolize the scheduler between ticks.
const maxConsecutiveBatches = 100

// RetryScheduler periodically retries pending windows whose backoff has elapsed.
type RetryScheduler struct {
	interval time.Duration
	service  *Service
}

// NewRetryScheduler creates a scheduler ticking every interval.
func NewRetryScheduler(interval time.Duration, service *Service) *RetryScheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &RetryScheduler{interval: interval, service: service}
}

// Start runs until ctx is cancelled, then performs one bounded final drain.
func (s *RetryScheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[RetryScheduler] Starting aggregation retry scheduler",
		"interval", s.interval,
		"batch_size", s.service.RetryBatchSize(),
	)

	// Windows persisted by a previous process (Redis backend) may already be due.
	s.drainBacklog(ctx)

	for {
		select {
		case <-ticker.C:
			s.drainBacklog(ctx)
		case <-ctx.Done():
			slog.Info("[RetryScheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			slog.Info("[RetryScheduler] Running final drain before shutdown...")
			s.drainBacklog(shutdownCtx)
			slog.Info("[RetryScheduler] Final drain complete")

			return nil
		}
	}
}

// drainBacklog processes due windows batch by batch until fewer than a full batch is due.
func (s *RetryScheduler) drainBacklog(ctx context.Context) {
	batchCount := 0

	for batchCount < maxConsecutiveBatches {
		select {
		case <-ctx.Done():
			slog.Info("[RetryScheduler] Drain interrupted by context cancellation",
				"batches_processed", batchCount,
			)
			return
		default:
		}

		processed, err := s.service.ProcessDue(ctx)
		if err != nil {
			slog.Error("[RetryScheduler] Retry batch failed",
				"error", err,
				"batch_number", batchCount+1,
			)
			return
		}

		batchCount++

		if processed < s.service.RetryBatchSize() {
			if batchCount > 1 {
				slog.Info("[RetryScheduler] Backlog drained", "total_batches", batchCount)
			}
			return
		}

		slog.Info("[RetryScheduler] Backlog detected, continuing to drain",
			"batches_so_far", batchCount,
		)
	}

	slog.Warn("[RetryScheduler] Max consecutive batches reached, pausing drain",
		"max_batches", maxConsecutiveBatches,
		"note", "Will resume on next tick",
	)
}
