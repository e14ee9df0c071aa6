package postgres

// SQL for the vital sample and bucket tables (see internal/migrations).

const (
	// querySaveSample inserts a sample keyed by (patient_id, metric, device_id, sample_time).
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates; the stored row is untouched.
	querySaveSample = `
		INSERT INTO vital_samples (
			patient_id, metric, device_id, sample_time,
			value, idempotency_key, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
		RETURNING received_at
	`

	queryGetSample = `
		SELECT
			patient_id, metric, device_id, sample_time, value, received_at
		FROM vital_samples
		WHERE patient_id = $1
		  AND metric = $2
		  AND device_id = $3
		  AND sample_time = $4
	`

	// queryListSamples reads one series window. Served by idx_vital_samples_series.
	queryListSamples = `
		SELECT
			patient_id, metric, device_id, sample_time, value, received_at
		FROM vital_samples
		WHERE patient_id = $1
		  AND metric = $2
		  AND sample_time >= $3
		  AND sample_time < $4
		ORDER BY sample_time ASC, device_id ASC
	`

	queryLastReceivedAt = `
		SELECT MAX(received_at)
		FROM vital_samples
		WHERE patient_id = $1
	`

	// queryLockBucket serializes recomputes of one bucket until the transaction ends.
	queryLockBucket = `SELECT pg_advisory_xact_lock($1)`

	// queryUpsertBucket replaces the bucket statistics. last_aggregated_at only moves forward.
	queryUpsertBucket = `
		INSERT INTO vital_buckets (
			patient_id, metric, granularity, bucket_start,
			sum_value, min_value, max_value, avg_value,
			sample_count, last_aggregated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (patient_id, metric, granularity, bucket_start)
		DO UPDATE SET
			sum_value          = EXCLUDED.sum_value,
			min_value          = EXCLUDED.min_value,
			max_value          = EXCLUDED.max_value,
			avg_value          = EXCLUDED.avg_value,
			sample_count       = EXCLUDED.sample_count,
			last_aggregated_at = GREATEST(vital_buckets.last_aggregated_at, EXCLUDED.last_aggregated_at)
		RETURNING last_aggregated_at
	`

	queryDeleteBucket = `
		DELETE FROM vital_buckets
		WHERE patient_id = $1
		  AND metric = $2
		  AND granularity = $3
		  AND bucket_start = $4
	`

	queryGetBucket = `
		SELECT
			patient_id, metric, granularity, bucket_start,
			sum_value, min_value, max_value, avg_value,
			sample_count, last_aggregated_at
		FROM vital_buckets
		WHERE patient_id = $1
		  AND metric = $2
		  AND granularity = $3
		  AND bucket_start = $4
	`

	queryListBuckets = `
		SELECT
			patient_id, metric, granularity, bucket_start,
			sum_value, min_value, max_value, avg_value,
			sample_count, last_aggregated_at
		FROM vital_buckets
		WHERE patient_id = $1
		  AND metric = $2
		  AND granularity = $3
		  AND bucket_start >= $4
		  AND bucket_start < $5
		ORDER BY bucket_start ASC
	`

	queryLatestBucket = `
		SELECT
			patient_id, metric, granularity, bucket_start,
			sum_value, min_value, max_value, avg_value,
			sample_count, last_aggregated_at
		FROM vital_buckets
		WHERE patient_id = $1
		  AND metric = $2
		  AND granularity = $3
		ORDER BY bucket_start DESC
		LIMIT 1
	`
)
