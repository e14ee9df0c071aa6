package projection

import (
	"time"

	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	coreagg "github.com/vitalink/vitalink-core/internal/core/aggregation"
)

// DayView is the latest day bucket of one metric.
type DayView struct {
	Date             string            `json:"date"` // YYYY-MM-DD, UTC
	Values           coreagg.Aggregate `json:"values"`
	SampleCount      int64             `json:"sample_count"`
	LastAggregatedAt time.Time         `json:"last_aggregated_at"`
}

// PatientSummary is the clinician-facing snapshot of one patient.
// A metric without any day bucket is nil.
type PatientSummary struct {
	PatientID   string     `json:"patient_id"`
	DisplayName string     `json:"display_name,omitempty"`
	Steps       *DayView   `json:"steps"`
	HeartRate   *DayView   `json:"heart_rate"`
	SpO2        *DayView   `json:"spo2"`
	LastSyncAt  *time.Time `json:"last_sync_at"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// FleetSummary lists every registered patient's summary, ordered by patient_id.
type FleetSummary struct {
	GeneratedAt time.Time `json:"generated_at"`

	// PendingAggregations counts windows awaiting a retried recompute. While non-zero,
	// some buckets may not yet reflect every stored sample. -1 when the queue is unreachable.
	PendingAggregations int              `json:"pending_aggregations"`
	Patients            []PatientSummary `json:"patients"`
}

// HistoryQuery selects buckets of one patient's metric.
type HistoryQuery struct {
	PatientID   string
	Metric      v1.Metric
	Granularity string // hour | day | week | total
	Start       time.Time
	End         time.Time
}

// HistoryPoint is one window of a history response.
type HistoryPoint struct {
	WindowStart      time.Time         `json:"window_start"`
	WindowEnd        time.Time         `json:"window_end"`
	Values           coreagg.Aggregate `json:"values"`
	SampleCount      int64             `json:"sample_count"`
	LastAggregatedAt time.Time         `json:"last_aggregated_at"`
}

// HistoryResponse is the answer to a HistoryQuery. Windows without samples are absent.
type HistoryResponse struct {
	PatientID   string         `json:"patient_id"`
	Metric      v1.Metric      `json:"metric"`
	Granularity string         `json:"granularity"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Points      []HistoryPoint `json:"points"`
}
