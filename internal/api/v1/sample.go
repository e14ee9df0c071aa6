package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Metric names a vital-sign stream. The set is closed: anything outside it
// fails validation instead of being stored under an unknown name.
type Metric string

const (
	MetricSteps     Metric = "steps"
	MetricHeartRate Metric = "heart_rate"
	MetricSpO2      Metric = "spo2"
)

// Metrics lists every supported metric in display order.
var Metrics = []Metric{MetricSteps, MetricHeartRate, MetricSpO2}

// ParseMetric resolves a wire name to a Metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.TrimSpace(s))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported metric %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricSteps, MetricHeartRate, MetricSpO2:
		return true
	}
	return false
}

func (m Metric) String() string { return string(m) }

// NormalizeTime converts a device timestamp to the canonical form used in sample keys:
// UTC, microsecond precision (the resolution of a Postgres timestamptz).
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// SampleKey is the natural identity of a raw sample.
type SampleKey struct {
	PatientID  string
	Metric     Metric
	DeviceID   string
	SampleTime time.Time
}

func (k SampleKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.PatientID, k.Metric, k.DeviceID, k.SampleTime.UTC().Format(time.RFC3339Nano))
}

// IdempotencyKey derives the stored deduplication key from device, timestamp and metric
// (scoped by patient).
func (k SampleKey) IdempotencyKey() string {
	sum := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}

// Sample is a raw, immutable vital-sign event.
type Sample struct {
	PatientID  string          `json:"patient_id"`
	Metric     Metric          `json:"metric"`
	DeviceID   string          `json:"device_id"`
	SampleTime time.Time       `json:"sample_time"`
	Value      decimal.Decimal `json:"value"`

	// ReceivedAt is set by the ingestion service, never by the device.
	ReceivedAt time.Time `json:"received_at"`
}

// Key returns the sample's natural key.
func (s *Sample) Key() SampleKey {
	return SampleKey{
		PatientID:  s.PatientID,
		Metric:     s.Metric,
		DeviceID:   s.DeviceID,
		SampleTime: s.SampleTime,
	}
}

// SampleInput is one reading as submitted by the device integration.
type SampleInput struct {
	Metric     string          `json:"metric"`
	SampleTime time.Time       `json:"sample_time"`
	Value      decimal.Decimal `json:"value"`
}

// IngestRequest is a batch of readings from one device for one patient.
type IngestRequest struct {
	PatientID string        `json:"patient_id"`
	DeviceID  string        `json:"device_id"`
	Samples   []SampleInput `json:"samples"`
}

// Validate checks the batch envelope. Individual samples are validated by the coordinator.
func (r *IngestRequest) Validate() error {
	if r.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if r.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if len(r.Samples) == 0 {
		return fmt.Errorf("samples must not be empty")
	}
	return nil
}

// OutcomeStatus is the per-sample result of an ingestion call.
type OutcomeStatus string

const (
	OutcomeAccepted         OutcomeStatus = "accepted"
	OutcomeDuplicateIgnored OutcomeStatus = "duplicate_ignored"
	OutcomeRejected         OutcomeStatus = "rejected"
)

// Outcome reports what happened to one submitted sample.
type Outcome struct {
	Index  int           `json:"index"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`

	// AggregationPending is set when the sample was stored but its hour/day
	// buckets could not be recomputed yet; a retry is scheduled.
	AggregationPending bool `json:"aggregation_pending,omitempty"`
}

// IngestResult is the response to an ingestion batch.
type IngestResult struct {
	BatchID            string    `json:"batch_id"`
	Accepted           int       `json:"accepted"`
	Duplicates         int       `json:"duplicates"`
	Rejected           int       `json:"rejected"`
	AggregationPending int       `json:"aggregation_pending"`
	Outcomes           []Outcome `json:"outcomes"`
}

// Tally recomputes the counters from Outcomes.
func (r *IngestResult) Tally() {
	r.Accepted, r.Duplicates, r.Rejected, r.AggregationPending = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeAccepted:
			r.Accepted++
		case OutcomeDuplicateIgnored:
			r.Duplicates++
		case OutcomeRejected:
			r.Rejected++
		}
		if o.AggregationPending {
			r.AggregationPending++
		}
	}
}
