package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpInvalidQueryError    = "invalid_query"
	HttpNotFoundError        = "not_found"
	HttpPayloadTooLargeError = "payload_too_large"
	HttpUnavailableError     = "service_unavailable"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// Rejection reasons reported in per-sample outcomes.
const (
	ReasonUnknownPatient     = "unknown_patient"
	ReasonUnknownDevice      = "unknown_device"
	ReasonMissingMetric      = "missing_metric"
	ReasonUnsupportedMetric  = "unsupported_metric"
	ReasonMissingSampleTime  = "missing_sample_time"
	ReasonFutureSampleTime   = "sample_time_in_future"
	ReasonValueOutOfRange    = "value_out_of_range"
	ReasonValueNotInteger    = "value_not_integer"
	ReasonStorageUnavailable = "storage_unavailable"
)

// ValidationError rejects a single sample. It is reported to the caller and never retried.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, falling back to fallback.
func ReasonOf(err error, fallback string) string {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve.Reason
	}
	return fallback
}

// DuplicateConflict records a re-delivery whose value differs from the stored sample.
// The stored value is kept.
type DuplicateConflict struct {
	Key           string
	StoredValue   string
	IncomingValue string
}

func (e *DuplicateConflict) Error() string {
	return fmt.Sprintf("duplicate sample %s: stored value %s kept, incoming value %s ignored",
		e.Key, e.StoredValue, e.IncomingValue)
}

// TransientStorageError wraps a store failure that may succeed on retry.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientStorageError unless it is nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientStorageError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientStorageError.
func IsTransient(err error) bool {
	var te *TransientStorageError
	return stderrors.As(err, &te)
}

// AggregationExhausted is raised when a window's recomputation hits the retry ceiling.
// The bucket stays stale until re-triggered.
type AggregationExhausted struct {
	Window   string
	Attempts int
	Since    time.Time
	Err      error
}

func (e *AggregationExhausted) Error() string {
	return fmt.Sprintf("aggregation exhausted for %s after %d attempts: %v", e.Window, e.Attempts, e.Err)
}

func (e *AggregationExhausted) Unwrap() error { return e.Err }
