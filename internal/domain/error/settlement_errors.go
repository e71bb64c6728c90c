package error

import "errors"

// Settlement domain errors.
var (
	// ErrSettlementNotFound is returned when no settlement row matches the
	// requested id, period bounds, or fuzzy criteria.
	ErrSettlementNotFound = errors.New("settlement not found")

	// ErrSettlementNotPersisted is returned when an operation requires a
	// persisted row but the settlement has no id yet.
	ErrSettlementNotPersisted = errors.New("settlement has not been persisted yet")

	// ErrSettlementExists is returned by a direct insert when a row for the
	// same worker and period already exists.
	ErrSettlementExists = errors.New("settlement already exists for this period")

	// ErrSettlementStatusChanged is returned when the conditional status
	// update finds the row no longer pending or overdue.
	ErrSettlementStatusChanged = errors.New("settlement status changed concurrently")

	// ErrSettlementVerification is returned when the read-back after a
	// nominally successful status write does not show the expected status.
	ErrSettlementVerification = errors.New("settlement status verification failed")

	// ErrSettlementProcessing is returned when a mark-as-paid is already in
	// flight for the same settlement key in this session.
	ErrSettlementProcessing = errors.New("settlement is already being processed")
)

// SettlementErrorCode defines error codes for settlement errors.
// Format: SET-XXYYYY where XX is category and YYYY is specific error.
type SettlementErrorCode string

const (
	// Lookup errors (01XXXX)
	ErrCodeSettlementNotFound     SettlementErrorCode = "SET-010001"
	ErrCodeSettlementNotPersisted SettlementErrorCode = "SET-010002"

	// Write errors (02XXXX)
	ErrCodeSettlementExists        SettlementErrorCode = "SET-020001"
	ErrCodeSettlementStatusChanged SettlementErrorCode = "SET-020002"
	ErrCodeSettlementVerification  SettlementErrorCode = "SET-020003"
	ErrCodeSettlementProcessing    SettlementErrorCode = "SET-020004"
	ErrCodeSettlementWriteFailed   SettlementErrorCode = "SET-020005"

	// Read errors (03XXXX)
	ErrCodeSettlementLoadFailed SettlementErrorCode = "SET-030001"
)

// SettlementError represents a settlement error with code and message.
type SettlementError struct {
	Code    SettlementErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SettlementError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *SettlementError) Unwrap() error {
	return e.Err
}

// NewSettlementError creates a new SettlementError with the given code and message.
func NewSettlementError(code SettlementErrorCode, message string, err error) *SettlementError {
	return &SettlementError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
