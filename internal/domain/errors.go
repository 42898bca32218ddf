package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrTenantNotConfigured signals that the tenant id is unset or the tenant
	// has no record in the tenant directory. This is a deployment defect, not
	// a request defect, so adapters map it to a 500-class response.
	ErrTenantNotConfigured = errors.New("tenant not configured")
	// ErrRoutingKeyRequired is returned when the routing key cannot be
	// extracted from the inbound document.
	ErrRoutingKeyRequired = errors.New("routing key is required")
	// ErrFlowNotConfigured signals a resolved flow without a usable entry step.
	ErrFlowNotConfigured = errors.New("process flow not configured")
	// ErrStepNotFound is an internal invariant violation: the entry step
	// created at build time must always be present at finalization.
	ErrStepNotFound = errors.New("staging step not found")
	// ErrStoreUnavailable marks a store-connectivity failure inside a batched
	// store error. It is the condition the fallback policy looks for.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
)

// BatchError aggregates the per-item causes of a batched store operation.
type BatchError struct {
	Errs []error
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "batched store failure: " + strings.Join(msgs, "; ")
}

func (e *BatchError) Unwrap() []error { return e.Errs }

// FailureKind is the fallback policy's view of a store failure.
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureConnectivity
)

// Failure is a structured failure classification. Carrying the kind as data
// keeps the retry-once contract a visible, testable path instead of
// control flow buried in error handling.
type Failure struct {
	Kind  FailureKind
	Cause error
}

// ClassifyStoreFailure reports Connectivity only for a batched failure that
// contains at least one store-connectivity cause. Everything else is Other
// and must not trigger the fallback path.
func ClassifyStoreFailure(err error) Failure {
	var batch *BatchError
	if errors.As(err, &batch) {
		for _, inner := range batch.Errs {
			if errors.Is(inner, ErrStoreUnavailable) {
				return Failure{Kind: FailureConnectivity, Cause: err}
			}
		}
	}
	return Failure{Kind: FailureOther, Cause: err}
}
