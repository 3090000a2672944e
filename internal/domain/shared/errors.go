package shared

import (
	"errors"
	"fmt"
)

// Error categories. Every lending error wraps exactly one of these so callers can
// branch with a single errors.Is.
var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConstraintConflict = errors.New("constraint conflict")
	ErrValidation         = errors.New("validation failed")
)

// Precondition failures raised by the lending engine
var (
	ErrItemUnavailable            = fmt.Errorf("%w: item is not available", ErrPreconditionFailed)
	ErrMemberNotActive            = fmt.Errorf("%w: member is not active", ErrPreconditionFailed)
	ErrUnpaidFinesOutstanding     = fmt.Errorf("%w: member has outstanding fines", ErrPreconditionFailed)
	ErrBorrowLimitReached         = fmt.Errorf("%w: borrow limit reached", ErrPreconditionFailed)
	ErrAlreadyReturned            = fmt.Errorf("%w: transaction already returned", ErrPreconditionFailed)
	ErrPartialPaymentNotSupported = fmt.Errorf("%w: partial payment not supported", ErrPreconditionFailed)
)

// ErrConcurrentUpdate is raised when the database aborts a transaction because of a
// serialization failure or deadlock.
var ErrConcurrentUpdate = fmt.Errorf("%w: concurrent update", ErrConstraintConflict)

// ErrInvalidAmount rejects non-positive payment amounts
var ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrValidation)
