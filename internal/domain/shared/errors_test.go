package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	preconditions := []error{
		ErrItemUnavailable,
		ErrMemberNotActive,
		ErrUnpaidFinesOutstanding,
		ErrBorrowLimitReached,
		ErrAlreadyReturned,
		ErrPartialPaymentNotSupported,
	}
	for _, err := range preconditions {
		t.Run(err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("borrow failed: %w", err)
			assert.ErrorIs(t, wrapped, ErrPreconditionFailed)
			assert.ErrorIs(t, wrapped, err)
			assert.False(t, errors.Is(wrapped, ErrConstraintConflict))
		})
	}

	assert.ErrorIs(t, ErrConcurrentUpdate, ErrConstraintConflict)
	assert.ErrorIs(t, ErrInvalidAmount, ErrValidation)
	assert.False(t, errors.Is(ErrInvalidAmount, ErrPreconditionFailed))
}

func TestEventType_IsValid(t *testing.T) {
	assert.True(t, EventTypeItemBorrowed.IsValid())
	assert.True(t, EventTypeMemberReactivated.IsValid())
	assert.False(t, EventType("account.debited").IsValid())
	assert.False(t, EventType("").IsValid())
}
