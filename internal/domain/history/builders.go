package history

import (
	"time"

	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
)

// Borrowed records a new lending transaction
func Borrowed(t *lending.Transaction) *Event {
	e := fromTransaction(shared.EventTypeItemBorrowed, t, t.BorrowedAt)
	e.Detail = "due " + t.DueAt.UTC().Format(time.DateOnly)
	return e
}

// Returned records the close of a lending transaction
func Returned(t *lending.Transaction) *Event {
	at := t.UpdatedAt
	if t.ReturnedAt != nil {
		at = *t.ReturnedAt
	}
	return fromTransaction(shared.EventTypeItemReturned, t, at)
}

// Overdue records a transaction passing its due date unreturned
func Overdue(mark lending.OverdueMark, at time.Time) *Event {
	e := NewEvent(shared.EventTypeTransactionOverdue, mark.MemberID, at)
	e.ItemID = mark.ItemID.String()
	e.TransactionID = mark.TransactionID.String()
	e.Status = string(lending.StatusOverdue)
	return e
}

// FineAssessed records a new unpaid fine
func FineAssessed(f *fine.Fine) *Event {
	return fromFine(shared.EventTypeFineAssessed, f, f.CreatedAt)
}

// FinePaid records the settlement of a fine
func FinePaid(f *fine.Fine) *Event {
	at := time.Now().UTC()
	if f.PaidAt != nil {
		at = *f.PaidAt
	}
	return fromFine(shared.EventTypeFinePaid, f, at)
}

// StandingChanged records a suspension policy transition. It returns nil when
// the status did not move to suspended or active.
func StandingChanged(m *member.Member, previous member.Status, at time.Time) *Event {
	var eventType shared.EventType
	switch m.Status {
	case member.StatusSuspended:
		eventType = shared.EventTypeMemberSuspended
	case member.StatusActive:
		eventType = shared.EventTypeMemberReactivated
	default:
		return nil
	}
	if m.Status == previous {
		return nil
	}

	e := NewEvent(eventType, m.ID, at)
	e.Status = string(m.Status)
	e.Detail = "previous status " + string(previous)
	e.Amount = m.FinesDue.StringFixed(2)
	return e
}

func fromTransaction(eventType shared.EventType, t *lending.Transaction, at time.Time) *Event {
	e := NewEvent(eventType, t.MemberID, at)
	e.ItemID = t.ItemID.String()
	e.TransactionID = t.ID.String()
	e.Status = string(t.Status)
	return e
}

func fromFine(eventType shared.EventType, f *fine.Fine, at time.Time) *Event {
	e := NewEvent(eventType, f.MemberID, at)
	e.FineID = f.ID.String()
	if f.TransactionID != nil {
		e.TransactionID = f.TransactionID.String()
	}
	e.Amount = f.Amount.StringFixed(2)
	e.Status = string(f.Status)
	e.Detail = f.Reason
	return e
}
