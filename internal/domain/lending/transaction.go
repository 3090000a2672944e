package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a lending transaction
type Status string

const (
	StatusOpen     Status = "open"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Transaction records one borrowing of one item by one member. DueAt is fixed at
// borrow time; transactions are never deleted.
type Transaction struct {
	ID         uuid.UUID  `json:"id"`
	ItemID     uuid.UUID  `json:"item_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	Status     Status     `json:"status"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewTransaction opens a transaction borrowed at borrowedAt and due loanPeriod later
func NewTransaction(itemID, memberID uuid.UUID, borrowedAt time.Time, loanPeriod time.Duration) *Transaction {
	borrowedAt = borrowedAt.UTC()
	return &Transaction{
		ID:         uuid.New(),
		ItemID:     itemID,
		MemberID:   memberID,
		Status:     StatusOpen,
		BorrowedAt: borrowedAt,
		DueAt:      borrowedAt.Add(loanPeriod),
		CreatedAt:  borrowedAt,
		UpdatedAt:  borrowedAt,
	}
}

// IsReturned reports whether the transaction is closed
func (t *Transaction) IsReturned() bool {
	return t.Status == StatusReturned
}

// MarkReturned closes the transaction at returnedAt
func (t *Transaction) MarkReturned(returnedAt time.Time) {
	returnedAt = returnedAt.UTC()
	t.Status = StatusReturned
	t.ReturnedAt = &returnedAt
	t.UpdatedAt = returnedAt
}

// OverdueDays counts whole calendar days (UTC) between the due date and at.
// Returning on the due date, or any time earlier, yields zero.
func (t *Transaction) OverdueDays(at time.Time) int {
	days := int(utcDate(at).Sub(utcDate(t.DueAt)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OverdueMark is one row visited by an overdue sweep
type OverdueMark struct {
	TransactionID  uuid.UUID
	ItemID         uuid.UUID
	MemberID       uuid.UUID
	PreviousStatus Status
}

// NewlyOverdue reports whether the sweep flipped the row from open
func (m OverdueMark) NewlyOverdue() bool {
	return m.PreviousStatus == StatusOpen
}

// Rules are the lending policy parameters
type Rules struct {
	LoanPeriod  time.Duration
	BorrowLimit int
	FinePerDay  decimal.Decimal
}

// DefaultRules returns a 14 day loan period, 3 concurrent loans and 0.50 per overdue day
func DefaultRules() Rules {
	return Rules{
		LoanPeriod:  14 * 24 * time.Hour,
		BorrowLimit: 3,
		FinePerDay:  decimal.New(50, -2),
	}
}
