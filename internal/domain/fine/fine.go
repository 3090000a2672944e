package fine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of a fine. Paid is terminal.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// Fine is a monetary penalty owed by a member. Amount is immutable once assessed.
type Fine struct {
	ID            uuid.UUID       `json:"id"`
	MemberID      uuid.UUID       `json:"member_id"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// AmountForOverdue is days × perDay rounded to cents
func AmountForOverdue(days int, perDay decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Mul(perDay).Round(2)
}

// OverdueReason describes a fine assessed for a late return
func OverdueReason(days int) string {
	return fmt.Sprintf("Overdue %d day(s)", days)
}

// NewOverdueFine assesses an unpaid fine for a return that was days late.
// It returns nil when days is not positive.
func NewOverdueFine(memberID, transactionID uuid.UUID, days int, perDay decimal.Decimal, assessedAt time.Time) *Fine {
	if days <= 0 {
		return nil
	}
	return &Fine{
		ID:            uuid.New(),
		MemberID:      memberID,
		TransactionID: &transactionID,
		Amount:        AmountForOverdue(days, perDay),
		Reason:        OverdueReason(days),
		Status:        StatusUnpaid,
		CreatedAt:     assessedAt.UTC(),
	}
}

// IsPaid reports whether the fine has been settled
func (f *Fine) IsPaid() bool {
	return f.Status == StatusPaid
}

// CoveredBy reports whether amount settles the fine in full
func (f *Fine) CoveredBy(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(f.Amount)
}

// MarkPaid settles the fine at paidAt
func (f *Fine) MarkPaid(paidAt time.Time) {
	paidAt = paidAt.UTC()
	f.Status = StatusPaid
	f.PaidAt = &paidAt
}
