package member

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName    = errors.New("member name cannot be empty")
	ErrInvalidEmail = errors.New("member email is invalid")
)

// Status is the standing of a member
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// Member is a patron who may borrow items. FinesDue mirrors the sum of the
// member's unpaid fines and never drops below zero.
type Member struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Status    Status          `json:"status"`
	FinesDue  decimal.Decimal `json:"fines_due"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewMember creates an active member with no fines
func NewMember(name, email string) (*Member, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, ErrEmptyName
	}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &Member{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Status:    StatusActive,
		FinesDue:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the member is in good standing
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// HasFinesDue reports whether the member owes anything
func (m *Member) HasFinesDue() bool {
	return m.FinesDue.IsPositive()
}

// ApplyFinesDelta adds delta to FinesDue, rounding to cents and clamping at zero
func (m *Member) ApplyFinesDelta(delta decimal.Decimal) {
	m.FinesDue = ClampFinesDue(m.FinesDue.Add(delta))
	m.UpdatedAt = time.Now().UTC()
}

// ClampFinesDue rounds an amount to two decimal places and floors it at zero
func ClampFinesDue(amount decimal.Decimal) decimal.Decimal {
	amount = amount.Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
