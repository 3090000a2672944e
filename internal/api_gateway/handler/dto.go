package handler

import "github.com/shopspring/decimal"

// CreateItemRequest registers a single-copy item
type CreateItemRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Category  string `json:"category,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateMemberRequest registers a member
type CreateMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	FinesDue  string `json:"fines_due"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BorrowRequest lends an item to a member
type BorrowRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// TransactionResponse represents a lending transaction in API responses
type TransactionResponse struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	MemberID   string `json:"member_id"`
	Status     string `json:"status"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
	ReturnedAt string `json:"returned_at,omitempty"`
}

// PayFineRequest settles a fine. Amount accepts a JSON number or string.
type PayFineRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// FineResponse represents a fine in API responses
type FineResponse struct {
	ID            string `json:"id"`
	MemberID      string `json:"member_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	PaidAt        string `json:"paid_at,omitempty"`
}

// RecalculateResponse reports how many transactions a sweep visited
type RecalculateResponse struct {
	UpdatedTransactions int `json:"updated_transactions"`
}

// HistoryEventResponse represents one lending event of a member's history
type HistoryEventResponse struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ItemID        string `json:"item_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	FineID        string `json:"fine_id,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Status        string `json:"status,omitempty"`
	Detail        string `json:"detail,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func (p PaginationParams) offset() int {
	return (p.Page - 1) * p.PerPage
}
