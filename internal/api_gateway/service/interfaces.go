package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
)

// CatalogService seeds and reads items and members. It is not part of the lending engine.
type CatalogService interface {
	// CreateItem registers an available item
	// Returns an error wrapping shared.ErrValidation for an empty title
	CreateItem(ctx context.Context, title, author, category string) (*item.Item, error)

	// GetItem returns ErrItemNotFound if the item doesn't exist
	GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error)

	ListItems(ctx context.Context, page, perPage int) ([]*item.Item, error)

	// CreateMember registers an active member
	// Returns ErrDuplicateEmail if the email is taken
	CreateMember(ctx context.Context, name, email string) (*member.Member, error)

	// GetMember returns ErrMemberNotFound if the member doesn't exist
	GetMember(ctx context.Context, id uuid.UUID) (*member.Member, error)
}

// LendingQueries is the read side of the lending engine used by the HTTP handlers
type LendingQueries interface {
	// ListOverdue recomputes overdue status before listing
	ListOverdue(ctx context.Context) ([]*lending.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*lending.Transaction, error)
	MemberLoans(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error)
	MemberTransactions(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error)
	MemberFines(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error)
	ListFines(ctx context.Context, limit, offset int) ([]*fine.Fine, error)
	GetFine(ctx context.Context, id uuid.UUID) (*fine.Fine, error)

	// MemberHistory returns one page of lending events and the member's total event count
	MemberHistory(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*history.Event, int64, error)
}
