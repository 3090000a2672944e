package item

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidStatus = errors.New("invalid item status")
)

// Status is the circulation state of a single-copy item
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBorrowed    Status = "borrowed"
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
)

// IsValid reports whether s is a known item status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusReserved, StatusMaintenance:
		return true
	}
	return false
}

// Item is a lendable physical item. An item is borrowed exactly when one
// non-returned lending transaction references it.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Category  string    `json:"category,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates an available item
func NewItem(title, author, category string) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Item{
		ID:        uuid.New(),
		Title:     title,
		Author:    strings.TrimSpace(author),
		Category:  strings.TrimSpace(category),
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsAvailable reports whether the item can be lent out
func (i *Item) IsAvailable() bool {
	return i.Status == StatusAvailable
}
