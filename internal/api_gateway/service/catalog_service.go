package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/logger"
)

// CatalogServiceImpl implements the CatalogService interface
type CatalogServiceImpl struct {
	items   item.Repository
	members member.Repository
	logger  *slog.Logger
}

func NewCatalogService(items item.Repository, members member.Repository, log *slog.Logger) CatalogService {
	return &CatalogServiceImpl{
		items:   items,
		members: members,
		logger:  log,
	}
}

func (s *CatalogServiceImpl) CreateItem(ctx context.Context, title, author, category string) (*item.Item, error) {
	it, err := item.NewItem(title, author, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Item registered", "item_id", it.ID)
	return it, nil
}

func (s *CatalogServiceImpl) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *CatalogServiceImpl) ListItems(ctx context.Context, page, perPage int) ([]*item.Item, error) {
	return s.items.List(ctx, perPage, (page-1)*perPage)
}

// CreateMember relies on the unique email index; the repository reports ErrDuplicateEmail
func (s *CatalogServiceImpl) CreateMember(ctx context.Context, name, email string) (*member.Member, error) {
	m, err := member.NewMember(name, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	if err := s.members.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Member registered", "member_id", m.ID)
	return m, nil
}

func (s *CatalogServiceImpl) GetMember(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return s.members.GetByID(ctx, id)
}
