package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, it *item.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, limit, offset int) ([]*item.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepository) SetStatus(ctx context.Context, id uuid.UUID, status item.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) WithTx(_ pgx.Tx) item.Repository {
	return m
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) SetStatus(ctx context.Context, id uuid.UUID, status member.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockMemberRepository) AdjustFinesDue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMemberRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) WithTx(_ pgx.Tx) member.Repository {
	return m
}

func newTestCatalog() (CatalogService, *MockItemRepository, *MockMemberRepository) {
	items := new(MockItemRepository)
	members := new(MockMemberRepository)
	return NewCatalogService(items, members, slog.New(slog.NewTextHandler(io.Discard, nil))), items, members
}

func TestCatalogService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, items, _ := newTestCatalog()
		items.On("Create", ctx, mock.MatchedBy(func(it *item.Item) bool {
			return it.Title == "Dune" && it.Author == "Frank Herbert" && it.Status == item.StatusAvailable
		})).Return(nil).Once()

		it, err := svc.CreateItem(ctx, " Dune ", "Frank Herbert", "novel")
		require.NoError(t, err)
		assert.Equal(t, "Dune", it.Title)
		items.AssertExpectations(t)
	})

	t.Run("EmptyTitleIsValidationError", func(t *testing.T) {
		svc, items, _ := newTestCatalog()

		_, err := svc.CreateItem(ctx, "  ", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.ErrorIs(t, err, item.ErrEmptyTitle)
		items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		svc, items, _ := newTestCatalog()
		dbErr := errors.New("db down")
		items.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		_, err := svc.CreateItem(ctx, "Dune", "", "")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCatalogService_ListItems(t *testing.T) {
	ctx := context.Background()
	svc, items, _ := newTestCatalog()
	expected := []*item.Item{{ID: uuid.New(), Title: "Dune"}}
	items.On("List", ctx, 10, 20).Return(expected, nil).Once()

	got, err := svc.ListItems(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestCatalogService_CreateMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _, members := newTestCatalog()
		members.On("Create", ctx, mock.MatchedBy(func(m *member.Member) bool {
			return m.Email == "ada@example.com" && m.Status == member.StatusActive && m.FinesDue.IsZero()
		})).Return(nil).Once()

		m, err := svc.CreateMember(ctx, "Ada", "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Ada", m.Name)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc, _, members := newTestCatalog()
		members.On("Create", ctx, mock.Anything).Return(member.ErrDuplicateEmail{Email: "ada@example.com"}).Once()

		_, err := svc.CreateMember(ctx, "Ada", "ada@example.com")
		var dup member.ErrDuplicateEmail
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		svc, _, _ := newTestCatalog()

		_, err := svc.CreateMember(ctx, "Ada", "not-an-email")
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.ErrorIs(t, err, member.ErrInvalidEmail)
	})
}

func TestCatalogService_Get(t *testing.T) {
	ctx := context.Background()
	svc, items, members := newTestCatalog()
	id := uuid.New()

	items.On("GetByID", ctx, id).Return(nil, item.ErrItemNotFound{ItemID: id}).Once()
	members.On("GetByID", ctx, id).Return(&member.Member{ID: id}, nil).Once()

	_, err := svc.GetItem(ctx, id)
	assert.ErrorIs(t, err, item.ErrItemNotFound{})

	m, err := svc.GetMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
}
