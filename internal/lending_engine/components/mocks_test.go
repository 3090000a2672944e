package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, i *item.Item) error {
	return m.Called(ctx, i).Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) List(ctx context.Context, limit, offset int) ([]*item.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepo) SetStatus(ctx context.Context, id uuid.UUID, status item.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockItemRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) WithTx(tx pgx.Tx) item.Repository {
	return m
}

type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepo) SetStatus(ctx context.Context, id uuid.UUID, status member.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockMemberRepo) AdjustFinesDue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMemberRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepo) WithTx(tx pgx.Tx) member.Repository {
	return m
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *lending.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	return m.Called(ctx, id, returnedAt).Error(0)
}

func (m *MockTransactionRepo) CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepo) CountOverdueByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepo) MarkOverdue(ctx context.Context, now time.Time) ([]lending.OverdueMark, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lending.OverdueMark), args.Error(1)
}

func (m *MockTransactionRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListActiveByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListOverdue(ctx context.Context) ([]*lending.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) lending.Repository {
	return m
}

type MockFineRepo struct {
	mock.Mock
}

func (m *MockFineRepo) Create(ctx context.Context, f *fine.Fine) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFineRepo) GetByID(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

func (m *MockFineRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return m.Called(ctx, id, paidAt).Error(0)
}

func (m *MockFineRepo) HasUnpaidByMember(ctx context.Context, memberID uuid.UUID) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFineRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fine.Fine), args.Error(1)
}

func (m *MockFineRepo) List(ctx context.Context, limit, offset int) ([]*fine.Fine, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fine.Fine), args.Error(1)
}

func (m *MockFineRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

func (m *MockFineRepo) WithTx(tx pgx.Tx) fine.Repository {
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}
