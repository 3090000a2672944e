package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateItem(ctx context.Context, title, author, category string) (*item.Item, error) {
	args := m.Called(ctx, title, author, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockCatalogService) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockCatalogService) ListItems(ctx context.Context, page, perPage int) ([]*item.Item, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockCatalogService) CreateMember(ctx context.Context, name, email string) (*member.Member, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockCatalogService) GetMember(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) Borrow(ctx context.Context, itemID, memberID uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, itemID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

func (m *MockLendingService) ReturnItem(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

type MockFineService struct {
	mock.Mock
}

func (m *MockFineService) PayFine(ctx context.Context, fineID uuid.UUID, amount decimal.Decimal) (*fine.Fine, error) {
	args := m.Called(ctx, fineID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOverdues(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockLendingQueries struct {
	mock.Mock
}

func (m *MockLendingQueries) transactions(args mock.Arguments) ([]*lending.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Transaction), args.Error(1)
}

func (m *MockLendingQueries) fines(args mock.Arguments) ([]*fine.Fine, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fine.Fine), args.Error(1)
}

func (m *MockLendingQueries) ListOverdue(ctx context.Context) ([]*lending.Transaction, error) {
	return m.transactions(m.Called(ctx))
}

func (m *MockLendingQueries) GetTransaction(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

func (m *MockLendingQueries) MemberLoans(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	return m.transactions(m.Called(ctx, memberID))
}

func (m *MockLendingQueries) MemberTransactions(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	return m.transactions(m.Called(ctx, memberID))
}

func (m *MockLendingQueries) MemberFines(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	return m.fines(m.Called(ctx, memberID))
}

func (m *MockLendingQueries) ListFines(ctx context.Context, limit, offset int) ([]*fine.Fine, error) {
	return m.fines(m.Called(ctx, limit, offset))
}

func (m *MockLendingQueries) GetFine(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

func (m *MockLendingQueries) MemberHistory(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*history.Event, int64, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*history.Event), args.Get(1).(int64), args.Error(2)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
