package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogRouter() (*MockCatalogService, func(method, path, body string) *httptest.ResponseRecorder) {
	svc := new(MockCatalogService)
	h := NewCatalogHandler(newTestLogger(), svc)

	r := setupTestRouter()
	r.POST("/items", h.CreateItem)
	r.GET("/items", h.ListItems)
	r.GET("/items/:id", h.GetItem)
	r.POST("/members", h.CreateMember)
	r.GET("/members/:id", h.GetMember)

	return svc, func(method, path, body string) *httptest.ResponseRecorder {
		return doRequest(r, method, path, body)
	}
}

func TestCatalogHandler_CreateItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, do := newCatalogRouter()
		now := time.Now().UTC()
		it := &item.Item{ID: uuid.New(), Title: "Dune", Status: item.StatusAvailable, CreatedAt: now, UpdatedAt: now}
		svc.On("CreateItem", mock.Anything, "Dune", "Frank Herbert", "").Return(it, nil).Once()

		rr := do(http.MethodPost, "/items", `{"title":"Dune","author":"Frank Herbert"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp ItemResponse
		decodeEnvelope(t, rr, &resp)
		assert.Equal(t, it.ID.String(), resp.ID)
		assert.Equal(t, "available", resp.Status)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		svc, do := newCatalogRouter()

		rr := do(http.MethodPost, "/items", `{"author":"nobody"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BlankTitleRejectedByDomain", func(t *testing.T) {
		svc, do := newCatalogRouter()
		svc.On("CreateItem", mock.Anything, "  ", "", "").
			Return(nil, fmt.Errorf("%w: %w", shared.ErrValidation, item.ErrEmptyTitle)).Once()

		rr := do(http.MethodPost, "/items", `{"title":"  "}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCatalogHandler_GetItem(t *testing.T) {
	id := uuid.New()

	t.Run("NotFound", func(t *testing.T) {
		svc, do := newCatalogRouter()
		svc.On("GetItem", mock.Anything, id).Return(nil, item.ErrItemNotFound{ItemID: id}).Once()

		rr := do(http.MethodGet, "/items/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		_, do := newCatalogRouter()

		rr := do(http.MethodGet, "/items/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCatalogHandler_ListItems(t *testing.T) {
	svc, do := newCatalogRouter()
	svc.On("ListItems", mock.Anything, 2, 10).Return([]*item.Item{{ID: uuid.New(), Title: "Dune"}}, nil).Once()

	rr := do(http.MethodGet, "/items?page=2&per_page=10", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []ItemResponse
	decodeEnvelope(t, rr, &resp)
	assert.Len(t, resp, 1)
}

func TestCatalogHandler_Members(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		svc, do := newCatalogRouter()
		m := &member.Member{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Status: member.StatusActive, FinesDue: decimal.Zero}
		svc.On("CreateMember", mock.Anything, "Ada", "ada@example.com").Return(m, nil).Once()

		rr := do(http.MethodPost, "/members", `{"name":"Ada","email":"ada@example.com"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp MemberResponse
		decodeEnvelope(t, rr, &resp)
		assert.Equal(t, "0.00", resp.FinesDue)
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc, do := newCatalogRouter()
		svc.On("CreateMember", mock.Anything, "Ada", "ada@example.com").
			Return(nil, member.ErrDuplicateEmail{Email: "ada@example.com"}).Once()

		rr := do(http.MethodPost, "/members", `{"name":"Ada","email":"ada@example.com"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		env := decodeEnvelope(t, rr, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, "DUPLICATE_EMAIL", env.Error.Code)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		_, do := newCatalogRouter()

		rr := do(http.MethodPost, "/members", `{"name":"Ada","email":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("GetFailure", func(t *testing.T) {
		svc, do := newCatalogRouter()
		id := uuid.New()
		svc.On("GetMember", mock.Anything, id).Return(nil, errors.New("db down")).Once()

		rr := do(http.MethodGet, "/members/"+id.String(), "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
