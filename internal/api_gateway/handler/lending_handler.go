package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/api_gateway/service"
	engine "github.com/library-lending-engine/internal/lending_engine/service"
)

// LendingHandler exposes borrow, return and the transaction read endpoints
type LendingHandler struct {
	lending engine.LendingService
	queries service.LendingQueries
	logger  *slog.Logger
}

func NewLendingHandler(logger *slog.Logger, lending engine.LendingService, queries service.LendingQueries) *LendingHandler {
	return &LendingHandler{
		lending: lending,
		queries: queries,
		logger:  logger,
	}
}

// Borrow lends an item to a member and answers 201 with the open transaction
func (h *LendingHandler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// binding already checked both ids
	itemID := uuid.MustParse(req.ItemID)
	memberID := uuid.MustParse(req.MemberID)

	txn, err := h.lending.Borrow(c.Request.Context(), itemID, memberID)
	if err != nil {
		respondServiceError(c, h.logger, "borrow", err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

func (h *LendingHandler) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	txn, err := h.lending.ReturnItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "return", err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

func (h *LendingHandler) GetTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	txn, err := h.queries.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get_transaction", err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// ListOverdue recomputes overdue status before answering
func (h *LendingHandler) ListOverdue(c *gin.Context) {
	txns, err := h.queries.ListOverdue(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, "list_overdue", err)
		return
	}

	RespondOK(c, mapTransactions(txns))
}

func (h *LendingHandler) MemberLoans(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	txns, err := h.queries.MemberLoans(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "member_loans", err)
		return
	}

	RespondOK(c, mapTransactions(txns))
}

func (h *LendingHandler) MemberTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	txns, err := h.queries.MemberTransactions(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "member_transactions", err)
		return
	}

	RespondOK(c, mapTransactions(txns))
}

// MemberHistory pages through the member's lending events, newest first
func (h *LendingHandler) MemberHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	events, total, err := h.queries.MemberHistory(c.Request.Context(), id, params.PerPage, params.offset())
	if err != nil {
		respondServiceError(c, h.logger, "member_history", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapHistory(events), params.Page, params.PerPage, int(total))
}
