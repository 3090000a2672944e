package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/library-lending-engine/internal/api_gateway/service"
	engine "github.com/library-lending-engine/internal/lending_engine/service"
)

// FineHandler exposes fine payment, the sweep trigger and fine lookups
type FineHandler struct {
	fines   engine.FineService
	sweeper engine.Sweeper
	queries service.LendingQueries
	logger  *slog.Logger
}

func NewFineHandler(logger *slog.Logger, fines engine.FineService, sweeper engine.Sweeper, queries service.LendingQueries) *FineHandler {
	return &FineHandler{
		fines:   fines,
		sweeper: sweeper,
		queries: queries,
		logger:  logger,
	}
}

// Pay settles a fine in full. Paying an already paid fine answers 200 with the fine unchanged.
func (h *FineHandler) Pay(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "fine")
	if !ok {
		return
	}

	var req PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	f, err := h.fines.PayFine(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondServiceError(c, h.logger, "pay_fine", err)
		return
	}

	RespondOK(c, mapFineToResponse(f))
}

// Recalculate runs an overdue sweep on demand
func (h *FineHandler) Recalculate(c *gin.Context) {
	updated, err := h.sweeper.SweepOverdues(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, "recalculate", err)
		return
	}

	RespondOK(c, RecalculateResponse{UpdatedTransactions: updated})
}

func (h *FineHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	fines, err := h.queries.ListFines(c.Request.Context(), params.PerPage, params.offset())
	if err != nil {
		respondServiceError(c, h.logger, "list_fines", err)
		return
	}

	RespondOK(c, mapFines(fines))
}

func (h *FineHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "fine")
	if !ok {
		return
	}

	f, err := h.queries.GetFine(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get_fine", err)
		return
	}

	RespondOK(c, mapFineToResponse(f))
}

func (h *FineHandler) MemberFines(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	fines, err := h.queries.MemberFines(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "member_fines", err)
		return
	}

	RespondOK(c, mapFines(fines))
}
