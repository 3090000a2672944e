package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/library-lending-engine/internal/api_gateway/service"
)

// CatalogHandler handles item and member seeding and lookups
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(logger *slog.Logger, catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	it, err := h.catalog.CreateItem(c.Request.Context(), req.Title, req.Author, req.Category)
	if err != nil {
		respondServiceError(c, h.logger, "create_item", err)
		return
	}

	RespondCreated(c, mapItemToResponse(it))
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}

	it, err := h.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get_item", err)
		return
	}

	RespondOK(c, mapItemToResponse(it))
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	items, err := h.catalog.ListItems(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, "list_items", err)
		return
	}

	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, mapItemToResponse(it))
	}
	RespondOK(c, out)
}

func (h *CatalogHandler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.catalog.CreateMember(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondServiceError(c, h.logger, "create_member", err)
		return
	}

	RespondCreated(c, mapMemberToResponse(m))
}

func (h *CatalogHandler) GetMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	m, err := h.catalog.GetMember(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get_member", err)
		return
	}

	RespondOK(c, mapMemberToResponse(m))
}
