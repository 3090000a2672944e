package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	engine "github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/logger"
)

// ruleViolation maps a precondition sentinel to its HTTP status and error code
type ruleViolation struct {
	err    error
	status int
	code   string
}

// Item state conflicts are 409; rules about the member or the payment are 422.
var ruleViolations = []ruleViolation{
	{shared.ErrItemUnavailable, http.StatusConflict, "ITEM_UNAVAILABLE"},
	{shared.ErrAlreadyReturned, http.StatusConflict, "ALREADY_RETURNED"},
	{shared.ErrMemberNotActive, http.StatusUnprocessableEntity, "MEMBER_NOT_ACTIVE"},
	{shared.ErrUnpaidFinesOutstanding, http.StatusUnprocessableEntity, "UNPAID_FINES"},
	{shared.ErrBorrowLimitReached, http.StatusUnprocessableEntity, "BORROW_LIMIT_REACHED"},
	{shared.ErrPartialPaymentNotSupported, http.StatusUnprocessableEntity, "PARTIAL_PAYMENT_NOT_SUPPORTED"},
}

// respondServiceError writes the error envelope for an engine or catalog error
func respondServiceError(c *gin.Context, base *slog.Logger, op string, err error) {
	log := logger.FromContext(c.Request.Context(), base)

	switch {
	case errors.Is(err, shared.ErrValidation):
		RespondBadRequest(c, err.Error())
		return
	case engine.IsNotFound(err):
		RespondNotFound(c, err.Error())
		return
	}

	var dupEmail member.ErrDuplicateEmail
	if errors.As(err, &dupEmail) {
		RespondConflict(c, "DUPLICATE_EMAIL", err.Error())
		return
	}

	if errors.Is(err, shared.ErrPreconditionFailed) {
		for _, v := range ruleViolations {
			if errors.Is(err, v.err) {
				RespondWithError(c, v.status, v.code, err.Error())
				return
			}
		}
		RespondUnprocessable(c, "PRECONDITION_FAILED", err.Error())
		return
	}

	if errors.Is(err, shared.ErrConstraintConflict) {
		log.Warn("Request lost a concurrent update", "op", op, "error", err)
		RespondConflict(c, "CONCURRENT_UPDATE", "The resource was modified concurrently, please retry")
		return
	}

	log.Error("Request failed", "op", op, "error", err)
	_ = c.Error(err)
	RespondInternalError(c)
}

// parseIDParam reads a uuid path parameter, answering 400 when it is malformed
func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondBadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
