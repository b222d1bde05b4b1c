package handlers

import (
	"errors"
	"net/http"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/adapter/http/middleware"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"
	"facility_workorders/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	errUnauthorized   = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing or invalid credentials", http.StatusUnauthorized)
)

// mapError turns use-case errors into stable API codes.
func mapError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidTransition), errors.Is(err, usecase.ErrBiddingClosed):
		return pkg.NewDomainError("INVALID_TRANSITION", "Transition not allowed", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrDuplicateActiveQuote):
		return pkg.NewDomainErrorSimple("DUPLICATE_ACTIVE_QUOTE", "Subcontractor already has an active quote for this work order", http.StatusConflict)
	case errors.Is(err, usecase.ErrQuoteNotActive), errors.Is(err, usecase.ErrQuoteNotEditable):
		return pkg.NewDomainError("QUOTE_NOT_OPEN", "Quote can no longer be changed", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrNotFound):
		return pkg.NewDomainError("NOT_FOUND", "Resource not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidQuoteAmounts),
		errors.Is(err, usecase.ErrInvalidPattern),
		errors.Is(err, usecase.ErrOccurrenceOutOfRange),
		errors.Is(err, usecase.ErrQuoteWorkOrderMismatch):
		return errInvalidPayload.WithDetails(err)
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		return pkg.NewDomainErrorSimple("CONCURRENT_UPDATE", "The resource was modified concurrently, retry", http.StatusConflict)
	case errors.Is(err, usecase.ErrDefinitionInactive):
		return pkg.NewDomainErrorSimple("DEFINITION_INACTIVE", "Recurring work order is not active", http.StatusConflict)
	case errors.Is(err, usecase.ErrForbidden):
		return pkg.NewDomainErrorSimple("FORBIDDEN", "Actor not allowed", http.StatusForbidden)
	case errors.Is(err, usecase.ErrInvoiceAmountUnknown):
		return pkg.NewDomainErrorSimple("INVOICE_AMOUNT_UNKNOWN", "No accepted quote or budget to invoice", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentNotApproved):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_APPROVED", "Payment not approved", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrPaymentGatewayNotConfig):
		return pkg.NewDomainErrorSimple("PAYMENT_GATEWAY_UNAVAILABLE", "Payment gateway not configured", http.StatusServiceUnavailable)
	case errors.Is(err, request.ErrInvalidDate), errors.Is(err, request.ErrInvalidStatus):
		return errInvalidPayload.WithDetails(err)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func writeError(c *gin.Context, err error) {
	appErr := mapError(err)
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func writeAppError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func requireActor(c *gin.Context) (entities.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		writeAppError(c, errUnauthorized)
		return entities.Actor{}, false
	}
	return actor, true
}
