package usecase

import (
	"errors"
	"fmt"

	"facility_workorders/internal/domain/bidding"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/domain/recurrence"
)

// TransitionError is returned for refused status changes; it unwraps to ErrInvalidTransition.
type TransitionError = lifecycle.TransitionError

var (
	ErrInvalidTransition   = lifecycle.ErrInvalidTransition
	ErrInvalidQuoteAmounts = bidding.ErrInvalidAmounts
	ErrInvalidPattern      = recurrence.ErrInvalidPattern

	ErrNotFound                = errors.New("not found")
	ErrWorkOrderNotFound       = fmt.Errorf("work order %w", ErrNotFound)
	ErrQuoteNotFound           = fmt.Errorf("quote %w", ErrNotFound)
	ErrDefinitionNotFound      = fmt.Errorf("recurring work order %w", ErrNotFound)
	ErrExecutionNotFound       = fmt.Errorf("execution %w", ErrNotFound)
	ErrInvoiceNotFound         = fmt.Errorf("invoice %w", ErrNotFound)
	ErrDuplicateActiveQuote    = errors.New("subcontractor already has an active quote for this work order")
	ErrQuoteNotActive          = errors.New("quote is no longer open")
	ErrQuoteNotEditable        = errors.New("only pending quotes can be revised")
	ErrQuoteWorkOrderMismatch  = errors.New("quote does not belong to work order")
	ErrBiddingClosed           = errors.New("work order is not open for bidding")
	ErrMaterializationFailure  = errors.New("materialization failed")
	ErrDefinitionInactive      = errors.New("recurring work order is not active")
	ErrOccurrenceOutOfRange    = errors.New("scheduled date is outside the recurrence window")
	ErrConcurrentUpdate        = errors.New("concurrent update, retry")
	ErrForbidden               = errors.New("actor not allowed")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvoiceAmountUnknown    = errors.New("no accepted quote or budget to invoice")
	ErrPaymentNotApproved      = errors.New("payment not approved")
	ErrPaymentGatewayNotConfig = errors.New("payment gateway not configured")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
