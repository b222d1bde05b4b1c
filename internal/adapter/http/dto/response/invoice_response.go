package response

import (
	"time"

	"facility_workorders/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type InvoiceResponse struct {
	ID               string                  `json:"id"`
	InvoiceNumber    string                  `json:"invoice_number"`
	WorkOrderID      string                  `json:"work_order_id"`
	ClientID         string                  `json:"client_id"`
	QuoteID          string                  `json:"quote_id,omitempty"`
	Amount           decimal.Decimal         `json:"amount"`
	Currency         string                  `json:"currency"`
	Status           string                  `json:"status"`
	PaymentLink      string                  `json:"payment_link,omitempty"`
	PaymentSessionID string                  `json:"payment_session_id,omitempty"`
	PaymentReference string                  `json:"payment_reference,omitempty"`
	Timeline         []TimelineEventResponse `json:"timeline"`
	PaidAt           *time.Time              `json:"paid_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func FromInvoice(inv entities.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		WorkOrderID:      inv.WorkOrderID,
		ClientID:         inv.ClientID,
		QuoteID:          inv.QuoteID,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		Status:           string(inv.Status),
		PaymentLink:      inv.PaymentLink,
		PaymentSessionID: inv.PaymentSessionID,
		PaymentReference: inv.PaymentReference,
		Timeline:         FromTimeline(inv.Timeline),
		PaidAt:           inv.PaidAt,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}
