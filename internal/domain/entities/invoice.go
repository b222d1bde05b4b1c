package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice is the minimal billing record for a completed work order.
//
// Storage model (DynamoDB):
//   - PK: id
//
// The payment provider is an external collaborator: only the link and
// session reference are stored.
type Invoice struct {
	ID               string          `json:"id"`
	InvoiceNumber    string          `json:"invoice_number"`
	WorkOrderID      string          `json:"work_order_id"`
	ClientID         string          `json:"client_id"`
	QuoteID          string          `json:"quote_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           InvoiceStatus   `json:"status"`
	PaymentLink      string          `json:"payment_link,omitempty"`
	PaymentSessionID string          `json:"payment_session_id,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	Timeline         []TimelineEvent `json:"timeline"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
