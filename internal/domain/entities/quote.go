package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle of a bid.
//
// Domain notes:
//   - pending and sent_to_client are the only non-terminal statuses.
//   - Transitions are driven by admin/client decisions, never by the subcontractor.
type QuoteStatus string

const (
	QuotePending      QuoteStatus = "pending"
	QuoteSentToClient QuoteStatus = "sent_to_client"
	QuoteAccepted     QuoteStatus = "accepted"
	QuoteRejected     QuoteStatus = "rejected"
)

func (s QuoteStatus) Terminal() bool {
	return s == QuoteAccepted || s == QuoteRejected
}

type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Quote is a subcontractor's priced proposal against a work order.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (work_order_id-index): work_order_id
//
// Monetary representation:
//   - TotalAmount is subcontractor-facing; ClientAmount is what the client sees.
type Quote struct {
	ID              string `json:"id"`
	WorkOrderID     string `json:"work_order_id"`
	SubcontractorID string `json:"subcontractor_id"`

	LaborCost        decimal.Decimal `json:"labor_cost"`
	MaterialCost     decimal.Decimal `json:"material_cost"`
	AdditionalCosts  decimal.Decimal `json:"additional_costs"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	MarkupPercentage decimal.Decimal `json:"markup_percentage"`
	ClientAmount     decimal.Decimal `json:"client_amount"`
	LineItems        []LineItem      `json:"line_items"`

	Notes     string      `json:"notes,omitempty"`
	Status    QuoteStatus `json:"status"`
	Revision  int         `json:"revision"`
	DecidedBy string      `json:"decided_by,omitempty"`
	DecidedAt *time.Time  `json:"decided_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
