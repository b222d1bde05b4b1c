package request

import (
	"strings"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// QuoteRequest is used both to submit and to revise a quote. Optional amounts
// are pointers so "absent" differs from zero.
type QuoteRequest struct {
	SubcontractorID  string            `json:"subcontractor_id"`
	LaborCost        decimal.Decimal   `json:"labor_cost"`
	MaterialCost     decimal.Decimal   `json:"material_cost"`
	AdditionalCosts  decimal.Decimal   `json:"additional_costs"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	TotalAmount      *decimal.Decimal  `json:"total_amount"`
	MarkupPercentage *decimal.Decimal  `json:"markup_percentage"`
	ClientAmount     *decimal.Decimal  `json:"client_amount"`
	LineItems        []LineItemRequest `json:"line_items"`
	Notes            string            `json:"notes"`
}

func (r QuoteRequest) ToInput() usecase.QuoteInput {
	items := make([]entities.LineItem, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		amount := li.Amount
		if amount.IsZero() {
			amount = li.Quantity.Mul(li.UnitPrice)
		}
		items = append(items, entities.LineItem{
			Description: strings.TrimSpace(li.Description),
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      amount,
		})
	}
	return usecase.QuoteInput{
		SubcontractorID:  strings.TrimSpace(r.SubcontractorID),
		LaborCost:        r.LaborCost,
		MaterialCost:     r.MaterialCost,
		AdditionalCosts:  r.AdditionalCosts,
		DiscountAmount:   r.DiscountAmount,
		TotalAmount:      r.TotalAmount,
		MarkupPercentage: r.MarkupPercentage,
		ClientAmount:     r.ClientAmount,
		LineItems:        items,
		Notes:            r.Notes,
	}
}

type ShareQuotesRequest struct {
	QuoteIDs []string `json:"quote_ids" binding:"required,min=1"`
}
