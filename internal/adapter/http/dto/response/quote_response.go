package response

import (
	"time"

	"facility_workorders/internal/domain/bidding"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	ID               string              `json:"id"`
	WorkOrderID      string              `json:"work_order_id"`
	SubcontractorID  string              `json:"subcontractor_id"`
	LaborCost        decimal.Decimal     `json:"labor_cost"`
	MaterialCost     decimal.Decimal     `json:"material_cost"`
	AdditionalCosts  decimal.Decimal     `json:"additional_costs"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	MarkupPercentage decimal.Decimal     `json:"markup_percentage"`
	ClientAmount     decimal.Decimal     `json:"client_amount"`
	LineItems        []entities.LineItem `json:"line_items"`
	Notes            string              `json:"notes,omitempty"`
	Status           string              `json:"status"`
	Revision         int                 `json:"revision"`
	DecidedBy        string              `json:"decided_by,omitempty"`
	DecidedAt        *time.Time          `json:"decided_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func FromQuote(q entities.Quote) QuoteResponse {
	items := q.LineItems
	if items == nil {
		items = []entities.LineItem{}
	}
	return QuoteResponse{
		ID:               q.ID,
		WorkOrderID:      q.WorkOrderID,
		SubcontractorID:  q.SubcontractorID,
		LaborCost:        q.LaborCost,
		MaterialCost:     q.MaterialCost,
		AdditionalCosts:  q.AdditionalCosts,
		DiscountAmount:   q.DiscountAmount,
		TotalAmount:      q.TotalAmount,
		MarkupPercentage: q.MarkupPercentage,
		ClientAmount:     q.ClientAmount,
		LineItems:        items,
		Notes:            q.Notes,
		Status:           string(q.Status),
		Revision:         q.Revision,
		DecidedBy:        q.DecidedBy,
		DecidedAt:        q.DecidedAt,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

func FromQuotes(list []entities.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(list))
	for _, q := range list {
		out = append(out, FromQuote(q))
	}
	return out
}

type AcceptQuoteResponse struct {
	Accepted  QuoteResponse     `json:"accepted"`
	Rejected  []QuoteResponse   `json:"rejected"`
	WorkOrder WorkOrderResponse `json:"work_order"`
}

func FromAcceptResult(r usecase.AcceptResult) AcceptQuoteResponse {
	return AcceptQuoteResponse{
		Accepted:  FromQuote(r.Accepted),
		Rejected:  FromQuotes(r.Rejected),
		WorkOrder: FromWorkOrder(r.WorkOrder),
	}
}

type RecommendationResponse struct {
	QuoteID         string          `json:"quote_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BenchmarkAmount decimal.Decimal `json:"benchmark_amount"`
	PercentDiff     decimal.Decimal `json:"percent_diff"`
	Recommendation  string          `json:"recommendation"`
	BenchmarkSource string          `json:"benchmark_source"`
	SampleSize      int             `json:"sample_size"`
}

func FromRecommendation(r bidding.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		QuoteID:         r.QuoteID,
		TotalAmount:     r.TotalAmount,
		BenchmarkAmount: r.BenchmarkAmount,
		PercentDiff:     r.PercentDiff,
		Recommendation:  string(r.Recommendation),
		BenchmarkSource: string(r.BenchmarkSource),
		SampleSize:      r.SampleSize,
	}
}
