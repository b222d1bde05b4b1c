package response

import (
	"testing"
	"time"

	"facility_workorders/internal/domain/bidding"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

func TestFromWorkOrder(t *testing.T) {
	now := time.Now().UTC()
	wo := entities.WorkOrder{
		ID:             "wo-1",
		Status:         entities.WorkOrderAssigned,
		Priority:       entities.PriorityHigh,
		EstimateBudget: decimal.RequireFromString("250.00"),
		Timeline: []entities.TimelineEvent{
			{Type: entities.EventAssigned, UserID: "client-1", UserRole: entities.RoleClient, FromStatus: "quote_shared_with_client", ToStatus: "assigned", Timestamp: now},
		},
		Version:   4,
		CreatedAt: now,
	}
	res := FromWorkOrder(wo)
	if res.ID != "wo-1" || res.Status != "assigned" || res.Priority != "high" || res.Version != 4 {
		t.Fatalf("unexpected mapped fields: %+v", res)
	}
	if len(res.Timeline) != 1 || res.Timeline[0].Type != "assigned" || res.Timeline[0].UserRole != "client" {
		t.Fatalf("unexpected timeline: %+v", res.Timeline)
	}
	if len(FromWorkOrders(nil)) != 0 || FromWorkOrders(nil) == nil {
		t.Fatalf("empty list must encode as []")
	}
}

func TestFromAcceptResult(t *testing.T) {
	r := usecase.AcceptResult{
		Accepted:  entities.Quote{ID: "q1", Status: entities.QuoteAccepted},
		Rejected:  []entities.Quote{{ID: "q2", Status: entities.QuoteRejected}},
		WorkOrder: entities.WorkOrder{ID: "wo-1", Status: entities.WorkOrderAssigned, AssignedQuoteID: "q1"},
	}
	res := FromAcceptResult(r)
	if res.Accepted.Status != "accepted" || len(res.Rejected) != 1 || res.Rejected[0].ID != "q2" || res.WorkOrder.AssignedQuoteID != "q1" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Accepted.LineItems == nil {
		t.Fatalf("line items must never be null")
	}
}

func TestFromRecommendation(t *testing.T) {
	res := FromRecommendation(bidding.Recommendation{
		QuoteID:         "q1",
		TotalAmount:     decimal.NewFromInt(120),
		BenchmarkAmount: decimal.NewFromInt(100),
		PercentDiff:     decimal.NewFromInt(20),
		Recommendation:  bidding.Reject,
		BenchmarkSource: bidding.SourceSiblings,
		SampleSize:      2,
	})
	if res.Recommendation != string(bidding.Reject) || res.BenchmarkSource != string(bidding.SourceSiblings) || res.SampleSize != 2 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestFromBatchResult(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res := FromBatchResult(usecase.BatchResult{
		Created: 1,
		Failed:  1,
		Errors:  []usecase.ExecutionError{{ExecutionID: "d#2026-02-01", ScheduledDate: day, Error: "boom"}},
		Executions: []entities.RecurringWorkOrderExecution{
			{ID: "d#2026-01-01", ScheduledDate: day.AddDate(0, -1, 0), Status: entities.ExecutionExecuted},
		},
	})
	if res.Created != 1 || res.Failed != 1 || res.Errors[0].ScheduledDate != "2026-02-01" {
		t.Fatalf("unexpected batch: %+v", res)
	}
	if res.Executions[0].ScheduledDate != "2026-01-01" || res.Executions[0].Status != "executed" {
		t.Fatalf("unexpected executions: %+v", res.Executions)
	}
}

func TestFromInvoice(t *testing.T) {
	res := FromInvoice(entities.Invoice{ID: "inv-1", Amount: decimal.NewFromInt(1100), Currency: "BRL", Status: entities.InvoiceSent})
	if res.ID != "inv-1" || res.Status != "sent" || !res.Amount.Equal(decimal.NewFromInt(1100)) || res.Timeline == nil {
		t.Fatalf("unexpected invoice: %+v", res)
	}
}
