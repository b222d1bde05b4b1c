package usecase

import (
	"context"
	"testing"
	"time"

	"facility_workorders/internal/adapter/persistence/memory"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

var (
	admin  = entities.Actor{ID: "admin-1", Name: "Ana Admin", Role: entities.RoleAdmin}
	client = entities.Actor{ID: "client-1", Name: "Carla Client", Role: entities.RoleClient}
	subA   = entities.Actor{ID: "sub-a", Name: "Sub A", Role: entities.RoleSubcontractor}
	subB   = entities.Actor{ID: "sub-b", Name: "Sub B", Role: entities.RoleSubcontractor}
	subC   = entities.Actor{ID: "sub-c", Name: "Sub C", Role: entities.RoleSubcontractor}
)

type fixture struct {
	store      *memory.Store
	workOrders *WorkOrderUseCase
	timeline   *TimelineUseCase
	quotes     *QuoteUseCase
	recurring  *RecurringWorkOrderUseCase
	invoices   *InvoiceUseCase
}

func newFixture(t *testing.T, gateway interfaces.IPaymentGateway, notifier interfaces.INotifier) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store}
	f.workOrders = NewWorkOrderUseCase(store.WorkOrders(), lifecycle.NewDefault(), notifier, nil)
	f.timeline = NewTimelineUseCase(store.WorkOrders(), store.Invoices(), nil)
	f.quotes = NewQuoteUseCase(store.Quotes(), f.workOrders, f.timeline, notifier, decimal.NewFromInt(10), nil)
	f.recurring = NewRecurringWorkOrderUseCase(store.Definitions(), store.Executions(), store.WorkOrders(), notifier, 0, nil)
	f.invoices = NewInvoiceUseCase(store.Invoices(), store.Quotes(), f.workOrders, gateway, notifier, "BRL", nil)
	return f
}

// at pins every use case clock to now.
func (f *fixture) at(now time.Time) {
	clock := func() time.Time { return now }
	f.workOrders.now = clock
	f.timeline.now = clock
	f.quotes.now = clock
	f.recurring.now = clock
	f.invoices.now = clock
}

func (f *fixture) newWorkOrder(t *testing.T) entities.WorkOrder {
	t.Helper()
	wo, err := f.workOrders.Create(context.Background(), CreateWorkOrderInput{
		Title:          "Leaking roof",
		Category:       "roofing",
		LocationID:     "loc-1",
		EstimateBudget: decimal.NewFromInt(1200),
	}, client)
	if err != nil {
		t.Fatalf("create work order: %v", err)
	}
	return wo
}

func (f *fixture) move(t *testing.T, id string, req lifecycle.Request) entities.WorkOrder {
	t.Helper()
	wo, err := f.workOrders.Transition(context.Background(), id, req)
	if err != nil {
		t.Fatalf("transition to %s: %v", req.Target, err)
	}
	return wo
}

func (f *fixture) biddingWorkOrder(t *testing.T) entities.WorkOrder {
	t.Helper()
	wo := f.newWorkOrder(t)
	f.move(t, wo.ID, lifecycle.Request{Target: entities.WorkOrderApproved, Actor: admin})
	return f.move(t, wo.ID, lifecycle.Request{Target: entities.WorkOrderBidding, Actor: admin})
}

func (f *fixture) submit(t *testing.T, woID string, actor entities.Actor, labor int64) entities.Quote {
	t.Helper()
	q, err := f.quotes.Submit(context.Background(), woID, QuoteInput{LaborCost: decimal.NewFromInt(labor)}, actor)
	if err != nil {
		t.Fatalf("submit quote for %s: %v", actor.ID, err)
	}
	return q
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func eventTypes(tl []entities.TimelineEvent) []entities.TimelineEventType {
	out := make([]entities.TimelineEventType, len(tl))
	for i, ev := range tl {
		out[i] = ev.Type
	}
	return out
}
