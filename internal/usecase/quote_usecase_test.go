package usecase

import (
	"context"
	"errors"
	"testing"

	"facility_workorders/internal/domain/bidding"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"

	"github.com/shopspring/decimal"
)

func TestQuoteUseCase_Submit(t *testing.T) {
	t.Run("first quote moves bidding to quotes_received", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		q := f.submit(t, wo.ID, subA, 1000)

		if q.Status != entities.QuotePending || q.Revision != 1 {
			t.Fatalf("unexpected quote: %+v", q)
		}
		if !q.TotalAmount.Equal(decimal.NewFromInt(1000)) || !q.ClientAmount.Equal(decimal.NewFromInt(1100)) {
			t.Fatalf("expected total 1000 and client 1100 at default markup, got %s %s", q.TotalAmount, q.ClientAmount)
		}
		got, _ := f.workOrders.GetByID(context.Background(), wo.ID)
		if got.Status != entities.WorkOrderQuotesReceived {
			t.Fatalf("expected quotes_received, got %s", got.Status)
		}
		last := got.Timeline[len(got.Timeline)-1]
		if last.Type != entities.EventQuoteReceived || last.Metadata["quoteId"] != q.ID {
			t.Fatalf("unexpected last event: %+v", last)
		}
	})

	t.Run("later quotes only append an event", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		f.submit(t, wo.ID, subA, 1000)
		before, _ := f.workOrders.GetByID(context.Background(), wo.ID)
		q := f.submit(t, wo.ID, subB, 1300)

		after, _ := f.workOrders.GetByID(context.Background(), wo.ID)
		if after.Status != entities.WorkOrderQuotesReceived {
			t.Fatalf("expected quotes_received, got %s", after.Status)
		}
		if len(after.Timeline) != len(before.Timeline)+1 {
			t.Fatalf("expected one more event, got %d -> %d", len(before.Timeline), len(after.Timeline))
		}
		last := after.Timeline[len(after.Timeline)-1]
		if last.Type != entities.EventQuoteReceived || last.FromStatus != "" || last.Metadata["quoteId"] != q.ID {
			t.Fatalf("unexpected last event: %+v", last)
		}
	})

	t.Run("duplicate active quote", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		f.submit(t, wo.ID, subA, 1000)
		_, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{LaborCost: decimal.NewFromInt(900)}, subA)
		if !errors.Is(err, ErrDuplicateActiveQuote) {
			t.Fatalf("expected ErrDuplicateActiveQuote, got %v", err)
		}
	})

	t.Run("bidding closed", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.newWorkOrder(t)
		_, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{LaborCost: decimal.NewFromInt(10)}, subA)
		if !errors.Is(err, ErrBiddingClosed) {
			t.Fatalf("expected ErrBiddingClosed, got %v", err)
		}
	})

	t.Run("explicit client amount wins over markup", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		markup := decimal.NewFromInt(50)
		clientAmount := decimal.NewFromInt(1234)
		q, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{
			LaborCost:        decimal.NewFromInt(1000),
			MarkupPercentage: &markup,
			ClientAmount:     &clientAmount,
		}, subA)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !q.ClientAmount.Equal(clientAmount) {
			t.Fatalf("expected client amount 1234, got %s", q.ClientAmount)
		}
	})

	t.Run("mismatched total rejected", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		total := decimal.NewFromInt(999)
		_, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{
			LaborCost:    decimal.NewFromInt(600),
			MaterialCost: decimal.NewFromInt(400),
			TotalAmount:  &total,
		}, subA)
		if !errors.Is(err, ErrInvalidQuoteAmounts) {
			t.Fatalf("expected ErrInvalidQuoteAmounts, got %v", err)
		}
	})

	t.Run("admin submits on behalf of a subcontractor", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		if _, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{LaborCost: decimal.NewFromInt(10)}, admin); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput without subcontractor_id, got %v", err)
		}
		q, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{SubcontractorID: subC.ID, LaborCost: decimal.NewFromInt(10)}, admin)
		if err != nil || q.SubcontractorID != subC.ID {
			t.Fatalf("unexpected: %+v %v", q, err)
		}
	})

	t.Run("client cannot submit", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		_, err := f.quotes.Submit(context.Background(), wo.ID, QuoteInput{LaborCost: decimal.NewFromInt(10)}, client)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestQuoteUseCase_Revise(t *testing.T) {
	f := newFixture(t, nil, nil)
	wo := f.biddingWorkOrder(t)
	q := f.submit(t, wo.ID, subA, 1000)

	if _, err := f.quotes.Revise(context.Background(), q.ID, QuoteInput{LaborCost: decimal.NewFromInt(1)}, subB); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another subcontractor, got %v", err)
	}

	revised, err := f.quotes.Revise(context.Background(), q.ID, QuoteInput{LaborCost: decimal.NewFromInt(800), Notes: "cheaper"}, subA)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if revised.Revision != 2 || !revised.TotalAmount.Equal(decimal.NewFromInt(800)) || revised.Notes != "cheaper" {
		t.Fatalf("unexpected revision: %+v", revised)
	}
	if !revised.ClientAmount.Equal(decimal.NewFromInt(880)) {
		t.Fatalf("expected stored markup kept, got client amount %s", revised.ClientAmount)
	}

	if _, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{q.ID}, admin); err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := f.quotes.Revise(context.Background(), q.ID, QuoteInput{LaborCost: decimal.NewFromInt(700)}, subA); !errors.Is(err, ErrQuoteNotEditable) {
		t.Fatalf("expected ErrQuoteNotEditable once shared, got %v", err)
	}
}

func TestQuoteUseCase_ShareWithClient(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.quotes.ShareWithClient(context.Background(), "wo", []string{"q"}, client); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("shares quotes and transitions once", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		qa := f.submit(t, wo.ID, subA, 1000)
		qb := f.submit(t, wo.ID, subB, 1300)

		got, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{qa.ID, qa.ID}, admin)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.Status != entities.WorkOrderQuoteSharedWithClient {
			t.Fatalf("expected quote_shared_with_client, got %s", got.Status)
		}
		if stored, _ := f.quotes.GetByID(context.Background(), qa.ID); stored.Status != entities.QuoteSentToClient {
			t.Fatalf("expected sent_to_client, got %s", stored.Status)
		}

		again, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{qb.ID}, admin)
		if err != nil {
			t.Fatalf("sharing an additional quote: %v", err)
		}
		if again.Status != entities.WorkOrderQuoteSharedWithClient || len(again.Timeline) != len(got.Timeline)+1 {
			t.Fatalf("expected one extra event without status change, got %s %d", again.Status, len(again.Timeline))
		}
	})

	t.Run("quote from another work order", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		other := f.biddingWorkOrder(t)
		f.submit(t, wo.ID, subA, 1000)
		foreign := f.submit(t, other.ID, subA, 1000)
		if _, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{foreign.ID}, admin); !errors.Is(err, ErrQuoteWorkOrderMismatch) {
			t.Fatalf("expected ErrQuoteWorkOrderMismatch, got %v", err)
		}
	})
}

func TestQuoteUseCase_Recommend(t *testing.T) {
	f := newFixture(t, nil, nil)
	wo := f.biddingWorkOrder(t)
	qa := f.submit(t, wo.ID, subA, 1000)
	qb := f.submit(t, wo.ID, subB, 1300)

	rec, err := f.quotes.Recommend(context.Background(), qa.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !rec.BenchmarkAmount.Equal(decimal.NewFromInt(1300)) || !rec.PercentDiff.Equal(decimal.RequireFromString("-23.08")) {
		t.Fatalf("unexpected benchmark: %s %s", rec.BenchmarkAmount, rec.PercentDiff)
	}
	if rec.Recommendation != bidding.Approve || rec.BenchmarkSource != bidding.SourceSiblings {
		t.Fatalf("unexpected verdict: %s %s", rec.Recommendation, rec.BenchmarkSource)
	}

	recB, _ := f.quotes.Recommend(context.Background(), qb.ID)
	if recB.Recommendation != bidding.Reject {
		t.Fatalf("expected reject for 30%% above benchmark, got %s (%s)", recB.Recommendation, recB.PercentDiff)
	}

	again, _ := f.quotes.Recommend(context.Background(), qa.ID)
	if !again.PercentDiff.Equal(rec.PercentDiff) || again.Recommendation != rec.Recommendation {
		t.Fatalf("recommendation not deterministic: %+v vs %+v", rec, again)
	}

	lone := f.biddingWorkOrder(t)
	ql := f.submit(t, lone.ID, subC, 1000)
	recL, err := f.quotes.Recommend(context.Background(), ql.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if recL.BenchmarkSource != bidding.SourceSystemWide || recL.SampleSize != 3 {
		t.Fatalf("expected system-wide benchmark over 3 quotes, got %s %d", recL.BenchmarkSource, recL.SampleSize)
	}
}

func TestQuoteUseCase_Accept(t *testing.T) {
	setup := func(t *testing.T) (*fixture, entities.WorkOrder, []entities.Quote) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		qs := []entities.Quote{
			f.submit(t, wo.ID, subA, 1000),
			f.submit(t, wo.ID, subB, 1300),
			f.submit(t, wo.ID, subC, 1100),
		}
		if _, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{qs[0].ID, qs[1].ID}, admin); err != nil {
			t.Fatalf("share: %v", err)
		}
		return f, wo, qs
	}

	t.Run("exactly one accepted and the rest rejected", func(t *testing.T) {
		f, wo, qs := setup(t)
		res, err := f.quotes.Accept(context.Background(), qs[1].ID, client)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Accepted.ID != qs[1].ID || res.Accepted.Status != entities.QuoteAccepted || len(res.Rejected) != 2 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if res.WorkOrder.Status != entities.WorkOrderAssigned || res.WorkOrder.AssignedSubcontractorID != subB.ID || res.WorkOrder.AssignedQuoteID != qs[1].ID {
			t.Fatalf("unexpected work order: %s %s %s", res.WorkOrder.Status, res.WorkOrder.AssignedSubcontractorID, res.WorkOrder.AssignedQuoteID)
		}

		stored, _ := f.quotes.ListFor(context.Background(), wo.ID)
		accepted := 0
		for _, q := range stored {
			switch q.Status {
			case entities.QuoteAccepted:
				accepted++
			case entities.QuoteRejected:
			default:
				t.Fatalf("quote %s left %s", q.ID, q.Status)
			}
		}
		if accepted != 1 || len(stored) != 3 {
			t.Fatalf("expected exactly one accepted of 3, got %d of %d", accepted, len(stored))
		}
		if res.WorkOrder.SystemInformation.Assignment == nil || res.WorkOrder.SystemInformation.Assignment.UserID != client.ID {
			t.Fatalf("expected assignment snapshot, got %+v", res.WorkOrder.SystemInformation.Assignment)
		}
	})

	t.Run("second acceptance of a sibling is refused", func(t *testing.T) {
		f, _, qs := setup(t)
		if _, err := f.quotes.Accept(context.Background(), qs[0].ID, client); err != nil {
			t.Fatalf("first accept: %v", err)
		}
		_, err := f.quotes.Accept(context.Background(), qs[1].ID, client)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		q, _ := f.quotes.GetByID(context.Background(), qs[1].ID)
		if q.Status != entities.QuoteRejected {
			t.Fatalf("loser must stay rejected, got %s", q.Status)
		}
	})

	t.Run("repeating the same acceptance is idempotent", func(t *testing.T) {
		f, _, qs := setup(t)
		first, err := f.quotes.Accept(context.Background(), qs[0].ID, client)
		if err != nil {
			t.Fatalf("first accept: %v", err)
		}
		second, err := f.quotes.Accept(context.Background(), qs[0].ID, client)
		if err != nil {
			t.Fatalf("second accept: %v", err)
		}
		if len(second.WorkOrder.Timeline) != len(first.WorkOrder.Timeline) || len(second.Rejected) != 2 {
			t.Fatalf("retry must not append events: %d vs %d", len(first.WorkOrder.Timeline), len(second.WorkOrder.Timeline))
		}
	})

	t.Run("other client refused before quotes are decided", func(t *testing.T) {
		f, _, qs := setup(t)
		stranger := entities.Actor{ID: "client-2", Role: entities.RoleClient}
		if _, err := f.quotes.Accept(context.Background(), qs[0].ID, stranger); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		q, _ := f.quotes.GetByID(context.Background(), qs[0].ID)
		if q.Status != entities.QuoteSentToClient {
			t.Fatalf("quote must be untouched, got %s", q.Status)
		}
	})

	t.Run("not yet shared with client", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		wo := f.biddingWorkOrder(t)
		q := f.submit(t, wo.ID, subA, 1000)
		_, err := f.quotes.Accept(context.Background(), q.ID, admin)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown quote", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.quotes.Accept(context.Background(), "nope", admin); !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound, got %v", err)
		}
	})

	t.Run("cancelled work order rejects acceptance", func(t *testing.T) {
		f, wo, qs := setup(t)
		f.move(t, wo.ID, lifecycle.Request{Target: entities.WorkOrderCancelled, Actor: admin, Reason: "client withdrew"})
		if _, err := f.quotes.Accept(context.Background(), qs[0].ID, client); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}
