package usecase

import (
	"context"
	"errors"
	"testing"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase/interfaces"
	mock_interfaces "facility_workorders/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func (f *fixture) completedWorkOrder(t *testing.T) (entities.WorkOrder, entities.Quote) {
	t.Helper()
	wo := f.biddingWorkOrder(t)
	q := f.submit(t, wo.ID, subA, 1000)
	if _, err := f.quotes.ShareWithClient(context.Background(), wo.ID, []string{q.ID}, admin); err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := f.quotes.Accept(context.Background(), q.ID, client); err != nil {
		t.Fatalf("accept: %v", err)
	}
	f.move(t, wo.ID, lifecycle.Request{Target: entities.WorkOrderInProgress, Actor: subA})
	done := f.move(t, wo.ID, lifecycle.Request{Target: entities.WorkOrderCompleted, Actor: subA, Notes: "done"})
	return done, q
}

func TestInvoiceUseCase_Issue(t *testing.T) {
	t.Run("issues invoice with payment link and marks work order invoiced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		f := newFixture(t, gateway, nil)
		wo, q := f.completedWorkOrder(t)

		gateway.EXPECT().CreatePaymentLink(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req interfaces.PaymentLinkRequest) (interfaces.PaymentLink, error) {
				if req.InvoiceID != InvoiceID(wo.ID) || !req.Amount.Equal(q.ClientAmount) || req.Currency != "BRL" {
					t.Fatalf("unexpected link request: %+v", req)
				}
				return interfaces.PaymentLink{URL: "https://pay.example/abc", SessionID: "pref-1"}, nil
			})

		inv, err := f.invoices.Issue(context.Background(), wo.ID, admin)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if inv.Status != entities.InvoiceSent || inv.PaymentLink != "https://pay.example/abc" || inv.PaymentSessionID != "pref-1" {
			t.Fatalf("unexpected invoice: %+v", inv)
		}
		if inv.QuoteID != q.ID || !inv.Amount.Equal(decimal.NewFromInt(1100)) {
			t.Fatalf("expected accepted quote client amount, got %s from %q", inv.Amount, inv.QuoteID)
		}
		if got := eventTypes(inv.Timeline); len(got) != 2 || got[0] != entities.EventCreated || got[1] != entities.EventInvoiceSent {
			t.Fatalf("unexpected invoice timeline: %v", got)
		}

		stored, _ := f.workOrders.GetByID(context.Background(), wo.ID)
		if stored.Status != entities.WorkOrderInvoiced || stored.InvoiceID != inv.ID {
			t.Fatalf("unexpected work order: %s %s", stored.Status, stored.InvoiceID)
		}

		again, err := f.invoices.Issue(context.Background(), wo.ID, admin)
		if err != nil || again.ID != inv.ID {
			t.Fatalf("reissue should return the same invoice, got %+v (%v)", again, err)
		}
	})

	t.Run("work order not completed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		f := newFixture(t, gateway, nil)
		wo := f.newWorkOrder(t)

		if _, err := f.invoices.Issue(context.Background(), wo.ID, admin); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("gateway failure leaves a draft to resume", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		f := newFixture(t, gateway, nil)
		wo, _ := f.completedWorkOrder(t)

		gomock.InOrder(
			gateway.EXPECT().CreatePaymentLink(gomock.Any(), gomock.Any()).Return(interfaces.PaymentLink{}, errors.New("provider 503")),
			gateway.EXPECT().CreatePaymentLink(gomock.Any(), gomock.Any()).Return(interfaces.PaymentLink{URL: "u", SessionID: "s"}, nil),
		)

		if _, err := f.invoices.Issue(context.Background(), wo.ID, admin); err == nil {
			t.Fatalf("expected gateway error")
		}
		draft, err := f.invoices.GetByID(context.Background(), InvoiceID(wo.ID))
		if err != nil || draft.Status != entities.InvoiceDraft {
			t.Fatalf("expected a stored draft, got %+v (%v)", draft, err)
		}
		stored, _ := f.workOrders.GetByID(context.Background(), wo.ID)
		if stored.Status != entities.WorkOrderCompleted {
			t.Fatalf("work order must stay completed, got %s", stored.Status)
		}

		inv, err := f.invoices.Issue(context.Background(), wo.ID, admin)
		if err != nil || inv.Status != entities.InvoiceSent || len(inv.Timeline) != 2 {
			t.Fatalf("resume failed: %+v (%v)", inv, err)
		}
	})

	t.Run("no gateway configured", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.invoices.Issue(context.Background(), "wo", admin); !errors.Is(err, ErrPaymentGatewayNotConfig) {
			t.Fatalf("expected ErrPaymentGatewayNotConfig, got %v", err)
		}
	})

	t.Run("client cannot issue", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.invoices.Issue(context.Background(), "wo", client); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestInvoiceUseCase_Payments(t *testing.T) {
	issued := func(t *testing.T, ctrl *gomock.Controller) (*fixture, *mock_interfaces.MockIPaymentGateway, entities.Invoice) {
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		f := newFixture(t, gateway, nil)
		wo, _ := f.completedWorkOrder(t)
		gateway.EXPECT().CreatePaymentLink(gomock.Any(), gomock.Any()).Return(interfaces.PaymentLink{URL: "u", SessionID: "s"}, nil)
		inv, err := f.invoices.Issue(context.Background(), wo.ID, admin)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return f, gateway, inv
	}

	t.Run("record payment closes the work order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, _, inv := issued(t, ctrl)

		paid, err := f.invoices.RecordPayment(context.Background(), inv.ID, "pay-77", admin)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if paid.Status != entities.InvoicePaid || paid.PaymentReference != "pay-77" || paid.PaidAt == nil {
			t.Fatalf("unexpected invoice: %+v", paid)
		}
		wo, _ := f.workOrders.GetByID(context.Background(), paid.WorkOrderID)
		if wo.Status != entities.WorkOrderPaid || wo.PaymentReference != "pay-77" {
			t.Fatalf("unexpected work order: %s %s", wo.Status, wo.PaymentReference)
		}

		again, err := f.invoices.RecordPayment(context.Background(), inv.ID, "pay-77", admin)
		if err != nil || len(again.Timeline) != len(paid.Timeline) {
			t.Fatalf("repeat must be a no-op, got %d events (%v)", len(again.Timeline), err)
		}
	})

	t.Run("webhook records approved payment as system", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, gateway, inv := issued(t, ctrl)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.PaymentStatus{
			ProviderPaymentID: "123",
			Status:            "approved",
			ExternalReference: inv.ID,
			Approved:          true,
		}, nil)

		paid, err := f.invoices.HandlePaymentWebhook(context.Background(), "123")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		last := paid.Timeline[len(paid.Timeline)-1]
		if paid.Status != entities.InvoicePaid || last.Type != entities.EventPaymentReceived || last.UserRole != entities.RoleSystem {
			t.Fatalf("unexpected invoice: %s %+v", paid.Status, last)
		}
	})

	t.Run("webhook ignores pending payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, gateway, inv := issued(t, ctrl)

		gateway.EXPECT().GetPayment(gomock.Any(), "124").Return(interfaces.PaymentStatus{
			ProviderPaymentID: "124",
			Status:            "in_process",
			ExternalReference: inv.ID,
		}, nil)

		if _, err := f.invoices.HandlePaymentWebhook(context.Background(), "124"); !errors.Is(err, ErrPaymentNotApproved) {
			t.Fatalf("expected ErrPaymentNotApproved, got %v", err)
		}
		stored, _ := f.invoices.GetByID(context.Background(), inv.ID)
		if stored.Status != entities.InvoiceSent {
			t.Fatalf("invoice must stay sent, got %s", stored.Status)
		}
	})

	t.Run("payment reference required", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.invoices.RecordPayment(context.Background(), "inv", " ", admin); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown invoice", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		if _, err := f.invoices.RecordPayment(context.Background(), "missing", "ref", admin); !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})
}
