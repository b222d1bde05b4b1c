package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IInvoiceUseCase covers the billing tail of the lifecycle.
//
// The payment provider is a collaborator: Issue asks it for a checkout link,
// RecordPayment and HandlePaymentWebhook react to its "paid" callback.
type IInvoiceUseCase interface {
	Issue(ctx context.Context, workOrderID string, actor entities.Actor) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID, paymentReference string, actor entities.Actor) (entities.Invoice, error)
	HandlePaymentWebhook(ctx context.Context, providerPaymentID string) (entities.Invoice, error)
}

type InvoiceUseCase struct {
	repo       interfaces.IInvoiceRepository
	quotes     interfaces.IQuoteRepository
	workOrders IWorkOrderUseCase
	gateway    interfaces.IPaymentGateway
	currency   string
	events     emitter
	log        *zap.Logger
	now        func() time.Time
}

var _ IInvoiceUseCase = (*InvoiceUseCase)(nil)

func NewInvoiceUseCase(
	repo interfaces.IInvoiceRepository,
	quotes interfaces.IQuoteRepository,
	workOrders IWorkOrderUseCase,
	gateway interfaces.IPaymentGateway,
	notifier interfaces.INotifier,
	currency string,
	log *zap.Logger,
) *InvoiceUseCase {
	if currency == "" {
		currency = "BRL"
	}
	log = orNop(log).Named("invoice")
	return &InvoiceUseCase{
		repo:       repo,
		quotes:     quotes,
		workOrders: workOrders,
		gateway:    gateway,
		currency:   currency,
		events:     emitter{notifier: notifier, log: log},
		log:        log,
		now:        time.Now,
	}
}

// InvoiceID is deterministic per work order so a retried Issue finds its own invoice.
func InvoiceID(workOrderID string) string {
	return deterministicID("invoice", workOrderID)
}

func (u *InvoiceUseCase) Issue(ctx context.Context, workOrderID string, actor entities.Actor) (entities.Invoice, error) {
	if !actor.Is(entities.RoleAdmin, entities.RoleSystem) {
		return entities.Invoice{}, ErrForbidden
	}
	if u.gateway == nil {
		return entities.Invoice{}, ErrPaymentGatewayNotConfig
	}
	wo, err := u.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		return entities.Invoice{}, err
	}
	invID := InvoiceID(wo.ID)

	if wo.Status == entities.WorkOrderInvoiced || wo.Status == entities.WorkOrderPaid {
		if wo.InvoiceID == invID {
			return u.GetByID(ctx, invID)
		}
	}
	req := lifecycle.Request{Target: entities.WorkOrderInvoiced, Actor: actor, InvoiceID: invID}
	if err := u.workOrders.CanTransition(wo, req); err != nil {
		return entities.Invoice{}, err
	}

	inv, err := u.repo.GetByID(ctx, invID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		if inv, err = u.draft(ctx, wo, invID, actor); err != nil {
			return entities.Invoice{}, err
		}
	}

	if inv.Status == entities.InvoiceDraft {
		if inv, err = u.send(ctx, wo, inv, actor); err != nil {
			return entities.Invoice{}, err
		}
	}

	if _, err := u.workOrders.Transition(ctx, wo.ID, req); err != nil {
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (u *InvoiceUseCase) amountFor(ctx context.Context, wo entities.WorkOrder) (decimal.Decimal, string, error) {
	if wo.AssignedQuoteID != "" && u.quotes != nil {
		q, err := u.quotes.GetByID(ctx, wo.AssignedQuoteID)
		if err != nil {
			return decimal.Zero, "", err
		}
		if q.ID != "" && q.ClientAmount.IsPositive() {
			return q.ClientAmount, q.ID, nil
		}
	}
	if wo.EstimateBudget.IsPositive() {
		return wo.EstimateBudget, "", nil
	}
	return decimal.Zero, "", ErrInvoiceAmountUnknown
}

func (u *InvoiceUseCase) draft(ctx context.Context, wo entities.WorkOrder, id string, actor entities.Actor) (entities.Invoice, error) {
	amount, quoteID, err := u.amountFor(ctx, wo)
	if err != nil {
		return entities.Invoice{}, err
	}
	now := u.now().UTC()
	ev := entities.NewTimelineEvent(entities.TimelineEventInput{
		Type:     entities.EventCreated,
		Actor:    actor,
		Details:  "Invoice created for " + wo.WorkOrderNumber,
		Metadata: map[string]string{"workOrderId": wo.ID, "amount": amount.StringFixed(2)},
	}, now)
	ev.ToStatus = string(entities.InvoiceDraft)

	inv := entities.Invoice{
		ID:            id,
		InvoiceNumber: newInvoiceNumber(now),
		WorkOrderID:   wo.ID,
		ClientID:      wo.ClientID,
		QuoteID:       quoteID,
		Amount:        amount.Round(2),
		Currency:      u.currency,
		Status:        entities.InvoiceDraft,
		Timeline:      []entities.TimelineEvent{ev},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := u.repo.Create(ctx, inv)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return u.GetByID(ctx, id)
		}
		return entities.Invoice{}, err
	}
	u.log.Info("invoice created",
		zap.String("invoice_id", created.ID),
		zap.String("work_order_id", wo.ID),
		zap.String("amount", created.Amount.StringFixed(2)),
	)
	return created, nil
}

func (u *InvoiceUseCase) send(ctx context.Context, wo entities.WorkOrder, inv entities.Invoice, actor entities.Actor) (entities.Invoice, error) {
	link, err := u.gateway.CreatePaymentLink(ctx, interfaces.PaymentLinkRequest{
		InvoiceID:   inv.ID,
		Title:       fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		Description: wo.Title,
		Amount:      inv.Amount,
		Currency:    inv.Currency,
	})
	if err != nil {
		u.log.Error("payment link failed", zap.String("invoice_id", inv.ID), zap.Error(err))
		return entities.Invoice{}, err
	}

	return u.mutate(ctx, inv.ID, func(cur entities.Invoice, now time.Time) (entities.Invoice, bool) {
		if cur.Status != entities.InvoiceDraft {
			return cur, false
		}
		cur.PaymentLink = link.URL
		cur.PaymentSessionID = link.SessionID
		cur.Status = entities.InvoiceSent
		ev := entities.NewTimelineEvent(entities.TimelineEventInput{
			Type:     entities.EventInvoiceSent,
			Actor:    actor,
			Details:  "Payment link sent to client",
			Metadata: map[string]string{"paymentSessionId": link.SessionID},
		}, now)
		ev.FromStatus = string(entities.InvoiceDraft)
		ev.ToStatus = string(entities.InvoiceSent)
		cur.Timeline = append(cur.Timeline, ev)
		return cur, true
	})
}

// mutate applies fn under the invoice version CAS. fn returns false to skip the write.
func (u *InvoiceUseCase) mutate(ctx context.Context, id string, fn func(cur entities.Invoice, now time.Time) (entities.Invoice, bool)) (entities.Invoice, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		cur, err := u.GetByID(ctx, id)
		if err != nil {
			return entities.Invoice{}, err
		}
		now := u.now().UTC()
		next := cur
		next.Timeline = append([]entities.TimelineEvent(nil), cur.Timeline...)
		next, write := fn(next, now)
		if !write {
			return cur, nil
		}
		next.UpdatedAt = now
		saved, err := u.repo.Update(ctx, next, cur.Version)
		if err != nil {
			if errors.Is(err, interfaces.ErrVersionConflict) {
				continue
			}
			return entities.Invoice{}, err
		}
		return saved, nil
	}
	return entities.Invoice{}, ErrConcurrentUpdate
}

func (u *InvoiceUseCase) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Invoice{}, invalid("invoice id is required")
	}
	inv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

// RecordPayment is idempotent: repeating it for a paid invoice only finishes
// the work order transition if that step was lost.
func (u *InvoiceUseCase) RecordPayment(ctx context.Context, invoiceID, paymentReference string, actor entities.Actor) (entities.Invoice, error) {
	if !actor.Is(entities.RoleAdmin, entities.RoleSystem) {
		return entities.Invoice{}, ErrForbidden
	}
	paymentReference = strings.TrimSpace(paymentReference)
	if paymentReference == "" {
		return entities.Invoice{}, invalid("payment reference is required")
	}
	inv, err := u.GetByID(ctx, invoiceID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.Status == entities.InvoiceDraft {
		return entities.Invoice{}, &TransitionError{From: entities.WorkOrderCompleted, To: entities.WorkOrderPaid, Reason: "invoice has not been sent"}
	}

	paid, err := u.mutate(ctx, inv.ID, func(cur entities.Invoice, now time.Time) (entities.Invoice, bool) {
		if cur.Status == entities.InvoicePaid {
			return cur, false
		}
		from := cur.Status
		cur.Status = entities.InvoicePaid
		cur.PaymentReference = paymentReference
		t := now
		cur.PaidAt = &t
		ev := entities.NewTimelineEvent(entities.TimelineEventInput{
			Type:     entities.EventPaymentReceived,
			Actor:    actor,
			Details:  "Payment confirmed",
			Metadata: map[string]string{"paymentReference": paymentReference},
		}, now)
		ev.FromStatus = string(from)
		ev.ToStatus = string(entities.InvoicePaid)
		cur.Timeline = append(cur.Timeline, ev)
		return cur, true
	})
	if err != nil {
		return entities.Invoice{}, err
	}

	wo, err := u.workOrders.GetByID(ctx, paid.WorkOrderID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if wo.Status == entities.WorkOrderInvoiced {
		if _, err := u.workOrders.Transition(ctx, wo.ID, lifecycle.Request{
			Target:           entities.WorkOrderPaid,
			Actor:            actor,
			PaymentReference: paid.PaymentReference,
		}); err != nil {
			return entities.Invoice{}, err
		}
	}
	u.log.Info("payment recorded",
		zap.String("invoice_id", paid.ID),
		zap.String("work_order_id", paid.WorkOrderID),
		zap.String("payment_reference", paid.PaymentReference),
	)
	u.events.emit(ctx, eventNotification(entities.EntityInvoice, paid.ID, string(paid.Status), paid.Timeline[len(paid.Timeline)-1]))
	return paid, nil
}

func (u *InvoiceUseCase) HandlePaymentWebhook(ctx context.Context, providerPaymentID string) (entities.Invoice, error) {
	providerPaymentID = strings.TrimSpace(providerPaymentID)
	if providerPaymentID == "" {
		return entities.Invoice{}, invalid("payment id is required")
	}
	if u.gateway == nil {
		return entities.Invoice{}, ErrPaymentGatewayNotConfig
	}
	status, err := u.gateway.GetPayment(ctx, providerPaymentID)
	if err != nil {
		u.log.Error("payment lookup failed", zap.String("provider_payment_id", providerPaymentID), zap.Error(err))
		return entities.Invoice{}, err
	}
	if !status.Approved {
		u.log.Info("payment not approved yet",
			zap.String("provider_payment_id", providerPaymentID),
			zap.String("status", status.Status),
		)
		return entities.Invoice{}, ErrPaymentNotApproved
	}
	return u.RecordPayment(ctx, status.ExternalReference, status.ProviderPaymentID, entities.SystemActor())
}
