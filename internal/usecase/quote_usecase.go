package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"facility_workorders/internal/domain/bidding"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteInput is a submission or revision. A nil MarkupPercentage falls back to
// the configured default; a non-nil ClientAmount overrides the markup.
type QuoteInput struct {
	SubcontractorID  string
	LaborCost        decimal.Decimal
	MaterialCost     decimal.Decimal
	AdditionalCosts  decimal.Decimal
	DiscountAmount   decimal.Decimal
	TotalAmount      *decimal.Decimal
	MarkupPercentage *decimal.Decimal
	ClientAmount     *decimal.Decimal
	LineItems        []entities.LineItem
	Notes            string
}

type AcceptResult struct {
	Accepted  entities.Quote     `json:"accepted"`
	Rejected  []entities.Quote   `json:"rejected"`
	WorkOrder entities.WorkOrder `json:"work_order"`
}

// IQuoteUseCase is the bid ledger.
//
//   - Submit => a subcontractor bids on a work order open for bidding
//   - ShareWithClient => admin forwards chosen quotes to the client
//   - Recommend => stateless approve/reject scoring against a benchmark
//   - Accept => one quote accepted, siblings rejected, work order assigned
type IQuoteUseCase interface {
	Submit(ctx context.Context, workOrderID string, in QuoteInput, actor entities.Actor) (entities.Quote, error)
	Revise(ctx context.Context, quoteID string, in QuoteInput, actor entities.Actor) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	ListFor(ctx context.Context, workOrderID string) ([]entities.Quote, error)
	ShareWithClient(ctx context.Context, workOrderID string, quoteIDs []string, actor entities.Actor) (entities.WorkOrder, error)
	Recommend(ctx context.Context, quoteID string) (bidding.Recommendation, error)
	Accept(ctx context.Context, quoteID string, actor entities.Actor) (AcceptResult, error)
}

type QuoteUseCase struct {
	repo          interfaces.IQuoteRepository
	workOrders    IWorkOrderUseCase
	timeline      *TimelineUseCase
	events        emitter
	log           *zap.Logger
	defaultMarkup decimal.Decimal
	now           func() time.Time
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(repo interfaces.IQuoteRepository, workOrders IWorkOrderUseCase, timeline *TimelineUseCase, notifier interfaces.INotifier, defaultMarkup decimal.Decimal, log *zap.Logger) *QuoteUseCase {
	log = orNop(log).Named("quote")
	return &QuoteUseCase{
		repo:          repo,
		workOrders:    workOrders,
		timeline:      timeline,
		events:        emitter{notifier: notifier, log: log},
		log:           log,
		defaultMarkup: defaultMarkup,
		now:           time.Now,
	}
}

func (u *QuoteUseCase) amounts(in QuoteInput) (bidding.Amounts, error) {
	markup := u.defaultMarkup
	if in.MarkupPercentage != nil {
		markup = *in.MarkupPercentage
	}
	return bidding.ComputeAmounts(bidding.AmountInput{
		LaborCost:        in.LaborCost,
		MaterialCost:     in.MaterialCost,
		AdditionalCosts:  in.AdditionalCosts,
		DiscountAmount:   in.DiscountAmount,
		TotalAmount:      in.TotalAmount,
		MarkupPercentage: markup,
		ClientAmount:     in.ClientAmount,
		LineItems:        in.LineItems,
	})
}

func (u *QuoteUseCase) Submit(ctx context.Context, workOrderID string, in QuoteInput, actor entities.Actor) (entities.Quote, error) {
	switch actor.Role {
	case entities.RoleSubcontractor:
		if in.SubcontractorID != "" && in.SubcontractorID != actor.ID {
			return entities.Quote{}, ErrForbidden
		}
		in.SubcontractorID = actor.ID
	case entities.RoleAdmin:
		if strings.TrimSpace(in.SubcontractorID) == "" {
			return entities.Quote{}, invalid("subcontractor_id is required")
		}
	default:
		return entities.Quote{}, ErrForbidden
	}
	in.SubcontractorID = strings.TrimSpace(in.SubcontractorID)

	wo, err := u.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		return entities.Quote{}, err
	}
	if wo.Status != entities.WorkOrderBidding && wo.Status != entities.WorkOrderQuotesReceived {
		return entities.Quote{}, ErrBiddingClosed
	}

	existing, err := u.repo.ListByWorkOrderID(ctx, wo.ID)
	if err != nil {
		return entities.Quote{}, err
	}
	for _, q := range existing {
		if q.SubcontractorID == in.SubcontractorID && !q.Status.Terminal() {
			return entities.Quote{}, ErrDuplicateActiveQuote
		}
	}

	amounts, err := u.amounts(in)
	if err != nil {
		return entities.Quote{}, err
	}

	now := u.now().UTC()
	q := entities.Quote{
		ID:              uuid.NewString(),
		WorkOrderID:     wo.ID,
		SubcontractorID: in.SubcontractorID,
		Notes:           strings.TrimSpace(in.Notes),
		Status:          entities.QuotePending,
		Revision:        1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	amounts.Apply(&q)

	created, err := u.repo.Create(ctx, q)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return entities.Quote{}, ErrDuplicateActiveQuote
		}
		return entities.Quote{}, err
	}
	u.log.Info("quote submitted",
		zap.String("quote_id", created.ID),
		zap.String("work_order_id", wo.ID),
		zap.String("subcontractor_id", created.SubcontractorID),
		zap.String("total", created.TotalAmount.StringFixed(2)),
	)

	u.recordReceipt(ctx, wo, created, actor)
	return created, nil
}

// recordReceipt moves a bidding work order to quotes_received on the first
// quote; later quotes only leave a timeline entry. The quote is already stored,
// so failures here are logged rather than returned.
func (u *QuoteUseCase) recordReceipt(ctx context.Context, wo entities.WorkOrder, q entities.Quote, actor entities.Actor) {
	meta := map[string]string{"quoteId": q.ID, "subcontractorId": q.SubcontractorID}
	if wo.Status == entities.WorkOrderBidding {
		_, err := u.workOrders.Transition(ctx, wo.ID, lifecycle.Request{
			Target:   entities.WorkOrderQuotesReceived,
			Actor:    actor,
			QuoteID:  q.ID,
			Metadata: meta,
		})
		if err == nil {
			return
		}
		if !errors.Is(err, ErrInvalidTransition) {
			u.log.Error("quote receipt transition failed", zap.String("work_order_id", wo.ID), zap.Error(err))
			return
		}
		// another quote won the race to move the order; fall through to a plain entry
	}
	_, err := u.timeline.record(ctx, entities.EntityRef{Kind: entities.EntityWorkOrder, ID: wo.ID}, entities.TimelineEventInput{
		Type:     entities.EventQuoteReceived,
		Actor:    actor,
		Details:  "Quote received from " + q.SubcontractorID,
		Metadata: meta,
	})
	if err != nil {
		u.log.Error("quote receipt append failed", zap.String("work_order_id", wo.ID), zap.Error(err))
		return
	}
	u.events.emit(ctx, entities.Notification{
		Type:       entities.EventQuoteReceived,
		EntityKind: entities.EntityWorkOrder,
		EntityID:   wo.ID,
		Status:     string(entities.WorkOrderQuotesReceived),
		ActorID:    actor.ID,
		Data:       meta,
	})
}

func (u *QuoteUseCase) Revise(ctx context.Context, quoteID string, in QuoteInput, actor entities.Actor) (entities.Quote, error) {
	q, err := u.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, err
	}
	switch {
	case actor.Role == entities.RoleAdmin:
	case actor.Role == entities.RoleSubcontractor && actor.ID == q.SubcontractorID:
	default:
		return entities.Quote{}, ErrForbidden
	}
	if q.Status != entities.QuotePending {
		return entities.Quote{}, ErrQuoteNotEditable
	}

	if in.MarkupPercentage == nil {
		m := q.MarkupPercentage
		in.MarkupPercentage = &m
	}
	amounts, err := u.amounts(in)
	if err != nil {
		return entities.Quote{}, err
	}
	amounts.Apply(&q)
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		q.Notes = notes
	}
	q.Revision++
	q.UpdatedAt = u.now().UTC()

	updated, err := u.repo.Update(ctx, q)
	if err != nil {
		if errors.Is(err, interfaces.ErrConditionFailed) {
			return entities.Quote{}, ErrQuoteNotEditable
		}
		return entities.Quote{}, err
	}
	u.log.Info("quote revised", zap.String("quote_id", q.ID), zap.Int("revision", q.Revision))
	return updated, nil
}

func (u *QuoteUseCase) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quote{}, invalid("quote id is required")
	}
	q, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (u *QuoteUseCase) ListFor(ctx context.Context, workOrderID string) ([]entities.Quote, error) {
	wo, err := u.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	return u.repo.ListByWorkOrderID(ctx, wo.ID)
}

func (u *QuoteUseCase) ShareWithClient(ctx context.Context, workOrderID string, quoteIDs []string, actor entities.Actor) (entities.WorkOrder, error) {
	if !actor.Is(entities.RoleAdmin) {
		return entities.WorkOrder{}, ErrForbidden
	}
	ids := dedupe(quoteIDs)
	if len(ids) == 0 {
		return entities.WorkOrder{}, invalid("quote_ids must not be empty")
	}

	wo, err := u.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		return entities.WorkOrder{}, err
	}
	req := lifecycle.Request{Target: entities.WorkOrderQuoteSharedWithClient, Actor: actor, QuoteIDs: ids}
	alreadyShared := wo.Status == entities.WorkOrderQuoteSharedWithClient
	if !alreadyShared {
		if err := u.workOrders.CanTransition(wo, req); err != nil {
			return entities.WorkOrder{}, err
		}
	}

	now := u.now().UTC()
	for _, id := range ids {
		q, err := u.GetByID(ctx, id)
		if err != nil {
			return entities.WorkOrder{}, err
		}
		if q.WorkOrderID != wo.ID {
			return entities.WorkOrder{}, ErrQuoteWorkOrderMismatch
		}
		switch q.Status {
		case entities.QuoteSentToClient:
			continue
		case entities.QuotePending:
		default:
			return entities.WorkOrder{}, ErrQuoteNotActive
		}
		q.Status = entities.QuoteSentToClient
		q.UpdatedAt = now
		if _, err := u.repo.Update(ctx, q); err != nil {
			if errors.Is(err, interfaces.ErrConditionFailed) {
				return entities.WorkOrder{}, ErrQuoteNotActive
			}
			return entities.WorkOrder{}, err
		}
	}

	if alreadyShared {
		if _, err := u.timeline.record(ctx, entities.EntityRef{Kind: entities.EntityWorkOrder, ID: wo.ID}, entities.TimelineEventInput{
			Type:     entities.EventQuoteSharedWithClient,
			Actor:    actor,
			Details:  "Additional quote(s) shared with client",
			Metadata: map[string]string{"quoteIds": strings.Join(ids, ",")},
		}); err != nil {
			return entities.WorkOrder{}, err
		}
		return u.workOrders.GetByID(ctx, wo.ID)
	}
	return u.workOrders.Transition(ctx, wo.ID, req)
}

func (u *QuoteUseCase) Recommend(ctx context.Context, quoteID string) (bidding.Recommendation, error) {
	q, err := u.GetByID(ctx, quoteID)
	if err != nil {
		return bidding.Recommendation{}, err
	}
	siblings, err := u.repo.ListByWorkOrderID(ctx, q.WorkOrderID)
	if err != nil {
		return bidding.Recommendation{}, err
	}

	var systemWide []entities.Quote
	if !hasOther(siblings, q.ID) {
		if systemWide, err = u.repo.ListAll(ctx); err != nil {
			return bidding.Recommendation{}, err
		}
	}
	return bidding.Recommend(q, siblings, systemWide), nil
}

// Accept is idempotent on retry: a quote already accepted for a work order
// still waiting in quote_shared_with_client resumes at the transition step.
func (u *QuoteUseCase) Accept(ctx context.Context, quoteID string, actor entities.Actor) (AcceptResult, error) {
	q, err := u.GetByID(ctx, quoteID)
	if err != nil {
		return AcceptResult{}, err
	}
	wo, err := u.workOrders.GetByID(ctx, q.WorkOrderID)
	if err != nil {
		return AcceptResult{}, err
	}

	if wo.Status == entities.WorkOrderAssigned && wo.AssignedQuoteID == q.ID && q.Status == entities.QuoteAccepted {
		siblings, err := u.repo.ListByWorkOrderID(ctx, wo.ID)
		if err != nil {
			return AcceptResult{}, err
		}
		return AcceptResult{Accepted: q, Rejected: rejectedOf(siblings, q.ID), WorkOrder: wo}, nil
	}

	req := lifecycle.Request{
		Target:          entities.WorkOrderAssigned,
		Actor:           actor,
		QuoteID:         q.ID,
		SubcontractorID: q.SubcontractorID,
	}
	if err := u.workOrders.CanTransition(wo, req); err != nil {
		return AcceptResult{}, err
	}

	var decided []entities.Quote
	switch q.Status {
	case entities.QuoteAccepted:
		if decided, err = u.repo.ListByWorkOrderID(ctx, wo.ID); err != nil {
			return AcceptResult{}, err
		}
	case entities.QuoteRejected:
		return AcceptResult{}, ErrQuoteNotActive
	default:
		decided, err = u.repo.Decide(ctx, wo.ID, q.ID, actor.ID, u.now().UTC())
		if err != nil {
			if errors.Is(err, interfaces.ErrConditionFailed) {
				return AcceptResult{}, ErrQuoteNotActive
			}
			u.log.Error("quote decision failed", zap.String("quote_id", q.ID), zap.Error(err))
			return AcceptResult{}, err
		}
	}

	updated, err := u.workOrders.Transition(ctx, wo.ID, req)
	if err != nil {
		return AcceptResult{}, err
	}

	var accepted entities.Quote
	for _, d := range decided {
		if d.ID == q.ID {
			accepted = d
		}
	}
	u.log.Info("quote accepted",
		zap.String("quote_id", q.ID),
		zap.String("work_order_id", wo.ID),
		zap.String("subcontractor_id", q.SubcontractorID),
		zap.String("actor_id", actor.ID),
	)
	return AcceptResult{Accepted: accepted, Rejected: rejectedOf(decided, q.ID), WorkOrder: updated}, nil
}

func rejectedOf(quotes []entities.Quote, acceptedID string) []entities.Quote {
	var out []entities.Quote
	for _, q := range quotes {
		if q.ID != acceptedID && q.Status == entities.QuoteRejected {
			out = append(out, q)
		}
	}
	return out
}

func hasOther(quotes []entities.Quote, id string) bool {
	for _, q := range quotes {
		if q.ID != id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
