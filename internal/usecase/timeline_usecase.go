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

	"go.uber.org/zap"
)

// ITimelineUseCase is the append-only audit log shared by work orders and invoices.
//
// There is no edit or delete operation. Append only accepts free notes; status
// changes go through IWorkOrderUseCase.Transition, which appends its own event.
type ITimelineUseCase interface {
	Append(ctx context.Context, ref entities.EntityRef, in entities.TimelineEventInput) (entities.TimelineEvent, error)
	List(ctx context.Context, ref entities.EntityRef) ([]entities.TimelineEvent, error)
}

type TimelineUseCase struct {
	workOrders interfaces.IWorkOrderRepository
	invoices   interfaces.IInvoiceRepository
	log        *zap.Logger
	now        func() time.Time
}

var _ ITimelineUseCase = (*TimelineUseCase)(nil)

func NewTimelineUseCase(workOrders interfaces.IWorkOrderRepository, invoices interfaces.IInvoiceRepository, log *zap.Logger) *TimelineUseCase {
	return &TimelineUseCase{
		workOrders: workOrders,
		invoices:   invoices,
		log:        orNop(log).Named("timeline"),
		now:        time.Now,
	}
}

// Append adds a note. Lifecycle event types are refused so no actor can forge
// the provenance that system information is projected from.
func (u *TimelineUseCase) Append(ctx context.Context, ref entities.EntityRef, in entities.TimelineEventInput) (entities.TimelineEvent, error) {
	if in.Type.Lifecycle() {
		return entities.TimelineEvent{}, fmt.Errorf("%w: %q events are written by the workflow", ErrInvalidTransition, in.Type)
	}
	return u.record(ctx, ref, in)
}

// record appends any known event type. Workflow steps that add entries
// without a status change use it directly.
func (u *TimelineUseCase) record(ctx context.Context, ref entities.EntityRef, in entities.TimelineEventInput) (entities.TimelineEvent, error) {
	ref.ID = strings.TrimSpace(ref.ID)
	if ref.ID == "" {
		return entities.TimelineEvent{}, invalid("entity id is required")
	}
	if !in.Type.Valid() {
		return entities.TimelineEvent{}, invalid("unknown event type %q", in.Type)
	}

	switch ref.Kind {
	case entities.EntityWorkOrder:
		return u.appendWorkOrder(ctx, ref.ID, in)
	case entities.EntityInvoice:
		return u.appendInvoice(ctx, ref.ID, in)
	}
	return entities.TimelineEvent{}, invalid("unknown entity kind %q", ref.Kind)
}

func (u *TimelineUseCase) appendWorkOrder(ctx context.Context, id string, in entities.TimelineEventInput) (entities.TimelineEvent, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		wo, err := u.workOrders.GetByID(ctx, id)
		if err != nil {
			return entities.TimelineEvent{}, err
		}
		if wo.ID == "" {
			return entities.TimelineEvent{}, ErrWorkOrderNotFound
		}

		ev := entities.NewTimelineEvent(in, u.now())
		next := wo.Clone()
		next.Timeline = append(next.Timeline, ev)
		next.SystemInformation = lifecycle.ProjectSystemInformation(next.Timeline)
		next.UpdatedAt = ev.Timestamp

		if _, err := u.workOrders.Update(ctx, next, wo.Version); err != nil {
			if errors.Is(err, interfaces.ErrVersionConflict) {
				u.log.Debug("append retry", zap.String("work_order_id", id), zap.Int("attempt", attempt))
				continue
			}
			return entities.TimelineEvent{}, err
		}
		u.log.Info("event appended",
			zap.String("work_order_id", id),
			zap.String("type", string(ev.Type)),
			zap.String("user_id", ev.UserID),
		)
		return ev, nil
	}
	return entities.TimelineEvent{}, ErrConcurrentUpdate
}

func (u *TimelineUseCase) appendInvoice(ctx context.Context, id string, in entities.TimelineEventInput) (entities.TimelineEvent, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		inv, err := u.invoices.GetByID(ctx, id)
		if err != nil {
			return entities.TimelineEvent{}, err
		}
		if inv.ID == "" {
			return entities.TimelineEvent{}, ErrInvoiceNotFound
		}

		ev := entities.NewTimelineEvent(in, u.now())
		next := inv
		next.Timeline = append(append([]entities.TimelineEvent(nil), inv.Timeline...), ev)
		next.UpdatedAt = ev.Timestamp

		if _, err := u.invoices.Update(ctx, next, inv.Version); err != nil {
			if errors.Is(err, interfaces.ErrVersionConflict) {
				continue
			}
			return entities.TimelineEvent{}, err
		}
		u.log.Info("event appended",
			zap.String("invoice_id", id),
			zap.String("type", string(ev.Type)),
		)
		return ev, nil
	}
	return entities.TimelineEvent{}, ErrConcurrentUpdate
}

func (u *TimelineUseCase) List(ctx context.Context, ref entities.EntityRef) ([]entities.TimelineEvent, error) {
	ref.ID = strings.TrimSpace(ref.ID)
	switch ref.Kind {
	case entities.EntityWorkOrder:
		wo, err := u.workOrders.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if wo.ID == "" {
			return nil, ErrWorkOrderNotFound
		}
		return wo.Timeline, nil
	case entities.EntityInvoice:
		inv, err := u.invoices.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if inv.ID == "" {
			return nil, ErrInvoiceNotFound
		}
		return inv.Timeline, nil
	}
	return nil, invalid("unknown entity kind %q", ref.Kind)
}
