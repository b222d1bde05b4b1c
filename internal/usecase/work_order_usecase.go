package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateWorkOrderInput struct {
	Title                string
	Description          string
	Category             string
	Priority             entities.Priority
	ClientID             string
	LocationID           string
	EstimateBudget       decimal.Decimal
	MaintenanceRequestID string
}

// IWorkOrderUseCase exposes work order creation, queries and the state machine.
//
// Transition is the only path that changes status. Each accepted transition is
// one compare-and-set write carrying the new status, the projected
// systemInformation and exactly one appended timeline event.
type IWorkOrderUseCase interface {
	Create(ctx context.Context, in CreateWorkOrderInput, actor entities.Actor) (entities.WorkOrder, error)
	GetByID(ctx context.Context, id string) (entities.WorkOrder, error)
	List(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error)
	Transition(ctx context.Context, id string, req lifecycle.Request) (entities.WorkOrder, error)
	CanTransition(wo entities.WorkOrder, req lifecycle.Request) error
	Timeline(ctx context.Context, id string) ([]entities.TimelineEvent, error)
}

type WorkOrderUseCase struct {
	repo    interfaces.IWorkOrderRepository
	machine *lifecycle.Machine
	events  emitter
	log     *zap.Logger
	now     func() time.Time
}

var _ IWorkOrderUseCase = (*WorkOrderUseCase)(nil)

func NewWorkOrderUseCase(repo interfaces.IWorkOrderRepository, machine *lifecycle.Machine, notifier interfaces.INotifier, log *zap.Logger) *WorkOrderUseCase {
	if machine == nil {
		machine = lifecycle.NewDefault()
	}
	log = orNop(log).Named("work_order")
	return &WorkOrderUseCase{
		repo:    repo,
		machine: machine,
		events:  emitter{notifier: notifier, log: log},
		log:     log,
		now:     time.Now,
	}
}

func (u *WorkOrderUseCase) Create(ctx context.Context, in CreateWorkOrderInput, actor entities.Actor) (entities.WorkOrder, error) {
	if !actor.Is(entities.RoleAdmin, entities.RoleClient) {
		return entities.WorkOrder{}, ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	in.ClientID = strings.TrimSpace(in.ClientID)
	if actor.Role == entities.RoleClient {
		if in.ClientID != "" && in.ClientID != actor.ID {
			return entities.WorkOrder{}, ErrForbidden
		}
		in.ClientID = actor.ID
	}
	if in.Title == "" {
		return entities.WorkOrder{}, invalid("title is required")
	}
	if in.ClientID == "" {
		return entities.WorkOrder{}, invalid("client_id is required")
	}
	if in.Priority == "" {
		in.Priority = entities.PriorityMedium
	}
	if !in.Priority.Valid() {
		return entities.WorkOrder{}, invalid("unknown priority %q", in.Priority)
	}
	if in.EstimateBudget.IsNegative() {
		return entities.WorkOrder{}, invalid("estimate_budget must not be negative")
	}

	source := lifecycle.SourceDirect
	meta := map[string]string{}
	if id := strings.TrimSpace(in.MaintenanceRequestID); id != "" {
		source = lifecycle.SourceMaintenanceRequest
		meta["maintenanceRequestId"] = id
	}

	now := u.now().UTC()
	wo := entities.WorkOrder{
		ID:                   uuid.NewString(),
		WorkOrderNumber:      newWorkOrderNumber(now),
		Title:                in.Title,
		Description:          strings.TrimSpace(in.Description),
		Category:             strings.TrimSpace(in.Category),
		Priority:             in.Priority,
		ClientID:             in.ClientID,
		LocationID:           strings.TrimSpace(in.LocationID),
		EstimateBudget:       in.EstimateBudget.Round(2),
		MaintenanceRequestID: strings.TrimSpace(in.MaintenanceRequestID),
	}
	wo = lifecycle.Initialize(wo, source, actor, "", meta, now)
	wo.Version = 1

	created, err := u.repo.Create(ctx, wo)
	if err != nil {
		u.log.Error("create failed", zap.String("work_order_id", wo.ID), zap.Error(err))
		return entities.WorkOrder{}, err
	}
	u.log.Info("work order created",
		zap.String("work_order_id", created.ID),
		zap.String("number", created.WorkOrderNumber),
		zap.String("source", string(source)),
	)
	u.events.emit(ctx, eventNotification(entities.EntityWorkOrder, created.ID, string(created.Status), created.Timeline[len(created.Timeline)-1]))
	return created, nil
}

func (u *WorkOrderUseCase) GetByID(ctx context.Context, id string) (entities.WorkOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.WorkOrder{}, invalid("work order id is required")
	}
	wo, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.WorkOrder{}, err
	}
	if wo.ID == "" {
		return entities.WorkOrder{}, ErrWorkOrderNotFound
	}
	return wo, nil
}

func (u *WorkOrderUseCase) List(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return u.repo.ListByStatus(ctx, status)
}

func (u *WorkOrderUseCase) Timeline(ctx context.Context, id string) ([]entities.TimelineEvent, error) {
	wo, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return wo.Timeline, nil
}

// CanTransition evaluates the table and guards without writing.
func (u *WorkOrderUseCase) CanTransition(wo entities.WorkOrder, req lifecycle.Request) error {
	_, _, err := u.machine.Apply(wo, req, u.now())
	return err
}

// Transition re-reads and re-evaluates guards on every version conflict, so the
// loser of a race sees the winner's status, never a double success.
func (u *WorkOrderUseCase) Transition(ctx context.Context, id string, req lifecycle.Request) (entities.WorkOrder, error) {
	if !req.Target.Valid() {
		return entities.WorkOrder{}, invalid("unknown status %q", req.Target)
	}
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		wo, err := u.GetByID(ctx, id)
		if err != nil {
			return entities.WorkOrder{}, err
		}

		next, ev, err := u.machine.Apply(wo, req, u.now())
		if err != nil {
			u.log.Info("transition refused",
				zap.String("work_order_id", id),
				zap.String("from", string(wo.Status)),
				zap.String("to", string(req.Target)),
				zap.String("actor_id", req.Actor.ID),
				zap.Error(err),
			)
			return entities.WorkOrder{}, err
		}

		saved, err := u.repo.Update(ctx, next, wo.Version)
		if err != nil {
			if errors.Is(err, interfaces.ErrVersionConflict) {
				u.log.Debug("transition retry", zap.String("work_order_id", id), zap.Int("attempt", attempt))
				continue
			}
			u.log.Error("transition write failed", zap.String("work_order_id", id), zap.Error(err))
			return entities.WorkOrder{}, err
		}

		u.log.Info("work order transitioned",
			zap.String("work_order_id", id),
			zap.String("from", ev.FromStatus),
			zap.String("to", ev.ToStatus),
			zap.String("actor_id", req.Actor.ID),
		)
		u.events.emit(ctx, eventNotification(entities.EntityWorkOrder, saved.ID, string(saved.Status), ev))
		return saved, nil
	}
	return entities.WorkOrder{}, ErrConcurrentUpdate
}
