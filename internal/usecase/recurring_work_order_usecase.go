package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/domain/recurrence"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultCatchUpLimit = 31

type CreateRecurringInput struct {
	Title           string
	Description     string
	Category        string
	Priority        entities.Priority
	EstimateBudget  decimal.Decimal
	ClientID        string
	LocationID      string
	SubcontractorID string
	Pattern         entities.RecurrencePattern
	StartDate       time.Time
}

// ExecutionError reports one failed item of a batch.
type ExecutionError struct {
	ExecutionID   string    `json:"execution_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Error         string    `json:"error"`
}

// BatchResult is the per-item outcome of a scheduler trigger.
type BatchResult struct {
	Created    int                                    `json:"created"`
	Skipped    int                                    `json:"skipped"`
	Failed     int                                    `json:"failed"`
	Errors     []ExecutionError                       `json:"errors"`
	Executions []entities.RecurringWorkOrderExecution `json:"executions"`
}

// Merge adds the counters and lists of o into r.
func (r *BatchResult) Merge(o BatchResult) {
	r.Created += o.Created
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
	r.Executions = append(r.Executions, o.Executions...)
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeExisting
	outcomeFailed
)

// IRecurringWorkOrderUseCase manages recurring definitions and materializes
// their occurrences into work orders.
//
// Exactly-once materialization rests on the natural key (definition, calendar
// day): executions are looked up before creation, their ids are derived from
// that key and the child work order id is derived from the execution id.
type IRecurringWorkOrderUseCase interface {
	CreateDefinition(ctx context.Context, in CreateRecurringInput, actor entities.Actor) (entities.RecurringWorkOrder, error)
	GetDefinition(ctx context.Context, id string) (entities.RecurringWorkOrder, error)
	ListDefinitions(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error)
	SetStatus(ctx context.Context, id string, status entities.RecurringStatus, actor entities.Actor) (entities.RecurringWorkOrder, error)
	ListExecutions(ctx context.Context, id string) ([]entities.RecurringWorkOrderExecution, error)
	ComputeNextOccurrence(def entities.RecurringWorkOrder, after time.Time) (time.Time, bool)
	Materialize(ctx context.Context, id string, scheduledDate time.Time) (entities.RecurringWorkOrderExecution, error)
	MaterializeAllPending(ctx context.Context, id string) (BatchResult, error)
	MaterializeDue(ctx context.Context, id string, now time.Time) (BatchResult, error)
	Trigger(ctx context.Context, id string, scheduledDate *time.Time) (BatchResult, error)
}

type RecurringWorkOrderUseCase struct {
	defs         interfaces.IRecurringWorkOrderRepository
	execs        interfaces.IExecutionRepository
	workOrders   interfaces.IWorkOrderRepository
	events       emitter
	log          *zap.Logger
	catchUpLimit int
	now          func() time.Time
}

var _ IRecurringWorkOrderUseCase = (*RecurringWorkOrderUseCase)(nil)

func NewRecurringWorkOrderUseCase(
	defs interfaces.IRecurringWorkOrderRepository,
	execs interfaces.IExecutionRepository,
	workOrders interfaces.IWorkOrderRepository,
	notifier interfaces.INotifier,
	catchUpLimit int,
	log *zap.Logger,
) *RecurringWorkOrderUseCase {
	if catchUpLimit <= 0 {
		catchUpLimit = defaultCatchUpLimit
	}
	log = orNop(log).Named("recurring")
	return &RecurringWorkOrderUseCase{
		defs:         defs,
		execs:        execs,
		workOrders:   workOrders,
		events:       emitter{notifier: notifier, log: log},
		log:          log,
		catchUpLimit: catchUpLimit,
		now:          time.Now,
	}
}

// ExecutionID is the deterministic id of the occurrence of def on day.
func ExecutionID(definitionID string, day time.Time) string {
	return definitionID + "#" + entities.DayKey(day)
}

// ChildWorkOrderID is the deterministic id of the work order an execution materializes.
func ChildWorkOrderID(executionID string) string {
	return uuid.NewSHA1(idNamespace, []byte(executionID)).String()
}

func (u *RecurringWorkOrderUseCase) CreateDefinition(ctx context.Context, in CreateRecurringInput, actor entities.Actor) (entities.RecurringWorkOrder, error) {
	if !actor.Is(entities.RoleAdmin) {
		return entities.RecurringWorkOrder{}, ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return entities.RecurringWorkOrder{}, invalid("title is required")
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return entities.RecurringWorkOrder{}, invalid("client_id is required")
	}
	if in.Priority == "" {
		in.Priority = entities.PriorityMedium
	}
	if !in.Priority.Valid() {
		return entities.RecurringWorkOrder{}, invalid("unknown priority %q", in.Priority)
	}

	now := u.now().UTC()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	start := recurrence.Day(in.StartDate)
	if err := recurrence.Validate(in.Pattern, start); err != nil {
		return entities.RecurringWorkOrder{}, err
	}

	def := entities.RecurringWorkOrder{
		ID:                       uuid.NewString(),
		RecurringWorkOrderNumber: newDefinitionNumber(now),
		Title:                    in.Title,
		Description:              strings.TrimSpace(in.Description),
		Category:                 strings.TrimSpace(in.Category),
		Priority:                 in.Priority,
		EstimateBudget:           in.EstimateBudget.Round(2),
		ClientID:                 strings.TrimSpace(in.ClientID),
		LocationID:               strings.TrimSpace(in.LocationID),
		SubcontractorID:          strings.TrimSpace(in.SubcontractorID),
		RecurrencePattern:        recurrence.Normalize(in.Pattern, start),
		StartDate:                start,
		Status:                   entities.RecurringActive,
		CreatedBy:                actor.ID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	from := start
	if today := recurrence.Day(now); today.After(from) {
		from = today
	}
	if next, ok := recurrence.Next(def.RecurrencePattern, def.StartDate, from, 0); ok {
		def.NextExecution = &next
	}

	created, err := u.defs.Create(ctx, def)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	u.log.Info("recurring work order created",
		zap.String("definition_id", created.ID),
		zap.String("pattern", string(created.RecurrencePattern.Type)),
		zap.Int("interval", created.RecurrencePattern.Interval),
	)
	return created, nil
}

func (u *RecurringWorkOrderUseCase) GetDefinition(ctx context.Context, id string) (entities.RecurringWorkOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.RecurringWorkOrder{}, invalid("recurring work order id is required")
	}
	def, err := u.defs.GetByID(ctx, id)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	if def.ID == "" {
		return entities.RecurringWorkOrder{}, ErrDefinitionNotFound
	}
	return def, nil
}

func (u *RecurringWorkOrderUseCase) ListDefinitions(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error) {
	return u.defs.ListByStatus(ctx, status)
}

func (u *RecurringWorkOrderUseCase) SetStatus(ctx context.Context, id string, status entities.RecurringStatus, actor entities.Actor) (entities.RecurringWorkOrder, error) {
	if !actor.Is(entities.RoleAdmin) {
		return entities.RecurringWorkOrder{}, ErrForbidden
	}
	def, err := u.GetDefinition(ctx, id)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	switch status {
	case entities.RecurringActive, entities.RecurringPaused, entities.RecurringCancelled:
	default:
		return entities.RecurringWorkOrder{}, invalid("unknown status %q", status)
	}
	if def.Status == entities.RecurringCancelled && status != entities.RecurringCancelled {
		return entities.RecurringWorkOrder{}, ErrDefinitionInactive
	}
	if def.Status == status {
		return def, nil
	}

	updated, err := u.defs.UpdateStatus(ctx, def.ID, status)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	if status == entities.RecurringActive {
		execs, err := u.execs.ListByDefinitionID(ctx, def.ID)
		if err != nil {
			return entities.RecurringWorkOrder{}, err
		}
		if updated, err = u.defs.ApplyCounters(ctx, def.ID, u.nextDelta(updated, execs, interfaces.CounterDelta{})); err != nil {
			return entities.RecurringWorkOrder{}, err
		}
	}
	u.log.Info("recurring status changed",
		zap.String("definition_id", def.ID),
		zap.String("from", string(def.Status)),
		zap.String("to", string(status)),
	)
	return updated, nil
}

func (u *RecurringWorkOrderUseCase) ListExecutions(ctx context.Context, id string) ([]entities.RecurringWorkOrderExecution, error) {
	def, err := u.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	execs, err := u.execs.ListByDefinitionID(ctx, def.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(execs, func(i, j int) bool { return execs[i].ExecutionNumber < execs[j].ExecutionNumber })
	return execs, nil
}

// ComputeNextOccurrence uses the stored totalExecutions counter for the
// occurrence cap instead of rescanning history.
func (u *RecurringWorkOrderUseCase) ComputeNextOccurrence(def entities.RecurringWorkOrder, after time.Time) (time.Time, bool) {
	return recurrence.Next(def.RecurrencePattern, def.StartDate, after, def.TotalExecutions)
}

func (u *RecurringWorkOrderUseCase) Materialize(ctx context.Context, id string, scheduledDate time.Time) (entities.RecurringWorkOrderExecution, error) {
	def, err := u.activeDefinition(ctx, id)
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	e, _, err := u.materialize(ctx, def, recurrence.Day(scheduledDate))
	return e, err
}

func (u *RecurringWorkOrderUseCase) activeDefinition(ctx context.Context, id string) (entities.RecurringWorkOrder, error) {
	def, err := u.GetDefinition(ctx, id)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	if def.Status != entities.RecurringActive {
		return entities.RecurringWorkOrder{}, ErrDefinitionInactive
	}
	return def, nil
}

func (u *RecurringWorkOrderUseCase) materialize(ctx context.Context, def entities.RecurringWorkOrder, day time.Time) (entities.RecurringWorkOrderExecution, outcome, error) {
	execs, err := u.execs.ListByDefinitionID(ctx, def.ID)
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, outcomeFailed, err
	}
	key := entities.DayKey(day)
	for _, e := range execs {
		if e.ScheduledDay() == key {
			u.log.Debug("occurrence already materialized",
				zap.String("definition_id", def.ID),
				zap.String("day", key),
				zap.String("execution_id", e.ID),
			)
			return e, outcomeExisting, nil
		}
	}

	if day.Before(def.StartDate) {
		return entities.RecurringWorkOrderExecution{}, outcomeFailed, fmt.Errorf("%w: %s is before start date", ErrOccurrenceOutOfRange, key)
	}
	p := def.RecurrencePattern
	if p.EndDate != nil && day.After(recurrence.Day(*p.EndDate)) {
		return entities.RecurringWorkOrderExecution{}, outcomeFailed, fmt.Errorf("%w: %s is after end date", ErrOccurrenceOutOfRange, key)
	}
	if p.MaxOccurrences > 0 && def.TotalExecutions >= p.MaxOccurrences {
		return entities.RecurringWorkOrderExecution{}, outcomeFailed, fmt.Errorf("%w: max occurrences reached", ErrOccurrenceOutOfRange)
	}

	now := u.now().UTC()
	e := entities.RecurringWorkOrderExecution{
		ID:                   ExecutionID(def.ID, day),
		RecurringWorkOrderID: def.ID,
		ExecutionNumber:      len(execs) + 1,
		ScheduledDate:        day,
		Status:               entities.ExecutionPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	created, err := u.execs.Create(ctx, e)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			// a concurrent trigger won; converge on its record
			existing, gerr := u.execs.GetByID(ctx, e.ID)
			if gerr == nil && existing.ID != "" {
				return existing, outcomeExisting, nil
			}
		}
		return entities.RecurringWorkOrderExecution{}, outcomeFailed, fmt.Errorf("%w: %v", ErrMaterializationFailure, err)
	}

	// The day is claimed; its number comes from the atomic total.
	if counted, cerr := u.defs.ApplyCounters(ctx, def.ID, interfaces.CounterDelta{Total: 1}); cerr != nil {
		u.log.Error("counter update failed", zap.String("definition_id", def.ID), zap.Error(cerr))
	} else if counted.ID != "" {
		def = counted
		created.ExecutionNumber = counted.TotalExecutions
	}
	return u.complete(ctx, def, created)
}

// complete materializes the child work order of an execution and back-links it.
// Any failure marks the execution failed with its reason. Counters track each
// execution by its current state, so a recovered failure moves from failed to
// successful.
func (u *RecurringWorkOrderUseCase) complete(ctx context.Context, def entities.RecurringWorkOrder, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, outcome, error) {
	prior := e.Status
	wo, err := u.childWorkOrder(ctx, def, e)
	if err == nil {
		now := u.now().UTC()
		e.WorkOrderID = wo.ID
		e.WorkOrderNumber = wo.WorkOrderNumber
		e.Status = entities.ExecutionExecuted
		e.FailureReason = ""
		e.ExecutedAt = &now
		e.UpdatedAt = now
		var updated entities.RecurringWorkOrderExecution
		if updated, err = u.execs.Update(ctx, e); err == nil {
			e = updated
		}
	}
	if err != nil {
		return u.fail(ctx, def, e, prior, err)
	}

	execs, lerr := u.execs.ListByDefinitionID(ctx, def.ID)
	if lerr != nil {
		u.log.Warn("listing executions for next date failed", zap.String("definition_id", def.ID), zap.Error(lerr))
	}
	last := e.ScheduledDate
	delta := interfaces.CounterDelta{Successful: 1}
	if prior == entities.ExecutionFailed {
		delta.Failed = -1
	}
	if def.LastExecution == nil || last.After(*def.LastExecution) {
		delta.LastExecution = &last
	}
	if _, cerr := u.defs.ApplyCounters(ctx, def.ID, u.nextDelta(def, execs, delta)); cerr != nil {
		u.log.Error("counter update failed", zap.String("definition_id", def.ID), zap.Error(cerr))
	}

	u.log.Info("occurrence materialized",
		zap.String("definition_id", def.ID),
		zap.String("execution_id", e.ID),
		zap.Int("execution_number", e.ExecutionNumber),
		zap.String("work_order_id", wo.ID),
		zap.String("status", string(wo.Status)),
	)
	u.events.emit(ctx, eventNotification(entities.EntityWorkOrder, wo.ID, string(wo.Status), wo.Timeline[0]))
	return e, outcomeCreated, nil
}

func (u *RecurringWorkOrderUseCase) fail(ctx context.Context, def entities.RecurringWorkOrder, e entities.RecurringWorkOrderExecution, prior entities.ExecutionStatus, cause error) (entities.RecurringWorkOrderExecution, outcome, error) {
	e.Status = entities.ExecutionFailed
	e.FailureReason = cause.Error()
	e.UpdatedAt = u.now().UTC()
	if updated, err := u.execs.Update(ctx, e); err != nil {
		u.log.Error("marking execution failed did not persist", zap.String("execution_id", e.ID), zap.Error(err))
	} else {
		e = updated
	}
	if prior != entities.ExecutionFailed {
		if _, err := u.defs.ApplyCounters(ctx, def.ID, interfaces.CounterDelta{Failed: 1}); err != nil {
			u.log.Error("counter update failed", zap.String("definition_id", def.ID), zap.Error(err))
		}
	}
	u.log.Warn("materialization failed",
		zap.String("definition_id", def.ID),
		zap.String("execution_id", e.ID),
		zap.Error(cause),
	)
	return e, outcomeFailed, fmt.Errorf("%w: %v", ErrMaterializationFailure, cause)
}

func (u *RecurringWorkOrderUseCase) childWorkOrder(ctx context.Context, def entities.RecurringWorkOrder, e entities.RecurringWorkOrderExecution) (entities.WorkOrder, error) {
	id := ChildWorkOrderID(e.ID)
	existing, err := u.workOrders.GetByID(ctx, id)
	if err != nil {
		return entities.WorkOrder{}, err
	}
	if existing.ID != "" {
		return existing, nil
	}

	now := u.now().UTC()
	wo := entities.WorkOrder{
		ID:                       id,
		WorkOrderNumber:          newRecurringWorkOrderNumber(now, e.ExecutionNumber),
		Title:                    def.Title,
		Description:              def.Description,
		Category:                 def.Category,
		Priority:                 def.Priority,
		ClientID:                 def.ClientID,
		LocationID:               def.LocationID,
		AssignedSubcontractorID:  def.SubcontractorID,
		EstimateBudget:           def.EstimateBudget,
		RecurringWorkOrderID:     def.ID,
		RecurringWorkOrderNumber: def.RecurringWorkOrderNumber,
		ExecutionID:              e.ID,
		ExecutionNumber:          e.ExecutionNumber,
	}
	wo = lifecycle.Initialize(wo, lifecycle.SourceRecurring, entities.SystemActor(),
		fmt.Sprintf("Created from recurring work order %s (execution %d)", def.RecurringWorkOrderNumber, e.ExecutionNumber),
		map[string]string{
			"recurringWorkOrderId": def.ID,
			"executionId":          e.ID,
			"executionNumber":      strconv.Itoa(e.ExecutionNumber),
			"scheduledDate":        e.ScheduledDay(),
		}, now)
	wo.Version = 1

	created, err := u.workOrders.Create(ctx, wo)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return u.workOrders.GetByID(ctx, id)
		}
		return entities.WorkOrder{}, err
	}
	return created, nil
}

// nextDelta sets nextExecution to the earliest day from today on that matches
// the pattern and has no execution yet, or clears it when the pattern is exhausted.
func (u *RecurringWorkOrderUseCase) nextDelta(def entities.RecurringWorkOrder, execs []entities.RecurringWorkOrderExecution, delta interfaces.CounterDelta) interfaces.CounterDelta {
	taken := make(map[string]struct{}, len(execs))
	for _, e := range execs {
		taken[e.ScheduledDay()] = struct{}{}
	}
	from := recurrence.Day(u.now())
	executed := def.TotalExecutions
	for i := 0; i <= len(execs); i++ {
		next, ok := recurrence.Next(def.RecurrencePattern, def.StartDate, from, executed)
		if !ok {
			delta.ClearNext = true
			return delta
		}
		if _, done := taken[entities.DayKey(next)]; !done {
			delta.NextExecution = &next
			return delta
		}
		from = next.AddDate(0, 0, 1)
	}
	delta.ClearNext = true
	return delta
}

// MaterializeAllPending retries every execution that has no work order yet.
// One failing execution never aborts its siblings.
func (u *RecurringWorkOrderUseCase) MaterializeAllPending(ctx context.Context, id string) (BatchResult, error) {
	def, err := u.activeDefinition(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	execs, err := u.ListExecutions(ctx, def.ID)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for _, e := range execs {
		if e.WorkOrderID != "" || (e.Status != entities.ExecutionPending && e.Status != entities.ExecutionFailed) {
			continue
		}
		done, oc, err := u.complete(ctx, def, e)
		res.record(done, oc, err)
		if fresh, gerr := u.defs.GetByID(ctx, def.ID); gerr == nil && fresh.ID != "" {
			def = fresh
		}
	}
	u.log.Info("pending executions processed",
		zap.String("definition_id", def.ID),
		zap.Int("created", res.Created),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// MaterializeDue retries pending executions, then materializes every due
// occurrence up to now, bounded by the catch-up limit.
func (u *RecurringWorkOrderUseCase) MaterializeDue(ctx context.Context, id string, now time.Time) (BatchResult, error) {
	res, err := u.MaterializeAllPending(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	def, err := u.activeDefinition(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}

	from := def.StartDate
	switch {
	case def.NextExecution != nil:
		from = *def.NextExecution
	case def.LastExecution != nil:
		from = def.LastExecution.AddDate(0, 0, 1)
	}
	due := recurrence.Occurrences(def.RecurrencePattern, def.StartDate, from, now, def.TotalExecutions, u.catchUpLimit)
	for _, day := range due {
		e, oc, err := u.materialize(ctx, def, day)
		if errors.Is(err, ErrOccurrenceOutOfRange) {
			break
		}
		res.record(e, oc, err)
		if fresh, gerr := u.defs.GetByID(ctx, def.ID); gerr == nil && fresh.ID != "" {
			def = fresh
		}
	}
	return res, nil
}

// Trigger is the scheduler entrypoint: an explicit date materializes that day,
// otherwise everything due is materialized.
func (u *RecurringWorkOrderUseCase) Trigger(ctx context.Context, id string, scheduledDate *time.Time) (BatchResult, error) {
	if scheduledDate == nil {
		return u.MaterializeDue(ctx, id, u.now().UTC())
	}
	def, err := u.activeDefinition(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	var res BatchResult
	e, oc, err := u.materialize(ctx, def, recurrence.Day(*scheduledDate))
	if errors.Is(err, ErrOccurrenceOutOfRange) {
		return BatchResult{}, err
	}
	res.record(e, oc, err)
	return res, nil
}

func (r *BatchResult) record(e entities.RecurringWorkOrderExecution, oc outcome, err error) {
	switch {
	case err != nil:
		r.Failed++
		r.Errors = append(r.Errors, ExecutionError{ExecutionID: e.ID, ScheduledDate: e.ScheduledDate, Error: err.Error()})
	case oc == outcomeExisting:
		r.Skipped++
	default:
		r.Created++
	}
	if e.ID != "" {
		r.Executions = append(r.Executions, e)
	}
}
