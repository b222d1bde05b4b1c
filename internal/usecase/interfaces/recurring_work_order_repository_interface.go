package interfaces

import (
	"context"
	"time"

	"facility_workorders/internal/domain/entities"
)

// CounterDelta is applied atomically to a definition's execution counters.
// Nil timestamps leave the stored value untouched; ClearNext removes nextExecution.
type CounterDelta struct {
	Total         int
	Successful    int
	Failed        int
	LastExecution *time.Time
	NextExecution *time.Time
	ClearNext     bool
}

// IRecurringWorkOrderRepository persists recurring definitions.
type IRecurringWorkOrderRepository interface {
	Create(ctx context.Context, def entities.RecurringWorkOrder) (entities.RecurringWorkOrder, error)
	GetByID(ctx context.Context, id string) (entities.RecurringWorkOrder, error)
	ListByStatus(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error)
	UpdateStatus(ctx context.Context, id string, status entities.RecurringStatus) (entities.RecurringWorkOrder, error)
	ApplyCounters(ctx context.Context, id string, delta CounterDelta) (entities.RecurringWorkOrder, error)
}

// IExecutionRepository persists executions.
//
// Create fails with ErrAlreadyExists when the id or the
// (definition, scheduled day) pair is already taken.
type IExecutionRepository interface {
	Create(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error)
	GetByID(ctx context.Context, id string) (entities.RecurringWorkOrderExecution, error)
	ListByDefinitionID(ctx context.Context, definitionID string) ([]entities.RecurringWorkOrderExecution, error)
	Update(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error)
}
