// Package memory is a mutex-guarded store implementing every repository
// interface. It backs local runs (storage.driver=memory) and behavioural tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"
)

type state struct {
	workOrders  map[string]entities.WorkOrder
	quotes      map[string]entities.Quote
	definitions map[string]entities.RecurringWorkOrder
	executions  map[string]entities.RecurringWorkOrderExecution
	execByDay   map[string]string
	invoices    map[string]entities.Invoice
}

// Store holds all documents behind a single lock, so multi-document writes
// such as Quote decisions are atomic.
type Store struct {
	mu    sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{state: state{
		workOrders:  map[string]entities.WorkOrder{},
		quotes:      map[string]entities.Quote{},
		definitions: map[string]entities.RecurringWorkOrder{},
		executions:  map[string]entities.RecurringWorkOrderExecution{},
		execByDay:   map[string]string{},
		invoices:    map[string]entities.Invoice{},
	}}
}

func (s *Store) WorkOrders() *WorkOrderRepository { return &WorkOrderRepository{s} }

func (s *Store) Quotes() *QuoteRepository { return &QuoteRepository{s} }

func (s *Store) Definitions() *RecurringWorkOrderRepository { return &RecurringWorkOrderRepository{s} }

func (s *Store) Executions() *ExecutionRepository { return &ExecutionRepository{s} }

func (s *Store) Invoices() *InvoiceRepository { return &InvoiceRepository{s} }

var (
	_ interfaces.IWorkOrderRepository          = (*WorkOrderRepository)(nil)
	_ interfaces.IQuoteRepository              = (*QuoteRepository)(nil)
	_ interfaces.IRecurringWorkOrderRepository = (*RecurringWorkOrderRepository)(nil)
	_ interfaces.IExecutionRepository          = (*ExecutionRepository)(nil)
	_ interfaces.IInvoiceRepository            = (*InvoiceRepository)(nil)
)

type WorkOrderRepository struct{ s *Store }

func (r *WorkOrderRepository) Create(ctx context.Context, wo entities.WorkOrder) (entities.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.workOrders[wo.ID]; ok {
		return entities.WorkOrder{}, interfaces.ErrAlreadyExists
	}
	if wo.Version == 0 {
		wo.Version = 1
	}
	r.s.state.workOrders[wo.ID] = wo.Clone()
	return wo.Clone(), nil
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id string) (entities.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wo, ok := r.s.state.workOrders[id]
	if !ok {
		return entities.WorkOrder{}, nil
	}
	return wo.Clone(), nil
}

func (r *WorkOrderRepository) ListByStatus(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.WorkOrder, 0, len(r.s.state.workOrders))
	for _, wo := range r.s.state.workOrders {
		if status == "" || wo.Status == status {
			out = append(out, wo.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, wo entities.WorkOrder, expectedVersion int64) (entities.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.state.workOrders[wo.ID]
	if !ok || cur.Version != expectedVersion {
		return entities.WorkOrder{}, interfaces.ErrVersionConflict
	}
	wo.Version = expectedVersion + 1
	r.s.state.workOrders[wo.ID] = wo.Clone()
	return wo.Clone(), nil
}

type QuoteRepository struct{ s *Store }

func (r *QuoteRepository) Create(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.quotes[q.ID]; ok {
		return entities.Quote{}, interfaces.ErrAlreadyExists
	}
	for _, other := range r.s.state.quotes {
		if other.WorkOrderID == q.WorkOrderID && other.SubcontractorID == q.SubcontractorID && !other.Status.Terminal() {
			return entities.Quote{}, interfaces.ErrAlreadyExists
		}
	}
	r.s.state.quotes[q.ID] = cloneQuote(q)
	return cloneQuote(q), nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.state.quotes[id]
	if !ok {
		return entities.Quote{}, nil
	}
	return cloneQuote(q), nil
}

func (r *QuoteRepository) ListByWorkOrderID(ctx context.Context, workOrderID string) ([]entities.Quote, error) {
	return r.list(func(q entities.Quote) bool { return q.WorkOrderID == workOrderID }), nil
}

func (r *QuoteRepository) ListAll(ctx context.Context) ([]entities.Quote, error) {
	return r.list(func(entities.Quote) bool { return true }), nil
}

func (r *QuoteRepository) list(keep func(entities.Quote) bool) []entities.Quote {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entities.Quote{}
	for _, q := range r.s.state.quotes {
		if keep(q) {
			out = append(out, cloneQuote(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *QuoteRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.state.quotes[q.ID]
	if !ok || cur.Status.Terminal() {
		return entities.Quote{}, interfaces.ErrConditionFailed
	}
	r.s.state.quotes[q.ID] = cloneQuote(q)
	return cloneQuote(q), nil
}

func (r *QuoteRepository) Decide(ctx context.Context, workOrderID, acceptedQuoteID, decidedBy string, at time.Time) ([]entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chosen, ok := r.s.state.quotes[acceptedQuoteID]
	if !ok || chosen.WorkOrderID != workOrderID || chosen.Status.Terminal() {
		return nil, interfaces.ErrConditionFailed
	}
	for _, q := range r.s.state.quotes {
		if q.WorkOrderID == workOrderID && q.Status == entities.QuoteAccepted {
			return nil, interfaces.ErrConditionFailed
		}
	}

	decidedAt := at.UTC()
	out := []entities.Quote{}
	for id, q := range r.s.state.quotes {
		if q.WorkOrderID != workOrderID {
			continue
		}
		switch {
		case id == acceptedQuoteID:
			q.Status = entities.QuoteAccepted
		case !q.Status.Terminal():
			q.Status = entities.QuoteRejected
		default:
			out = append(out, cloneQuote(q))
			continue
		}
		q.DecidedBy = decidedBy
		q.DecidedAt = &decidedAt
		q.UpdatedAt = decidedAt
		r.s.state.quotes[id] = q
		out = append(out, cloneQuote(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneQuote(q entities.Quote) entities.Quote {
	q.LineItems = append([]entities.LineItem(nil), q.LineItems...)
	if q.DecidedAt != nil {
		t := *q.DecidedAt
		q.DecidedAt = &t
	}
	return q
}

type RecurringWorkOrderRepository struct{ s *Store }

func (r *RecurringWorkOrderRepository) Create(ctx context.Context, def entities.RecurringWorkOrder) (entities.RecurringWorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.definitions[def.ID]; ok {
		return entities.RecurringWorkOrder{}, interfaces.ErrAlreadyExists
	}
	r.s.state.definitions[def.ID] = cloneDefinition(def)
	return cloneDefinition(def), nil
}

func (r *RecurringWorkOrderRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	def, ok := r.s.state.definitions[id]
	if !ok {
		return entities.RecurringWorkOrder{}, nil
	}
	return cloneDefinition(def), nil
}

func (r *RecurringWorkOrderRepository) ListByStatus(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entities.RecurringWorkOrder{}
	for _, def := range r.s.state.definitions {
		if status == "" || def.Status == status {
			out = append(out, cloneDefinition(def))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RecurringWorkOrderRepository) UpdateStatus(ctx context.Context, id string, status entities.RecurringStatus) (entities.RecurringWorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	def, ok := r.s.state.definitions[id]
	if !ok {
		return entities.RecurringWorkOrder{}, nil
	}
	def.Status = status
	def.UpdatedAt = time.Now().UTC()
	r.s.state.definitions[id] = def
	return cloneDefinition(def), nil
}

func (r *RecurringWorkOrderRepository) ApplyCounters(ctx context.Context, id string, delta interfaces.CounterDelta) (entities.RecurringWorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	def, ok := r.s.state.definitions[id]
	if !ok {
		return entities.RecurringWorkOrder{}, nil
	}
	def.TotalExecutions += delta.Total
	def.SuccessfulExecutions += delta.Successful
	def.FailedExecutions += delta.Failed
	if delta.LastExecution != nil {
		t := *delta.LastExecution
		def.LastExecution = &t
	}
	switch {
	case delta.ClearNext:
		def.NextExecution = nil
	case delta.NextExecution != nil:
		t := *delta.NextExecution
		def.NextExecution = &t
	}
	def.UpdatedAt = time.Now().UTC()
	r.s.state.definitions[id] = def
	return cloneDefinition(def), nil
}

func cloneDefinition(def entities.RecurringWorkOrder) entities.RecurringWorkOrder {
	def.RecurrencePattern.DaysOfWeek = append([]int(nil), def.RecurrencePattern.DaysOfWeek...)
	def.RecurrencePattern.EndDate = copyTime(def.RecurrencePattern.EndDate)
	def.NextExecution = copyTime(def.NextExecution)
	def.LastExecution = copyTime(def.LastExecution)
	return def
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type ExecutionRepository struct{ s *Store }

func dayKey(e entities.RecurringWorkOrderExecution) string {
	return e.RecurringWorkOrderID + "|" + entities.DayKey(e.ScheduledDate)
}

func (r *ExecutionRepository) Create(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.executions[e.ID]; ok {
		return entities.RecurringWorkOrderExecution{}, interfaces.ErrAlreadyExists
	}
	if _, ok := r.s.state.execByDay[dayKey(e)]; ok {
		return entities.RecurringWorkOrderExecution{}, interfaces.ErrAlreadyExists
	}
	r.s.state.executions[e.ID] = cloneExecution(e)
	r.s.state.execByDay[dayKey(e)] = e.ID
	return cloneExecution(e), nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrderExecution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.state.executions[id]
	if !ok {
		return entities.RecurringWorkOrderExecution{}, nil
	}
	return cloneExecution(e), nil
}

func (r *ExecutionRepository) ListByDefinitionID(ctx context.Context, definitionID string) ([]entities.RecurringWorkOrderExecution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entities.RecurringWorkOrderExecution{}
	for _, e := range r.s.state.executions {
		if e.RecurringWorkOrderID == definitionID {
			out = append(out, cloneExecution(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (r *ExecutionRepository) Update(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.executions[e.ID]; !ok {
		return entities.RecurringWorkOrderExecution{}, interfaces.ErrConditionFailed
	}
	r.s.state.executions[e.ID] = cloneExecution(e)
	return cloneExecution(e), nil
}

func cloneExecution(e entities.RecurringWorkOrderExecution) entities.RecurringWorkOrderExecution {
	e.ExecutedAt = copyTime(e.ExecutedAt)
	return e
}

type InvoiceRepository struct{ s *Store }

func (r *InvoiceRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.invoices[inv.ID]; ok {
		return entities.Invoice{}, interfaces.ErrAlreadyExists
	}
	if inv.Version == 0 {
		inv.Version = 1
	}
	r.s.state.invoices[inv.ID] = cloneInvoice(inv)
	return cloneInvoice(inv), nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.state.invoices[id]
	if !ok {
		return entities.Invoice{}, nil
	}
	return cloneInvoice(inv), nil
}

func (r *InvoiceRepository) GetByWorkOrderID(ctx context.Context, workOrderID string) (entities.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.state.invoices {
		if inv.WorkOrderID == workOrderID {
			return cloneInvoice(inv), nil
		}
	}
	return entities.Invoice{}, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv entities.Invoice, expectedVersion int64) (entities.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.state.invoices[inv.ID]
	if !ok || cur.Version != expectedVersion {
		return entities.Invoice{}, interfaces.ErrVersionConflict
	}
	inv.Version = expectedVersion + 1
	r.s.state.invoices[inv.ID] = cloneInvoice(inv)
	return cloneInvoice(inv), nil
}

func cloneInvoice(inv entities.Invoice) entities.Invoice {
	inv.Timeline = append([]entities.TimelineEvent(nil), inv.Timeline...)
	inv.PaidAt = copyTime(inv.PaidAt)
	return inv
}
