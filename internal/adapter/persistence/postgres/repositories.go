package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ interfaces.IWorkOrderRepository          = (*WorkOrderRepository)(nil)
	_ interfaces.IQuoteRepository              = (*QuoteRepository)(nil)
	_ interfaces.IRecurringWorkOrderRepository = (*RecurringWorkOrderRepository)(nil)
	_ interfaces.IExecutionRepository          = (*ExecutionRepository)(nil)
	_ interfaces.IInvoiceRepository            = (*InvoiceRepository)(nil)
)

var openQuoteStatuses = []string{string(entities.QuotePending), string(entities.QuoteSentToClient)}

// insert relies on ON CONFLICT DO NOTHING so both the primary key and any
// unique index (including the partial one on open quotes) map to ErrAlreadyExists.
func insert(db *gorm.DB, model any) error {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrAlreadyExists
	}
	return nil
}

// first returns found=false instead of gorm.ErrRecordNotFound.
func first(db *gorm.DB, dest any, query string, args ...any) (bool, error) {
	err := db.Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo entities.WorkOrder) (entities.WorkOrder, error) {
	if wo.Version == 0 {
		wo.Version = 1
	}
	m, err := toWorkOrderModel(wo)
	if err != nil {
		return entities.WorkOrder{}, err
	}
	if err := insert(r.db.WithContext(ctx), &m); err != nil {
		return entities.WorkOrder{}, err
	}
	return wo, nil
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id string) (entities.WorkOrder, error) {
	var m WorkOrderModel
	found, err := first(r.db.WithContext(ctx), &m, "id = ?", id)
	if err != nil || !found {
		return entities.WorkOrder{}, err
	}
	return fromWorkOrderModel(m)
}

func (r *WorkOrderRepository) ListByStatus(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var models []WorkOrderModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entities.WorkOrder, 0, len(models))
	for _, m := range models {
		wo, err := fromWorkOrderModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, wo)
	}
	return out, nil
}

// Update rewrites the document only if the stored version still matches.
func (r *WorkOrderRepository) Update(ctx context.Context, wo entities.WorkOrder, expectedVersion int64) (entities.WorkOrder, error) {
	wo.Version = expectedVersion + 1
	m, err := toWorkOrderModel(wo)
	if err != nil {
		return entities.WorkOrder{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&WorkOrderModel{}).
		Where("id = ? AND version = ?", wo.ID, expectedVersion).
		Updates(map[string]any{
			"status":                  m.Status,
			"work_order_number":       m.WorkOrderNumber,
			"client_id":               m.ClientID,
			"recurring_work_order_id": m.RecurringWorkOrderID,
			"version":                 m.Version,
			"document":                m.Document,
			"updated_at":              m.UpdatedAt,
		})
	if res.Error != nil {
		return entities.WorkOrder{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.WorkOrder{}, interfaces.ErrVersionConflict
	}
	return wo, nil
}

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	m, err := toQuoteModel(q)
	if err != nil {
		return entities.Quote{}, err
	}
	if err := insert(r.db.WithContext(ctx), &m); err != nil {
		return entities.Quote{}, err
	}
	return q, nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	var m QuoteModel
	found, err := first(r.db.WithContext(ctx), &m, "id = ?", id)
	if err != nil || !found {
		return entities.Quote{}, err
	}
	return fromQuoteModel(m)
}

func (r *QuoteRepository) ListByWorkOrderID(ctx context.Context, workOrderID string) ([]entities.Quote, error) {
	return r.list(r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID))
}

func (r *QuoteRepository) ListAll(ctx context.Context) ([]entities.Quote, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *QuoteRepository) list(q *gorm.DB) ([]entities.Quote, error) {
	var models []QuoteModel
	if err := q.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return decodeQuotes(models)
}

func decodeQuotes(models []QuoteModel) ([]entities.Quote, error) {
	out := make([]entities.Quote, 0, len(models))
	for _, m := range models {
		q, err := fromQuoteModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuoteRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	m, err := toQuoteModel(q)
	if err != nil {
		return entities.Quote{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&QuoteModel{}).
		Where("id = ? AND status IN ?", q.ID, openQuoteStatuses).
		Updates(map[string]any{
			"status":     m.Status,
			"document":   m.Document,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return entities.Quote{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Quote{}, interfaces.ErrConditionFailed
	}
	return q, nil
}

// Decide locks every quote of the work order, then accepts the chosen one and
// rejects the other open ones inside one transaction.
func (r *QuoteRepository) Decide(ctx context.Context, workOrderID, acceptedQuoteID, decidedBy string, at time.Time) ([]entities.Quote, error) {
	decidedAt := at.UTC()
	var out []entities.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []QuoteModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("work_order_id = ?", workOrderID).
			Order("id ASC").
			Find(&models).Error; err != nil {
			return err
		}
		quotes, err := decodeQuotes(models)
		if err != nil {
			return err
		}

		chosen := -1
		for i, q := range quotes {
			if q.Status == entities.QuoteAccepted {
				return interfaces.ErrConditionFailed
			}
			if q.ID == acceptedQuoteID {
				chosen = i
			}
		}
		if chosen < 0 || quotes[chosen].Status.Terminal() {
			return interfaces.ErrConditionFailed
		}

		for i := range quotes {
			q := &quotes[i]
			switch {
			case i == chosen:
				q.Status = entities.QuoteAccepted
			case !q.Status.Terminal():
				q.Status = entities.QuoteRejected
			default:
				continue
			}
			q.DecidedBy = decidedBy
			q.DecidedAt = &decidedAt
			q.UpdatedAt = decidedAt
			m, err := toQuoteModel(*q)
			if err != nil {
				return err
			}
			if err := tx.Model(&QuoteModel{}).Where("id = ?", q.ID).Updates(map[string]any{
				"status":     m.Status,
				"document":   m.Document,
				"updated_at": m.UpdatedAt,
			}).Error; err != nil {
				return err
			}
		}
		out = quotes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type RecurringWorkOrderRepository struct {
	db *gorm.DB
}

func NewRecurringWorkOrderRepository(db *gorm.DB) *RecurringWorkOrderRepository {
	return &RecurringWorkOrderRepository{db: db}
}

func (r *RecurringWorkOrderRepository) Create(ctx context.Context, def entities.RecurringWorkOrder) (entities.RecurringWorkOrder, error) {
	m, err := toRecurringModel(def)
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	if err := insert(r.db.WithContext(ctx), &m); err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	return def, nil
}

func (r *RecurringWorkOrderRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrder, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *RecurringWorkOrderRepository) get(db *gorm.DB, id string) (entities.RecurringWorkOrder, error) {
	var m RecurringWorkOrderModel
	found, err := first(db, &m, "id = ?", id)
	if err != nil || !found {
		return entities.RecurringWorkOrder{}, err
	}
	return fromRecurringModel(m)
}

func (r *RecurringWorkOrderRepository) ListByStatus(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var models []RecurringWorkOrderModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entities.RecurringWorkOrder, 0, len(models))
	for _, m := range models {
		def, err := fromRecurringModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func (r *RecurringWorkOrderRepository) UpdateStatus(ctx context.Context, id string, status entities.RecurringStatus) (entities.RecurringWorkOrder, error) {
	return r.update(ctx, id, map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
}

// ApplyCounters increments the counters in SQL so concurrent sweeps never
// lose an update.
func (r *RecurringWorkOrderRepository) ApplyCounters(ctx context.Context, id string, delta interfaces.CounterDelta) (entities.RecurringWorkOrder, error) {
	values := counterUpdates(delta, time.Now().UTC())
	return r.update(ctx, id, values)
}

func counterUpdates(delta interfaces.CounterDelta, now time.Time) map[string]any {
	values := map[string]any{
		"total_executions":      gorm.Expr("total_executions + ?", delta.Total),
		"successful_executions": gorm.Expr("successful_executions + ?", delta.Successful),
		"failed_executions":     gorm.Expr("failed_executions + ?", delta.Failed),
		"updated_at":            now,
	}
	if delta.LastExecution != nil {
		values["last_execution"] = delta.LastExecution.UTC()
	}
	switch {
	case delta.ClearNext:
		values["next_execution"] = nil
	case delta.NextExecution != nil:
		values["next_execution"] = delta.NextExecution.UTC()
	}
	return values
}

// update returns an empty definition when the id is unknown.
func (r *RecurringWorkOrderRepository) update(ctx context.Context, id string, values map[string]any) (entities.RecurringWorkOrder, error) {
	var out entities.RecurringWorkOrder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RecurringWorkOrderModel{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		def, err := r.get(tx, id)
		if err != nil {
			return err
		}
		out = def
		return nil
	})
	return out, err
}

type ExecutionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

func (r *ExecutionRepository) Create(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	m, err := toExecutionModel(e)
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	if err := insert(r.db.WithContext(ctx), &m); err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	return e, nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrderExecution, error) {
	var m ExecutionModel
	found, err := first(r.db.WithContext(ctx), &m, "id = ?", id)
	if err != nil || !found {
		return entities.RecurringWorkOrderExecution{}, err
	}
	return fromExecutionModel(m)
}

func (r *ExecutionRepository) ListByDefinitionID(ctx context.Context, definitionID string) ([]entities.RecurringWorkOrderExecution, error) {
	var models []ExecutionModel
	if err := r.db.WithContext(ctx).
		Where("recurring_work_order_id = ?", definitionID).
		Order("scheduled_date ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entities.RecurringWorkOrderExecution, 0, len(models))
	for _, m := range models {
		e, err := fromExecutionModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (r *ExecutionRepository) Update(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	m, err := toExecutionModel(e)
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&ExecutionModel{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"status":     m.Status,
			"document":   m.Document,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return entities.RecurringWorkOrderExecution{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.RecurringWorkOrderExecution{}, interfaces.ErrConditionFailed
	}
	return e, nil
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	if inv.Version == 0 {
		inv.Version = 1
	}
	m, err := toInvoiceModel(inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	if err := insert(r.db.WithContext(ctx), &m); err != nil {
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *InvoiceRepository) GetByWorkOrderID(ctx context.Context, workOrderID string) (entities.Invoice, error) {
	return r.getBy(ctx, "work_order_id = ?", workOrderID)
}

func (r *InvoiceRepository) getBy(ctx context.Context, query string, arg string) (entities.Invoice, error) {
	var m InvoiceModel
	found, err := first(r.db.WithContext(ctx), &m, query, arg)
	if err != nil || !found {
		return entities.Invoice{}, err
	}
	return fromInvoiceModel(m)
}

func (r *InvoiceRepository) Update(ctx context.Context, inv entities.Invoice, expectedVersion int64) (entities.Invoice, error) {
	inv.Version = expectedVersion + 1
	m, err := toInvoiceModel(inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, expectedVersion).
		Updates(map[string]any{
			"status":     m.Status,
			"version":    m.Version,
			"document":   m.Document,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return entities.Invoice{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Invoice{}, interfaces.ErrVersionConflict
	}
	return inv, nil
}
