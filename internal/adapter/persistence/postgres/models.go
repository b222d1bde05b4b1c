// Package postgres stores each aggregate as a JSONB document next to the
// columns that queries and conditional writes need.
package postgres

import (
	"encoding/json"
	"time"

	"facility_workorders/internal/domain/entities"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkOrderModel struct {
	ID                   string         `gorm:"primaryKey;type:varchar(64)"`
	WorkOrderNumber      string         `gorm:"type:varchar(40);index"`
	Status               string         `gorm:"type:varchar(40);not null;index"`
	ClientID             string         `gorm:"type:varchar(64);index"`
	RecurringWorkOrderID string         `gorm:"type:varchar(64);index"`
	Version              int64          `gorm:"not null"`
	Document             datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt            time.Time      `gorm:"index"`
	UpdatedAt            time.Time
}

func (WorkOrderModel) TableName() string { return "work_orders" }

type QuoteModel struct {
	ID              string         `gorm:"primaryKey;type:varchar(64)"`
	WorkOrderID     string         `gorm:"type:varchar(64);not null;index"`
	SubcontractorID string         `gorm:"type:varchar(64);not null"`
	Status          string         `gorm:"type:varchar(20);not null"`
	Document        datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (QuoteModel) TableName() string { return "quotes" }

// RecurringWorkOrderModel keeps status and counters as columns so they can be
// changed with single UPDATE statements; the document holds the template.
type RecurringWorkOrderModel struct {
	ID                   string         `gorm:"primaryKey;type:varchar(64)"`
	Status               string         `gorm:"type:varchar(20);not null;index"`
	TotalExecutions      int            `gorm:"not null;default:0"`
	SuccessfulExecutions int            `gorm:"not null;default:0"`
	FailedExecutions     int            `gorm:"not null;default:0"`
	NextExecution        *time.Time
	LastExecution        *time.Time
	Document             datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (RecurringWorkOrderModel) TableName() string { return "recurring_work_orders" }

type ExecutionModel struct {
	ID                   string         `gorm:"primaryKey;type:varchar(96)"`
	RecurringWorkOrderID string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_execution_day"`
	ScheduledDay         string         `gorm:"type:char(10);not null;uniqueIndex:idx_execution_day"`
	ScheduledDate        time.Time      `gorm:"not null"`
	Status               string         `gorm:"type:varchar(20);not null"`
	Document             datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (ExecutionModel) TableName() string { return "recurring_work_order_executions" }

type InvoiceModel struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)"`
	WorkOrderID string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status      string         `gorm:"type:varchar(20);not null"`
	Version     int64          `gorm:"not null"`
	Document    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (InvoiceModel) TableName() string { return "invoices" }

// AutoMigrate creates the tables plus the partial unique index that allows a
// single open quote per subcontractor and work order.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&WorkOrderModel{}, &QuoteModel{}, &RecurringWorkOrderModel{}, &ExecutionModel{}, &InvoiceModel{}); err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_quotes_active
		ON quotes (work_order_id, subcontractor_id)
		WHERE status IN ('pending', 'sent_to_client')`).Error
}

func toWorkOrderModel(wo entities.WorkOrder) (WorkOrderModel, error) {
	doc, err := json.Marshal(wo)
	if err != nil {
		return WorkOrderModel{}, err
	}
	return WorkOrderModel{
		ID:                   wo.ID,
		WorkOrderNumber:      wo.WorkOrderNumber,
		Status:               string(wo.Status),
		ClientID:             wo.ClientID,
		RecurringWorkOrderID: wo.RecurringWorkOrderID,
		Version:              wo.Version,
		Document:             datatypes.JSON(doc),
		CreatedAt:            wo.CreatedAt,
		UpdatedAt:            wo.UpdatedAt,
	}, nil
}

func fromWorkOrderModel(m WorkOrderModel) (entities.WorkOrder, error) {
	var wo entities.WorkOrder
	if err := json.Unmarshal(m.Document, &wo); err != nil {
		return entities.WorkOrder{}, err
	}
	wo.Version = m.Version
	return wo, nil
}

func toQuoteModel(q entities.Quote) (QuoteModel, error) {
	doc, err := json.Marshal(q)
	if err != nil {
		return QuoteModel{}, err
	}
	return QuoteModel{
		ID:              q.ID,
		WorkOrderID:     q.WorkOrderID,
		SubcontractorID: q.SubcontractorID,
		Status:          string(q.Status),
		Document:        datatypes.JSON(doc),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}, nil
}

func fromQuoteModel(m QuoteModel) (entities.Quote, error) {
	var q entities.Quote
	if err := json.Unmarshal(m.Document, &q); err != nil {
		return entities.Quote{}, err
	}
	q.Status = entities.QuoteStatus(m.Status)
	return q, nil
}

func toRecurringModel(def entities.RecurringWorkOrder) (RecurringWorkOrderModel, error) {
	doc, err := json.Marshal(def)
	if err != nil {
		return RecurringWorkOrderModel{}, err
	}
	return RecurringWorkOrderModel{
		ID:                   def.ID,
		Status:               string(def.Status),
		TotalExecutions:      def.TotalExecutions,
		SuccessfulExecutions: def.SuccessfulExecutions,
		FailedExecutions:     def.FailedExecutions,
		NextExecution:        def.NextExecution,
		LastExecution:        def.LastExecution,
		Document:             datatypes.JSON(doc),
		CreatedAt:            def.CreatedAt,
		UpdatedAt:            def.UpdatedAt,
	}, nil
}

// fromRecurringModel overlays the authoritative columns onto the document.
func fromRecurringModel(m RecurringWorkOrderModel) (entities.RecurringWorkOrder, error) {
	var def entities.RecurringWorkOrder
	if err := json.Unmarshal(m.Document, &def); err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	def.Status = entities.RecurringStatus(m.Status)
	def.TotalExecutions = m.TotalExecutions
	def.SuccessfulExecutions = m.SuccessfulExecutions
	def.FailedExecutions = m.FailedExecutions
	def.NextExecution = utcPtr(m.NextExecution)
	def.LastExecution = utcPtr(m.LastExecution)
	def.UpdatedAt = m.UpdatedAt.UTC()
	return def, nil
}

func toExecutionModel(e entities.RecurringWorkOrderExecution) (ExecutionModel, error) {
	doc, err := json.Marshal(e)
	if err != nil {
		return ExecutionModel{}, err
	}
	return ExecutionModel{
		ID:                   e.ID,
		RecurringWorkOrderID: e.RecurringWorkOrderID,
		ScheduledDay:         e.ScheduledDay(),
		ScheduledDate:        e.ScheduledDate,
		Status:               string(e.Status),
		Document:             datatypes.JSON(doc),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}, nil
}

func fromExecutionModel(m ExecutionModel) (entities.RecurringWorkOrderExecution, error) {
	var e entities.RecurringWorkOrderExecution
	if err := json.Unmarshal(m.Document, &e); err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	return e, nil
}

func toInvoiceModel(inv entities.Invoice) (InvoiceModel, error) {
	doc, err := json.Marshal(inv)
	if err != nil {
		return InvoiceModel{}, err
	}
	return InvoiceModel{
		ID:          inv.ID,
		WorkOrderID: inv.WorkOrderID,
		Status:      string(inv.Status),
		Version:     inv.Version,
		Document:    datatypes.JSON(doc),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}, nil
}

func fromInvoiceModel(m InvoiceModel) (entities.Invoice, error) {
	var inv entities.Invoice
	if err := json.Unmarshal(m.Document, &inv); err != nil {
		return entities.Invoice{}, err
	}
	inv.Version = m.Version
	return inv, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
