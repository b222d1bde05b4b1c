package response

import (
	"time"

	"facility_workorders/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type TimelineEventResponse struct {
	Type       string            `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	UserID     string            `json:"user_id"`
	UserName   string            `json:"user_name"`
	UserRole   string            `json:"user_role"`
	FromStatus string            `json:"from_status,omitempty"`
	ToStatus   string            `json:"to_status,omitempty"`
	Details    string            `json:"details,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type WorkOrderResponse struct {
	ID                       string                     `json:"id"`
	WorkOrderNumber          string                     `json:"work_order_number"`
	Title                    string                     `json:"title"`
	Description              string                     `json:"description"`
	Category                 string                     `json:"category"`
	Priority                 string                     `json:"priority"`
	ClientID                 string                     `json:"client_id"`
	LocationID               string                     `json:"location_id"`
	AssignedSubcontractorID  string                     `json:"assigned_subcontractor_id,omitempty"`
	AssignedQuoteID          string                     `json:"assigned_quote_id,omitempty"`
	EstimateBudget           decimal.Decimal            `json:"estimate_budget"`
	Status                   string                     `json:"status"`
	Timeline                 []TimelineEventResponse    `json:"timeline"`
	SystemInformation        entities.SystemInformation `json:"system_information"`
	RecurringWorkOrderID     string                     `json:"recurring_work_order_id,omitempty"`
	RecurringWorkOrderNumber string                     `json:"recurring_work_order_number,omitempty"`
	ExecutionID              string                     `json:"execution_id,omitempty"`
	ExecutionNumber          int                        `json:"execution_number,omitempty"`
	MaintenanceRequestID     string                     `json:"maintenance_request_id,omitempty"`
	RejectionReason          string                     `json:"rejection_reason,omitempty"`
	CancellationReason       string                     `json:"cancellation_reason,omitempty"`
	ScheduledFor             *time.Time                 `json:"scheduled_for,omitempty"`
	StartedAt                *time.Time                 `json:"started_at,omitempty"`
	CompletedAt              *time.Time                 `json:"completed_at,omitempty"`
	CompletionNotes          string                     `json:"completion_notes,omitempty"`
	InvoiceID                string                     `json:"invoice_id,omitempty"`
	PaymentReference         string                     `json:"payment_reference,omitempty"`
	PaidAt                   *time.Time                 `json:"paid_at,omitempty"`
	Version                  int64                      `json:"version"`
	CreatedAt                time.Time                  `json:"created_at"`
	UpdatedAt                time.Time                  `json:"updated_at"`
}

func FromTimeline(events []entities.TimelineEvent) []TimelineEventResponse {
	out := make([]TimelineEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, TimelineEventResponse{
			Type:       string(e.Type),
			Timestamp:  e.Timestamp,
			UserID:     e.UserID,
			UserName:   e.UserName,
			UserRole:   string(e.UserRole),
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Details:    e.Details,
			Metadata:   e.Metadata,
		})
	}
	return out
}

func FromWorkOrder(wo entities.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:                       wo.ID,
		WorkOrderNumber:          wo.WorkOrderNumber,
		Title:                    wo.Title,
		Description:              wo.Description,
		Category:                 wo.Category,
		Priority:                 string(wo.Priority),
		ClientID:                 wo.ClientID,
		LocationID:               wo.LocationID,
		AssignedSubcontractorID:  wo.AssignedSubcontractorID,
		AssignedQuoteID:          wo.AssignedQuoteID,
		EstimateBudget:           wo.EstimateBudget,
		Status:                   string(wo.Status),
		Timeline:                 FromTimeline(wo.Timeline),
		SystemInformation:        wo.SystemInformation,
		RecurringWorkOrderID:     wo.RecurringWorkOrderID,
		RecurringWorkOrderNumber: wo.RecurringWorkOrderNumber,
		ExecutionID:              wo.ExecutionID,
		ExecutionNumber:          wo.ExecutionNumber,
		MaintenanceRequestID:     wo.MaintenanceRequestID,
		RejectionReason:          wo.RejectionReason,
		CancellationReason:       wo.CancellationReason,
		ScheduledFor:             wo.ScheduledFor,
		StartedAt:                wo.StartedAt,
		CompletedAt:              wo.CompletedAt,
		CompletionNotes:          wo.CompletionNotes,
		InvoiceID:                wo.InvoiceID,
		PaymentReference:         wo.PaymentReference,
		PaidAt:                   wo.PaidAt,
		Version:                  wo.Version,
		CreatedAt:                wo.CreatedAt,
		UpdatedAt:                wo.UpdatedAt,
	}
}

func FromWorkOrders(list []entities.WorkOrder) []WorkOrderResponse {
	out := make([]WorkOrderResponse, 0, len(list))
	for _, wo := range list {
		out = append(out, FromWorkOrder(wo))
	}
	return out
}
