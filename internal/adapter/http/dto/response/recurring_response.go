package response

import (
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

type RecurringWorkOrderResponse struct {
	ID                       string                     `json:"id"`
	RecurringWorkOrderNumber string                     `json:"recurring_work_order_number"`
	Title                    string                     `json:"title"`
	Description              string                     `json:"description"`
	Category                 string                     `json:"category"`
	Priority                 string                     `json:"priority"`
	EstimateBudget           decimal.Decimal            `json:"estimate_budget"`
	ClientID                 string                     `json:"client_id"`
	LocationID               string                     `json:"location_id"`
	SubcontractorID          string                     `json:"subcontractor_id,omitempty"`
	RecurrencePattern        entities.RecurrencePattern `json:"recurrence_pattern"`
	StartDate                time.Time                  `json:"start_date"`
	Status                   string                     `json:"status"`
	TotalExecutions          int                        `json:"total_executions"`
	SuccessfulExecutions     int                        `json:"successful_executions"`
	FailedExecutions         int                        `json:"failed_executions"`
	NextExecution            *time.Time                 `json:"next_execution,omitempty"`
	LastExecution            *time.Time                 `json:"last_execution,omitempty"`
	CreatedBy                string                     `json:"created_by"`
	CreatedAt                time.Time                  `json:"created_at"`
	UpdatedAt                time.Time                  `json:"updated_at"`
}

func FromRecurringWorkOrder(d entities.RecurringWorkOrder) RecurringWorkOrderResponse {
	return RecurringWorkOrderResponse{
		ID:                       d.ID,
		RecurringWorkOrderNumber: d.RecurringWorkOrderNumber,
		Title:                    d.Title,
		Description:              d.Description,
		Category:                 d.Category,
		Priority:                 string(d.Priority),
		EstimateBudget:           d.EstimateBudget,
		ClientID:                 d.ClientID,
		LocationID:               d.LocationID,
		SubcontractorID:          d.SubcontractorID,
		RecurrencePattern:        d.RecurrencePattern,
		StartDate:                d.StartDate,
		Status:                   string(d.Status),
		TotalExecutions:          d.TotalExecutions,
		SuccessfulExecutions:     d.SuccessfulExecutions,
		FailedExecutions:         d.FailedExecutions,
		NextExecution:            d.NextExecution,
		LastExecution:            d.LastExecution,
		CreatedBy:                d.CreatedBy,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}
}

type ExecutionResponse struct {
	ID                   string     `json:"id"`
	RecurringWorkOrderID string     `json:"recurring_work_order_id"`
	ExecutionNumber      int        `json:"execution_number"`
	ScheduledDate        string     `json:"scheduled_date"`
	Status               string     `json:"status"`
	WorkOrderID          string     `json:"work_order_id,omitempty"`
	WorkOrderNumber      string     `json:"work_order_number,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	ExecutedAt           *time.Time `json:"executed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func FromExecution(e entities.RecurringWorkOrderExecution) ExecutionResponse {
	return ExecutionResponse{
		ID:                   e.ID,
		RecurringWorkOrderID: e.RecurringWorkOrderID,
		ExecutionNumber:      e.ExecutionNumber,
		ScheduledDate:        e.ScheduledDay(),
		Status:               string(e.Status),
		WorkOrderID:          e.WorkOrderID,
		WorkOrderNumber:      e.WorkOrderNumber,
		FailureReason:        e.FailureReason,
		ExecutedAt:           e.ExecutedAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func FromExecutions(list []entities.RecurringWorkOrderExecution) []ExecutionResponse {
	out := make([]ExecutionResponse, 0, len(list))
	for _, e := range list {
		out = append(out, FromExecution(e))
	}
	return out
}

type ExecutionErrorResponse struct {
	ExecutionID   string `json:"execution_id"`
	ScheduledDate string `json:"scheduled_date"`
	Error         string `json:"error"`
}

type BatchResponse struct {
	Created    int                      `json:"created"`
	Skipped    int                      `json:"skipped"`
	Failed     int                      `json:"failed"`
	Errors     []ExecutionErrorResponse `json:"errors"`
	Executions []ExecutionResponse      `json:"executions"`
}

func FromBatchResult(r usecase.BatchResult) BatchResponse {
	errs := make([]ExecutionErrorResponse, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, ExecutionErrorResponse{
			ExecutionID:   e.ExecutionID,
			ScheduledDate: entities.DayKey(e.ScheduledDate),
			Error:         e.Error,
		})
	}
	return BatchResponse{
		Created:    r.Created,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Errors:     errs,
		Executions: FromExecutions(r.Executions),
	}
}
