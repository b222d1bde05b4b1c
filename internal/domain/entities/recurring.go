package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// RecurrencePattern is a closed rule set; DaysOfWeek uses 0 = Sunday.
type RecurrencePattern struct {
	Type           RecurrenceType `json:"type"`
	Interval       int            `json:"interval"`
	DaysOfWeek     []int          `json:"days_of_week,omitempty"`
	DayOfMonth     int            `json:"day_of_month,omitempty"`
	MonthOfYear    int            `json:"month_of_year,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	MaxOccurrences int            `json:"max_occurrences,omitempty"`
}

type RecurringStatus string

const (
	RecurringActive    RecurringStatus = "active"
	RecurringPaused    RecurringStatus = "paused"
	RecurringCancelled RecurringStatus = "cancelled"
)

// RecurringWorkOrder is the template a scheduler materializes into work orders.
// It is never itself a work order.
type RecurringWorkOrder struct {
	ID                       string          `json:"id"`
	RecurringWorkOrderNumber string          `json:"recurring_work_order_number"`
	Title                    string          `json:"title"`
	Description              string          `json:"description"`
	Category                 string          `json:"category"`
	Priority                 Priority        `json:"priority"`
	EstimateBudget           decimal.Decimal `json:"estimate_budget"`
	ClientID                 string          `json:"client_id"`
	LocationID               string          `json:"location_id"`
	SubcontractorID          string          `json:"subcontractor_id,omitempty"`

	RecurrencePattern RecurrencePattern `json:"recurrence_pattern"`
	StartDate         time.Time         `json:"start_date"`
	Status            RecurringStatus   `json:"status"`

	TotalExecutions      int        `json:"total_executions"`
	SuccessfulExecutions int        `json:"successful_executions"`
	FailedExecutions     int        `json:"failed_executions"`
	NextExecution        *time.Time `json:"next_execution,omitempty"`
	LastExecution        *time.Time `json:"last_execution,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExecutionStatus string

const (
	ExecutionPending  ExecutionStatus = "pending"
	ExecutionExecuted ExecutionStatus = "executed"
	ExecutionFailed   ExecutionStatus = "failed"
	ExecutionSkipped  ExecutionStatus = "skipped"
)

// RecurringWorkOrderExecution is one occurrence of a definition.
// (RecurringWorkOrderID, calendar day of ScheduledDate) is unique.
type RecurringWorkOrderExecution struct {
	ID                   string          `json:"id"`
	RecurringWorkOrderID string          `json:"recurring_work_order_id"`
	ExecutionNumber      int             `json:"execution_number"`
	ScheduledDate        time.Time       `json:"scheduled_date"`
	Status               ExecutionStatus `json:"status"`
	WorkOrderID          string          `json:"work_order_id,omitempty"`
	WorkOrderNumber      string          `json:"work_order_number,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	ExecutedAt           *time.Time      `json:"executed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ScheduledDay is the idempotency key component: the scheduled date truncated to a UTC day.
func (e RecurringWorkOrderExecution) ScheduledDay() string {
	return DayKey(e.ScheduledDate)
}

// DayKey formats t as a UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
