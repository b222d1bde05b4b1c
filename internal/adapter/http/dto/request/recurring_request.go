package request

import (
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

type RecurrencePatternRequest struct {
	Type           string `json:"type" binding:"required"`
	Interval       int    `json:"interval"`
	DaysOfWeek     []int  `json:"days_of_week"`
	DayOfMonth     int    `json:"day_of_month"`
	MonthOfYear    int    `json:"month_of_year"`
	EndDate        string `json:"end_date"`
	MaxOccurrences int    `json:"max_occurrences"`
}

type CreateRecurringWorkOrderRequest struct {
	Title             string                   `json:"title" binding:"required"`
	Description       string                   `json:"description"`
	Category          string                   `json:"category"`
	Priority          string                   `json:"priority"`
	EstimateBudget    decimal.Decimal          `json:"estimate_budget"`
	ClientID          string                   `json:"client_id" binding:"required"`
	LocationID        string                   `json:"location_id" binding:"required"`
	SubcontractorID   string                   `json:"subcontractor_id"`
	RecurrencePattern RecurrencePatternRequest `json:"recurrence_pattern" binding:"required"`
	StartDate         string                   `json:"start_date" binding:"required"`
}

func (r CreateRecurringWorkOrderRequest) ToInput() (usecase.CreateRecurringInput, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return usecase.CreateRecurringInput{}, err
	}
	var end *time.Time
	if strings.TrimSpace(r.RecurrencePattern.EndDate) != "" {
		t, err := ParseDate(r.RecurrencePattern.EndDate)
		if err != nil {
			return usecase.CreateRecurringInput{}, err
		}
		end = &t
	}
	return usecase.CreateRecurringInput{
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		Category:        r.Category,
		Priority:        entities.Priority(strings.ToLower(strings.TrimSpace(r.Priority))),
		EstimateBudget:  r.EstimateBudget,
		ClientID:        strings.TrimSpace(r.ClientID),
		LocationID:      strings.TrimSpace(r.LocationID),
		SubcontractorID: strings.TrimSpace(r.SubcontractorID),
		Pattern: entities.RecurrencePattern{
			Type:           entities.RecurrenceType(strings.ToLower(strings.TrimSpace(r.RecurrencePattern.Type))),
			Interval:       r.RecurrencePattern.Interval,
			DaysOfWeek:     r.RecurrencePattern.DaysOfWeek,
			DayOfMonth:     r.RecurrencePattern.DayOfMonth,
			MonthOfYear:    r.RecurrencePattern.MonthOfYear,
			EndDate:        end,
			MaxOccurrences: r.RecurrencePattern.MaxOccurrences,
		},
		StartDate: start,
	}, nil
}

type RecurringStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r RecurringStatusRequest) ResolveStatus() (entities.RecurringStatus, error) {
	switch s := entities.RecurringStatus(strings.ToLower(strings.TrimSpace(r.Status))); s {
	case entities.RecurringActive, entities.RecurringPaused, entities.RecurringCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// TriggerRequest materializes one occurrence when scheduled_date is set,
// otherwise every occurrence due up to now.
type TriggerRequest struct {
	RecurringWorkOrderID string `json:"recurring_work_order_id" binding:"required"`
	ScheduledDate        string `json:"scheduled_date"`
}

func (r TriggerRequest) ResolveDate() (*time.Time, error) {
	if strings.TrimSpace(r.ScheduledDate) == "" {
		return nil, nil
	}
	t, err := ParseDate(r.ScheduledDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
