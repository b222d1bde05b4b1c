package request

import (
	"errors"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")
	ErrInvalidStatus = errors.New("invalid status")
)

type CreateWorkOrderRequest struct {
	Title                string          `json:"title" binding:"required"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Priority             string          `json:"priority"`
	ClientID             string          `json:"client_id"`
	LocationID           string          `json:"location_id" binding:"required"`
	EstimateBudget       decimal.Decimal `json:"estimate_budget"`
	MaintenanceRequestID string          `json:"maintenance_request_id"`
}

func (r CreateWorkOrderRequest) ToInput() usecase.CreateWorkOrderInput {
	return usecase.CreateWorkOrderInput{
		Title:                strings.TrimSpace(r.Title),
		Description:          r.Description,
		Category:             r.Category,
		Priority:             entities.Priority(strings.ToLower(strings.TrimSpace(r.Priority))),
		ClientID:             strings.TrimSpace(r.ClientID),
		LocationID:           strings.TrimSpace(r.LocationID),
		EstimateBudget:       r.EstimateBudget,
		MaintenanceRequestID: strings.TrimSpace(r.MaintenanceRequestID),
	}
}

// TransitionRequest asks for one status change. Fields other than status are
// read only by the targets that need them.
type TransitionRequest struct {
	Status           string            `json:"status" binding:"required"`
	Reason           string            `json:"reason"`
	Notes            string            `json:"notes"`
	ScheduledFor     string            `json:"scheduled_for"`
	QuoteID          string            `json:"quote_id"`
	QuoteIDs         []string          `json:"quote_ids"`
	SubcontractorID  string            `json:"subcontractor_id"`
	InvoiceID        string            `json:"invoice_id"`
	PaymentReference string            `json:"payment_reference"`
	Details          string            `json:"details"`
	Metadata         map[string]string `json:"metadata"`
}

func (r TransitionRequest) ToRequest(actor entities.Actor) (lifecycle.Request, error) {
	target := entities.WorkOrderStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if !target.Valid() {
		return lifecycle.Request{}, ErrInvalidStatus
	}
	var scheduled *time.Time
	if strings.TrimSpace(r.ScheduledFor) != "" {
		t, err := ParseDate(r.ScheduledFor)
		if err != nil {
			return lifecycle.Request{}, err
		}
		scheduled = &t
	}
	return lifecycle.Request{
		Target:           target,
		Actor:            actor,
		Reason:           strings.TrimSpace(r.Reason),
		Notes:            r.Notes,
		ScheduledFor:     scheduled,
		QuoteID:          strings.TrimSpace(r.QuoteID),
		QuoteIDs:         r.QuoteIDs,
		SubcontractorID:  strings.TrimSpace(r.SubcontractorID),
		InvoiceID:        strings.TrimSpace(r.InvoiceID),
		PaymentReference: strings.TrimSpace(r.PaymentReference),
		Details:          r.Details,
		Metadata:         r.Metadata,
	}, nil
}

// ParseDate accepts a calendar date (UTC midnight) or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

type TimelineEventRequest struct {
	Type     string            `json:"type" binding:"required"`
	Details  string            `json:"details"`
	Metadata map[string]string `json:"metadata"`
}

func (r TimelineEventRequest) ToInput(actor entities.Actor) entities.TimelineEventInput {
	return entities.TimelineEventInput{
		Type:     entities.TimelineEventType(strings.ToLower(strings.TrimSpace(r.Type))),
		Actor:    actor,
		Details:  r.Details,
		Metadata: r.Metadata,
	}
}
