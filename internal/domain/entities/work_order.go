package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderStatus is owned by the lifecycle state machine; nothing else writes it.
type WorkOrderStatus string

const (
	WorkOrderPending               WorkOrderStatus = "pending"
	WorkOrderApproved              WorkOrderStatus = "approved"
	WorkOrderRejected              WorkOrderStatus = "rejected"
	WorkOrderBidding               WorkOrderStatus = "bidding"
	WorkOrderQuotesReceived        WorkOrderStatus = "quotes_received"
	WorkOrderQuoteSharedWithClient WorkOrderStatus = "quote_shared_with_client"
	WorkOrderAssigned              WorkOrderStatus = "assigned"
	WorkOrderScheduled             WorkOrderStatus = "scheduled"
	WorkOrderInProgress            WorkOrderStatus = "in_progress"
	WorkOrderCompleted             WorkOrderStatus = "completed"
	WorkOrderInvoiced              WorkOrderStatus = "invoiced"
	WorkOrderPaid                  WorkOrderStatus = "paid"
	WorkOrderCancelled             WorkOrderStatus = "cancelled"
)

// AllWorkOrderStatuses lists the canonical vocabulary in lifecycle order.
var AllWorkOrderStatuses = []WorkOrderStatus{
	WorkOrderPending, WorkOrderApproved, WorkOrderRejected, WorkOrderBidding,
	WorkOrderQuotesReceived, WorkOrderQuoteSharedWithClient, WorkOrderAssigned,
	WorkOrderScheduled, WorkOrderInProgress, WorkOrderCompleted, WorkOrderInvoiced,
	WorkOrderPaid, WorkOrderCancelled,
}

func (s WorkOrderStatus) Valid() bool {
	for _, v := range AllWorkOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderPaid || s == WorkOrderCancelled || s == WorkOrderRejected
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// MilestoneSnapshot is the last actor seen for one milestone.
type MilestoneSnapshot struct {
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	UserRole  Role              `json:"user_role"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SystemInformation is a read cache projected from the timeline.
type SystemInformation struct {
	CreatedBy  *MilestoneSnapshot `json:"created_by,omitempty"`
	ApprovedBy *MilestoneSnapshot `json:"approved_by,omitempty"`
	Assignment *MilestoneSnapshot `json:"assignment,omitempty"`
	Completion *MilestoneSnapshot `json:"completion,omitempty"`
}

// WorkOrder is one unit of maintenance work.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (status-index): status
//
// Version is bumped on every write and used as the compare-and-set token.
type WorkOrder struct {
	ID              string   `json:"id"`
	WorkOrderNumber string   `json:"work_order_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Priority        Priority `json:"priority"`

	ClientID                string          `json:"client_id"`
	LocationID              string          `json:"location_id"`
	AssignedSubcontractorID string          `json:"assigned_subcontractor_id,omitempty"`
	AssignedQuoteID         string          `json:"assigned_quote_id,omitempty"`
	EstimateBudget          decimal.Decimal `json:"estimate_budget"`

	Status            WorkOrderStatus   `json:"status"`
	Timeline          []TimelineEvent   `json:"timeline"`
	SystemInformation SystemInformation `json:"system_information"`

	RecurringWorkOrderID     string `json:"recurring_work_order_id,omitempty"`
	RecurringWorkOrderNumber string `json:"recurring_work_order_number,omitempty"`
	ExecutionID              string `json:"execution_id,omitempty"`
	ExecutionNumber          int    `json:"execution_number,omitempty"`
	MaintenanceRequestID     string `json:"maintenance_request_id,omitempty"`

	RejectionReason    string     `json:"rejection_reason,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	BiddingOpenedAt    *time.Time `json:"bidding_opened_at,omitempty"`
	ScheduledFor       *time.Time `json:"scheduled_for,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CompletionNotes    string     `json:"completion_notes,omitempty"`
	InvoiceID          string     `json:"invoice_id,omitempty"`
	PaymentReference   string     `json:"payment_reference,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so pure lifecycle functions never alias the caller's slices.
func (w WorkOrder) Clone() WorkOrder {
	out := w
	if w.Timeline != nil {
		out.Timeline = make([]TimelineEvent, len(w.Timeline))
		for i, ev := range w.Timeline {
			ev.Metadata = cloneMetadata(ev.Metadata)
			out.Timeline[i] = ev
		}
	}
	return out
}
