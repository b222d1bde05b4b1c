package entities

import "time"

// TimelineEventType is the closed vocabulary of audit events.
type TimelineEventType string

const (
	EventCreated               TimelineEventType = "created"
	EventApproved              TimelineEventType = "approved"
	EventRejected              TimelineEventType = "rejected"
	EventSharedForBidding      TimelineEventType = "shared_for_bidding"
	EventQuoteReceived         TimelineEventType = "quote_received"
	EventQuoteSharedWithClient TimelineEventType = "quote_shared_with_client"
	EventAssigned              TimelineEventType = "assigned"
	EventScheduleSet           TimelineEventType = "schedule_set"
	EventStarted               TimelineEventType = "started"
	EventCompleted             TimelineEventType = "completed"
	EventInvoiceSent           TimelineEventType = "invoice_sent"
	EventPaymentReceived       TimelineEventType = "payment_received"
	EventCancelled             TimelineEventType = "cancelled"

	// EventNote is the only type callers may append directly; every other
	// type is written by the status change or workflow step that produced it.
	EventNote TimelineEventType = "note"
)

var knownEventTypes = map[TimelineEventType]struct{}{
	EventCreated: {}, EventApproved: {}, EventRejected: {}, EventSharedForBidding: {},
	EventQuoteReceived: {}, EventQuoteSharedWithClient: {}, EventAssigned: {},
	EventScheduleSet: {}, EventStarted: {}, EventCompleted: {}, EventInvoiceSent: {},
	EventPaymentReceived: {}, EventCancelled: {}, EventNote: {},
}

func (t TimelineEventType) Valid() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// Lifecycle reports whether t records a workflow step rather than a free note.
func (t TimelineEventType) Lifecycle() bool {
	return t.Valid() && t != EventNote
}

// EntityKind names the aggregate a timeline belongs to.
type EntityKind string

const (
	EntityWorkOrder EntityKind = "work_order"
	EntityInvoice   EntityKind = "invoice"
)

// EntityRef points at the owner of a timeline.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// TimelineEvent is immutable once appended. Array order is authoritative;
// two events may share a timestamp.
type TimelineEvent struct {
	Type       TimelineEventType `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	UserID     string            `json:"user_id"`
	UserName   string            `json:"user_name"`
	UserRole   Role              `json:"user_role"`
	FromStatus string            `json:"from_status,omitempty"`
	ToStatus   string            `json:"to_status,omitempty"`
	Details    string            `json:"details,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// TimelineEventInput is what callers hand to the timeline log.
type TimelineEventInput struct {
	Type     TimelineEventType
	Actor    Actor
	Details  string
	Metadata map[string]string
}

// NewTimelineEvent stamps an input with its actor snapshot and time.
func NewTimelineEvent(in TimelineEventInput, now time.Time) TimelineEvent {
	return TimelineEvent{
		Type:      in.Type,
		Timestamp: now.UTC(),
		UserID:    in.Actor.ID,
		UserName:  in.Actor.Name,
		UserRole:  in.Actor.Role,
		Details:   in.Details,
		Metadata:  cloneMetadata(in.Metadata),
	}
}

func cloneMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
