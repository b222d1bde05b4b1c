// Package lifecycle is the work order state machine. It is pure: callers load a
// work order, Apply a transition and persist the result with a compare-and-set.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
)

var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError explains why a (from, to) pair or its guard was refused.
type TransitionError struct {
	From   entities.WorkOrderStatus
	To     entities.WorkOrderStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Request carries the actor and the fields a guard may require.
type Request struct {
	Target           entities.WorkOrderStatus
	Actor            entities.Actor
	Reason           string
	Notes            string
	ScheduledFor     *time.Time
	QuoteID          string
	QuoteIDs         []string
	SubcontractorID  string
	InvoiceID        string
	PaymentReference string
	Details          string
	Metadata         map[string]string
}

// CreationSource says how a work order came to exist.
type CreationSource string

const (
	SourceDirect             CreationSource = "direct"
	SourceMaintenanceRequest CreationSource = "maintenance_request"
	SourceRecurring          CreationSource = "recurring_work_order"
)

type edge struct {
	from entities.WorkOrderStatus
	to   entities.WorkOrderStatus
}

type rule struct {
	event   entities.TimelineEventType
	roles   []entities.Role
	onSite  bool // subcontractor actors must be the assigned one
	guard   func(wo entities.WorkOrder, r Request) string
	apply   func(wo *entities.WorkOrder, r Request, now time.Time)
	details func(wo entities.WorkOrder, r Request) string
	meta    func(r Request) map[string]string
}

var (
	adminOnly  = []entities.Role{entities.RoleAdmin}
	fieldRoles = []entities.Role{entities.RoleAdmin, entities.RoleSubcontractor}
	backOffice = []entities.Role{entities.RoleAdmin, entities.RoleSystem}
)

var table = map[edge]rule{
	{entities.WorkOrderPending, entities.WorkOrderApproved}: {
		event:   entities.EventApproved,
		roles:   adminOnly,
		details: fixed("Work order approved"),
	},
	{entities.WorkOrderPending, entities.WorkOrderRejected}: {
		event: entities.EventRejected,
		roles: adminOnly,
		guard: func(_ entities.WorkOrder, r Request) string {
			if strings.TrimSpace(r.Reason) == "" {
				return "rejection reason is required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, _ time.Time) {
			wo.RejectionReason = strings.TrimSpace(r.Reason)
		},
		details: func(_ entities.WorkOrder, r Request) string { return "Work order rejected: " + strings.TrimSpace(r.Reason) },
	},
	{entities.WorkOrderApproved, entities.WorkOrderBidding}: {
		event: entities.EventSharedForBidding,
		roles: adminOnly,
		apply: func(wo *entities.WorkOrder, _ Request, now time.Time) {
			t := now
			wo.BiddingOpenedAt = &t
		},
		details: fixed("Work order shared for bidding"),
	},
	{entities.WorkOrderBidding, entities.WorkOrderQuotesReceived}: {
		event: entities.EventQuoteReceived,
		roles: []entities.Role{entities.RoleAdmin, entities.RoleSubcontractor, entities.RoleSystem},
		guard: func(_ entities.WorkOrder, r Request) string {
			if r.QuoteID == "" {
				return "a submitted quote is required"
			}
			return ""
		},
		details: fixed("First quote received"),
		meta:    func(r Request) map[string]string { return map[string]string{"quoteId": r.QuoteID} },
	},
	{entities.WorkOrderQuotesReceived, entities.WorkOrderQuoteSharedWithClient}: {
		event: entities.EventQuoteSharedWithClient,
		roles: adminOnly,
		guard: func(_ entities.WorkOrder, r Request) string {
			if len(r.QuoteIDs) == 0 {
				return "at least one quote must be shared"
			}
			return ""
		},
		details: func(_ entities.WorkOrder, r Request) string {
			return fmt.Sprintf("%d quote(s) shared with client", len(r.QuoteIDs))
		},
		meta: func(r Request) map[string]string {
			return map[string]string{"quoteIds": strings.Join(r.QuoteIDs, ",")}
		},
	},
	{entities.WorkOrderQuoteSharedWithClient, entities.WorkOrderAssigned}: {
		event: entities.EventAssigned,
		roles: []entities.Role{entities.RoleAdmin, entities.RoleClient},
		guard: func(wo entities.WorkOrder, r Request) string {
			if r.QuoteID == "" || r.SubcontractorID == "" {
				return "an accepted quote and its subcontractor are required"
			}
			if r.Actor.Role == entities.RoleClient && r.Actor.ID != wo.ClientID {
				return "only the owning client may accept a quote"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, _ time.Time) {
			wo.AssignedSubcontractorID = r.SubcontractorID
			wo.AssignedQuoteID = r.QuoteID
		},
		details: func(_ entities.WorkOrder, r Request) string {
			return "Assigned to subcontractor " + r.SubcontractorID
		},
		meta: func(r Request) map[string]string {
			return map[string]string{"quoteId": r.QuoteID, "subcontractorId": r.SubcontractorID}
		},
	},
	{entities.WorkOrderAssigned, entities.WorkOrderScheduled}: {
		event:  entities.EventScheduleSet,
		roles:  fieldRoles,
		onSite: true,
		guard: func(_ entities.WorkOrder, r Request) string {
			if r.ScheduledFor == nil || r.ScheduledFor.IsZero() {
				return "schedule date is required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, _ time.Time) {
			t := r.ScheduledFor.UTC()
			wo.ScheduledFor = &t
		},
		details: func(_ entities.WorkOrder, r Request) string {
			return "Scheduled for " + r.ScheduledFor.UTC().Format(time.RFC3339)
		},
		meta: func(r Request) map[string]string {
			return map[string]string{"scheduledFor": r.ScheduledFor.UTC().Format(time.RFC3339)}
		},
	},
	{entities.WorkOrderScheduled, entities.WorkOrderInProgress}: started,
	{entities.WorkOrderAssigned, entities.WorkOrderInProgress}:  started,
	{entities.WorkOrderInProgress, entities.WorkOrderCompleted}: {
		event:  entities.EventCompleted,
		roles:  fieldRoles,
		onSite: true,
		guard: func(_ entities.WorkOrder, r Request) string {
			if strings.TrimSpace(r.Notes) == "" {
				return "completion notes are required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, now time.Time) {
			t := now
			wo.CompletedAt = &t
			wo.CompletionNotes = strings.TrimSpace(r.Notes)
		},
		details: func(_ entities.WorkOrder, r Request) string { return strings.TrimSpace(r.Notes) },
	},
	{entities.WorkOrderCompleted, entities.WorkOrderInvoiced}: {
		event: entities.EventInvoiceSent,
		roles: backOffice,
		guard: func(_ entities.WorkOrder, r Request) string {
			if r.InvoiceID == "" {
				return "invoice id is required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, _ time.Time) {
			wo.InvoiceID = r.InvoiceID
		},
		details: fixed("Invoice sent to client"),
		meta:    func(r Request) map[string]string { return map[string]string{"invoiceId": r.InvoiceID} },
	},
	{entities.WorkOrderInvoiced, entities.WorkOrderPaid}: {
		event: entities.EventPaymentReceived,
		roles: backOffice,
		guard: func(_ entities.WorkOrder, r Request) string {
			if r.PaymentReference == "" {
				return "payment reference is required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, now time.Time) {
			t := now
			wo.PaidAt = &t
			wo.PaymentReference = r.PaymentReference
		},
		details: fixed("Payment received"),
		meta: func(r Request) map[string]string {
			return map[string]string{"paymentReference": r.PaymentReference}
		},
	},
}

var started = rule{
	event:  entities.EventStarted,
	roles:  fieldRoles,
	onSite: true,
	apply: func(wo *entities.WorkOrder, _ Request, now time.Time) {
		t := now
		wo.StartedAt = &t
	},
	details: fixed("Work started on site"),
}

func fixed(s string) func(entities.WorkOrder, Request) string {
	return func(entities.WorkOrder, Request) string { return s }
}

// Machine applies transitions under a cancellation policy.
type Machine struct {
	policy Policy
}

func New(policy Policy) *Machine {
	return &Machine{policy: policy}
}

// NewDefault uses DefaultPolicy.
func NewDefault() *Machine {
	return New(DefaultPolicy())
}

func (m *Machine) Policy() Policy { return m.policy }

// Allowed reports whether (from, to) is in the transition table, ignoring guards.
func (m *Machine) Allowed(from, to entities.WorkOrderStatus) bool {
	if to == entities.WorkOrderCancelled {
		return m.policy.cancellable(from)
	}
	_, ok := table[edge{from, to}]
	return ok
}

// Targets lists every status reachable from `from` in one step.
func (m *Machine) Targets(from entities.WorkOrderStatus) []entities.WorkOrderStatus {
	var out []entities.WorkOrderStatus
	for _, to := range entities.AllWorkOrderStatuses {
		if m.Allowed(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// Apply validates req against wo and returns the transitioned copy plus the
// event it appended. On error the input is returned untouched.
func (m *Machine) Apply(wo entities.WorkOrder, req Request, now time.Time) (entities.WorkOrder, entities.TimelineEvent, error) {
	from, to := wo.Status, req.Target
	now = now.UTC()

	var r rule
	switch {
	case to == entities.WorkOrderCancelled:
		if !m.policy.cancellable(from) {
			return wo, entities.TimelineEvent{}, &TransitionError{From: from, To: to, Reason: "work order cannot be cancelled from this status"}
		}
		r = m.cancelRule()
	default:
		var ok bool
		r, ok = table[edge{from, to}]
		if !ok {
			return wo, entities.TimelineEvent{}, &TransitionError{From: from, To: to, Reason: "transition not permitted"}
		}
	}

	if len(r.roles) > 0 && !req.Actor.Is(r.roles...) {
		return wo, entities.TimelineEvent{}, &TransitionError{From: from, To: to, Reason: fmt.Sprintf("role %q may not perform this transition", req.Actor.Role)}
	}
	if r.onSite && req.Actor.Role == entities.RoleSubcontractor && req.Actor.ID != wo.AssignedSubcontractorID {
		return wo, entities.TimelineEvent{}, &TransitionError{From: from, To: to, Reason: "only the assigned subcontractor may perform this transition"}
	}
	if r.guard != nil {
		if reason := r.guard(wo, req); reason != "" {
			return wo, entities.TimelineEvent{}, &TransitionError{From: from, To: to, Reason: reason}
		}
	}

	out := wo.Clone()
	out.Status = to
	if r.apply != nil {
		r.apply(&out, req, now)
	}

	details := req.Details
	if details == "" && r.details != nil {
		details = r.details(wo, req)
	}
	meta := mergeMetadata(req.Metadata, nil)
	if r.meta != nil {
		meta = mergeMetadata(meta, r.meta(req))
	}

	ev := entities.NewTimelineEvent(entities.TimelineEventInput{
		Type:     r.event,
		Actor:    req.Actor,
		Details:  details,
		Metadata: meta,
	}, now)
	ev.FromStatus = string(from)
	ev.ToStatus = string(to)

	out.Timeline = append(out.Timeline, ev)
	out.SystemInformation = ProjectSystemInformation(out.Timeline)
	out.UpdatedAt = now
	return out, ev, nil
}

func (m *Machine) cancelRule() rule {
	return rule{
		event: entities.EventCancelled,
		roles: m.policy.CancelRoles,
		guard: func(_ entities.WorkOrder, r Request) string {
			if m.policy.RequireCancelReason && strings.TrimSpace(r.Reason) == "" {
				return "cancellation reason is required"
			}
			return ""
		},
		apply: func(wo *entities.WorkOrder, r Request, _ time.Time) {
			wo.CancellationReason = strings.TrimSpace(r.Reason)
		},
		details: func(_ entities.WorkOrder, r Request) string {
			if s := strings.TrimSpace(r.Reason); s != "" {
				return "Work order cancelled: " + s
			}
			return "Work order cancelled"
		},
	}
}

// InitialStatus is the creation-time status. Recurring children inherit trust
// from their definition and skip pending; a pre-assigned definition also skips
// bidding. This is not a runtime transition.
func InitialStatus(source CreationSource, preassigned bool) entities.WorkOrderStatus {
	if source != SourceRecurring {
		return entities.WorkOrderPending
	}
	if preassigned {
		return entities.WorkOrderAssigned
	}
	return entities.WorkOrderApproved
}

// Initialize stamps a freshly built work order with its initial status and
// the created event.
func Initialize(wo entities.WorkOrder, source CreationSource, actor entities.Actor, details string, metadata map[string]string, now time.Time) entities.WorkOrder {
	now = now.UTC()
	out := wo.Clone()
	preassigned := out.AssignedSubcontractorID != ""
	out.Status = InitialStatus(source, preassigned)

	meta := mergeMetadata(metadata, map[string]string{"source": string(source)})
	if preassigned && out.Status == entities.WorkOrderAssigned {
		meta = mergeMetadata(meta, map[string]string{"subcontractorId": out.AssignedSubcontractorID})
	}
	if details == "" {
		details = "Work order created"
	}
	ev := entities.NewTimelineEvent(entities.TimelineEventInput{
		Type:     entities.EventCreated,
		Actor:    actor,
		Details:  details,
		Metadata: meta,
	}, now)
	ev.ToStatus = string(out.Status)

	out.Timeline = append(out.Timeline, ev)
	out.SystemInformation = ProjectSystemInformation(out.Timeline)
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	return out
}

func mergeMetadata(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
