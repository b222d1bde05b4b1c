package entities

import "time"

// Notification is what the core hands to the emitter after a state change.
type Notification struct {
	Type       TimelineEventType `json:"type"`
	EntityKind EntityKind        `json:"entity_kind"`
	EntityID   string            `json:"entity_id"`
	Status     string            `json:"status,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
