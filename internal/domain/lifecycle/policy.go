package lifecycle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"facility_workorders/internal/domain/entities"

	"gopkg.in/yaml.v3"
)

// Policy holds the configurable parts of the state machine.
//
// Example file:
//
//	cancellable_from: [pending, approved, bidding, quotes_received]
//	cancel_roles: [admin]
//	require_cancel_reason: true
type Policy struct {
	CancellableFrom     []entities.WorkOrderStatus `yaml:"cancellable_from"`
	CancelRoles         []entities.Role            `yaml:"cancel_roles"`
	RequireCancelReason bool                       `yaml:"require_cancel_reason"`
}

// DefaultPolicy allows an admin to cancel anything that has not been completed.
func DefaultPolicy() Policy {
	return Policy{
		CancellableFrom: []entities.WorkOrderStatus{
			entities.WorkOrderPending,
			entities.WorkOrderApproved,
			entities.WorkOrderBidding,
			entities.WorkOrderQuotesReceived,
			entities.WorkOrderQuoteSharedWithClient,
			entities.WorkOrderAssigned,
			entities.WorkOrderScheduled,
			entities.WorkOrderInProgress,
		},
		CancelRoles: []entities.Role{entities.RoleAdmin},
	}
}

func (p Policy) cancellable(from entities.WorkOrderStatus) bool {
	if from.Terminal() {
		return false
	}
	for _, s := range p.CancellableFrom {
		if s == from {
			return true
		}
	}
	return false
}

// Validate rejects unknown statuses and roles, and terminal cancel sources.
func (p Policy) Validate() error {
	for _, s := range p.CancellableFrom {
		if !s.Valid() {
			return fmt.Errorf("lifecycle: unknown status %q in cancellable_from", s)
		}
		if s.Terminal() {
			return fmt.Errorf("lifecycle: terminal status %q cannot be cancellable", s)
		}
	}
	if len(p.CancelRoles) == 0 {
		return fmt.Errorf("lifecycle: cancel_roles must not be empty")
	}
	for _, r := range p.CancelRoles {
		if !r.Valid() {
			return fmt.Errorf("lifecycle: unknown role %q in cancel_roles", r)
		}
	}
	return nil
}

// ParsePolicyYAML decodes a policy document. Omitted keys keep their defaults.
func ParsePolicyYAML(data []byte) (Policy, error) {
	p := DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, fmt.Errorf("lifecycle: parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicyFile reads a policy from disk. An empty path yields DefaultPolicy.
func LoadPolicyFile(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("lifecycle: read policy: %w", err)
	}
	return ParsePolicyYAML(data)
}
