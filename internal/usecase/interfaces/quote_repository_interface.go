package interfaces

import (
	"context"
	"time"

	"facility_workorders/internal/domain/entities"
)

// IQuoteRepository abstracts persistence for the bid ledger.
//
// The store must be able to:
//   - refuse a second non-terminal quote per (work order, subcontractor) with ErrAlreadyExists
//   - update a quote only while it is non-terminal (ErrConditionFailed otherwise)
//   - decide a work order's quotes in one atomic write: the chosen quote becomes
//     accepted and every other non-terminal sibling rejected
type IQuoteRepository interface {
	Create(ctx context.Context, q entities.Quote) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	ListByWorkOrderID(ctx context.Context, workOrderID string) ([]entities.Quote, error)
	ListAll(ctx context.Context) ([]entities.Quote, error)
	Update(ctx context.Context, q entities.Quote) (entities.Quote, error)
	Decide(ctx context.Context, workOrderID, acceptedQuoteID, decidedBy string, at time.Time) ([]entities.Quote, error)
}
