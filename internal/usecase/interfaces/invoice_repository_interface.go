package interfaces

import (
	"context"

	"facility_workorders/internal/domain/entities"
)

// IInvoiceRepository abstracts persistence for Invoice. Update follows the
// same version contract as IWorkOrderRepository.
type IInvoiceRepository interface {
	Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	GetByWorkOrderID(ctx context.Context, workOrderID string) (entities.Invoice, error)
	Update(ctx context.Context, inv entities.Invoice, expectedVersion int64) (entities.Invoice, error)
}
