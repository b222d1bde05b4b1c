package interfaces

import (
	"context"

	"facility_workorders/internal/domain/entities"
)

// IWorkOrderRepository abstracts the document store for WorkOrder.
//
// Contract:
//   - GetByID returns an empty WorkOrder (ID == "") when missing
//   - Create fails with ErrAlreadyExists when the id is taken
//   - Update replaces the document only when the stored version equals
//     expectedVersion, stores expectedVersion+1 and returns the stored copy;
//     otherwise it fails with ErrVersionConflict
type IWorkOrderRepository interface {
	Create(ctx context.Context, wo entities.WorkOrder) (entities.WorkOrder, error)
	GetByID(ctx context.Context, id string) (entities.WorkOrder, error)
	ListByStatus(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error)
	Update(ctx context.Context, wo entities.WorkOrder, expectedVersion int64) (entities.WorkOrder, error)
}
