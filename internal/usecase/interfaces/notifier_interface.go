package interfaces

import (
	"context"

	"facility_workorders/internal/domain/entities"
)

// INotifier is fire-and-forget. Callers log and swallow its errors.
type INotifier interface {
	Emit(ctx context.Context, n entities.Notification) error
}
