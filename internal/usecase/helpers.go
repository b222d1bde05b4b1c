package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCASAttempts bounds optimistic-concurrency retries on a single document.
const maxCASAttempts = 3

const notifyTimeout = 2 * time.Second

// idNamespace seeds deterministic ids (child work orders, invoices).
var idNamespace = uuid.MustParse("6f1c8f5e-3b5a-4f43-9d7e-2a8c1e0b9d41")

func deterministicID(parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(strings.Join(parts, "|"))).String()
}

func stampSuffix(now time.Time) string {
	return fmt.Sprintf("%08d", now.UnixMilli()%100_000_000)
}

func shortHex() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}

func newWorkOrderNumber(now time.Time) string {
	return fmt.Sprintf("WO-%s-%s", stampSuffix(now), shortHex())
}

func newRecurringWorkOrderNumber(now time.Time, executionNumber int) string {
	return fmt.Sprintf("WO-%s-R%d", stampSuffix(now), executionNumber)
}

func newDefinitionNumber(now time.Time) string {
	return fmt.Sprintf("RWO-%s-%s", stampSuffix(now), shortHex())
}

func newInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", stampSuffix(now), shortHex())
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// emitter delivers notifications best effort: failures are logged, never returned.
type emitter struct {
	notifier interfaces.INotifier
	log      *zap.Logger
}

func (e emitter) emit(ctx context.Context, n entities.Notification) {
	if e.notifier == nil {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := e.notifier.Emit(ctx, n); err != nil {
		e.log.Warn("notification failed",
			zap.String("type", string(n.Type)),
			zap.String("entity_id", n.EntityID),
			zap.Error(err),
		)
	}
}

func eventNotification(kind entities.EntityKind, id, status string, ev entities.TimelineEvent) entities.Notification {
	return entities.Notification{
		Type:       ev.Type,
		EntityKind: kind,
		EntityID:   id,
		Status:     status,
		ActorID:    ev.UserID,
		Data:       ev.Metadata,
		OccurredAt: ev.Timestamp,
	}
}
