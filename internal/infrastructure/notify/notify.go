// Package notify delivers domain notifications to external consumers.
// Every notifier is best effort: callers log a returned error and move on.
package notify

import (
	"context"
	"errors"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	_ interfaces.INotifier = (*Multi)(nil)
	_ interfaces.INotifier = (*Log)(nil)
	_ interfaces.INotifier = (*RedisPublisher)(nil)
	_ interfaces.INotifier = (*Hub)(nil)
)

// Multi fans a notification out to every sink and joins their errors.
type Multi struct {
	sinks []interfaces.INotifier
}

func NewMulti(sinks ...interfaces.INotifier) *Multi {
	out := make([]interfaces.INotifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Multi{sinks: out}
}

func (m *Multi) Emit(ctx context.Context, n entities.Notification) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes notifications to the service log. Used when no broker is configured.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

func (l *Log) Emit(_ context.Context, n entities.Notification) error {
	l.log.Info("notification",
		zap.String("type", string(n.Type)),
		zap.String("entity_kind", string(n.EntityKind)),
		zap.String("entity_id", n.EntityID),
		zap.String("status", n.Status),
		zap.String("actor_id", n.ActorID),
		zap.Time("occurred_at", n.OccurredAt),
	)
	return nil
}
