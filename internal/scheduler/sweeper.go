// Package scheduler drives recurring materialization outside the HTTP API.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/infrastructure/sharding"
	"facility_workorders/internal/usecase"

	"go.uber.org/zap"
)

// Report totals one sweep over the active definitions.
type Report struct {
	Definitions int `json:"definitions"`
	Owned       int `json:"owned"`
	usecase.BatchResult
}

type Sweeper struct {
	recurring usecase.IRecurringWorkOrderUseCase
	ring      *sharding.Ring
	log       *zap.Logger
	now       func() time.Time
}

func NewSweeper(recurring usecase.IRecurringWorkOrderUseCase, ring *sharding.Ring, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	if ring == nil {
		ring = sharding.NewRing(nil, "")
	}
	return &Sweeper{recurring: recurring, ring: ring, log: log.Named("sweeper"), now: time.Now}
}

// Sweep materializes everything due for the active definitions this replica owns.
// A failing definition does not stop the others; their errors are joined.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	defs, err := s.recurring.ListDefinitions(ctx, entities.RecurringActive)
	if err != nil {
		return Report{}, fmt.Errorf("list active definitions: %w", err)
	}

	now := s.now().UTC()
	rep := Report{Definitions: len(defs)}
	var errs []error
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !s.ring.Owns(def.ID) {
			continue
		}
		rep.Owned++

		res, err := s.recurring.MaterializeDue(ctx, def.ID, now)
		if errors.Is(err, usecase.ErrDefinitionInactive) {
			s.log.Info("definition deactivated during sweep", zap.String("recurring_work_order_id", def.ID))
			continue
		}
		if err != nil {
			s.log.Error("materialize due failed", zap.String("recurring_work_order_id", def.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", def.ID, err))
			continue
		}
		rep.Merge(res)
	}

	s.log.Info("sweep finished",
		zap.Int("definitions", rep.Definitions),
		zap.Int("owned", rep.Owned),
		zap.Int("created", rep.Created),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
	)
	return rep, errors.Join(errs...)
}

// Serve sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Serve(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("sweep completed with errors", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
