package app

import (
	"context"
	"testing"

	"facility_workorders/internal/config"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage:     config.StorageConfig{Driver: config.DriverMemory},
		MercadoPago: config.MercadoPagoConfig{Mock: "true"},
		Quotes:      config.QuotesConfig{DefaultMarkup: "10"},
		Scheduler:   config.SchedulerConfig{CatchUpLimit: 5},
	}
}

func TestNew(t *testing.T) {
	t.Run("memory storage wires every use case", func(t *testing.T) {
		a, err := New(context.Background(), memoryConfig(), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		defer a.Close()

		client := entities.Actor{ID: "client-1", Name: "Caio", Role: entities.RoleClient}
		wo, err := a.WorkOrders.Create(context.Background(), usecase.CreateWorkOrderInput{
			Title:          "Broken door",
			LocationID:     "loc-1",
			EstimateBudget: decimal.NewFromInt(300),
		}, client)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		events, err := a.Timeline.List(context.Background(), entities.EntityRef{Kind: entities.EntityWorkOrder, ID: wo.ID})
		if err != nil || len(events) != 1 || events[0].Type != entities.EventCreated {
			t.Fatalf("unexpected timeline %+v (%v)", events, err)
		}
		defs, err := a.Recurring.ListDefinitions(context.Background(), entities.RecurringActive)
		if err != nil || len(defs) != 0 {
			t.Fatalf("expected no definitions, got %d (%v)", len(defs), err)
		}
	})

	t.Run("missing policy file", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Workflow.PolicyFile = "does-not-exist.yaml"
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Storage.Driver = "sqlite"
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error")
		}
	})
}
