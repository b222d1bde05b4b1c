package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/adapter/http/handlers/mocks"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"go.uber.org/mock/gomock"
)

func TestRecurringWorkOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders", h.Create)

		uc.EXPECT().CreateDefinition(gomock.Any(), gomock.Any(), adminActor).DoAndReturn(
			func(_ context.Context, in usecase.CreateRecurringInput, _ entities.Actor) (entities.RecurringWorkOrder, error) {
				if in.Pattern.Type != entities.RecurrenceWeekly || len(in.Pattern.DaysOfWeek) != 2 || in.StartDate.Day() != 5 {
					t.Fatalf("unexpected input: %+v", in)
				}
				return entities.RecurringWorkOrder{ID: "rwo-1", Status: entities.RecurringActive, RecurrencePattern: in.Pattern}, nil
			})

		body := `{"title":"Clean","client_id":"c1","location_id":"l1","start_date":"2026-01-05",
			"recurrence_pattern":{"type":"weekly","interval":1,"days_of_week":[1,4]}}`
		w := do(r, http.MethodPost, "/v1/recurring-work-orders", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("bad start date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewRecurringWorkOrderHandler(mocks.NewMockIRecurringWorkOrderUseCase(ctrl))
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders", h.Create)

		body := `{"title":"Clean","client_id":"c1","location_id":"l1","start_date":"next monday","recurrence_pattern":{"type":"daily"}}`
		if w := do(r, http.MethodPost, "/v1/recurring-work-orders", body); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid pattern", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders", h.Create)

		uc.EXPECT().CreateDefinition(gomock.Any(), gomock.Any(), adminActor).Return(entities.RecurringWorkOrder{}, usecase.ErrInvalidPattern)

		body := `{"title":"Clean","client_id":"c1","location_id":"l1","start_date":"2026-01-05","recurrence_pattern":{"type":"hourly"}}`
		if w := do(r, http.MethodPost, "/v1/recurring-work-orders", body); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestRecurringWorkOrderHandler_Trigger(t *testing.T) {
	t.Run("single occurrence", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders/trigger", h.Trigger)

		day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
		uc.EXPECT().Trigger(gomock.Any(), "rwo-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, date *time.Time) (usecase.BatchResult, error) {
				if date == nil || !date.Equal(day) {
					t.Fatalf("unexpected date %v", date)
				}
				return usecase.BatchResult{Created: 1, Executions: []entities.RecurringWorkOrderExecution{{ID: "rwo-1#2026-02-02", ScheduledDate: day}}}, nil
			})

		w := do(r, http.MethodPost, "/v1/recurring-work-orders/trigger", `{"recurring_work_order_id":"rwo-1","scheduled_date":"2026-02-02"}`)
		var body response.BatchResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil || body.Created != 1 {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("due occurrences", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders/trigger", h.Trigger)

		uc.EXPECT().Trigger(gomock.Any(), "rwo-1", (*time.Time)(nil)).Return(usecase.BatchResult{Skipped: 2}, nil)

		if w := do(r, http.MethodPost, "/v1/recurring-work-orders/trigger", `{"recurring_work_order_id":"rwo-1"}`); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("inactive definition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/recurring-work-orders/trigger", h.Trigger)

		uc.EXPECT().Trigger(gomock.Any(), "rwo-1", gomock.Any()).Return(usecase.BatchResult{}, usecase.ErrDefinitionInactive)

		w := do(r, http.MethodPost, "/v1/recurring-work-orders/trigger", `{"recurring_work_order_id":"rwo-1"}`)
		if w.Code != http.StatusConflict || decodeError(t, w).Code != "DEFINITION_INACTIVE" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("admin only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewRecurringWorkOrderHandler(mocks.NewMockIRecurringWorkOrderUseCase(ctrl))
		r := newRouter(clientActor)
		r.POST("/v1/recurring-work-orders/trigger", h.Trigger)
		r.POST("/v1/recurring-work-orders/:id/executions/retry", h.RetryPending)

		if w := do(r, http.MethodPost, "/v1/recurring-work-orders/trigger", `{"recurring_work_order_id":"rwo-1"}`); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
		if w := do(r, http.MethodPost, "/v1/recurring-work-orders/rwo-1/executions/retry", ""); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestRecurringWorkOrderHandler_StatusAndQueries(t *testing.T) {
	t.Run("pause", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.PATCH("/v1/recurring-work-orders/:id/status", h.SetStatus)

		uc.EXPECT().SetStatus(gomock.Any(), "rwo-1", entities.RecurringPaused, adminActor).
			Return(entities.RecurringWorkOrder{ID: "rwo-1", Status: entities.RecurringPaused}, nil)

		if w := do(r, http.MethodPatch, "/v1/recurring-work-orders/rwo-1/status", `{"status":"paused"}`); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewRecurringWorkOrderHandler(mocks.NewMockIRecurringWorkOrderUseCase(ctrl))
		r := newRouter(adminActor)
		r.PATCH("/v1/recurring-work-orders/:id/status", h.SetStatus)

		if w := do(r, http.MethodPatch, "/v1/recurring-work-orders/rwo-1/status", `{"status":"deleted"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("list defaults to active and accepts all", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.GET("/v1/recurring-work-orders", h.List)

		gomock.InOrder(
			uc.EXPECT().ListDefinitions(gomock.Any(), entities.RecurringActive).Return([]entities.RecurringWorkOrder{{ID: "a"}}, nil),
			uc.EXPECT().ListDefinitions(gomock.Any(), entities.RecurringStatus("")).Return(nil, nil),
		)

		if w := do(r, http.MethodGet, "/v1/recurring-work-orders", ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w := do(r, http.MethodGet, "/v1/recurring-work-orders?status=all", ""); w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("executions and retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRecurringWorkOrderUseCase(ctrl)
		h := NewRecurringWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.GET("/v1/recurring-work-orders/:id", h.Get)
		r.GET("/v1/recurring-work-orders/:id/executions", h.ListExecutions)
		r.POST("/v1/recurring-work-orders/:id/executions/retry", h.RetryPending)

		uc.EXPECT().GetDefinition(gomock.Any(), "missing").Return(entities.RecurringWorkOrder{}, usecase.ErrDefinitionNotFound)
		uc.EXPECT().ListExecutions(gomock.Any(), "rwo-1").Return([]entities.RecurringWorkOrderExecution{{ID: "rwo-1#2026-01-01"}}, nil)
		uc.EXPECT().MaterializeAllPending(gomock.Any(), "rwo-1").Return(usecase.BatchResult{Created: 1, Failed: 1,
			Errors: []usecase.ExecutionError{{ExecutionID: "rwo-1#2026-01-02", Error: "store down"}}}, nil)

		if w := do(r, http.MethodGet, "/v1/recurring-work-orders/missing", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if w := do(r, http.MethodGet, "/v1/recurring-work-orders/rwo-1/executions", ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		w := do(r, http.MethodPost, "/v1/recurring-work-orders/rwo-1/executions/retry", "")
		var body response.BatchResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil || body.Failed != 1 || body.Errors[0].Error != "store down" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})
}
