package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/adapter/http/handlers/mocks"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/usecase"

	"go.uber.org/mock/gomock"
)

func TestWorkOrderHandler_Create(t *testing.T) {
	t.Run("anonymous request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewWorkOrderHandler(mocks.NewMockIWorkOrderUseCase(ctrl))
		r := newRouter(entities.Actor{})
		r.POST("/v1/work-orders", h.Create)

		w := do(r, http.MethodPost, "/v1/work-orders", `{"title":"x","location_id":"l"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewWorkOrderHandler(mocks.NewMockIWorkOrderUseCase(ctrl))
		r := newRouter(adminActor)
		r.POST("/v1/work-orders", h.Create)

		w := do(r, http.MethodPost, "/v1/work-orders", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(clientActor)
		r.POST("/v1/work-orders", h.Create)

		uc.EXPECT().Create(gomock.Any(), gomock.Any(), clientActor).DoAndReturn(
			func(_ context.Context, in usecase.CreateWorkOrderInput, _ entities.Actor) (entities.WorkOrder, error) {
				if in.Title != "Leak" || in.Priority != entities.PriorityHigh || !in.EstimateBudget.IsPositive() {
					t.Fatalf("unexpected input: %+v", in)
				}
				return entities.WorkOrder{ID: "wo-1", Title: in.Title, Status: entities.WorkOrderPending}, nil
			})

		w := do(r, http.MethodPost, "/v1/work-orders", `{"title":" Leak ","priority":"HIGH","location_id":"l1","estimate_budget":"120.50"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var body response.WorkOrderResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.ID != "wo-1" || body.Status != "pending" {
			t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
		}
	})
}

func TestWorkOrderHandler_Transition(t *testing.T) {
	t.Run("passes actor and target", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.POST("/v1/work-orders/:id/transitions", h.Transition)

		uc.EXPECT().Transition(gomock.Any(), "wo-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, req lifecycle.Request) (entities.WorkOrder, error) {
				if req.Target != entities.WorkOrderCancelled || req.Actor != adminActor || req.Reason != "duplicate" {
					t.Fatalf("unexpected request: %+v", req)
				}
				return entities.WorkOrder{ID: "wo-1", Status: entities.WorkOrderCancelled}, nil
			})

		w := do(r, http.MethodPost, "/v1/work-orders/wo-1/transitions", `{"status":"cancelled","reason":"duplicate"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("refused transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(subActor)
		r.POST("/v1/work-orders/:id/transitions", h.Transition)

		uc.EXPECT().Transition(gomock.Any(), "wo-1", gomock.Any()).Return(entities.WorkOrder{},
			&usecase.TransitionError{From: entities.WorkOrderPending, To: entities.WorkOrderCompleted, Reason: "not reachable"})

		w := do(r, http.MethodPost, "/v1/work-orders/wo-1/transitions", `{"status":"completed"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Code != "INVALID_TRANSITION" || body.Details == "" {
			t.Fatalf("unexpected error body: %+v", body)
		}
	})

	t.Run("unknown status never reaches the use case", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewWorkOrderHandler(mocks.NewMockIWorkOrderUseCase(ctrl))
		r := newRouter(adminActor)
		r.POST("/v1/work-orders/:id/transitions", h.Transition)

		w := do(r, http.MethodPost, "/v1/work-orders/wo-1/transitions", `{"status":"archived"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestWorkOrderHandler_Queries(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.GET("/v1/work-orders/:id", h.Get)

		uc.EXPECT().GetByID(gomock.Any(), "nope").Return(entities.WorkOrder{}, usecase.ErrWorkOrderNotFound)

		if w := do(r, http.MethodGet, "/v1/work-orders/nope", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("list by status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.GET("/v1/work-orders", h.List)

		uc.EXPECT().List(gomock.Any(), entities.WorkOrderBidding).Return([]entities.WorkOrder{{ID: "a"}, {ID: "b"}}, nil)

		w := do(r, http.MethodGet, "/v1/work-orders?status=bidding", "")
		var body []response.WorkOrderResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil || len(body) != 2 {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		h := NewWorkOrderHandler(mocks.NewMockIWorkOrderUseCase(ctrl))
		r := newRouter(adminActor)
		r.GET("/v1/work-orders", h.List)

		if w := do(r, http.MethodGet, "/v1/work-orders?status=done", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("timeline", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)
		r := newRouter(adminActor)
		r.GET("/v1/work-orders/:id/timeline", h.Timeline)

		uc.EXPECT().Timeline(gomock.Any(), "wo-1").Return([]entities.TimelineEvent{{Type: entities.EventCreated}, {Type: entities.EventApproved}}, nil)

		w := do(r, http.MethodGet, "/v1/work-orders/wo-1/timeline", "")
		var body []response.TimelineEventResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil || len(body) != 2 || body[1].Type != "approved" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})
}
