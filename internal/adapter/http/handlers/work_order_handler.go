package handlers

import (
	"net/http"
	"strings"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WorkOrderHandler exposes work order creation, queries and status transitions.
type WorkOrderHandler struct {
	usecase usecase.IWorkOrderUseCase
}

func NewWorkOrderHandler(uc usecase.IWorkOrderUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{usecase: uc}
}

// Create godoc
// @Summary      Create a work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        payload body request.CreateWorkOrderRequest true "Work order"
// @Success      201 {object} response.WorkOrderResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      403 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}

	wo, err := h.usecase.Create(c.Request.Context(), payload.ToInput(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromWorkOrder(wo))
}

// Get godoc
// @Summary      Get a work order
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order id"
// @Success      200 {object} response.WorkOrderResponse
// @Failure      404 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromWorkOrder(wo))
}

// List godoc
// @Summary      List work orders, optionally by status
// @Tags         work-orders
// @Produce      json
// @Param        status query string false "Status filter"
// @Success      200 {array} response.WorkOrderResponse
// @Security     BearerAuth
// @Router       /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	status := entities.WorkOrderStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if status != "" && !status.Valid() {
		writeAppError(c, errInvalidPayload.WithDetails(request.ErrInvalidStatus))
		return
	}
	list, err := h.usecase.List(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromWorkOrders(list))
}

// Timeline godoc
// @Summary      Work order timeline, oldest first
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order id"
// @Success      200 {array} response.TimelineEventResponse
// @Failure      404 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders/{id}/timeline [get]
func (h *WorkOrderHandler) Timeline(c *gin.Context) {
	events, err := h.usecase.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromTimeline(events))
}

// Transition godoc
// @Summary      Request a status transition
// @Description  Applies one guarded status change and appends exactly one timeline event.
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order id"
// @Param        payload body request.TransitionRequest true "Target status and context"
// @Success      200 {object} response.WorkOrderResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders/{id}/transitions [post]
func (h *WorkOrderHandler) Transition(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	req, err := payload.ToRequest(actor)
	if err != nil {
		writeError(c, err)
		return
	}

	wo, err := h.usecase.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromWorkOrder(wo))
}
