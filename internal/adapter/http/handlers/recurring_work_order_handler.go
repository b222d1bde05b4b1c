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

type RecurringWorkOrderHandler struct {
	usecase usecase.IRecurringWorkOrderUseCase
}

func NewRecurringWorkOrderHandler(uc usecase.IRecurringWorkOrderUseCase) *RecurringWorkOrderHandler {
	return &RecurringWorkOrderHandler{usecase: uc}
}

// Create godoc
// @Summary      Create a recurring work order definition
// @Tags         recurring-work-orders
// @Accept       json
// @Produce      json
// @Param        payload body request.CreateRecurringWorkOrderRequest true "Definition"
// @Success      201 {object} response.RecurringWorkOrderResponse
// @Failure      400 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /recurring-work-orders [post]
func (h *RecurringWorkOrderHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.CreateRecurringWorkOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	in, err := payload.ToInput()
	if err != nil {
		writeError(c, err)
		return
	}
	def, err := h.usecase.CreateDefinition(c.Request.Context(), in, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromRecurringWorkOrder(def))
}

// @Summary      Get a recurring work order definition
// @Tags         recurring-work-orders
// @Produce      json
// @Param        id path string true "Definition id"
// @Success      200 {object} response.RecurringWorkOrderResponse
// @Security     BearerAuth
// @Router       /recurring-work-orders/{id} [get]
func (h *RecurringWorkOrderHandler) Get(c *gin.Context) {
	def, err := h.usecase.GetDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRecurringWorkOrder(def))
}

// @Summary      List definitions (default: active)
// @Tags         recurring-work-orders
// @Produce      json
// @Param        status query string false "active, paused, cancelled or all"
// @Success      200 {array} response.RecurringWorkOrderResponse
// @Security     BearerAuth
// @Router       /recurring-work-orders [get]
func (h *RecurringWorkOrderHandler) List(c *gin.Context) {
	var status entities.RecurringStatus
	switch raw := strings.TrimSpace(c.DefaultQuery("status", string(entities.RecurringActive))); raw {
	case "all":
	default:
		s, err := request.RecurringStatusRequest{Status: raw}.ResolveStatus()
		if err != nil {
			writeError(c, err)
			return
		}
		status = s
	}
	list, err := h.usecase.ListDefinitions(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]response.RecurringWorkOrderResponse, 0, len(list))
	for _, d := range list {
		out = append(out, response.FromRecurringWorkOrder(d))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Pause, resume or cancel a definition
// @Tags         recurring-work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Definition id"
// @Param        payload body request.RecurringStatusRequest true "New status"
// @Success      200 {object} response.RecurringWorkOrderResponse
// @Security     BearerAuth
// @Router       /recurring-work-orders/{id}/status [patch]
func (h *RecurringWorkOrderHandler) SetStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.RecurringStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	status, err := payload.ResolveStatus()
	if err != nil {
		writeError(c, err)
		return
	}
	def, err := h.usecase.SetStatus(c.Request.Context(), c.Param("id"), status, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRecurringWorkOrder(def))
}

// @Summary      List executions of a definition
// @Tags         recurring-work-orders
// @Produce      json
// @Param        id path string true "Definition id"
// @Success      200 {array} response.ExecutionResponse
// @Security     BearerAuth
// @Router       /recurring-work-orders/{id}/executions [get]
func (h *RecurringWorkOrderHandler) ListExecutions(c *gin.Context) {
	list, err := h.usecase.ListExecutions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromExecutions(list))
}

// Trigger godoc
// @Summary      Materialize occurrences now
// @Description  With scheduled_date, materializes that single occurrence; otherwise every occurrence due up to now.
// @Tags         recurring-work-orders
// @Accept       json
// @Produce      json
// @Param        payload body request.TriggerRequest true "Trigger"
// @Success      200 {object} response.BatchResponse
// @Failure      409 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /recurring-work-orders/trigger [post]
func (h *RecurringWorkOrderHandler) Trigger(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.Is(entities.RoleAdmin) {
		writeError(c, usecase.ErrForbidden)
		return
	}
	var payload request.TriggerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	date, err := payload.ResolveDate()
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.usecase.Trigger(c.Request.Context(), strings.TrimSpace(payload.RecurringWorkOrderID), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBatchResult(res))
}

// @Summary      Retry executions that have no work order yet
// @Tags         recurring-work-orders
// @Produce      json
// @Param        id path string true "Definition id"
// @Success      200 {object} response.BatchResponse
// @Security     BearerAuth
// @Router       /recurring-work-orders/{id}/executions/retry [post]
func (h *RecurringWorkOrderHandler) RetryPending(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.Is(entities.RoleAdmin) {
		writeError(c, usecase.ErrForbidden)
		return
	}
	res, err := h.usecase.MaterializeAllPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBatchResult(res))
}
