package handlers

import (
	"net/http"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"

	"github.com/gin-gonic/gin"
)

// TimelineHandler appends notes and reads invoice timelines.
type TimelineHandler struct {
	usecase usecase.ITimelineUseCase
}

func NewTimelineHandler(uc usecase.ITimelineUseCase) *TimelineHandler {
	return &TimelineHandler{usecase: uc}
}

// AppendToWorkOrder godoc
// @Summary      Append a note to a work order timeline
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order id"
// @Param        payload body request.TimelineEventRequest true "Event"
// @Success      201 {object} response.TimelineEventResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/timeline [post]
func (h *TimelineHandler) AppendToWorkOrder(c *gin.Context) {
	h.append(c, entities.EntityWorkOrder)
}

// @Summary      Append a note to an invoice timeline
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice id"
// @Param        payload body request.TimelineEventRequest true "Event"
// @Success      201 {object} response.TimelineEventResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/timeline [post]
func (h *TimelineHandler) AppendToInvoice(c *gin.Context) {
	h.append(c, entities.EntityInvoice)
}

func (h *TimelineHandler) append(c *gin.Context, kind entities.EntityKind) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.TimelineEventRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	ref := entities.EntityRef{Kind: kind, ID: c.Param("id")}
	ev, err := h.usecase.Append(c.Request.Context(), ref, payload.ToInput(actor))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromTimeline([]entities.TimelineEvent{ev})[0])
}

// @Summary      Invoice timeline, oldest first
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200 {array} response.TimelineEventResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/timeline [get]
func (h *TimelineHandler) InvoiceTimeline(c *gin.Context) {
	events, err := h.usecase.List(c.Request.Context(), entities.EntityRef{Kind: entities.EntityInvoice, ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromTimeline(events))
}
