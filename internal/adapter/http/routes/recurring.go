package routes

import (
	"facility_workorders/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const PathRecurringWorkOrders = "/recurring-work-orders"

func addRecurringRoutes(rg *gin.RouterGroup, h *handlers.RecurringWorkOrderHandler) {
	r := rg.Group(PathRecurringWorkOrders)
	{
		r.POST("", h.Create)
		r.GET("", h.List)
		r.POST("/trigger", h.Trigger)
		r.GET("/:id", h.Get)
		r.PATCH("/:id/status", h.SetStatus)
		r.GET("/:id/executions", h.ListExecutions)
		r.POST("/:id/executions/retry", h.RetryPending)
	}
}
