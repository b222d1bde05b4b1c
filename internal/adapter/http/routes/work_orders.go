package routes

import (
	"facility_workorders/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathWorkOrders = "/work-orders"
	PathQuotes     = "/quotes"
)

func addWorkOrderRoutes(rg *gin.RouterGroup, workOrders *handlers.WorkOrderHandler, timeline *handlers.TimelineHandler) {
	wo := rg.Group(PathWorkOrders)
	{
		wo.POST("", workOrders.Create)
		wo.GET("", workOrders.List)
		wo.GET("/:id", workOrders.Get)
		wo.GET("/:id/timeline", workOrders.Timeline)
		wo.POST("/:id/timeline", timeline.AppendToWorkOrder)
		wo.POST("/:id/transitions", workOrders.Transition)
	}
}

func addQuoteRoutes(rg *gin.RouterGroup, quotes *handlers.QuoteHandler) {
	wo := rg.Group(PathWorkOrders)
	{
		wo.POST("/:id/quotes", quotes.Submit)
		wo.GET("/:id/quotes", quotes.ListForWorkOrder)
		wo.POST("/:id/quotes/share", quotes.Share)
	}

	q := rg.Group(PathQuotes)
	{
		q.GET("/:id", quotes.Get)
		q.PUT("/:id", quotes.Revise)
		q.GET("/:id/recommendation", quotes.Recommend)
		q.POST("/:id/accept", quotes.Accept)
	}
}
