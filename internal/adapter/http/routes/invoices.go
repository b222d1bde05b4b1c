package routes

import (
	"facility_workorders/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathInvoices = "/invoices"
	PathPayments = "/payments"
)

func addInvoiceRoutes(rg *gin.RouterGroup, invoices *handlers.InvoiceHandler, timeline *handlers.TimelineHandler) {
	rg.POST(PathWorkOrders+"/:id/invoice", invoices.Issue)

	inv := rg.Group(PathInvoices)
	{
		inv.GET("/:id", invoices.Get)
		inv.POST("/:id/payments", invoices.RecordPayment)
		inv.GET("/:id/timeline", timeline.InvoiceTimeline)
		inv.POST("/:id/timeline", timeline.AppendToInvoice)
	}
}

// addPaymentRoutes registers the provider callback, which carries no bearer token.
func addPaymentRoutes(rg *gin.RouterGroup, invoices *handlers.InvoiceHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/webhook", invoices.PaymentWebhook)
	}
}
