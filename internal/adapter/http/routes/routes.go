package routes

import (
	"net/http"

	_ "facility_workorders/docs"
	"facility_workorders/internal/adapter/http/handlers"
	"facility_workorders/internal/adapter/http/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const (
	PathV1     = "/v1"
	PathEvents = "/events/ws"
)

type Handlers struct {
	WorkOrders *handlers.WorkOrderHandler
	Quotes     *handlers.QuoteHandler
	Recurring  *handlers.RecurringWorkOrderHandler
	Invoices   *handlers.InvoiceHandler
	Timeline   *handlers.TimelineHandler
}

// Options carries the pieces of the router that depend on deployment.
// Auth guards every business route; Events serves the websocket feed and may be nil.
type Options struct {
	Auth   gin.HandlerFunc
	Events gin.HandlerFunc
}

// NewRouter builds the gin engine serving the /v1 API.
func NewRouter(log *zap.Logger, h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, log)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group(PathV1)
	addPingRoutes(v1)
	addPaymentRoutes(v1, h.Invoices)

	secured := v1.Group("")
	secured.Use(opts.Auth)
	if opts.Events != nil {
		secured.GET(PathEvents, opts.Events)
	}
	addWorkOrderRoutes(secured, h.WorkOrders, h.Timeline)
	addQuoteRoutes(secured, h.Quotes)
	addRecurringRoutes(secured, h.Recurring)
	addInvoiceRoutes(secured, h.Invoices, h.Timeline)

	return router
}

func setMiddlewares(router *gin.Engine, log *zap.Logger) {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{PathV1 + PathEvents, "/swagger"})))
}

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
