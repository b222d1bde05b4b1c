package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"facility_workorders/internal/adapter/http/handlers"
	"facility_workorders/internal/adapter/http/middleware"
	"facility_workorders/internal/adapter/http/routes"
	"facility_workorders/internal/app"
	"facility_workorders/internal/config"
	"facility_workorders/internal/infrastructure/logging"
	"facility_workorders/internal/infrastructure/notify"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// @title           Facility Work Orders API
// @version         1.0
// @description     Facility maintenance work orders: lifecycle, subcontractor quotes, recurring schedules and invoices.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting facility work orders API",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage", cfg.Storage.Driver),
	)
	if cfg.JWT.Secret == "" {
		logger.Warn("jwt.secret is empty, every bearer token will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(logger)
	go hub.Run(ctx)

	a, err := app.New(ctx, cfg, logger, hub)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}
	defer a.Close()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.NewRouter(logger, routes.Handlers{
		WorkOrders: handlers.NewWorkOrderHandler(a.WorkOrders),
		Quotes:     handlers.NewQuoteHandler(a.Quotes),
		Recurring:  handlers.NewRecurringWorkOrderHandler(a.Recurring),
		Invoices:   handlers.NewInvoiceHandler(a.Invoices, logger),
		Timeline:   handlers.NewTimelineHandler(a.Timeline),
	}, routes.Options{
		Auth:   middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer),
		Events: hub.ServeWS,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
