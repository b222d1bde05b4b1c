// Package app wires configuration, storage, notifiers and use cases into the
// object graph shared by the API server and the scheduler CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"facility_workorders/internal/adapter/persistence/memory"
	"facility_workorders/internal/adapter/persistence/postgres"
	"facility_workorders/internal/adapter/persistence/repository"
	"facility_workorders/internal/config"
	"facility_workorders/internal/domain/lifecycle"
	"facility_workorders/internal/infrastructure/database"
	"facility_workorders/internal/infrastructure/notify"
	"facility_workorders/internal/infrastructure/payments"
	"facility_workorders/internal/usecase"
	"facility_workorders/internal/usecase/interfaces"

	"go.uber.org/zap"
)

type repositories struct {
	workOrders interfaces.IWorkOrderRepository
	quotes     interfaces.IQuoteRepository
	defs       interfaces.IRecurringWorkOrderRepository
	execs      interfaces.IExecutionRepository
	invoices   interfaces.IInvoiceRepository
}

type App struct {
	Config *config.Config
	Log    *zap.Logger

	WorkOrders usecase.IWorkOrderUseCase
	Quotes     usecase.IQuoteUseCase
	Recurring  usecase.IRecurringWorkOrderUseCase
	Invoices   usecase.IInvoiceUseCase
	Timeline   usecase.ITimelineUseCase

	closers []func() error
}

// New builds the application for cfg.Storage.Driver. Extra sinks receive every
// emitted notification next to the log and the optional Redis publisher.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, sinks ...interfaces.INotifier) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	repos, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	policy, err := lifecycle.LoadPolicyFile(cfg.Workflow.PolicyFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load workflow policy: %w", err)
	}

	all := []interfaces.INotifier{notify.NewLog(log)}
	if cfg.Redis.Enabled() {
		rdb := notify.NewRedisClient(cfg.Redis)
		a.closers = append(a.closers, rdb.Close)
		all = append(all, notify.NewRedisPublisher(rdb, cfg.Redis.Channel))
		log.Info("publishing events to redis", zap.String("addr", cfg.Redis.Addr()), zap.String("channel", cfg.Redis.Channel))
	}
	notifier := notify.NewMulti(append(all, sinks...)...)

	var gateway interfaces.IPaymentGateway
	if mp, err := payments.NewMercadoPagoGateway(cfg.MercadoPago, log); err != nil {
		log.Warn("payment gateway disabled, invoices cannot be issued", zap.Error(err))
	} else {
		gateway = mp
	}

	timeline := usecase.NewTimelineUseCase(repos.workOrders, repos.invoices, log)
	a.Timeline = timeline
	a.WorkOrders = usecase.NewWorkOrderUseCase(repos.workOrders, lifecycle.New(policy), notifier, log)
	a.Quotes = usecase.NewQuoteUseCase(repos.quotes, a.WorkOrders, timeline, notifier, cfg.Quotes.Markup(), log)
	a.Recurring = usecase.NewRecurringWorkOrderUseCase(repos.defs, repos.execs, repos.workOrders, notifier, cfg.Scheduler.CatchUpLimit, log)
	a.Invoices = usecase.NewInvoiceUseCase(repos.invoices, repos.quotes, a.WorkOrders, gateway, notifier, cfg.MercadoPago.Currency, log)

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repositories, error) {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		a.Log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			workOrders: store.WorkOrders(),
			quotes:     store.Quotes(),
			defs:       store.Definitions(),
			execs:      store.Executions(),
			invoices:   store.Invoices(),
		}, nil

	case config.DriverDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return repositories{}, fmt.Errorf("connect dynamodb: %w", err)
		}
		t := cfg.DynamoDB.Tables
		if cfg.DynamoDB.AutoCreate {
			if err := database.EnsureTables(ctx, ddb, database.TableSpecs(t), a.Log); err != nil {
				return repositories{}, fmt.Errorf("ensure tables: %w", err)
			}
		}
		return repositories{
			workOrders: repository.NewWorkOrderDynamoRepository(ddb, t.WorkOrders),
			quotes:     repository.NewQuoteDynamoRepository(ddb, t.Quotes),
			defs:       repository.NewRecurringWorkOrderDynamoRepository(ddb, t.Recurring),
			execs:      repository.NewExecutionDynamoRepository(ddb, t.Executions),
			invoices:   repository.NewInvoiceDynamoRepository(ddb, t.Invoices),
		}, nil

	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.Postgres, cfg.Log.Level)
		if err != nil {
			return repositories{}, fmt.Errorf("connect postgres: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.AutoMigrate(db); err != nil {
				return repositories{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return repositories{
			workOrders: postgres.NewWorkOrderRepository(db),
			quotes:     postgres.NewQuoteRepository(db),
			defs:       postgres.NewRecurringWorkOrderRepository(db),
			execs:      postgres.NewExecutionRepository(db),
			invoices:   postgres.NewInvoiceRepository(db),
		}, nil
	}
	return repositories{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
