package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func quoteRows(t *testing.T, quotes ...entities.Quote) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{"id", "work_order_id", "subcontractor_id", "status", "document", "created_at", "updated_at"})
	for _, q := range quotes {
		m, err := toQuoteModel(q)
		if err != nil {
			t.Fatalf("quote model: %v", err)
		}
		rows.AddRow(m.ID, m.WorkOrderID, m.SubcontractorID, m.Status, []byte(m.Document), m.CreatedAt, m.UpdatedAt)
	}
	return rows
}

func TestWorkOrderRepository_Update(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	wo := entities.WorkOrder{ID: "wo-1", Status: entities.WorkOrderApproved, ClientID: "client-1", UpdatedAt: now}
	const updateSQL = `UPDATE "work_orders" SET .* WHERE id = \$8 AND version = \$9`

	t.Run("stale version is a conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(updateSQL).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4), sqlmock.AnyArg(), "wo-1", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewWorkOrderRepository(db).Update(context.Background(), wo, 3)
		if !errors.Is(err, interfaces.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("matching version bumps it", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(updateSQL).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "approved", sqlmock.AnyArg(), int64(4), sqlmock.AnyArg(), "wo-1", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := NewWorkOrderRepository(db).Update(context.Background(), wo, 3)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.Version != 4 {
			t.Fatalf("expected version 4, got %d", got.Version)
		}
		expectationsMet(t, mock)
	})

	t.Run("driver error is passed through", func(t *testing.T) {
		db, mock := newMockDB(t)
		boom := errors.New("connection reset")
		mock.ExpectExec(updateSQL).WillReturnError(boom)

		if _, err := NewWorkOrderRepository(db).Update(context.Background(), wo, 3); !errors.Is(err, boom) {
			t.Fatalf("expected driver error, got %v", err)
		}
		expectationsMet(t, mock)
	})
}

func TestQuoteRepository_Update(t *testing.T) {
	q := entities.Quote{ID: "q-1", WorkOrderID: "wo-1", SubcontractorID: "sub-a", Status: entities.QuoteSentToClient}
	const updateSQL = `UPDATE "quotes" SET .* WHERE id = \$4 AND status IN \(\$5,\$6\)`

	t.Run("closed quote fails the condition", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(updateSQL).
			WithArgs(sqlmock.AnyArg(), "sent_to_client", sqlmock.AnyArg(), "q-1", "pending", "sent_to_client").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if _, err := NewQuoteRepository(db).Update(context.Background(), q); !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("open quote is rewritten", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := NewQuoteRepository(db).Update(context.Background(), q)
		if err != nil || got.ID != "q-1" {
			t.Fatalf("unexpected result %+v (%v)", got, err)
		}
		expectationsMet(t, mock)
	})
}

func TestQuoteRepository_Decide(t *testing.T) {
	at := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	const lockSQL = `SELECT \* FROM "quotes" WHERE work_order_id = \$1 ORDER BY id ASC FOR UPDATE`
	pending := func(id, sub string) entities.Quote {
		return entities.Quote{ID: id, WorkOrderID: "wo-1", SubcontractorID: sub, Status: entities.QuotePending, CreatedAt: at, UpdatedAt: at}
	}

	t.Run("accepts one and rejects the other open quotes", func(t *testing.T) {
		db, mock := newMockDB(t)
		earlier := pending("q-3", "sub-c")
		earlier.Status = entities.QuoteRejected

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs("wo-1").WillReturnRows(quoteRows(t, pending("q-1", "sub-a"), pending("q-2", "sub-b"), earlier))
		mock.ExpectExec(`UPDATE "quotes" SET .* WHERE id = \$4`).
			WithArgs(sqlmock.AnyArg(), "accepted", sqlmock.AnyArg(), "q-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "quotes" SET .* WHERE id = \$4`).
			WithArgs(sqlmock.AnyArg(), "rejected", sqlmock.AnyArg(), "q-2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		out, err := NewQuoteRepository(db).Decide(context.Background(), "wo-1", "q-1", "client-1", at)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		want := map[string]entities.QuoteStatus{"q-1": entities.QuoteAccepted, "q-2": entities.QuoteRejected, "q-3": entities.QuoteRejected}
		for _, q := range out {
			if q.Status != want[q.ID] {
				t.Fatalf("%s: expected %s, got %s", q.ID, want[q.ID], q.Status)
			}
		}
		if out[0].DecidedBy != "client-1" || out[0].DecidedAt == nil || out[2].DecidedAt != nil {
			t.Fatalf("unexpected decision stamps: %+v", out)
		}
		expectationsMet(t, mock)
	})

	t.Run("second acceptance loses", func(t *testing.T) {
		db, mock := newMockDB(t)
		accepted := pending("q-1", "sub-a")
		accepted.Status = entities.QuoteAccepted

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs("wo-1").WillReturnRows(quoteRows(t, accepted, pending("q-2", "sub-b")))
		mock.ExpectRollback()

		_, err := NewQuoteRepository(db).Decide(context.Background(), "wo-1", "q-2", "client-1", at)
		if !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("unknown or closed quote", func(t *testing.T) {
		db, mock := newMockDB(t)
		rejected := pending("q-1", "sub-a")
		rejected.Status = entities.QuoteRejected

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs("wo-1").WillReturnRows(quoteRows(t, rejected))
		mock.ExpectRollback()

		if _, err := NewQuoteRepository(db).Decide(context.Background(), "wo-1", "q-1", "client-1", at); !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
		expectationsMet(t, mock)
	})
}

func TestExecutionRepository_Create(t *testing.T) {
	d := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	e := entities.RecurringWorkOrderExecution{
		ID:                   "rwo-1#2026-04-01",
		RecurringWorkOrderID: "rwo-1",
		ExecutionNumber:      1,
		ScheduledDate:        d,
		Status:               entities.ExecutionPending,
		CreatedAt:            d,
		UpdatedAt:            d,
	}
	const insertSQL = `INSERT INTO "recurring_work_order_executions" .* ON CONFLICT DO NOTHING`

	t.Run("same definition and day already stored", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		if _, err := NewExecutionRepository(db).Create(context.Background(), e); !errors.Is(err, interfaces.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("first claim of the day", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := NewExecutionRepository(db).Create(context.Background(), e)
		if err != nil || got.ID != e.ID {
			t.Fatalf("unexpected result %+v (%v)", got, err)
		}
		expectationsMet(t, mock)
	})
}
