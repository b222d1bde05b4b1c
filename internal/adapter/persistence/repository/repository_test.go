package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type fakeDynamo struct {
	items     map[string]map[string]types.AttributeValue
	queryOut  []map[string]types.AttributeValue
	putErr    error
	updateOut map[string]types.AttributeValue
	updateErr error
	txErr     error

	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	txs     []*dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{Attributes: f.updateOut}, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{Items: f.queryOut}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: f.queryOut}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.txs = append(f.txs, in)
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func txCancelled() error {
	return &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
}

func mustMarshal(t *testing.T, v any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return av
}

func sampleWorkOrder() entities.WorkOrder {
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	completed := created.Add(48 * time.Hour)
	return entities.WorkOrder{
		ID:              "wo-1",
		WorkOrderNumber: "WO-12345678-ABCD",
		Title:           "Leaking roof",
		Priority:        entities.PriorityHigh,
		ClientID:        "client-1",
		EstimateBudget:  decimal.RequireFromString("1200.50"),
		Status:          entities.WorkOrderCompleted,
		Timeline: []entities.TimelineEvent{
			{Type: entities.EventCreated, Timestamp: created, UserID: "client-1", UserRole: entities.RoleClient, ToStatus: "pending"},
			{Type: entities.EventCompleted, Timestamp: completed, UserID: "sub-a", UserRole: entities.RoleSubcontractor, Metadata: map[string]string{"notes": "done"}},
		},
		SystemInformation: entities.SystemInformation{
			Completion: &entities.MilestoneSnapshot{UserID: "sub-a", UserRole: entities.RoleSubcontractor, Timestamp: completed},
		},
		CompletedAt: &completed,
		Version:     7,
		CreatedAt:   created,
		UpdatedAt:   completed,
	}
}

func TestWorkOrderDynamoRepository(t *testing.T) {
	t.Run("get decodes the stored document", func(t *testing.T) {
		wo := sampleWorkOrder()
		ddb := &fakeDynamo{items: map[string]map[string]types.AttributeValue{"wo-1": mustMarshal(t, toWorkOrderItem(wo))}}
		repo := NewWorkOrderDynamoRepository(ddb, "work_orders")

		got, err := repo.GetByID(context.Background(), "wo-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.Version != 7 || !got.EstimateBudget.Equal(wo.EstimateBudget) || len(got.Timeline) != 2 {
			t.Fatalf("unexpected work order: %+v", got)
		}
		if got.Timeline[1].Metadata["notes"] != "done" || got.SystemInformation.Completion.UserID != "sub-a" {
			t.Fatalf("nested fields lost: %+v", got.Timeline[1])
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(*wo.CompletedAt) || got.StartedAt != nil {
			t.Fatalf("unexpected timestamps: %v %v", got.CompletedAt, got.StartedAt)
		}
	})

	t.Run("missing returns empty", func(t *testing.T) {
		repo := NewWorkOrderDynamoRepository(&fakeDynamo{}, "work_orders")
		got, err := repo.GetByID(context.Background(), "nope")
		if err != nil || got.ID != "" {
			t.Fatalf("expected empty work order, got %+v (%v)", got, err)
		}
	})

	t.Run("update is a version compare-and-set", func(t *testing.T) {
		ddb := &fakeDynamo{}
		repo := NewWorkOrderDynamoRepository(ddb, "work_orders")

		stored, err := repo.Update(context.Background(), sampleWorkOrder(), 7)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if stored.Version != 8 {
			t.Fatalf("expected version 8, got %d", stored.Version)
		}
		put := ddb.puts[0]
		if !strings.Contains(*put.ConditionExpression, "#version = :expected") {
			t.Fatalf("unexpected condition: %s", *put.ConditionExpression)
		}
		if v := put.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value; v != "7" {
			t.Fatalf("expected condition on 7, got %s", v)
		}
		if v := put.Item["version"].(*types.AttributeValueMemberN).Value; v != "8" {
			t.Fatalf("expected stored version 8, got %s", v)
		}
	})

	t.Run("conflict maps to ErrVersionConflict", func(t *testing.T) {
		repo := NewWorkOrderDynamoRepository(&fakeDynamo{putErr: conditionFailed()}, "work_orders")
		if _, err := repo.Update(context.Background(), sampleWorkOrder(), 7); !errors.Is(err, interfaces.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("duplicate create maps to ErrAlreadyExists", func(t *testing.T) {
		repo := NewWorkOrderDynamoRepository(&fakeDynamo{putErr: conditionFailed()}, "work_orders")
		if _, err := repo.Create(context.Background(), sampleWorkOrder()); !errors.Is(err, interfaces.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("throttled")
		repo := NewWorkOrderDynamoRepository(&fakeDynamo{putErr: boom}, "work_orders")
		if _, err := repo.Update(context.Background(), sampleWorkOrder(), 7); !errors.Is(err, boom) {
			t.Fatalf("expected passthrough, got %v", err)
		}
	})
}

func quote(id, sub string, status entities.QuoteStatus) entities.Quote {
	return entities.Quote{
		ID:              id,
		WorkOrderID:     "wo-1",
		SubcontractorID: sub,
		TotalAmount:     decimal.NewFromInt(1000),
		Status:          status,
		LineItems:       []entities.LineItem{{Description: "labor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000), Amount: decimal.NewFromInt(1000)}},
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestQuoteDynamoRepository(t *testing.T) {
	t.Run("create writes quote and active guard together", func(t *testing.T) {
		ddb := &fakeDynamo{}
		repo := NewQuoteDynamoRepository(ddb, "quotes")
		if _, err := repo.Create(context.Background(), quote("q1", "sub-a", entities.QuotePending)); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		items := ddb.txs[0].TransactItems
		if len(items) != 2 {
			t.Fatalf("expected 2 writes, got %d", len(items))
		}
		if id := items[1].Put.Item["id"].(*types.AttributeValueMemberS).Value; id != "active#wo-1#sub-a" {
			t.Fatalf("unexpected guard id: %s", id)
		}
	})

	t.Run("second active quote is refused", func(t *testing.T) {
		repo := NewQuoteDynamoRepository(&fakeDynamo{txErr: txCancelled()}, "quotes")
		if _, err := repo.Create(context.Background(), quote("q2", "sub-a", entities.QuotePending)); !errors.Is(err, interfaces.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update of a decided quote fails the condition", func(t *testing.T) {
		repo := NewQuoteDynamoRepository(&fakeDynamo{putErr: conditionFailed()}, "quotes")
		if _, err := repo.Update(context.Background(), quote("q1", "sub-a", entities.QuotePending)); !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
	})

	t.Run("decide accepts one and rejects open siblings atomically", func(t *testing.T) {
		chosen := quote("q1", "sub-a", entities.QuoteSentToClient)
		open := quote("q2", "sub-b", entities.QuotePending)
		closed := quote("q3", "sub-c", entities.QuoteRejected)
		ddb := &fakeDynamo{
			items: map[string]map[string]types.AttributeValue{"q1": mustMarshal(t, toQuoteItem(chosen))},
			queryOut: []map[string]types.AttributeValue{
				mustMarshal(t, toQuoteItem(chosen)),
				mustMarshal(t, toQuoteItem(open)),
				mustMarshal(t, toQuoteItem(closed)),
			},
		}
		repo := NewQuoteDynamoRepository(ddb, "quotes")

		at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
		out, err := repo.Decide(context.Background(), "wo-1", "q1", "client-1", at)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(out) != 3 || out[0].Status != entities.QuoteAccepted || out[1].Status != entities.QuoteRejected || out[2].DecidedBy != "" {
			t.Fatalf("unexpected decision: %+v", out)
		}
		writes := ddb.txs[0].TransactItems
		if len(writes) != 4 {
			t.Fatalf("expected 2 updates and 2 guard deletes, got %d", len(writes))
		}
		if next := writes[0].Update.ExpressionAttributeValues[":next"].(*types.AttributeValueMemberS).Value; next != "accepted" {
			t.Fatalf("expected accepted first, got %s", next)
		}
	})

	t.Run("decide refuses when a sibling is already accepted", func(t *testing.T) {
		chosen := quote("q1", "sub-a", entities.QuoteSentToClient)
		ddb := &fakeDynamo{
			items: map[string]map[string]types.AttributeValue{"q1": mustMarshal(t, toQuoteItem(chosen))},
			queryOut: []map[string]types.AttributeValue{
				mustMarshal(t, toQuoteItem(chosen)),
				mustMarshal(t, toQuoteItem(quote("q2", "sub-b", entities.QuoteAccepted))),
			},
		}
		repo := NewQuoteDynamoRepository(ddb, "quotes")
		if _, err := repo.Decide(context.Background(), "wo-1", "q1", "client-1", time.Now()); !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
		if len(ddb.txs) != 0 {
			t.Fatalf("no transaction expected")
		}
	})

	t.Run("lost race cancels the transaction", func(t *testing.T) {
		chosen := quote("q1", "sub-a", entities.QuoteSentToClient)
		ddb := &fakeDynamo{
			items:    map[string]map[string]types.AttributeValue{"q1": mustMarshal(t, toQuoteItem(chosen))},
			queryOut: []map[string]types.AttributeValue{mustMarshal(t, toQuoteItem(chosen))},
			txErr:    txCancelled(),
		}
		repo := NewQuoteDynamoRepository(ddb, "quotes")
		if _, err := repo.Decide(context.Background(), "wo-1", "q1", "client-1", time.Now()); !errors.Is(err, interfaces.ErrConditionFailed) {
			t.Fatalf("expected ErrConditionFailed, got %v", err)
		}
	})
}

func TestRecurringDynamoRepositories(t *testing.T) {
	t.Run("apply counters uses ADD and REMOVE", func(t *testing.T) {
		ddb := &fakeDynamo{updateOut: mustMarshal(t, recurringItem{ID: "def-1", TotalExecutions: 3, Status: "active"})}
		repo := NewRecurringWorkOrderDynamoRepository(ddb, "recurring")

		last := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
		got, err := repo.ApplyCounters(context.Background(), "def-1", interfaces.CounterDelta{Total: 1, Successful: 1, LastExecution: &last, ClearNext: true})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got.TotalExecutions != 3 {
			t.Fatalf("expected decoded attributes, got %+v", got)
		}
		expr := *ddb.updates[0].UpdateExpression
		if !strings.Contains(expr, "ADD #total :total") || !strings.Contains(expr, "REMOVE #next_execution") || !strings.Contains(expr, "#last_execution = :last_execution") {
			t.Fatalf("unexpected expression: %s", expr)
		}
	})

	t.Run("missing definition returns empty", func(t *testing.T) {
		repo := NewRecurringWorkOrderDynamoRepository(&fakeDynamo{updateErr: conditionFailed()}, "recurring")
		got, err := repo.UpdateStatus(context.Background(), "nope", entities.RecurringPaused)
		if err != nil || got.ID != "" {
			t.Fatalf("expected empty definition, got %+v (%v)", got, err)
		}
	})

	t.Run("execution day is unique", func(t *testing.T) {
		ddb := &fakeDynamo{txErr: txCancelled()}
		repo := NewExecutionDynamoRepository(ddb, "executions")
		e := entities.RecurringWorkOrderExecution{ID: "def-1#2025-01-01", RecurringWorkOrderID: "def-1", ScheduledDate: time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)}
		if _, err := repo.Create(context.Background(), e); !errors.Is(err, interfaces.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		guard := ddb.txs[0].TransactItems[1].Put.Item["id"].(*types.AttributeValueMemberS).Value
		if guard != "day#def-1#2025-01-01" {
			t.Fatalf("unexpected guard id: %s", guard)
		}
	})

	t.Run("guard items are not executions", func(t *testing.T) {
		ddb := &fakeDynamo{items: map[string]map[string]types.AttributeValue{
			"day#def-1#2025-01-01": mustMarshal(t, dayGuardItem{ID: "day#def-1#2025-01-01", ExecutionID: "def-1#2025-01-01"}),
		}}
		repo := NewExecutionDynamoRepository(ddb, "executions")
		got, err := repo.GetByID(context.Background(), "day#def-1#2025-01-01")
		if err != nil || got.ID != "" {
			t.Fatalf("expected empty execution, got %+v (%v)", got, err)
		}
	})
}

func TestInvoiceDynamoRepository(t *testing.T) {
	t.Run("lookup by work order", func(t *testing.T) {
		inv := entities.Invoice{ID: "inv-1", WorkOrderID: "wo-1", Amount: decimal.RequireFromString("1100.00"), Status: entities.InvoiceSent, Version: 2}
		ddb := &fakeDynamo{queryOut: []map[string]types.AttributeValue{mustMarshal(t, toInvoiceItem(inv))}}
		repo := NewInvoiceDynamoRepository(ddb, "invoices")

		got, err := repo.GetByWorkOrderID(context.Background(), "wo-1")
		if err != nil || got.ID != "inv-1" || !got.Amount.Equal(inv.Amount) {
			t.Fatalf("unexpected invoice: %+v (%v)", got, err)
		}
	})

	t.Run("stale update", func(t *testing.T) {
		repo := NewInvoiceDynamoRepository(&fakeDynamo{putErr: conditionFailed()}, "invoices")
		if _, err := repo.Update(context.Background(), entities.Invoice{ID: "inv-1"}, 1); !errors.Is(err, interfaces.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})
}
