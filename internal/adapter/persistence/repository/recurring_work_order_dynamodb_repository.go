package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type recurrencePatternItem struct {
	Type           string `dynamodbav:"type"`
	Interval       int    `dynamodbav:"interval"`
	DaysOfWeek     []int  `dynamodbav:"days_of_week,omitempty"`
	DayOfMonth     int    `dynamodbav:"day_of_month,omitempty"`
	MonthOfYear    int    `dynamodbav:"month_of_year,omitempty"`
	EndDate        string `dynamodbav:"end_date,omitempty"`
	MaxOccurrences int    `dynamodbav:"max_occurrences,omitempty"`
}

type recurringItem struct {
	ID                       string `dynamodbav:"id"`
	RecurringWorkOrderNumber string `dynamodbav:"recurring_work_order_number"`
	Title                    string `dynamodbav:"title"`
	Description              string `dynamodbav:"description"`
	Category                 string `dynamodbav:"category"`
	Priority                 string `dynamodbav:"priority"`
	EstimateBudget           string `dynamodbav:"estimate_budget"`
	ClientID                 string `dynamodbav:"client_id"`
	LocationID               string `dynamodbav:"location_id"`
	SubcontractorID          string `dynamodbav:"subcontractor_id,omitempty"`

	RecurrencePattern recurrencePatternItem `dynamodbav:"recurrence_pattern"`
	StartDate         string                `dynamodbav:"start_date"`
	Status            string                `dynamodbav:"status"`

	TotalExecutions      int    `dynamodbav:"total_executions"`
	SuccessfulExecutions int    `dynamodbav:"successful_executions"`
	FailedExecutions     int    `dynamodbav:"failed_executions"`
	NextExecution        string `dynamodbav:"next_execution,omitempty"`
	LastExecution        string `dynamodbav:"last_execution,omitempty"`

	CreatedBy string `dynamodbav:"created_by"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// RecurringWorkOrderDynamoRepository persists recurring definitions in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: status-index (PK: status)
type RecurringWorkOrderDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IRecurringWorkOrderRepository = (*RecurringWorkOrderDynamoRepository)(nil)

func NewRecurringWorkOrderDynamoRepository(ddb DynamoAPI, tableName string) *RecurringWorkOrderDynamoRepository {
	return &RecurringWorkOrderDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *RecurringWorkOrderDynamoRepository) Create(ctx context.Context, def entities.RecurringWorkOrder) (entities.RecurringWorkOrder, error) {
	av, err := attributevalue.MarshalMap(toRecurringItem(def))
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.RecurringWorkOrder{}, translate(err, interfaces.ErrAlreadyExists)
	}
	return def, nil
}

func (r *RecurringWorkOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.RecurringWorkOrder{}, nil
	}

	var it recurringItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	return fromRecurringItem(it), nil
}

func (r *RecurringWorkOrderDynamoRepository) ListByStatus(ctx context.Context, status entities.RecurringStatus) ([]entities.RecurringWorkOrder, error) {
	var raw []map[string]types.AttributeValue
	var err error
	if status == "" {
		raw, err = scanAll(ctx, r.ddb, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	} else {
		raw, err = queryAll(ctx, r.ddb, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(statusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": strValue(string(status)),
			},
		})
	}
	if err != nil {
		return nil, err
	}

	out := make([]entities.RecurringWorkOrder, 0, len(raw))
	for _, av := range raw {
		var it recurringItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		out = append(out, fromRecurringItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RecurringWorkOrderDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.RecurringStatus) (entities.RecurringWorkOrder, error) {
	return r.update(ctx, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     strValue(string(status)),
			":updated_at": strValue(now),
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

// ApplyCounters increments the execution counters server-side with ADD, so
// concurrent materializations never lose an increment.
func (r *RecurringWorkOrderDynamoRepository) ApplyCounters(ctx context.Context, id string, delta interfaces.CounterDelta) (entities.RecurringWorkOrder, error) {
	return r.update(ctx, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		set := []string{"#updated_at = :updated_at"}
		vals := map[string]types.AttributeValue{
			":updated_at": strValue(now),
			":total":      &types.AttributeValueMemberN{Value: strconv.Itoa(delta.Total)},
			":successful": &types.AttributeValueMemberN{Value: strconv.Itoa(delta.Successful)},
			":failed":     &types.AttributeValueMemberN{Value: strconv.Itoa(delta.Failed)},
		}
		names := map[string]string{
			"#updated_at": "updated_at",
			"#total":      "total_executions",
			"#successful": "successful_executions",
			"#failed":     "failed_executions",
		}
		if delta.LastExecution != nil {
			set = append(set, "#last_execution = :last_execution")
			vals[":last_execution"] = strValue(formatTime(*delta.LastExecution))
			names["#last_execution"] = "last_execution"
		}
		if !delta.ClearNext && delta.NextExecution != nil {
			set = append(set, "#next_execution = :next_execution")
			vals[":next_execution"] = strValue(formatTime(*delta.NextExecution))
			names["#next_execution"] = "next_execution"
		}

		expr := "SET " + strings.Join(set, ", ") + " ADD #total :total, #successful :successful, #failed :failed"
		if delta.ClearNext {
			expr += " REMOVE #next_execution"
			names["#next_execution"] = "next_execution"
		}
		return expr, vals, names
	})
}

func (r *RecurringWorkOrderDynamoRepository) update(
	ctx context.Context,
	id string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.RecurringWorkOrder, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return entities.RecurringWorkOrder{}, nil
		}
		return entities.RecurringWorkOrder{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.RecurringWorkOrder{}, nil
	}
	var it recurringItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.RecurringWorkOrder{}, err
	}
	return fromRecurringItem(it), nil
}

func toRecurringItem(def entities.RecurringWorkOrder) recurringItem {
	p := def.RecurrencePattern
	return recurringItem{
		ID:                       def.ID,
		RecurringWorkOrderNumber: def.RecurringWorkOrderNumber,
		Title:                    def.Title,
		Description:              def.Description,
		Category:                 def.Category,
		Priority:                 string(def.Priority),
		EstimateBudget:           decimalString(def.EstimateBudget),
		ClientID:                 def.ClientID,
		LocationID:               def.LocationID,
		SubcontractorID:          def.SubcontractorID,
		RecurrencePattern: recurrencePatternItem{
			Type:           string(p.Type),
			Interval:       p.Interval,
			DaysOfWeek:     p.DaysOfWeek,
			DayOfMonth:     p.DayOfMonth,
			MonthOfYear:    p.MonthOfYear,
			EndDate:        formatTimePtr(p.EndDate),
			MaxOccurrences: p.MaxOccurrences,
		},
		StartDate:            formatTime(def.StartDate),
		Status:               string(def.Status),
		TotalExecutions:      def.TotalExecutions,
		SuccessfulExecutions: def.SuccessfulExecutions,
		FailedExecutions:     def.FailedExecutions,
		NextExecution:        formatTimePtr(def.NextExecution),
		LastExecution:        formatTimePtr(def.LastExecution),
		CreatedBy:            def.CreatedBy,
		CreatedAt:            formatTime(def.CreatedAt),
		UpdatedAt:            formatTime(def.UpdatedAt),
	}
}

func fromRecurringItem(it recurringItem) entities.RecurringWorkOrder {
	p := it.RecurrencePattern
	return entities.RecurringWorkOrder{
		ID:                       it.ID,
		RecurringWorkOrderNumber: it.RecurringWorkOrderNumber,
		Title:                    it.Title,
		Description:              it.Description,
		Category:                 it.Category,
		Priority:                 entities.Priority(it.Priority),
		EstimateBudget:           parseDecimal(it.EstimateBudget),
		ClientID:                 it.ClientID,
		LocationID:               it.LocationID,
		SubcontractorID:          it.SubcontractorID,
		RecurrencePattern: entities.RecurrencePattern{
			Type:           entities.RecurrenceType(p.Type),
			Interval:       p.Interval,
			DaysOfWeek:     p.DaysOfWeek,
			DayOfMonth:     p.DayOfMonth,
			MonthOfYear:    p.MonthOfYear,
			EndDate:        parseTimePtr(p.EndDate),
			MaxOccurrences: p.MaxOccurrences,
		},
		StartDate:            parseTime(it.StartDate),
		Status:               entities.RecurringStatus(it.Status),
		TotalExecutions:      it.TotalExecutions,
		SuccessfulExecutions: it.SuccessfulExecutions,
		FailedExecutions:     it.FailedExecutions,
		NextExecution:        parseTimePtr(it.NextExecution),
		LastExecution:        parseTimePtr(it.LastExecution),
		CreatedBy:            it.CreatedBy,
		CreatedAt:            parseTime(it.CreatedAt),
		UpdatedAt:            parseTime(it.UpdatedAt),
	}
}

type executionItem struct {
	ID                   string `dynamodbav:"id"`
	RecurringWorkOrderID string `dynamodbav:"recurring_work_order_id"`
	ExecutionNumber      int    `dynamodbav:"execution_number"`
	ScheduledDate        string `dynamodbav:"scheduled_date"`
	ScheduledDay         string `dynamodbav:"scheduled_day"`
	Status               string `dynamodbav:"status"`
	WorkOrderID          string `dynamodbav:"work_order_id,omitempty"`
	WorkOrderNumber      string `dynamodbav:"work_order_number,omitempty"`
	FailureReason        string `dynamodbav:"failure_reason,omitempty"`
	ExecutedAt           string `dynamodbav:"executed_at,omitempty"`
	CreatedAt            string `dynamodbav:"created_at"`
	UpdatedAt            string `dynamodbav:"updated_at"`
}

// dayGuardItem makes (definition, scheduled day) unique; it carries no
// recurring_work_order_id so the definition index never returns it.
type dayGuardItem struct {
	ID          string `dynamodbav:"id"`
	ExecutionID string `dynamodbav:"execution_id"`
}

// ExecutionDynamoRepository persists executions in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: recurring_work_order_id-index (PK: recurring_work_order_id)
type ExecutionDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IExecutionRepository = (*ExecutionDynamoRepository)(nil)

func NewExecutionDynamoRepository(ddb DynamoAPI, tableName string) *ExecutionDynamoRepository {
	return &ExecutionDynamoRepository{ddb: ddb, tableName: tableName}
}

func dayGuardID(e entities.RecurringWorkOrderExecution) string {
	return "day#" + e.RecurringWorkOrderID + "#" + e.ScheduledDay()
}

func (r *ExecutionDynamoRepository) Create(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	av, err := attributevalue.MarshalMap(toExecutionItem(e))
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	guard, err := attributevalue.MarshalMap(dayGuardItem{ID: dayGuardID(e), ExecutionID: e.ID})
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}

	notExists := aws.String("attribute_not_exists(#id)")
	names := map[string]string{"#id": "id"}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: av, ConditionExpression: notExists, ExpressionAttributeNames: names}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: guard, ConditionExpression: notExists, ExpressionAttributeNames: names}},
		},
	})
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, translate(err, interfaces.ErrAlreadyExists)
	}
	return e, nil
}

func (r *ExecutionDynamoRepository) GetByID(ctx context.Context, id string) (entities.RecurringWorkOrderExecution, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	if len(out.Item) == 0 {
		return entities.RecurringWorkOrderExecution{}, nil
	}

	var it executionItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}
	if it.RecurringWorkOrderID == "" {
		return entities.RecurringWorkOrderExecution{}, nil
	}
	return fromExecutionItem(it), nil
}

func (r *ExecutionDynamoRepository) ListByDefinitionID(ctx context.Context, definitionID string) ([]entities.RecurringWorkOrderExecution, error) {
	raw, err := queryAll(ctx, r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(definitionIndex),
		KeyConditionExpression: aws.String("recurring_work_order_id = :def"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":def": strValue(definitionID),
		},
	})
	if err != nil {
		return nil, err
	}

	out := make([]entities.RecurringWorkOrderExecution, 0, len(raw))
	for _, av := range raw {
		var it executionItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		out = append(out, fromExecutionItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (r *ExecutionDynamoRepository) Update(ctx context.Context, e entities.RecurringWorkOrderExecution) (entities.RecurringWorkOrderExecution, error) {
	av, err := attributevalue.MarshalMap(toExecutionItem(e))
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.RecurringWorkOrderExecution{}, translate(err, interfaces.ErrConditionFailed)
	}
	return e, nil
}

func toExecutionItem(e entities.RecurringWorkOrderExecution) executionItem {
	return executionItem{
		ID:                   e.ID,
		RecurringWorkOrderID: e.RecurringWorkOrderID,
		ExecutionNumber:      e.ExecutionNumber,
		ScheduledDate:        formatTime(e.ScheduledDate),
		ScheduledDay:         e.ScheduledDay(),
		Status:               string(e.Status),
		WorkOrderID:          e.WorkOrderID,
		WorkOrderNumber:      e.WorkOrderNumber,
		FailureReason:        e.FailureReason,
		ExecutedAt:           formatTimePtr(e.ExecutedAt),
		CreatedAt:            formatTime(e.CreatedAt),
		UpdatedAt:            formatTime(e.UpdatedAt),
	}
}

func fromExecutionItem(it executionItem) entities.RecurringWorkOrderExecution {
	return entities.RecurringWorkOrderExecution{
		ID:                   it.ID,
		RecurringWorkOrderID: it.RecurringWorkOrderID,
		ExecutionNumber:      it.ExecutionNumber,
		ScheduledDate:        parseTime(it.ScheduledDate),
		Status:               entities.ExecutionStatus(it.Status),
		WorkOrderID:          it.WorkOrderID,
		WorkOrderNumber:      it.WorkOrderNumber,
		FailureReason:        it.FailureReason,
		ExecutedAt:           parseTimePtr(it.ExecutedAt),
		CreatedAt:            parseTime(it.CreatedAt),
		UpdatedAt:            parseTime(it.UpdatedAt),
	}
}
