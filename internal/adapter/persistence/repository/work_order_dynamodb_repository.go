package repository

import (
	"context"
	"strconv"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type timelineEventItem struct {
	Type       string            `dynamodbav:"type"`
	Timestamp  string            `dynamodbav:"timestamp"`
	UserID     string            `dynamodbav:"user_id"`
	UserName   string            `dynamodbav:"user_name"`
	UserRole   string            `dynamodbav:"user_role"`
	FromStatus string            `dynamodbav:"from_status,omitempty"`
	ToStatus   string            `dynamodbav:"to_status,omitempty"`
	Details    string            `dynamodbav:"details,omitempty"`
	Metadata   map[string]string `dynamodbav:"metadata,omitempty"`
}

type milestoneItem struct {
	UserID    string            `dynamodbav:"user_id"`
	UserName  string            `dynamodbav:"user_name"`
	UserRole  string            `dynamodbav:"user_role"`
	Timestamp string            `dynamodbav:"timestamp"`
	Metadata  map[string]string `dynamodbav:"metadata,omitempty"`
}

type systemInformationItem struct {
	CreatedBy  *milestoneItem `dynamodbav:"created_by,omitempty"`
	ApprovedBy *milestoneItem `dynamodbav:"approved_by,omitempty"`
	Assignment *milestoneItem `dynamodbav:"assignment,omitempty"`
	Completion *milestoneItem `dynamodbav:"completion,omitempty"`
}

type workOrderItem struct {
	ID              string `dynamodbav:"id"`
	WorkOrderNumber string `dynamodbav:"work_order_number"`
	Title           string `dynamodbav:"title"`
	Description     string `dynamodbav:"description"`
	Category        string `dynamodbav:"category"`
	Priority        string `dynamodbav:"priority"`

	ClientID                string `dynamodbav:"client_id"`
	LocationID              string `dynamodbav:"location_id"`
	AssignedSubcontractorID string `dynamodbav:"assigned_subcontractor_id,omitempty"`
	AssignedQuoteID         string `dynamodbav:"assigned_quote_id,omitempty"`
	EstimateBudget          string `dynamodbav:"estimate_budget"`

	Status            string                `dynamodbav:"status"`
	Timeline          []timelineEventItem   `dynamodbav:"timeline"`
	SystemInformation systemInformationItem `dynamodbav:"system_information"`

	RecurringWorkOrderID     string `dynamodbav:"recurring_work_order_id,omitempty"`
	RecurringWorkOrderNumber string `dynamodbav:"recurring_work_order_number,omitempty"`
	ExecutionID              string `dynamodbav:"execution_id,omitempty"`
	ExecutionNumber          int    `dynamodbav:"execution_number,omitempty"`
	MaintenanceRequestID     string `dynamodbav:"maintenance_request_id,omitempty"`

	RejectionReason    string `dynamodbav:"rejection_reason,omitempty"`
	CancellationReason string `dynamodbav:"cancellation_reason,omitempty"`
	BiddingOpenedAt    string `dynamodbav:"bidding_opened_at,omitempty"`
	ScheduledFor       string `dynamodbav:"scheduled_for,omitempty"`
	StartedAt          string `dynamodbav:"started_at,omitempty"`
	CompletedAt        string `dynamodbav:"completed_at,omitempty"`
	CompletionNotes    string `dynamodbav:"completion_notes,omitempty"`
	InvoiceID          string `dynamodbav:"invoice_id,omitempty"`
	PaymentReference   string `dynamodbav:"payment_reference,omitempty"`
	PaidAt             string `dynamodbav:"paid_at,omitempty"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// WorkOrderDynamoRepository persists WorkOrder documents in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: status-index (PK: status, SK: created_at)
//
// Every write after Create is a whole-document put guarded by the version attribute.
type WorkOrderDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IWorkOrderRepository = (*WorkOrderDynamoRepository)(nil)

func NewWorkOrderDynamoRepository(ddb DynamoAPI, tableName string) *WorkOrderDynamoRepository {
	return &WorkOrderDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *WorkOrderDynamoRepository) Create(ctx context.Context, wo entities.WorkOrder) (entities.WorkOrder, error) {
	if wo.Version == 0 {
		wo.Version = 1
	}
	av, err := attributevalue.MarshalMap(toWorkOrderItem(wo))
	if err != nil {
		return entities.WorkOrder{}, err
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
		return entities.WorkOrder{}, translate(err, interfaces.ErrAlreadyExists)
	}
	return wo, nil
}

func (r *WorkOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.WorkOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.WorkOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.WorkOrder{}, nil
	}

	var it workOrderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.WorkOrder{}, err
	}
	return fromWorkOrderItem(it), nil
}

// ListByStatus queries status-index; an empty status scans the table.
func (r *WorkOrderDynamoRepository) ListByStatus(ctx context.Context, status entities.WorkOrderStatus) ([]entities.WorkOrder, error) {
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

	items := make([]entities.WorkOrder, 0, len(raw))
	for _, av := range raw {
		var it workOrderItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		items = append(items, fromWorkOrderItem(it))
	}
	return items, nil
}

func (r *WorkOrderDynamoRepository) Update(ctx context.Context, wo entities.WorkOrder, expectedVersion int64) (entities.WorkOrder, error) {
	wo.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toWorkOrderItem(wo))
	if err != nil {
		return entities.WorkOrder{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
	})
	if err != nil {
		return entities.WorkOrder{}, translate(err, interfaces.ErrVersionConflict)
	}
	return wo, nil
}

func queryAll(ctx context.Context, ddb DynamoAPI, in *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var out []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
	}
	return out, nil
}

func scanAll(ctx context.Context, ddb DynamoAPI, in *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var out []map[string]types.AttributeValue
	p := dynamodb.NewScanPaginator(ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
	}
	return out, nil
}

func toTimelineItems(events []entities.TimelineEvent) []timelineEventItem {
	out := make([]timelineEventItem, 0, len(events))
	for _, ev := range events {
		out = append(out, timelineEventItem{
			Type:       string(ev.Type),
			Timestamp:  formatTime(ev.Timestamp),
			UserID:     ev.UserID,
			UserName:   ev.UserName,
			UserRole:   string(ev.UserRole),
			FromStatus: ev.FromStatus,
			ToStatus:   ev.ToStatus,
			Details:    ev.Details,
			Metadata:   ev.Metadata,
		})
	}
	return out
}

func fromTimelineItems(items []timelineEventItem) []entities.TimelineEvent {
	out := make([]entities.TimelineEvent, 0, len(items))
	for _, it := range items {
		out = append(out, entities.TimelineEvent{
			Type:       entities.TimelineEventType(it.Type),
			Timestamp:  parseTime(it.Timestamp),
			UserID:     it.UserID,
			UserName:   it.UserName,
			UserRole:   entities.Role(it.UserRole),
			FromStatus: it.FromStatus,
			ToStatus:   it.ToStatus,
			Details:    it.Details,
			Metadata:   it.Metadata,
		})
	}
	return out
}

func toMilestoneItem(s *entities.MilestoneSnapshot) *milestoneItem {
	if s == nil {
		return nil
	}
	return &milestoneItem{
		UserID:    s.UserID,
		UserName:  s.UserName,
		UserRole:  string(s.UserRole),
		Timestamp: formatTime(s.Timestamp),
		Metadata:  s.Metadata,
	}
}

func fromMilestoneItem(it *milestoneItem) *entities.MilestoneSnapshot {
	if it == nil {
		return nil
	}
	return &entities.MilestoneSnapshot{
		UserID:    it.UserID,
		UserName:  it.UserName,
		UserRole:  entities.Role(it.UserRole),
		Timestamp: parseTime(it.Timestamp),
		Metadata:  it.Metadata,
	}
}

func toWorkOrderItem(wo entities.WorkOrder) workOrderItem {
	return workOrderItem{
		ID:                      wo.ID,
		WorkOrderNumber:         wo.WorkOrderNumber,
		Title:                   wo.Title,
		Description:             wo.Description,
		Category:                wo.Category,
		Priority:                string(wo.Priority),
		ClientID:                wo.ClientID,
		LocationID:              wo.LocationID,
		AssignedSubcontractorID: wo.AssignedSubcontractorID,
		AssignedQuoteID:         wo.AssignedQuoteID,
		EstimateBudget:          decimalString(wo.EstimateBudget),
		Status:                  string(wo.Status),
		Timeline:                toTimelineItems(wo.Timeline),
		SystemInformation: systemInformationItem{
			CreatedBy:  toMilestoneItem(wo.SystemInformation.CreatedBy),
			ApprovedBy: toMilestoneItem(wo.SystemInformation.ApprovedBy),
			Assignment: toMilestoneItem(wo.SystemInformation.Assignment),
			Completion: toMilestoneItem(wo.SystemInformation.Completion),
		},
		RecurringWorkOrderID:     wo.RecurringWorkOrderID,
		RecurringWorkOrderNumber: wo.RecurringWorkOrderNumber,
		ExecutionID:              wo.ExecutionID,
		ExecutionNumber:          wo.ExecutionNumber,
		MaintenanceRequestID:     wo.MaintenanceRequestID,
		RejectionReason:          wo.RejectionReason,
		CancellationReason:       wo.CancellationReason,
		BiddingOpenedAt:          formatTimePtr(wo.BiddingOpenedAt),
		ScheduledFor:             formatTimePtr(wo.ScheduledFor),
		StartedAt:                formatTimePtr(wo.StartedAt),
		CompletedAt:              formatTimePtr(wo.CompletedAt),
		CompletionNotes:          wo.CompletionNotes,
		InvoiceID:                wo.InvoiceID,
		PaymentReference:         wo.PaymentReference,
		PaidAt:                   formatTimePtr(wo.PaidAt),
		Version:                  wo.Version,
		CreatedAt:                formatTime(wo.CreatedAt),
		UpdatedAt:                formatTime(wo.UpdatedAt),
	}
}

func fromWorkOrderItem(it workOrderItem) entities.WorkOrder {
	return entities.WorkOrder{
		ID:                      it.ID,
		WorkOrderNumber:         it.WorkOrderNumber,
		Title:                   it.Title,
		Description:             it.Description,
		Category:                it.Category,
		Priority:                entities.Priority(it.Priority),
		ClientID:                it.ClientID,
		LocationID:              it.LocationID,
		AssignedSubcontractorID: it.AssignedSubcontractorID,
		AssignedQuoteID:         it.AssignedQuoteID,
		EstimateBudget:          parseDecimal(it.EstimateBudget),
		Status:                  entities.WorkOrderStatus(it.Status),
		Timeline:                fromTimelineItems(it.Timeline),
		SystemInformation: entities.SystemInformation{
			CreatedBy:  fromMilestoneItem(it.SystemInformation.CreatedBy),
			ApprovedBy: fromMilestoneItem(it.SystemInformation.ApprovedBy),
			Assignment: fromMilestoneItem(it.SystemInformation.Assignment),
			Completion: fromMilestoneItem(it.SystemInformation.Completion),
		},
		RecurringWorkOrderID:     it.RecurringWorkOrderID,
		RecurringWorkOrderNumber: it.RecurringWorkOrderNumber,
		ExecutionID:              it.ExecutionID,
		ExecutionNumber:          it.ExecutionNumber,
		MaintenanceRequestID:     it.MaintenanceRequestID,
		RejectionReason:          it.RejectionReason,
		CancellationReason:       it.CancellationReason,
		BiddingOpenedAt:          parseTimePtr(it.BiddingOpenedAt),
		ScheduledFor:             parseTimePtr(it.ScheduledFor),
		StartedAt:                parseTimePtr(it.StartedAt),
		CompletedAt:              parseTimePtr(it.CompletedAt),
		CompletionNotes:          it.CompletionNotes,
		InvoiceID:                it.InvoiceID,
		PaymentReference:         it.PaymentReference,
		PaidAt:                   parseTimePtr(it.PaidAt),
		Version:                  it.Version,
		CreatedAt:                parseTime(it.CreatedAt),
		UpdatedAt:                parseTime(it.UpdatedAt),
	}
}
