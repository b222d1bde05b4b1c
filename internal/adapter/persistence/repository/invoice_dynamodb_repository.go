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

type invoiceItem struct {
	ID               string              `dynamodbav:"id"`
	InvoiceNumber    string              `dynamodbav:"invoice_number"`
	WorkOrderID      string              `dynamodbav:"work_order_id"`
	ClientID         string              `dynamodbav:"client_id"`
	QuoteID          string              `dynamodbav:"quote_id,omitempty"`
	Amount           string              `dynamodbav:"amount"`
	Currency         string              `dynamodbav:"currency"`
	Status           string              `dynamodbav:"status"`
	PaymentLink      string              `dynamodbav:"payment_link,omitempty"`
	PaymentSessionID string              `dynamodbav:"payment_session_id,omitempty"`
	PaymentReference string              `dynamodbav:"payment_reference,omitempty"`
	Timeline         []timelineEventItem `dynamodbav:"timeline"`
	PaidAt           string              `dynamodbav:"paid_at,omitempty"`
	Version          int64               `dynamodbav:"version"`
	CreatedAt        string              `dynamodbav:"created_at"`
	UpdatedAt        string              `dynamodbav:"updated_at"`
}

// InvoiceDynamoRepository persists Invoice entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: work_order_id-index (PK: work_order_id)
type InvoiceDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IInvoiceRepository = (*InvoiceDynamoRepository)(nil)

func NewInvoiceDynamoRepository(ddb DynamoAPI, tableName string) *InvoiceDynamoRepository {
	return &InvoiceDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *InvoiceDynamoRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	if inv.Version == 0 {
		inv.Version = 1
	}
	av, err := attributevalue.MarshalMap(toInvoiceItem(inv))
	if err != nil {
		return entities.Invoice{}, err
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
		return entities.Invoice{}, translate(err, interfaces.ErrAlreadyExists)
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Item) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) GetByWorkOrderID(ctx context.Context, workOrderID string) (entities.Invoice, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(workOrderIDIndex),
		KeyConditionExpression: aws.String("work_order_id = :wo"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":wo": strValue(workOrderID),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Items) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) Update(ctx context.Context, inv entities.Invoice, expectedVersion int64) (entities.Invoice, error) {
	inv.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toInvoiceItem(inv))
	if err != nil {
		return entities.Invoice{}, err
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
		return entities.Invoice{}, translate(err, interfaces.ErrVersionConflict)
	}
	return inv, nil
}

func toInvoiceItem(inv entities.Invoice) invoiceItem {
	return invoiceItem{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		WorkOrderID:      inv.WorkOrderID,
		ClientID:         inv.ClientID,
		QuoteID:          inv.QuoteID,
		Amount:           decimalString(inv.Amount),
		Currency:         inv.Currency,
		Status:           string(inv.Status),
		PaymentLink:      inv.PaymentLink,
		PaymentSessionID: inv.PaymentSessionID,
		PaymentReference: inv.PaymentReference,
		Timeline:         toTimelineItems(inv.Timeline),
		PaidAt:           formatTimePtr(inv.PaidAt),
		Version:          inv.Version,
		CreatedAt:        formatTime(inv.CreatedAt),
		UpdatedAt:        formatTime(inv.UpdatedAt),
	}
}

func fromInvoiceItem(it invoiceItem) entities.Invoice {
	return entities.Invoice{
		ID:               it.ID,
		InvoiceNumber:    it.InvoiceNumber,
		WorkOrderID:      it.WorkOrderID,
		ClientID:         it.ClientID,
		QuoteID:          it.QuoteID,
		Amount:           parseDecimal(it.Amount),
		Currency:         it.Currency,
		Status:           entities.InvoiceStatus(it.Status),
		PaymentLink:      it.PaymentLink,
		PaymentSessionID: it.PaymentSessionID,
		PaymentReference: it.PaymentReference,
		Timeline:         fromTimelineItems(it.Timeline),
		PaidAt:           parseTimePtr(it.PaidAt),
		Version:          it.Version,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
	}
}
