package repository

import (
	"context"
	"sort"
	"time"

	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type lineItemItem struct {
	Description string `dynamodbav:"description"`
	Quantity    string `dynamodbav:"quantity"`
	UnitPrice   string `dynamodbav:"unit_price"`
	Amount      string `dynamodbav:"amount"`
}

type quoteItem struct {
	ID              string `dynamodbav:"id"`
	WorkOrderID     string `dynamodbav:"work_order_id"`
	SubcontractorID string `dynamodbav:"subcontractor_id"`

	LaborCost        string         `dynamodbav:"labor_cost"`
	MaterialCost     string         `dynamodbav:"material_cost"`
	AdditionalCosts  string         `dynamodbav:"additional_costs"`
	DiscountAmount   string         `dynamodbav:"discount_amount"`
	TotalAmount      string         `dynamodbav:"total_amount"`
	MarkupPercentage string         `dynamodbav:"markup_percentage"`
	ClientAmount     string         `dynamodbav:"client_amount"`
	LineItems        []lineItemItem `dynamodbav:"line_items"`

	Notes     string `dynamodbav:"notes,omitempty"`
	Status    string `dynamodbav:"status"`
	Revision  int    `dynamodbav:"revision"`
	DecidedBy string `dynamodbav:"decided_by,omitempty"`
	DecidedAt string `dynamodbav:"decided_at,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// activeGuardItem reserves the single open quote slot of a subcontractor on a work order.
// It has no work_order_id, so it stays out of the GSI and out of ListAll.
type activeGuardItem struct {
	ID      string `dynamodbav:"id"`
	QuoteID string `dynamodbav:"quote_id"`
}

// QuoteDynamoRepository persists the bid ledger in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: work_order_id-index (PK: work_order_id)
type QuoteDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IQuoteRepository = (*QuoteDynamoRepository)(nil)

func NewQuoteDynamoRepository(ddb DynamoAPI, tableName string) *QuoteDynamoRepository {
	return &QuoteDynamoRepository{ddb: ddb, tableName: tableName}
}

func activeGuardID(workOrderID, subcontractorID string) string {
	return "active#" + workOrderID + "#" + subcontractorID
}

func openStatusValues() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":pending": strValue(string(entities.QuotePending)),
		":sent":    strValue(string(entities.QuoteSentToClient)),
	}
}

func (r *QuoteDynamoRepository) Create(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	av, err := attributevalue.MarshalMap(toQuoteItem(q))
	if err != nil {
		return entities.Quote{}, err
	}
	guard, err := attributevalue.MarshalMap(activeGuardItem{ID: activeGuardID(q.WorkOrderID, q.SubcontractorID), QuoteID: q.ID})
	if err != nil {
		return entities.Quote{}, err
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
		return entities.Quote{}, translate(err, interfaces.ErrAlreadyExists)
	}
	return q, nil
}

func (r *QuoteDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quote{}, err
	}
	if len(out.Item) == 0 {
		return entities.Quote{}, nil
	}

	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Quote{}, err
	}
	if it.WorkOrderID == "" {
		return entities.Quote{}, nil
	}
	return fromQuoteItem(it), nil
}

func (r *QuoteDynamoRepository) ListByWorkOrderID(ctx context.Context, workOrderID string) ([]entities.Quote, error) {
	raw, err := queryAll(ctx, r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(workOrderIDIndex),
		KeyConditionExpression: aws.String("work_order_id = :wo"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":wo": strValue(workOrderID),
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeQuotes(raw)
}

func (r *QuoteDynamoRepository) ListAll(ctx context.Context) ([]entities.Quote, error) {
	raw, err := scanAll(ctx, r.ddb, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("attribute_exists(work_order_id)"),
	})
	if err != nil {
		return nil, err
	}
	return decodeQuotes(raw)
}

func decodeQuotes(raw []map[string]types.AttributeValue) ([]entities.Quote, error) {
	out := make([]entities.Quote, 0, len(raw))
	for _, av := range raw {
		var it quoteItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		out = append(out, fromQuoteItem(it))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces a quote that is still open.
func (r *QuoteDynamoRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	av, err := attributevalue.MarshalMap(toQuoteItem(q))
	if err != nil {
		return entities.Quote{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #status IN (:pending, :sent)"),
		ExpressionAttributeNames: map[string]string{
			"#id":     "id",
			"#status": "status",
		},
		ExpressionAttributeValues: openStatusValues(),
	})
	if err != nil {
		return entities.Quote{}, translate(err, interfaces.ErrConditionFailed)
	}
	return q, nil
}

// Decide accepts one quote and rejects its open siblings in a single transaction.
// Every touched quote is conditioned on still being open, so a concurrent decision
// cancels the whole transaction.
func (r *QuoteDynamoRepository) Decide(ctx context.Context, workOrderID, acceptedQuoteID, decidedBy string, at time.Time) ([]entities.Quote, error) {
	chosen, err := r.GetByID(ctx, acceptedQuoteID)
	if err != nil {
		return nil, err
	}
	if chosen.ID == "" || chosen.WorkOrderID != workOrderID || chosen.Status.Terminal() {
		return nil, interfaces.ErrConditionFailed
	}
	siblings, err := r.ListByWorkOrderID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	decidedAt := at.UTC()
	stamp := formatTime(decidedAt)
	var writes []types.TransactWriteItem
	out := make([]entities.Quote, 0, len(siblings))
	for _, q := range siblings {
		if q.ID == acceptedQuoteID {
			q = chosen
		}
		if q.Status == entities.QuoteAccepted {
			return nil, interfaces.ErrConditionFailed
		}
		if q.Status.Terminal() {
			out = append(out, q)
			continue
		}

		next := entities.QuoteRejected
		if q.ID == acceptedQuoteID {
			next = entities.QuoteAccepted
		}
		writes = append(writes, r.decideWrite(q.ID, workOrderID, next, decidedBy, stamp),
			types.TransactWriteItem{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       idKey(activeGuardID(q.WorkOrderID, q.SubcontractorID)),
			}})

		q.Status = next
		q.DecidedBy = decidedBy
		q.DecidedAt = &decidedAt
		q.UpdatedAt = decidedAt
		out = append(out, q)
	}
	if !containsQuote(out, acceptedQuoteID) {
		// The index has not caught up with the chosen quote yet.
		writes = append(writes, r.decideWrite(chosen.ID, workOrderID, entities.QuoteAccepted, decidedBy, stamp),
			types.TransactWriteItem{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       idKey(activeGuardID(chosen.WorkOrderID, chosen.SubcontractorID)),
			}})
		chosen.Status = entities.QuoteAccepted
		chosen.DecidedBy = decidedBy
		chosen.DecidedAt = &decidedAt
		chosen.UpdatedAt = decidedAt
		out = append(out, chosen)
	}

	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		return nil, translate(err, interfaces.ErrConditionFailed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuoteDynamoRepository) decideWrite(id, workOrderID string, status entities.QuoteStatus, decidedBy, stamp string) types.TransactWriteItem {
	values := openStatusValues()
	values[":wo"] = strValue(workOrderID)
	values[":next"] = strValue(string(status))
	values[":by"] = strValue(decidedBy)
	values[":at"] = strValue(stamp)
	return types.TransactWriteItem{Update: &types.Update{
		TableName:           aws.String(r.tableName),
		Key:                 idKey(id),
		ConditionExpression: aws.String("#work_order_id = :wo AND #status IN (:pending, :sent)"),
		UpdateExpression:    aws.String("SET #status = :next, #decided_by = :by, #decided_at = :at, #updated_at = :at"),
		ExpressionAttributeNames: map[string]string{
			"#work_order_id": "work_order_id",
			"#status":        "status",
			"#decided_by":    "decided_by",
			"#decided_at":    "decided_at",
			"#updated_at":    "updated_at",
		},
		ExpressionAttributeValues: values,
	}}
}

func containsQuote(quotes []entities.Quote, id string) bool {
	for _, q := range quotes {
		if q.ID == id {
			return true
		}
	}
	return false
}

func toQuoteItem(q entities.Quote) quoteItem {
	lines := make([]lineItemItem, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		lines = append(lines, lineItemItem{
			Description: li.Description,
			Quantity:    decimalString(li.Quantity),
			UnitPrice:   decimalString(li.UnitPrice),
			Amount:      decimalString(li.Amount),
		})
	}
	return quoteItem{
		ID:               q.ID,
		WorkOrderID:      q.WorkOrderID,
		SubcontractorID:  q.SubcontractorID,
		LaborCost:        decimalString(q.LaborCost),
		MaterialCost:     decimalString(q.MaterialCost),
		AdditionalCosts:  decimalString(q.AdditionalCosts),
		DiscountAmount:   decimalString(q.DiscountAmount),
		TotalAmount:      decimalString(q.TotalAmount),
		MarkupPercentage: decimalString(q.MarkupPercentage),
		ClientAmount:     decimalString(q.ClientAmount),
		LineItems:        lines,
		Notes:            q.Notes,
		Status:           string(q.Status),
		Revision:         q.Revision,
		DecidedBy:        q.DecidedBy,
		DecidedAt:        formatTimePtr(q.DecidedAt),
		CreatedAt:        formatTime(q.CreatedAt),
		UpdatedAt:        formatTime(q.UpdatedAt),
	}
}

func fromQuoteItem(it quoteItem) entities.Quote {
	lines := make([]entities.LineItem, 0, len(it.LineItems))
	for _, li := range it.LineItems {
		lines = append(lines, entities.LineItem{
			Description: li.Description,
			Quantity:    parseDecimal(li.Quantity),
			UnitPrice:   parseDecimal(li.UnitPrice),
			Amount:      parseDecimal(li.Amount),
		})
	}
	return entities.Quote{
		ID:               it.ID,
		WorkOrderID:      it.WorkOrderID,
		SubcontractorID:  it.SubcontractorID,
		LaborCost:        parseDecimal(it.LaborCost),
		MaterialCost:     parseDecimal(it.MaterialCost),
		AdditionalCosts:  parseDecimal(it.AdditionalCosts),
		DiscountAmount:   parseDecimal(it.DiscountAmount),
		TotalAmount:      parseDecimal(it.TotalAmount),
		MarkupPercentage: parseDecimal(it.MarkupPercentage),
		ClientAmount:     parseDecimal(it.ClientAmount),
		LineItems:        lines,
		Notes:            it.Notes,
		Status:           entities.QuoteStatus(it.Status),
		Revision:         it.Revision,
		DecidedBy:        it.DecidedBy,
		DecidedAt:        parseTimePtr(it.DecidedAt),
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
	}
}
