package database

import (
	"context"
	"errors"
	"fmt"

	appconfig "facility_workorders/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConnectDynamoDB creates a DynamoDB client from the dynamodb config section.
// An endpoint (e.g. http://dynamodb:8000) points the client at DynamoDB Local.
func ConnectDynamoDB(ctx context.Context, cfg appconfig.DynamoDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := NewDynamoDBConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamodb config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}

func NewDynamoDBConfig(ctx context.Context, cfg appconfig.DynamoDBConfig) (aws.Config, error) {
	// Local DynamoDB does not validate credentials, but the AWS SDK requires them.
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	}

	if endpoint := cfg.Endpoint; endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// TableSpec describes one table and its single-attribute global secondary indexes.
type TableSpec struct {
	Name    string
	Indexes []IndexSpec
}

type IndexSpec struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// TableSpecs lists the tables the repositories expect.
func TableSpecs(t appconfig.TablesConfig) []TableSpec {
	return []TableSpec{
		{Name: t.WorkOrders, Indexes: []IndexSpec{{Name: "status-index", PartitionKey: "status", SortKey: "created_at"}}},
		{Name: t.Quotes, Indexes: []IndexSpec{{Name: "work_order_id-index", PartitionKey: "work_order_id"}}},
		{Name: t.Recurring, Indexes: []IndexSpec{{Name: "status-index", PartitionKey: "status"}}},
		{Name: t.Executions, Indexes: []IndexSpec{{Name: "recurring_work_order_id-index", PartitionKey: "recurring_work_order_id"}}},
		{Name: t.Invoices, Indexes: []IndexSpec{{Name: "work_order_id-index", PartitionKey: "work_order_id"}}},
	}
}

type tableAdmin interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// EnsureTables creates missing tables with on-demand billing. Existing tables are left alone.
func EnsureTables(ctx context.Context, ddb tableAdmin, specs []TableSpec, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, spec := range specs {
		_, err := ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return fmt.Errorf("describe table %s: %w", spec.Name, err)
		}

		if _, err := ddb.CreateTable(ctx, createTableInput(spec)); err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				continue
			}
			return fmt.Errorf("create table %s: %w", spec.Name, err)
		}
		log.Info("dynamodb table created", zap.String("table", spec.Name))
	}
	return nil
}

func createTableInput(spec TableSpec) *dynamodb.CreateTableInput {
	attrs := map[string]struct{}{"id": {}}
	var gsis []types.GlobalSecondaryIndex
	for _, idx := range spec.Indexes {
		schema := []types.KeySchemaElement{{AttributeName: aws.String(idx.PartitionKey), KeyType: types.KeyTypeHash}}
		attrs[idx.PartitionKey] = struct{}{}
		if idx.SortKey != "" {
			schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(idx.SortKey), KeyType: types.KeyTypeRange})
			attrs[idx.SortKey] = struct{}{}
		}
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  schema,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	defs := make([]types.AttributeDefinition, 0, len(attrs))
	defs = append(defs, types.AttributeDefinition{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS})
	for name := range attrs {
		if name == "id" {
			continue
		}
		defs = append(defs, types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS})
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(spec.Name),
		BillingMode:            types.BillingModePayPerRequest,
		KeySchema:              []types.KeySchemaElement{{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash}},
		AttributeDefinitions:   defs,
		GlobalSecondaryIndexes: gsis,
	}
}
