package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// KeyAttribute is the hash key of the registration table
const KeyAttribute = "dataSourceName"

// SchemaAPI is the part of the DynamoDB client used to provision the table
type SchemaAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// TableSpec describes the table EnsureSchema provisions
type TableSpec struct {
	Name          string
	ReadCapacity  int64
	WriteCapacity int64
	Wait          time.Duration
}

// EnsureSchema creates the registration table if it does not exist and waits for it to become active
func EnsureSchema(ctx context.Context, api SchemaAPI, spec TableSpec) error {
	log.Trace().Str("table", spec.Name).Msg("Entering EnsureSchema()")

	out, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)})
	if err == nil {
		log.Info().
			Str("table", spec.Name).
			Str("status", string(out.Table.TableStatus)).
			Msg("Table status")
		return nil
	}
	var rnfe *types.ResourceNotFoundException
	if !errors.As(err, &rnfe) {
		return fmt.Errorf("describing table %s: %w", spec.Name, err)
	}

	created, err := api.CreateTable(ctx, createTableInput(spec))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", spec.Name, err)
	}
	log.Info().
		Str("table", spec.Name).
		Str("status", string(created.TableDescription.TableStatus)).
		Msg("Table creation triggered")

	wait := spec.Wait
	if wait <= 0 {
		wait = 2 * time.Minute
	}
	waiter := dynamodb.NewTableExistsWaiter(api, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = 1 * time.Second
		o.MaxDelay = 10 * time.Second
	})
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)}, wait); err != nil {
		return fmt.Errorf("waiting for table %s: %w", spec.Name, err)
	}
	log.Info().Str("table", spec.Name).Msg("Table is active")

	return nil
}

func createTableInput(spec TableSpec) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(spec.Name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(KeyAttribute), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(KeyAttribute), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModeProvisioned,
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(spec.ReadCapacity),
			WriteCapacityUnits: aws.Int64(spec.WriteCapacity),
		},
	}
}
