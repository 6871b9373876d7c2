package services

import (
	"context"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/metrics"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// instrumentedDynamoDB records latency and failures of every call it forwards
type instrumentedDynamoDB struct {
	next DynamoDBAPI
}

// InstrumentDynamoDB wraps api so each call is recorded in the store metrics
func InstrumentDynamoDB(api DynamoDBAPI) DynamoDBAPI {
	return &instrumentedDynamoDB{next: api}
}

func (i *instrumentedDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	start := time.Now()
	out, err := i.next.GetItem(ctx, params, optFns...)
	metrics.RecordStoreOperation("GetItem", time.Since(start), err)
	return out, err
}

func (i *instrumentedDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	start := time.Now()
	out, err := i.next.PutItem(ctx, params, optFns...)
	// a failed condition is an expected outcome, not a store failure
	if isConditionFailed(err) {
		metrics.RecordStoreOperation("PutItem", time.Since(start), nil)
	} else {
		metrics.RecordStoreOperation("PutItem", time.Since(start), err)
	}
	return out, err
}

func (i *instrumentedDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	start := time.Now()
	out, err := i.next.DeleteItem(ctx, params, optFns...)
	metrics.RecordStoreOperation("DeleteItem", time.Since(start), err)
	return out, err
}

func (i *instrumentedDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	start := time.Now()
	out, err := i.next.Scan(ctx, params, optFns...)
	metrics.RecordStoreOperation("Scan", time.Since(start), err)
	return out, err
}
