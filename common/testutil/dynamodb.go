// Package testutil holds in-memory doubles shared by the package tests.
package testutil

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeTable struct {
	spec  *dynamodb.CreateTableInput
	items map[string]map[string]types.AttributeValue
}

// FakeDynamoDB is an in-memory stand-in for the DynamoDB operations this service issues.
// Tables are keyed by a single string hash key.
type FakeDynamoDB struct {
	mu     sync.Mutex
	key    string
	tables map[string]*fakeTable

	// PageSize caps Scan pages when the request sets no Limit. Zero means unlimited.
	PageSize int
	// Errors forces an operation ("GetItem", "PutItem", ...) to fail.
	Errors map[string]error
	// Calls counts invocations per operation.
	Calls map[string]int
}

// NewFakeDynamoDB creates a fake whose tables use keyAttribute as hash key
func NewFakeDynamoDB(keyAttribute string) *FakeDynamoDB {
	return &FakeDynamoDB{
		key:    keyAttribute,
		tables: make(map[string]*fakeTable),
		Errors: make(map[string]error),
		Calls:  make(map[string]int),
	}
}

// WithTable pre-creates an empty table
func (f *FakeDynamoDB) WithTable(name string) *FakeDynamoDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
	return f
}

// CreatedTable returns the CreateTable request a table was created with, if any
func (f *FakeDynamoDB) CreatedTable(name string) *dynamodb.CreateTableInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[name]; ok {
		return t.spec
	}
	return nil
}

// ItemCount returns the number of items stored in a table
func (f *FakeDynamoDB) ItemCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[name]; ok {
		return len(t.items)
	}
	return 0
}

func (f *FakeDynamoDB) enter(op string) error {
	f.Calls[op]++
	return f.Errors[op]
}

func (f *FakeDynamoDB) table(name *string) (*fakeTable, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return t, nil
}

func (f *FakeDynamoDB) keyOf(item map[string]types.AttributeValue) (string, bool) {
	s, ok := item[f.key].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func (f *FakeDynamoDB) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeTable"); err != nil {
		return nil, err
	}
	if _, err := f.table(params.TableName); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func (f *FakeDynamoDB) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTable"); err != nil {
		return nil, err
	}
	if _, ok := f.tables[aws.ToString(params.TableName)]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists")}
	}
	f.tables[aws.ToString(params.TableName)] = &fakeTable{
		spec:  params,
		items: make(map[string]map[string]types.AttributeValue),
	}
	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusCreating,
		},
	}, nil
}

func (f *FakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetItem"); err != nil {
		return nil, err
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, _ := f.keyOf(params.Key)
	item, ok := t.items[k]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: maps.Clone(item)}, nil
}

func (f *FakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutItem"); err != nil {
		return nil, err
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, ok := f.keyOf(params.Item)
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing key attribute")}
	}
	_, exists := t.items[k]
	switch cond := aws.ToString(params.ConditionExpression); {
	case strings.HasPrefix(cond, "attribute_not_exists") && exists,
		strings.HasPrefix(cond, "attribute_exists") && !exists:
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	t.items[k] = maps.Clone(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *FakeDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteItem"); err != nil {
		return nil, err
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, _ := f.keyOf(params.Key)
	delete(t.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *FakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Scan"); err != nil {
		return nil, err
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}

	keys := slices.Sorted(maps.Keys(t.items))
	if params.ExclusiveStartKey != nil {
		start, _ := f.keyOf(params.ExclusiveStartKey)
		idx, found := slices.BinarySearch(keys, start)
		if found {
			idx++
		}
		keys = keys[idx:]
	}

	limit := f.PageSize
	if params.Limit != nil {
		limit = int(*params.Limit)
	}

	out := &dynamodb.ScanOutput{}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			f.key: &types.AttributeValueMemberS{Value: keys[len(keys)-1]},
		}
	}
	for _, k := range keys {
		out.Items = append(out.Items, maps.Clone(t.items[k]))
	}
	out.Count = int32(len(out.Items))
	out.ScannedCount = out.Count
	return out, nil
}
