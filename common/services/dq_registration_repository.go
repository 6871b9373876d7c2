package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/db"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
)

const (
	conditionKeyAbsent  = "attribute_not_exists(#pk)"
	conditionKeyPresent = "attribute_exists(#pk)"
)

// DynamoDqRegistrationRepository is a DynamoDB implementation of DqRegistrationRepository
type DynamoDqRegistrationRepository struct {
	api      DynamoDBAPI
	table    string
	pageSize int32
}

// RepositoryOption configures a DynamoDqRegistrationRepository
type RepositoryOption func(*DynamoDqRegistrationRepository)

// WithScanPageSize limits the number of items read per scan page.
// Sizes beyond the API's int32 limit are clamped to it.
func WithScanPageSize(size uint) RepositoryOption {
	return func(r *DynamoDqRegistrationRepository) {
		if size > math.MaxInt32 {
			log.Warn().Uint("size", size).Msg("Scan page size too large, clamping")
			size = math.MaxInt32
		}
		r.pageSize = int32(size)
	}
}

// NewDqRegistrationRepository creates a new DynamoDB DqRegistrationRepository
func NewDqRegistrationRepository(api DynamoDBAPI, table string, opts ...RepositoryOption) DqRegistrationRepository {
	r := &DynamoDqRegistrationRepository{
		api:   api,
		table: table,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ScanAll scans the whole table
func (r *DynamoDqRegistrationRepository) ScanAll(ctx context.Context) ([]models.DqRegistration, error) {
	log.Trace().Msg("Entering ScanAll()")

	input := &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	}
	if r.pageSize > 0 {
		input.Limit = aws.Int32(r.pageSize)
	}

	registrations := []models.DqRegistration{}
	paginator := dynamodb.NewScanPaginator(r.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning table %s: %w", r.table, err)
		}

		var items []models.DqRegistration
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshalling scan page: %w", err)
		}
		registrations = append(registrations, items...)
	}

	return registrations, nil
}

// Get reads a single registration with a consistent read
func (r *DynamoDqRegistrationRepository) Get(ctx context.Context, dataSourceName string) (mo.Option[models.DqRegistration], error) {
	log.Trace().Str("dataSourceName", dataSourceName).Msg("Entering Get()")

	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyOf(dataSourceName),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return mo.None[models.DqRegistration](), fmt.Errorf("getting registration %s: %w", dataSourceName, err)
	}
	if len(out.Item) == 0 {
		return mo.None[models.DqRegistration](), nil
	}

	var registration models.DqRegistration
	if err := attributevalue.UnmarshalMap(out.Item, &registration); err != nil {
		return mo.None[models.DqRegistration](), fmt.Errorf("unmarshalling registration %s: %w", dataSourceName, err)
	}
	return mo.Some(registration), nil
}

// Put upserts a registration
func (r *DynamoDqRegistrationRepository) Put(ctx context.Context, registration models.DqRegistration) error {
	log.Trace().Str("dataSourceName", registration.DataSourceName).Msg("Entering Put()")
	return r.put(ctx, registration, "")
}

// PutIfAbsent stores a registration unless the key already exists
func (r *DynamoDqRegistrationRepository) PutIfAbsent(ctx context.Context, registration models.DqRegistration) error {
	log.Trace().Str("dataSourceName", registration.DataSourceName).Msg("Entering PutIfAbsent()")

	err := r.put(ctx, registration, conditionKeyAbsent)
	if isConditionFailed(err) {
		return fmt.Errorf("%w: %s", common.ErrDuplicateRegistration, registration.DataSourceName)
	}
	return err
}

// PutIfExists overwrites a registration only if the key still exists
func (r *DynamoDqRegistrationRepository) PutIfExists(ctx context.Context, registration models.DqRegistration) error {
	log.Trace().Str("dataSourceName", registration.DataSourceName).Msg("Entering PutIfExists()")

	err := r.put(ctx, registration, conditionKeyPresent)
	if isConditionFailed(err) {
		return fmt.Errorf("%w: %s", common.ErrRegistrationNotFound, registration.DataSourceName)
	}
	return err
}

// Delete removes a registration without checking what is stored
func (r *DynamoDqRegistrationRepository) Delete(ctx context.Context, dataSourceName string) error {
	log.Trace().Str("dataSourceName", dataSourceName).Msg("Entering Delete()")

	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(dataSourceName),
	})
	if err != nil {
		return fmt.Errorf("deleting registration %s: %w", dataSourceName, err)
	}
	return nil
}

func (r *DynamoDqRegistrationRepository) put(ctx context.Context, registration models.DqRegistration, condition string) error {
	item, err := attributevalue.MarshalMap(registration)
	if err != nil {
		return fmt.Errorf("marshalling registration %s: %w", registration.DataSourceName, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
		input.ExpressionAttributeNames = map[string]string{"#pk": db.KeyAttribute}
	}

	if _, err := r.api.PutItem(ctx, input); err != nil {
		return fmt.Errorf("putting registration %s: %w", registration.DataSourceName, err)
	}
	return nil
}

func keyOf(dataSourceName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		db.KeyAttribute: &types.AttributeValueMemberS{Value: dataSourceName},
	}
}

func isConditionFailed(err error) bool {
	var ccfe *types.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}
