package services

import (
	"context"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/samber/mo"
)

// DynamoDBAPI is the part of the DynamoDB client the repository calls
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DqRegistrationRepository defines the storage operations for registrations
type DqRegistrationRepository interface {
	// ScanAll returns every stored registration, draining all scan pages
	ScanAll(ctx context.Context) ([]models.DqRegistration, error)

	// Get looks up a registration by data source name
	Get(ctx context.Context, dataSourceName string) (mo.Option[models.DqRegistration], error)

	// Put stores a registration, overwriting any existing one
	Put(ctx context.Context, registration models.DqRegistration) error

	// PutIfAbsent stores a registration only if its key is not taken yet
	PutIfAbsent(ctx context.Context, registration models.DqRegistration) error

	// PutIfExists overwrites a registration only if its key is still present
	PutIfExists(ctx context.Context, registration models.DqRegistration) error

	// Delete removes a registration unconditionally
	Delete(ctx context.Context, dataSourceName string) error
}

// EventPublisher announces registration changes to downstream consumers
type EventPublisher interface {
	PublishRegistrationEvent(ctx context.Context, event models.RegistrationEvent) error
}
