package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DB provides access to the registration table
type DB struct {
	Client *dynamodb.Client
	Table  string
}

// New creates a new DB instance
func New(client *dynamodb.Client, table string) (*DB, error) {
	if client == nil {
		return nil, errors.New("cannot use nil dynamodb client")
	}
	if table == "" {
		return nil, errors.New("cannot use empty table name")
	}
	return &DB{
		Client: client,
		Table:  table,
	}, nil
}

// Ping checks that the table is reachable
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(db.Table),
	})
	if err != nil {
		return fmt.Errorf("describing table %s: %w", db.Table, err)
	}
	return nil
}

// SetupDatabase builds the DynamoDB client and, when configured, makes sure the table exists
func SetupDatabase(ctx context.Context, cfg config.Config) (*DB, error) {
	if err := cfg.DynamoDB.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.DynamoDB.Region),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), int(cfg.DynamoDB.MaxAttempts))
		}),
		awsconfig.WithLogger(NewZerologLogger(log.Logger)),
	}
	if cfg.DynamoDB.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.DynamoDB.AccessKeyID, cfg.DynamoDB.SecretAccessKey, ""),
		))
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		opts = append(opts, awsconfig.WithClientLogMode(aws.LogRetries))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})
	log.Info().
		Str("endpoint", cfg.DynamoDB.Endpoint).
		Str("region", cfg.DynamoDB.Region).
		Str("table", cfg.DynamoDB.Table).
		Msg("Using DynamoDB")

	if cfg.DynamoDB.AutoCreateTable {
		spec := TableSpec{
			Name:          cfg.DynamoDB.Table,
			ReadCapacity:  cfg.DynamoDB.ReadCapacity,
			WriteCapacity: cfg.DynamoDB.WriteCapacity,
			Wait:          cfg.DynamoDB.TableWait,
		}
		if err := EnsureSchema(ctx, client, spec); err != nil {
			return nil, fmt.Errorf("ensuring table schema: %w", err)
		}
	}

	dbConn, err := New(client, cfg.DynamoDB.Table)
	if err != nil {
		return nil, fmt.Errorf("creating DB handler: %w", err)
	}

	return dbConn, nil
}
