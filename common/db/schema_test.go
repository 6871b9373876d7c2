package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/testutil"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() TableSpec {
	return TableSpec{
		Name:          "DqRegistration",
		ReadCapacity:  1,
		WriteCapacity: 1,
		Wait:          10 * time.Second,
	}
}

func TestEnsureSchemaExistingTable(t *testing.T) {
	fake := testutil.NewFakeDynamoDB(KeyAttribute).WithTable("DqRegistration")

	err := EnsureSchema(context.Background(), fake, testSpec())

	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls["DescribeTable"])
	assert.Zero(t, fake.Calls["CreateTable"])
}

func TestEnsureSchemaCreatesMissingTable(t *testing.T) {
	fake := testutil.NewFakeDynamoDB(KeyAttribute)

	err := EnsureSchema(context.Background(), fake, testSpec())

	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls["CreateTable"])

	created := fake.CreatedTable("DqRegistration")
	require.NotNil(t, created)
	require.Len(t, created.KeySchema, 1)
	assert.Equal(t, KeyAttribute, aws.ToString(created.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, created.KeySchema[0].KeyType)
	assert.Equal(t, types.ScalarAttributeTypeS, created.AttributeDefinitions[0].AttributeType)
	assert.Equal(t, int64(1), aws.ToInt64(created.ProvisionedThroughput.ReadCapacityUnits))
	assert.Equal(t, int64(1), aws.ToInt64(created.ProvisionedThroughput.WriteCapacityUnits))
}

func TestEnsureSchemaDescribeFailure(t *testing.T) {
	fake := testutil.NewFakeDynamoDB(KeyAttribute)
	boom := errors.New("access denied")
	fake.Errors["DescribeTable"] = boom

	err := EnsureSchema(context.Background(), fake, testSpec())

	require.ErrorIs(t, err, boom)
	assert.Zero(t, fake.Calls["CreateTable"])
}

func TestEnsureSchemaCreateFailure(t *testing.T) {
	fake := testutil.NewFakeDynamoDB(KeyAttribute)
	boom := errors.New("limit exceeded")
	fake.Errors["CreateTable"] = boom

	err := EnsureSchema(context.Background(), fake, testSpec())

	require.ErrorIs(t, err, boom)
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(nil, "DqRegistration")
	assert.Error(t, err)
}
