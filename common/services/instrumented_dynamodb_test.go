package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/db"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedRepositoryBehavesLikePlain(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeDynamoDB(db.KeyAttribute).WithTable(testTable)
	repo := NewDqRegistrationRepository(InstrumentDynamoDB(fake), testTable)

	require.NoError(t, repo.PutIfAbsent(ctx, ordersDB()))
	assert.ErrorIs(t, repo.PutIfAbsent(ctx, ordersDB()), common.ErrDuplicateRegistration)

	got, err := repo.Get(ctx, "orders-db")
	require.NoError(t, err)
	assert.Equal(t, ordersDB(), got.MustGet())

	all, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "orders-db"))
	assert.Equal(t, 2, fake.Calls["PutItem"])
	assert.Equal(t, 1, fake.Calls["DeleteItem"])
}

func TestInstrumentedRepositoryPassesErrorsThrough(t *testing.T) {
	boom := errors.New("throttled")
	fake := testutil.NewFakeDynamoDB(db.KeyAttribute).WithTable(testTable)
	fake.Errors["Scan"] = boom
	repo := NewDqRegistrationRepository(InstrumentDynamoDB(fake), testTable)

	_, err := repo.ScanAll(context.Background())
	assert.ErrorIs(t, err, boom)
}
