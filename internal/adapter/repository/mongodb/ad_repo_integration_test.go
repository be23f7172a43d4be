//go:build integration

package mongodb

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/testenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	db, stop, err := testenv.Mongo("classifieds_test")
	if err != nil {
		log.Fatal(err)
	}
	testDB = db
	code := m.Run()
	stop()
	os.Exit(code)
}

func TestAdRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.Drop(ctx))
	repo, err := NewAdRepository(testDB, logger.NewNop())
	require.NoError(t, err)

	bike := &domain.Advertisement{Title: "Mountain bike", Price: 300, Condition: domain.ConditionUsedGood,
		Status: domain.AdStatusActive, SellerID: 12, CityID: 100, CategoryID: 3}
	phone := &domain.Advertisement{Title: "Phone", Price: 80, Condition: domain.ConditionNew,
		Status: domain.AdStatusSold, SellerID: 12, CityID: 200, CategoryID: 8}
	require.NoError(t, repo.Create(ctx, bike))
	require.NoError(t, repo.Create(ctx, phone))
	assert.Equal(t, bike.ID+1, phone.ID)

	got, err := repo.FindByID(ctx, bike.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mountain bike", got.Title)

	ads, total, err := repo.Find(ctx, domain.AdFilter{Keyword: "BIKE", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, ads, 1)
	assert.Equal(t, bike.ID, ads[0].ID)

	ads, total, err = repo.Find(ctx, domain.AdFilter{CityIDs: []int64{100, 200}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, ads, 1)
	assert.Equal(t, phone.ID, ads[0].ID, "newest first")

	n, err := repo.CountBySeller(ctx, 12, domain.AdStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bike.Price = 250
	require.NoError(t, repo.Update(ctx, bike))
	got, err = repo.FindByID(ctx, bike.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Price)

	require.NoError(t, repo.Delete(ctx, bike.ID))
	_, err = repo.FindByID(ctx, bike.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, bike.ID), domain.ErrNotFound)
}
