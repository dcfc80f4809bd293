package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
)

func seedProduct(t *testing.T, conn *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Category: "general",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestRepositoryDecrementStockGuardsNegative(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := seedProduct(t, conn, "Widget", "10", 3)

	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "decrement beyond remaining stock must not apply")

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)

	ok, err = repo.DecrementStock(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryIncrementStock(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := seedProduct(t, conn, "Gadget", "5", 0)

	ok, err := repo.IncrementStock(ctx, product.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Stock)

	ok, err = repo.IncrementStock(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryLookups(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	a := seedProduct(t, conn, "Alpha", "1.50", 10)
	b := seedProduct(t, conn, "Beta", "2", 2)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
	assert.True(t, byIDs[a.ID].Price.Equal(decimal.RequireFromString("1.5")))

	found, err := repo.FindByName(ctx, "  Beta ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.ID, found.ID)

	missing, err := repo.FindByName(ctx, "Gamma")
	require.NoError(t, err)
	assert.Nil(t, missing)

	low, err := repo.ListLowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, b.ID, low[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryDelete(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := seedProduct(t, conn, "Doomed", "3", 1)

	deleted, err := repo.Delete(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
