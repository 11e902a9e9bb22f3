package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  created_at DATETIME,
  updated_at DATETIME
);`
	discounts := `
CREATE TABLE IF NOT EXISTS discounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  percent TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	taxes := `
CREATE TABLE IF NOT EXISTS taxes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  percent TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  discount_id TEXT REFERENCES discounts(id) ON DELETE SET NULL,
  tax_id TEXT REFERENCES taxes(id) ON DELETE SET NULL,
  created_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL REFERENCES items(id),
  PRIMARY KEY (order_id, item_id)
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(discounts).Error)
	require.NoError(t, db.Exec(taxes).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func mustCreateTestItem(t *testing.T, db *gorm.DB, name string, priceCents int64, currency enums.Currency) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Currency:   currency,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryItemCRUD(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateItem(ctx, &models.Item{
		ID:          uuid.New(),
		Name:        "Poster",
		Description: "A3 print",
		PriceCents:  1500,
		Currency:    enums.CurrencyUSD,
	})
	require.NoError(t, err)

	found, err := repo.FindItemByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poster", found.Name)
	assert.Equal(t, int64(1500), found.PriceCents)

	found.PriceCents = 1800
	_, err = repo.UpdateItem(ctx, found)
	require.NoError(t, err)

	reloaded, err := repo.FindItemByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), reloaded.PriceCents)

	require.NoError(t, repo.DeleteItem(ctx, created.ID))
	_, err = repo.FindItemByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindItemsByIDs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tee := mustCreateTestItem(t, db, "Tee", 500, enums.CurrencyUSD)
	mug := mustCreateTestItem(t, db, "Mug", 1500, enums.CurrencyUSD)

	items, err := repo.FindItemsByIDs(ctx, []uuid.UUID{tee.ID, mug.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	empty, err := repo.FindItemsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryDiscountDeleteClearsOrderReference(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	discount, err := repo.CreateDiscount(ctx, &models.Discount{
		ID:      uuid.New(),
		Name:    "Spring Sale",
		Percent: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	order := &models.Order{ID: uuid.New(), DiscountID: &discount.ID}
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, repo.DeleteDiscount(ctx, discount.ID))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Nil(t, reloaded.DiscountID)
}

func TestRepositoryTaxDeleteClearsOrderReference(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tax, err := repo.CreateTax(ctx, &models.Tax{
		ID:      uuid.New(),
		Name:    "VAT",
		Percent: decimal.RequireFromString("20"),
	})
	require.NoError(t, err)

	order := &models.Order{ID: uuid.New(), TaxID: &tax.ID}
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, repo.DeleteTax(ctx, tax.ID))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Nil(t, reloaded.TaxID)
}

func TestRepositoryListDiscountsAndTaxes(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.CreateDiscount(ctx, &models.Discount{ID: uuid.New(), Name: "A", Percent: decimal.RequireFromString("5")})
	require.NoError(t, err)
	_, err = repo.CreateTax(ctx, &models.Tax{ID: uuid.New(), Name: "B", Percent: decimal.RequireFromString("7.25")})
	require.NoError(t, err)

	discounts, err := repo.ListDiscounts(ctx)
	require.NoError(t, err)
	assert.Len(t, discounts, 1)

	taxes, err := repo.ListTaxes(ctx)
	require.NoError(t, err)
	assert.Len(t, taxes, 1)
	assert.True(t, taxes[0].Percent.Equal(decimal.RequireFromString("7.25")))
}
