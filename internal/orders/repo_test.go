package orders

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

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS discounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  percent TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS taxes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  percent TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  discount_id TEXT REFERENCES discounts(id) ON DELETE SET NULL,
  tax_id TEXT REFERENCES taxes(id) ON DELETE SET NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL REFERENCES items(id),
  PRIMARY KEY (order_id, item_id)
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newItem(t *testing.T, db *gorm.DB, name string, priceCents int64, currency enums.Currency) models.Item {
	t.Helper()

	item := models.Item{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Currency:   currency,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func newDiscount(t *testing.T, db *gorm.DB, percent string) *models.Discount {
	t.Helper()

	discount := &models.Discount{
		ID:      uuid.New(),
		Name:    "Test Discount",
		Percent: decimal.RequireFromString(percent),
	}
	require.NoError(t, db.Create(discount).Error)
	return discount
}

func newTax(t *testing.T, db *gorm.DB, percent string) *models.Tax {
	t.Helper()

	tax := &models.Tax{
		ID:      uuid.New(),
		Name:    "Test Tax",
		Percent: decimal.RequireFromString(percent),
	}
	require.NoError(t, db.Create(tax).Error)
	return tax
}

func TestRepositoryCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tee := newItem(t, db, "Tee", 500, enums.CurrencyUSD)
	mug := newItem(t, db, "Mug", 1500, enums.CurrencyUSD)
	discount := newDiscount(t, db, "10")
	tax := newTax(t, db, "20")

	order := &models.Order{
		ID:         uuid.New(),
		Items:      []models.Item{tee, mug},
		DiscountID: &discount.ID,
		TaxID:      &tax.ID,
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Items, 2)
	require.NotNil(t, found.Discount)
	assert.True(t, found.Discount.Percent.Equal(decimal.RequireFromString("10")))
	require.NotNil(t, found.Tax)
	assert.True(t, found.Tax.Percent.Equal(decimal.RequireFromString("20")))
}

func TestRepositoryFindOrderAfterDiscountDeleted(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tee := newItem(t, db, "Tee", 500, enums.CurrencyUSD)
	discount := newDiscount(t, db, "15")

	order := &models.Order{
		ID:         uuid.New(),
		Items:      []models.Item{tee},
		DiscountID: &discount.ID,
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Discount{}, "id = ?", discount.ID).Error)

	found, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, found.DiscountID)
	assert.Nil(t, found.Discount)
}

func TestRepositoryFindOrderNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tee := newItem(t, db, "Tee", 500, enums.CurrencyUSD)
	for i := 0; i < 2; i++ {
		order := &models.Order{ID: uuid.New(), Items: []models.Item{tee}}
		_, err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
	}

	rows, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row.Items, 1)
	}
}
