package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
	"github.com/mercaline/storefront-backend/pkg/logger"
	"github.com/mercaline/storefront-backend/pkg/redis"
)

type fakeCache struct {
	entries map[string]string
	sets    int
	dels    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) CacheKey(scope, id string) string {
	return strings.Join([]string{"test", scope, id}, ":")
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	value, ok := f.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.entries[key] = string(v)
	case string:
		f.entries[key] = v
	}
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.dels++
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func newTestService(t *testing.T) (*service, *fakeCache) {
	t.Helper()

	db := setupCatalogTestDB(t)
	cache := newFakeCache()
	return &service{
		repo:     NewRepository(db),
		cache:    cache,
		cacheTTL: time.Minute,
		logg:     logger.New(logger.Options{ServiceName: "catalog-test"}),
	}, cache
}

func TestServiceGetItemReadThroughCache(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, CreateItemInput{Name: "Tee", PriceCents: 500, Currency: enums.CurrencyUSD})
	require.NoError(t, err)

	first, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), first.PriceCents)
	assert.Equal(t, 1, cache.sets)

	// A stale DB row proves the second read was served from the cache.
	require.NoError(t, svc.repo.db.Model(first).Update("price_cents", 999).Error)

	second, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), second.PriceCents)
}

func TestServiceUpdateItemInvalidatesCache(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, CreateItemInput{Name: "Mug", PriceCents: 1500})
	require.NoError(t, err)

	_, err = svc.GetItem(ctx, created.ID)
	require.NoError(t, err)

	newPrice := int64(1800)
	_, err = svc.UpdateItem(ctx, created.ID, UpdateItemInput{PriceCents: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.dels)

	reloaded, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, newPrice, reloaded.PriceCents)
}

func TestServiceCreateItemDefaultsAndValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, CreateItemInput{Name: "Sticker", PriceCents: 100})
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyUSD, created.Currency)

	_, err = svc.CreateItem(ctx, CreateItemInput{Name: "Bad", PriceCents: -1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.CreateItem(ctx, CreateItemInput{Name: "Bad", PriceCents: 100, Currency: enums.Currency("gbp")})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestServiceDeleteItemReferencedByOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, CreateItemInput{Name: "Tee", PriceCents: 500})
	require.NoError(t, err)

	orderID := uuid.New()
	require.NoError(t, svc.repo.db.Exec("INSERT INTO orders (id) VALUES (?)", orderID.String()).Error)
	require.NoError(t, svc.repo.db.Exec("INSERT INTO order_items (order_id, item_id) VALUES (?, ?)", orderID.String(), created.ID.String()).Error)

	err = svc.DeleteItem(ctx, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// the failed delete leaves the item in place
	_, err = svc.GetItem(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.repo.db.Exec("DELETE FROM order_items WHERE order_id = ?", orderID.String()).Error)
	require.NoError(t, svc.DeleteItem(ctx, created.ID))
}

func TestServiceGetItemNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetItem(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestValidatePercent(t *testing.T) {
	require.NoError(t, validatePercent(decimal.RequireFromString("0"), true))
	require.NoError(t, validatePercent(decimal.RequireFromString("100"), true))
	require.NoError(t, validatePercent(decimal.RequireFromString("150"), false))

	err := validatePercent(decimal.RequireFromString("-1"), true)
	require.NotNil(t, pkgerrors.As(err))

	err = validatePercent(decimal.RequireFromString("100.01"), true)
	require.NotNil(t, pkgerrors.As(err))
}
