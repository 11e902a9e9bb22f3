package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercaline/storefront-backend/pkg/db"
	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
	"github.com/mercaline/storefront-backend/pkg/logger"
	"github.com/mercaline/storefront-backend/pkg/redis"
)

const itemCacheScope = "item"

// Service exposes catalog reads plus the admin mutations for items,
// discounts, and taxes.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)

	CreateDiscount(ctx context.Context, input CreateDiscountInput) (*models.Discount, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
	ListDiscounts(ctx context.Context) ([]models.Discount, error)

	CreateTax(ctx context.Context, input CreateTaxInput) (*models.Tax, error)
	DeleteTax(ctx context.Context, id uuid.UUID) error
	ListTaxes(ctx context.Context) ([]models.Tax, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    enums.Currency
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *enums.Currency
}

// CreateDiscountInput holds the validated payload to create a discount.
type CreateDiscountInput struct {
	Name    string
	Percent decimal.Decimal
}

// CreateTaxInput holds the validated payload to create a tax rate.
type CreateTaxInput struct {
	Name    string
	Percent decimal.Decimal
}

type itemCache interface {
	CacheKey(scope, id string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// service implements the catalog service.
type service struct {
	repo     *Repository
	cache    itemCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService constructs a catalog service instance. The cache is optional;
// item reads fall through to the database when it is nil.
func NewService(repo *Repository, cache *redis.Client, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{repo: repo, cacheTTL: cacheTTL, logg: logg}
	if cache != nil {
		svc.cache = cache
	}
	return svc, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown currency %q", currency))
	}

	item := &models.Item{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    currency,
	}
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating item")
	}
	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "item")
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.PriceCents = *input.PriceCents
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown currency %q", *input.Currency))
		}
		item.Currency = *input.Currency
	}

	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating item")
	}
	s.dropCachedItem(ctx, id)
	return updated, nil
}

// DeleteItem removes an item. Items referenced by an order cannot be deleted;
// the order_items link has no SET NULL rule, unlike discount and tax refs.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindItemByID(ctx, id); err != nil {
		return translateNotFound(err, "item")
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "item is referenced by an order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting item")
	}
	s.dropCachedItem(ctx, id)
	return nil
}

// GetItem serves item reads through the cache when one is configured. Cache
// failures degrade to a database read and are logged, never surfaced.
func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if cached := s.cachedItem(ctx, id); cached != nil {
		return cached, nil
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "item")
	}

	s.storeCachedItem(ctx, item)
	return item, nil
}

func (s *service) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing items")
	}
	return items, nil
}

func (s *service) CreateDiscount(ctx context.Context, input CreateDiscountInput) (*models.Discount, error) {
	if err := validatePercent(input.Percent, true); err != nil {
		return nil, err
	}
	discount := &models.Discount{ID: uuid.New(), Name: input.Name, Percent: input.Percent}
	created, err := s.repo.CreateDiscount(ctx, discount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating discount")
	}
	return created, nil
}

func (s *service) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindDiscountByID(ctx, id); err != nil {
		return translateNotFound(err, "discount")
	}
	if err := s.repo.DeleteDiscount(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting discount")
	}
	return nil
}

func (s *service) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	discounts, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing discounts")
	}
	return discounts, nil
}

func (s *service) CreateTax(ctx context.Context, input CreateTaxInput) (*models.Tax, error) {
	if err := validatePercent(input.Percent, false); err != nil {
		return nil, err
	}
	tax := &models.Tax{ID: uuid.New(), Name: input.Name, Percent: input.Percent}
	created, err := s.repo.CreateTax(ctx, tax)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating tax")
	}
	return created, nil
}

func (s *service) DeleteTax(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindTaxByID(ctx, id); err != nil {
		return translateNotFound(err, "tax")
	}
	if err := s.repo.DeleteTax(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting tax")
	}
	return nil
}

func (s *service) ListTaxes(ctx context.Context) ([]models.Tax, error) {
	taxes, err := s.repo.ListTaxes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing taxes")
	}
	return taxes, nil
}

func (s *service) cachedItem(ctx context.Context, id uuid.UUID) *models.Item {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(itemCacheScope, id.String()))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithItemID(ctx, id.String()), "item cache read failed")
		}
		return nil
	}
	var item models.Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		s.dropCachedItem(ctx, id)
		return nil
	}
	return &item
}

func (s *service) storeCachedItem(ctx context.Context, item *models.Item) {
	if s.cache == nil || item == nil {
		return
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return
	}
	key := s.cache.CacheKey(itemCacheScope, item.ID.String())
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithItemID(ctx, item.ID.String()), "item cache write failed")
	}
}

func (s *service) dropCachedItem(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CacheKey(itemCacheScope, id.String())); err != nil {
		s.logg.Warn(s.logg.WithItemID(ctx, id.String()), "item cache invalidation failed")
	}
}

func validatePercent(percent decimal.Decimal, capped bool) error {
	if percent.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent cannot be negative")
	}
	if capped && percent.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent cannot exceed 100")
	}
	return nil
}

func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", resource))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("loading %s", resource))
}
