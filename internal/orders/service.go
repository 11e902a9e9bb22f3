package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercaline/storefront-backend/internal/pricing"
	"github.com/mercaline/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
	"github.com/mercaline/storefront-backend/pkg/logger"
)

// Service exposes order creation and read operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	ListOrders(ctx context.Context) ([]OrderDetail, error)
}

// CreateOrderInput holds the validated payload to create an order. An empty
// item list is accepted; the order only fails later, at checkout.
type CreateOrderInput struct {
	ItemIDs    []uuid.UUID
	DiscountID *uuid.UUID
	TaxID      *uuid.UUID
}

// OrderDetail is an order plus its display total. The total is nil when it
// cannot be priced (empty basket or mixed currencies).
type OrderDetail struct {
	Order      models.Order `json:"order"`
	TotalCents *int64       `json:"total,omitempty"`
	Currency   string       `json:"currency,omitempty"`
}

type itemLoader interface {
	FindItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error)
}

type rateLoader interface {
	FindDiscountByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	FindTaxByID(ctx context.Context, id uuid.UUID) (*models.Tax, error)
}

// service implements the order service.
type service struct {
	repo  *Repository
	items itemLoader
	rates rateLoader
	logg  *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo *Repository, items itemLoader, rates rateLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item loader required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, items: items, rates: rates, logg: logg}, nil
}

// CreateOrder validates every referenced row exists, then persists the order
// with its item links.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	items, err := s.loadItems(ctx, input.ItemIDs)
	if err != nil {
		return nil, err
	}

	if input.DiscountID != nil {
		if _, err := s.rates.FindDiscountByID(ctx, *input.DiscountID); err != nil {
			return nil, translateNotFound(err, "discount")
		}
	}
	if input.TaxID != nil {
		if _, err := s.rates.FindTaxByID(ctx, *input.TaxID); err != nil {
			return nil, translateNotFound(err, "tax")
		}
	}

	order := &models.Order{
		ID:         uuid.New(),
		Items:      items,
		DiscountID: input.DiscountID,
		TaxID:      input.TaxID,
	}
	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	created, err := s.repo.FindOrderByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "order created")
	return created, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "order")
	}
	detail := toDetail(*order)
	return &detail, nil
}

func (s *service) ListOrders(ctx context.Context) ([]OrderDetail, error) {
	rows, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	details := make([]OrderDetail, 0, len(rows))
	for _, order := range rows {
		details = append(details, toDetail(order))
	}
	return details, nil
}

func (s *service) loadItems(ctx context.Context, ids []uuid.UUID) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.items.FindItemsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order items")
	}

	found := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		found[item.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %s not found", id))
		}
	}
	return items, nil
}

// toDetail attaches the display total. An order that cannot be priced still
// renders, just without a total.
func toDetail(order models.Order) OrderDetail {
	detail := OrderDetail{Order: order}

	currency, err := pricing.UniformCurrency(order.Items)
	if err != nil {
		return detail
	}

	prices := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		prices = append(prices, item.PriceCents)
	}
	total := pricing.ComputeTotal(prices, discountPercent(order), taxPercent(order))
	detail.TotalCents = &total
	detail.Currency = currency.String()
	return detail
}

func discountPercent(order models.Order) *decimal.Decimal {
	if order.Discount == nil {
		return nil
	}
	return &order.Discount.Percent
}

func taxPercent(order models.Order) *decimal.Decimal {
	if order.Tax == nil {
		return nil
	}
	return &order.Tax.Percent
}

func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", resource))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("loading %s", resource))
}
