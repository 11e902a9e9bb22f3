package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
	"github.com/mercaline/storefront-backend/pkg/logger"
	"github.com/mercaline/storefront-backend/pkg/metrics"
	pkgstripe "github.com/mercaline/storefront-backend/pkg/stripe"
)

const (
	flowItemSession  = "item_session"
	flowOrderSession = "order_session"
	flowItemIntent   = "item_intent"

	successPath = "/success"
	cancelPath  = "/cancel"
)

// SessionResult is the caller-facing outcome of a session checkout. Degraded
// lists the adjustments that were requested but could not be materialized at
// the provider; the session still charges full price for those.
type SessionResult struct {
	SessionID string   `json:"session_id"`
	Degraded  []string `json:"degraded,omitempty"`
}

// IntentResult carries what a browser needs to confirm a payment intent.
type IntentResult struct {
	ClientSecret string `json:"client_secret"`
	PublicKey    string `json:"public_key"`
}

// Service drives the payment provider through the checkout call sequence.
type Service interface {
	CreateItemSession(ctx context.Context, itemID uuid.UUID, origin string) (*SessionResult, error)
	CreateOrderSession(ctx context.Context, orderID uuid.UUID, origin string) (*SessionResult, error)
	CreateItemIntent(ctx context.Context, itemID uuid.UUID) (*IntentResult, error)
}

type itemStore interface {
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

type orderStore interface {
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type credentialResolver interface {
	Resolve(currency enums.Currency) (*pkgstripe.Credentials, error)
}

// service implements the checkout orchestrator. It performs no writes: every
// request materializes its own provider resources and keeps nothing on failure.
type service struct {
	items    itemStore
	orders   orderStore
	creds    credentialResolver
	provider Provider
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService constructs a checkout service instance.
func NewService(items itemStore, orders orderStore, creds credentialResolver, provider Provider, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential resolver required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		items:    items,
		orders:   orders,
		creds:    creds,
		provider: provider,
		metrics:  m,
		logg:     logg,
	}, nil
}

// CreateItemSession starts a hosted checkout for a single item.
func (s *service) CreateItemSession(ctx context.Context, itemID uuid.UUID, origin string) (*SessionResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration(flowItemSession, time.Since(start)) }()

	item, err := s.items.FindItemByID(ctx, itemID)
	if err != nil {
		s.metrics.IncSession(flowItemSession, "error")
		return nil, translateNotFound(err, "item")
	}

	ctx = s.logg.WithItemID(ctx, itemID.String())
	result, err := s.createSession(ctx, flowItemSession, BuildItemPlan(*item), origin)
	if err != nil {
		s.metrics.IncSession(flowItemSession, "error")
		return nil, err
	}
	s.metrics.IncSession(flowItemSession, "success")
	return result, nil
}

// CreateOrderSession starts a hosted checkout for an order, materializing its
// discount and tax at the provider first.
func (s *service) CreateOrderSession(ctx context.Context, orderID uuid.UUID, origin string) (*SessionResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration(flowOrderSession, time.Since(start)) }()

	order, err := s.orders.FindOrderByID(ctx, orderID)
	if err != nil {
		s.metrics.IncSession(flowOrderSession, "error")
		return nil, translateNotFound(err, "order")
	}

	plan, err := BuildOrderPlan(*order)
	if err != nil {
		s.metrics.IncSession(flowOrderSession, "error")
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	result, err := s.createSession(ctx, flowOrderSession, plan, origin)
	if err != nil {
		s.metrics.IncSession(flowOrderSession, "error")
		return nil, err
	}
	s.metrics.IncSession(flowOrderSession, "success")
	return result, nil
}

// CreateItemIntent runs the lighter intent flow: one item, no discount or tax.
func (s *service) CreateItemIntent(ctx context.Context, itemID uuid.UUID) (*IntentResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration(flowItemIntent, time.Since(start)) }()

	item, err := s.items.FindItemByID(ctx, itemID)
	if err != nil {
		s.metrics.IncSession(flowItemIntent, "error")
		return nil, translateNotFound(err, "item")
	}

	creds, err := s.creds.Resolve(item.Currency)
	if err != nil {
		s.metrics.IncSession(flowItemIntent, "error")
		return nil, err
	}

	ctx = s.logg.WithItemID(ctx, itemID.String())
	clientSecret, err := s.provider.CreateIntent(ctx, creds, item.PriceCents, item.Currency)
	if err != nil {
		s.metrics.IncSession(flowItemIntent, "error")
		s.metrics.IncProviderFailure("payment_intent")
		s.logg.Error(ctx, "payment intent creation failed", err)
		return nil, providerError(err, "creating payment intent")
	}

	s.metrics.IncSession(flowItemIntent, "success")
	return &IntentResult{ClientSecret: clientSecret, PublicKey: creds.PublicKey}, nil
}

// createSession runs the shared coupon -> tax rate -> session sequence.
// Coupon and tax-rate failures degrade the checkout instead of blocking it;
// only the session call itself is fatal.
func (s *service) createSession(ctx context.Context, flow string, plan Plan, origin string) (*SessionResult, error) {
	creds, err := s.creds.Resolve(plan.Currency)
	if err != nil {
		return nil, err
	}

	input := SessionInput{
		LineItems:  plan.LineItems,
		SuccessURL: redirectURL(origin, successPath),
		CancelURL:  redirectURL(origin, cancelPath),
	}

	var degraded []string
	if plan.Discount != nil {
		couponID, err := s.provider.CreateCoupon(ctx, creds, *plan.Discount)
		if err != nil {
			s.metrics.IncProviderFailure("coupon")
			s.metrics.IncDegraded("discount")
			s.logg.Warn(s.logg.WithField(ctx, "discount", plan.Discount.Name), "coupon creation failed, continuing without discount")
			degraded = append(degraded, "discount")
		} else {
			input.CouponID = couponID
		}
	}

	if plan.Tax != nil {
		taxRateID, err := s.provider.CreateTaxRate(ctx, creds, *plan.Tax)
		if err != nil {
			s.metrics.IncProviderFailure("tax_rate")
			s.metrics.IncDegraded("tax")
			s.logg.Warn(s.logg.WithField(ctx, "tax", plan.Tax.Name), "tax rate creation failed, continuing without tax")
			degraded = append(degraded, "tax")
		} else {
			input.TaxRateID = taxRateID
		}
	}

	sessionID, err := s.provider.CreateSession(ctx, creds, input)
	if err != nil {
		s.metrics.IncProviderFailure("session")
		s.logg.Error(ctx, "checkout session creation failed", err)
		return nil, providerError(err, "creating checkout session")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"flow":     flow,
		"session":  sessionID,
		"degraded": degraded,
	}), "checkout session created")
	return &SessionResult{SessionID: sessionID, Degraded: degraded}, nil
}

func redirectURL(origin, path string) string {
	return strings.TrimRight(origin, "/") + path
}

// providerError wraps a failed provider call, surfacing the provider's own
// message to the caller.
func providerError(err error, action string) error {
	message := err.Error()
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		message = stripeErr.Msg
	}
	return pkgerrors.Wrap(pkgerrors.CodeProvider, err, action+" failed").
		WithDetails(map[string]any{"provider_message": message})
}

func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", resource))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("loading %s", resource))
}
