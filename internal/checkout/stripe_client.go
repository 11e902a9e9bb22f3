package checkout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgstripe "github.com/mercaline/storefront-backend/pkg/stripe"
)

// SessionInput assembles everything a hosted checkout session needs. CouponID
// and TaxRateID are provider resource IDs already materialized for this
// request; either may be empty.
type SessionInput struct {
	LineItems  []LineItem
	CouponID   string
	TaxRateID  string
	SuccessURL string
	CancelURL  string
}

// Provider exposes the subset of payment provider operations the checkout
// service needs. Calls run against the credential set resolved for the
// basket's currency.
type Provider interface {
	CreateCoupon(ctx context.Context, creds *pkgstripe.Credentials, spec DiscountSpec) (string, error)
	CreateTaxRate(ctx context.Context, creds *pkgstripe.Credentials, spec TaxSpec) (string, error)
	CreateSession(ctx context.Context, creds *pkgstripe.Credentials, input SessionInput) (string, error)
	CreateIntent(ctx context.Context, creds *pkgstripe.Credentials, amountCents int64, currency enums.Currency) (string, error)
}

type stripeProvider struct{}

// NewStripeProvider wraps the Stripe SDK so the checkout service can be tested.
func NewStripeProvider() Provider {
	return &stripeProvider{}
}

func (p *stripeProvider) CreateCoupon(ctx context.Context, creds *pkgstripe.Credentials, spec DiscountSpec) (string, error) {
	api := creds.API()
	if api == nil {
		return "", fmt.Errorf("no stripe client for currency %s", creds.Currency)
	}

	percent := spec.Percent.InexactFloat64()
	params := &stripe.CouponParams{
		Name:       stripe.String(spec.Name),
		PercentOff: stripe.Float64(percent),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.Context = ctx

	coupon, err := api.Coupons.New(params)
	if err != nil {
		return "", err
	}
	return coupon.ID, nil
}

func (p *stripeProvider) CreateTaxRate(ctx context.Context, creds *pkgstripe.Credentials, spec TaxSpec) (string, error) {
	api := creds.API()
	if api == nil {
		return "", fmt.Errorf("no stripe client for currency %s", creds.Currency)
	}

	params := &stripe.TaxRateParams{
		DisplayName: stripe.String(spec.Name),
		Percentage:  stripe.Float64(spec.Percent.InexactFloat64()),
		Inclusive:   stripe.Bool(false),
	}
	params.Context = ctx

	rate, err := api.TaxRates.New(params)
	if err != nil {
		return "", err
	}
	return rate.ID, nil
}

func (p *stripeProvider) CreateSession(ctx context.Context, creds *pkgstripe.Credentials, input SessionInput) (string, error) {
	api := creds.API()
	if api == nil {
		return "", fmt.Errorf("no stripe client for currency %s", creds.Currency)
	}

	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, line := range input.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.Description != "" {
			productData.Description = stripe.String(line.Description)
		}
		lineParams := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(line.Currency.String()),
				UnitAmount:  stripe.Int64(line.AmountCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(line.Quantity),
		}
		if input.TaxRateID != "" {
			lineParams.TaxRates = stripe.StringSlice([]string{input.TaxRateID})
		}
		lines = append(lines, lineParams)
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:          lines,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
	}
	if input.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(input.CouponID)},
		}
	}
	params.Context = ctx

	session, err := api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (p *stripeProvider) CreateIntent(ctx context.Context, creds *pkgstripe.Credentials, amountCents int64, currency enums.Currency) (string, error) {
	api := creds.API()
	if api == nil {
		return "", fmt.Errorf("no stripe client for currency %s", creds.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency.String()),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}
