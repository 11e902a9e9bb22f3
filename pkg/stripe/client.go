package stripe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stripe/stripe-go/v84/client"

	"github.com/mercaline/storefront-backend/pkg/config"
	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
	"github.com/mercaline/storefront-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errUSDKeysRequired  = errors.New("stripe usd secret and public keys are required")
	errPartialEURKeys   = errors.New("stripe eur keys must be configured as a pair or not at all")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Credentials binds one currency to its Stripe credential pair. Every request
// resolves its own credentials; there is no process-wide active key.
type Credentials struct {
	Currency  enums.Currency
	PublicKey string
	api       *client.API
}

// API returns the Stripe API client bound to this credential pair.
func (c *Credentials) API() *client.API {
	if c == nil {
		return nil
	}
	return c.api
}

// Client holds one Stripe API client per configured currency.
type Client struct {
	environment string
	byCurrency  map[enums.Currency]*Credentials
}

// NewClient initializes per-currency Stripe clients from the configured key
// pairs. The USD pair is mandatory; the EUR pair is optional.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	byCurrency := map[enums.Currency]*Credentials{}

	usdSecret := strings.TrimSpace(cfg.SecretKey)
	usdPublic := strings.TrimSpace(cfg.PublicKey)
	if usdSecret == "" || usdPublic == "" {
		return nil, errUSDKeysRequired
	}
	if err := validateAPIKey(env, usdSecret); err != nil {
		return nil, err
	}
	byCurrency[enums.CurrencyUSD] = newCredentials(enums.CurrencyUSD, usdPublic, usdSecret)

	eurSecret := strings.TrimSpace(cfg.SecretKeyEUR)
	eurPublic := strings.TrimSpace(cfg.PublicKeyEUR)
	switch {
	case eurSecret == "" && eurPublic == "":
		// EUR disabled; baskets in eur resolve to UnsupportedCurrency.
	case eurSecret == "" || eurPublic == "":
		return nil, errPartialEURKeys
	default:
		if err := validateAPIKey(env, eurSecret); err != nil {
			return nil, err
		}
		byCurrency[enums.CurrencyEUR] = newCredentials(enums.CurrencyEUR, eurPublic, eurSecret)
	}

	c := &Client{environment: env, byCurrency: byCurrency}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"stripe_env": env,
			"currencies": c.Currencies(),
		})
		logg.Info(ctx, "stripe clients initialized")
	}

	return c, nil
}

func newCredentials(currency enums.Currency, publicKey, secretKey string) *Credentials {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Credentials{
		Currency:  currency,
		PublicKey: publicKey,
		api:       api,
	}
}

// Resolve returns the credential pair for the given currency, or an
// UnsupportedCurrency error when no pair is configured.
func (c *Client) Resolve(currency enums.Currency) (*Credentials, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client not initialized")
	}
	creds, ok := c.byCurrency[currency]
	if !ok {
		return nil, pkgerrors.New(
			pkgerrors.CodeUnsupportedCurrency,
			fmt.Sprintf("no payment credentials configured for currency %q", currency),
		).WithDetails(map[string]any{"currency": currency.String()})
	}
	return creds, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Currencies lists the currencies with configured credentials, sorted.
func (c *Client) Currencies() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.byCurrency))
	for currency := range c.byCurrency {
		out = append(out, currency.String())
	}
	sort.Strings(out)
	return out
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
