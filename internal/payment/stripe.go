package payment

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"

	"github.com/brainrot-market/market-service/internal/config"
)

// ErrStripeNotConfigured is returned when the secret key is missing or
// does not look like a secret (sk_...) key.
var ErrStripeNotConfigured = errors.New("stripe_not_configured: missing or invalid secret key")

// StripeSessionInput describes one hosted-checkout session: a single
// line item priced in minor currency units, plus buyer correlation data
// carried in the session metadata.
type StripeSessionInput struct {
	AmountMinor int64
	Currency    string
	Description string
	PackID      string
	UID         string
	Email       string
	Amount      string
	SuccessURL  string
	CancelURL   string
}

// StripeSession is the subset of session state the API surfaces.
type StripeSession struct {
	ID            string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// Paid reports whether the session has been paid.
func (s *StripeSession) Paid() bool {
	return s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// StripeGateway abstracts the Stripe API for the checkout service.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, in StripeSessionInput) (string, error)
	GetCheckoutSession(ctx context.Context, id string) (*StripeSession, error)
}

// StripeClient wraps the official Stripe client. The client is built
// once from configuration instead of living in a package-level
// singleton.
type StripeClient struct {
	api *stripeclient.API
}

// NewStripeClient constructs the client; with missing or implausible
// credentials the client is still returned and every call reports
// ErrStripeNotConfigured, matching the per-request configuration check.
func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	c := &StripeClient{}
	if cfg.Configured() {
		api := &stripeclient.API{}
		api.Init(cfg.SecretKey, nil)
		c.api = api
	}
	return c
}

// CreateCheckoutSession builds a single-line-item payment session and
// returns its id for the client-side redirect.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in StripeSessionInput) (string, error) {
	if c.api == nil {
		return "", ErrStripeNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
					UnitAmount: stripe.Int64(in.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("packId", in.PackID)
	params.AddMetadata("uid", in.UID)
	params.AddMetadata("email", in.Email)
	params.AddMetadata("amount", in.Amount)
	params.AddMetadata("currency", in.Currency)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// GetCheckoutSession retrieves payment status by session id.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, id string) (*StripeSession, error) {
	if c.api == nil {
		return nil, ErrStripeNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}

	metadata := session.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &StripeSession{
		ID:            session.ID,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		Metadata:      metadata,
	}, nil
}
