package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/observability"
	"github.com/brainrot-market/market-service/internal/payment"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// itemSumEpsilon bounds the accepted drift between an order total and
// the sum of its line items.
const itemSumEpsilon = 0.01

// CheckoutService builds provider checkout sessions/orders and
// reconciles paid sessions into wallet credits.
type CheckoutService struct {
	stripe           payment.StripeGateway
	paypal           payment.PayPalGateway
	paypalConfigured bool
	transactions     repository.TransactionRepository
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	metrics          *observability.Metrics
}

// CheckoutDependencies bundles requirements for the checkout service.
type CheckoutDependencies struct {
	Stripe           payment.StripeGateway
	PayPal           payment.PayPalGateway
	PayPalConfigured bool
	TransactionRepo  repository.TransactionRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Metrics          *observability.Metrics
}

// NewCheckoutService constructs the service.
func NewCheckoutService(deps CheckoutDependencies) *CheckoutService {
	return &CheckoutService{
		stripe:           deps.Stripe,
		paypal:           deps.PayPal,
		paypalConfigured: deps.PayPalConfigured,
		transactions:     deps.TransactionRepo,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
	}
}

// StripeCheckoutInput is the session-creation payload after transport
// decoding. AmountRaw preserves the textual amount for metadata.
type StripeCheckoutInput struct {
	AmountPresent bool
	Amount        float64
	AmountRaw     string
	Currency      string
	PackID        string
	Description   string
	UID           string
	Email         string
	SuccessURL    string
	CancelURL     string
}

// CreateStripeSession validates the request and creates a hosted
// checkout session, returning its id for the client redirect.
func (s *CheckoutService) CreateStripeSession(ctx context.Context, in StripeCheckoutInput) (string, error) {
	if !in.AmountPresent {
		return "", apperrors.NewValidationError("missing_amount", "amount is required")
	}
	if in.SuccessURL == "" || in.CancelURL == "" {
		return "", apperrors.NewValidationError("missing_redirect_urls", "success_url and cancel_url are required")
	}

	unitAmount := math.Round(in.Amount * 100)
	if math.IsNaN(unitAmount) || math.IsInf(unitAmount, 0) || unitAmount <= 0 {
		return "", apperrors.NewValidationError("invalid_amount", "amount must be a positive finite number")
	}

	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}
	description := in.Description
	if description == "" {
		description = "RotCoins"
	}

	sessionID, err := s.stripe.CreateCheckoutSession(ctx, payment.StripeSessionInput{
		AmountMinor: int64(unitAmount),
		Currency:    currency,
		Description: description,
		PackID:      in.PackID,
		UID:         in.UID,
		Email:       in.Email,
		Amount:      in.AmountRaw,
		SuccessURL:  fmt.Sprintf("%s?success=1&pack=%s&sid={CHECKOUT_SESSION_ID}", in.SuccessURL, url.QueryEscape(in.PackID)),
		CancelURL:   in.CancelURL + "?canceled=1",
	})
	if err != nil {
		s.metrics.RecordCheckout("stripe", "failed")
		return "", mapStripeError(err)
	}

	s.metrics.RecordCheckout("stripe", "created")
	return sessionID, nil
}

// StripeVerifyResult mirrors the verification endpoint response.
type StripeVerifyResult struct {
	OK            bool
	Paid          bool
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// VerifyStripeSession retrieves payment status by session id. A paid
// session carrying buyer metadata credits the wallet exactly once; the
// session id keys the transaction record so repeats are no-ops.
func (s *CheckoutService) VerifyStripeSession(ctx context.Context, id string) (*StripeVerifyResult, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("missing_id", "session id is required")
	}

	session, err := s.stripe.GetCheckoutSession(ctx, id)
	if err != nil {
		return nil, mapStripeError(err)
	}

	if session.Paid() {
		s.creditPaidSession(ctx, session)
	}

	return &StripeVerifyResult{
		OK:            true,
		Paid:          session.Paid(),
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
		Metadata:      session.Metadata,
	}, nil
}

// creditPaidSession applies the wallet credit for a paid session.
// Transaction record and balance commit together, so a transient
// failure leaves the session uncredited and a later verify retries it.
// The failure itself is only logged and verification still succeeds.
func (s *CheckoutService) creditPaidSession(ctx context.Context, session *payment.StripeSession) {
	uid := session.Metadata["uid"]
	if uid == "" {
		return
	}
	credits, ok := parseCredits(session.Metadata["amount"])
	if !ok {
		return
	}

	ref := session.ID
	note := "RotCoins purchase via Stripe"
	if pack := session.Metadata["packId"]; pack != "" {
		note = fmt.Sprintf("%s (pack %s)", note, pack)
	}
	inserted, err := s.transactions.CreditUnique(ctx, &domain.Transaction{
		UserID:    uid,
		Type:      domain.TransactionStripePurchase,
		Credits:   credits,
		Note:      note,
		Reference: &ref,
		Status:    "completed",
	})
	if err != nil {
		s.logger.Error("stripe: credit purchase failed",
			zap.String("session_id", session.ID), zap.String("uid", uid), zap.Error(err))
		return
	}
	if !inserted {
		// already credited for this session
		return
	}

	s.publish(ctx, events.Event{
		Type:    events.EventCreditGranted,
		UserID:  uid,
		Payload: events.CreditGrantedPayload{Credits: credits},
	})
}

// PayPalItemInput is one client-supplied line item.
type PayPalItemInput struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// PayPalCheckoutInput is the order-creation payload.
type PayPalCheckoutInput struct {
	AmountPresent bool
	Amount        float64
	Currency      string
	ReturnURL     string
	CancelURL     string
	CustomID      string
	Items         []PayPalItemInput
}

// PayPalOrderResult carries the created order and its approval link.
type PayPalOrderResult struct {
	Order      *payment.PayPalOrder
	ApproveURL string
}

// CreatePayPalOrder validates the request, cross-checks any supplied
// line items against the total, and creates the provider order.
func (s *CheckoutService) CreatePayPalOrder(ctx context.Context, in PayPalCheckoutInput) (*PayPalOrderResult, error) {
	if !s.paypalConfigured {
		return nil, apperrors.NewValidationError("paypal_not_configured", "missing client credentials")
	}
	if !in.AmountPresent {
		return nil, apperrors.NewValidationError("missing_amount", "amount is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return nil, apperrors.NewValidationError("invalid_amount", "amount must be a positive finite number")
	}

	if len(in.Items) > 0 {
		var itemsTotal float64
		for _, item := range in.Items {
			itemsTotal += item.UnitPrice * float64(item.Quantity)
		}
		if math.Abs(itemsTotal-in.Amount) > itemSumEpsilon {
			return nil, apperrors.NewDomainError("amount_mismatch",
				"line items do not sum to the order amount", http.StatusBadRequest,
				map[string]any{"amount": in.Amount, "items_total": itemsTotal})
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}

	order, err := s.paypal.CreateOrder(ctx, payment.PayPalOrderInput{
		Amount:    in.Amount,
		Currency:  currency,
		ReturnURL: in.ReturnURL,
		CancelURL: in.CancelURL,
		CustomID:  in.CustomID,
	})
	if err != nil {
		s.metrics.RecordCheckout("paypal", "failed")
		return nil, mapPayPalError(err)
	}

	s.metrics.RecordCheckout("paypal", "created")
	return &PayPalOrderResult{Order: order, ApproveURL: order.ApproveURL()}, nil
}

// GetPayPalOrder fetches order state for reconciliation.
func (s *CheckoutService) GetPayPalOrder(ctx context.Context, id string) (*payment.PayPalOrder, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("missing_id", "order id is required")
	}
	order, err := s.paypal.GetOrder(ctx, id)
	if err != nil {
		return nil, mapPayPalError(err)
	}
	return order, nil
}

func (s *CheckoutService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapStripeError(err error) error {
	if errors.Is(err, payment.ErrStripeNotConfigured) {
		return apperrors.NewValidationError("stripe_not_configured", err.Error())
	}
	return apperrors.NewDomainError("server_error", err.Error(), http.StatusInternalServerError, nil)
}

func mapPayPalError(err error) error {
	if errors.Is(err, payment.ErrPayPalNotConfigured) {
		return apperrors.NewValidationError("paypal_not_configured", err.Error())
	}
	var apiErr *payment.PayPalAPIError
	if errors.As(err, &apiErr) {
		if apiErr.HasIssue(payment.IssuePayeeAccountRestricted) {
			return apperrors.NewDomainError("payee_account_restricted",
				"merchant account is restricted", http.StatusBadRequest,
				map[string]any{"debug_id": apiErr.DebugID})
		}
		return apperrors.NewUpstreamError("create_order_failed", apiErr.Message,
			map[string]any{"debug_id": apiErr.DebugID, "details": apiErr.Details})
	}
	return apperrors.NewDomainError("server_error", err.Error(), http.StatusInternalServerError, nil)
}

// parseCredits converts a metadata amount into whole RotCoins.
func parseCredits(raw string) (int64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}
	return int64(math.Round(amount)), true
}
