package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/payment"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

func newCheckoutService(t *testing.T, stripe *fakeStripeGateway, paypal *fakePayPalGateway, users *fakeUserRepo, txns *fakeTransactionRepo, paypalConfigured bool) *service.CheckoutService {
	t.Helper()
	txns.users = users
	return service.NewCheckoutService(service.CheckoutDependencies{
		Stripe:           stripe,
		PayPal:           paypal,
		PayPalConfigured: paypalConfigured,
		TransactionRepo:  txns,
		Dispatcher:       events.NewInMemoryDispatcher(),
		Logger:           zap.NewNop(),
		Metrics:          nil,
	})
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestCreateStripeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("missing amount", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
			SuccessURL: "https://shop.example/ok",
			CancelURL:  "https://shop.example/no",
		})
		assert.Equal(t, "missing_amount", errCode(t, err))
	})

	t.Run("missing redirect urls", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
			AmountPresent: true,
			Amount:        9.99,
		})
		assert.Equal(t, "missing_redirect_urls", errCode(t, err))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		for _, amount := range []float64{0, -5} {
			_, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
				AmountPresent: true,
				Amount:        amount,
				SuccessURL:    "https://shop.example/ok",
				CancelURL:     "https://shop.example/no",
			})
			assert.Equal(t, "invalid_amount", errCode(t, err))
		}
	})

	t.Run("converts amount to minor units and decorates urls", func(t *testing.T) {
		stripe := &fakeStripeGateway{}
		svc := newCheckoutService(t, stripe, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)

		id, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
			AmountPresent: true,
			Amount:        9.99,
			AmountRaw:     "9.99",
			PackID:        "pack_1000",
			UID:           "user-1",
			Email:         "buyer@example.com",
			SuccessURL:    "https://shop.example/ok",
			CancelURL:     "https://shop.example/no",
		})
		require.NoError(t, err)
		assert.Equal(t, "cs_test_123", id)

		assert.Equal(t, int64(999), stripe.lastInput.AmountMinor)
		assert.Equal(t, "EUR", stripe.lastInput.Currency)
		assert.Equal(t, "RotCoins", stripe.lastInput.Description)
		assert.Equal(t, "https://shop.example/ok?success=1&pack=pack_1000&sid={CHECKOUT_SESSION_ID}", stripe.lastInput.SuccessURL)
		assert.Equal(t, "https://shop.example/no?canceled=1", stripe.lastInput.CancelURL)
		assert.Equal(t, "9.99", stripe.lastInput.Amount)
	})

	t.Run("unconfigured gateway maps to stripe_not_configured", func(t *testing.T) {
		stripe := &fakeStripeGateway{createErr: payment.ErrStripeNotConfigured}
		svc := newCheckoutService(t, stripe, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
			AmountPresent: true,
			Amount:        5,
			SuccessURL:    "https://shop.example/ok",
			CancelURL:     "https://shop.example/no",
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "stripe_not_configured", domainErr.Code)
		assert.Equal(t, 400, domainErr.HTTPStatus)
	})

	t.Run("gateway failure maps to server_error", func(t *testing.T) {
		stripe := &fakeStripeGateway{createErr: errors.New("downstream exploded")}
		svc := newCheckoutService(t, stripe, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreateStripeSession(ctx, service.StripeCheckoutInput{
			AmountPresent: true,
			Amount:        5,
			SuccessURL:    "https://shop.example/ok",
			CancelURL:     "https://shop.example/no",
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "server_error", domainErr.Code)
		assert.Equal(t, 500, domainErr.HTTPStatus)
	})
}

func TestVerifyStripeSession(t *testing.T) {
	ctx := context.Background()

	paidSession := func() *payment.StripeSession {
		return &payment.StripeSession{
			ID:            "cs_test_123",
			Status:        "complete",
			PaymentStatus: "paid",
			AmountTotal:   999,
			Currency:      "eur",
			Metadata: map[string]string{
				"packId": "pack_1000",
				"uid":    "user-1",
				"amount": "1000",
			},
		}
	}

	t.Run("missing id", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.VerifyStripeSession(ctx, "")
		assert.Equal(t, "missing_id", errCode(t, err))
	})

	t.Run("paid session credits the wallet once", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Email: "buyer@example.com", Balance: 0})
		txns := newFakeTransactionRepo()
		stripe := &fakeStripeGateway{session: paidSession()}
		svc := newCheckoutService(t, stripe, &fakePayPalGateway{}, users, txns, true)

		result, err := svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.True(t, result.Paid)
		assert.Equal(t, "paid", result.PaymentStatus)

		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)

		purchases := txns.byType(domain.TransactionStripePurchase)
		require.Len(t, purchases, 1)
		require.NotNil(t, purchases[0].Reference)
		assert.Equal(t, "cs_test_123", *purchases[0].Reference)

		// repeat verification is a no-op credit
		_, err = svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		user, err = users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)
		assert.Len(t, txns.byType(domain.TransactionStripePurchase), 1)
	})

	t.Run("failed credit is retried on the next verify", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Balance: 0})
		txns := newFakeTransactionRepo()
		txns.creditErr = errors.New("connection reset")
		svc := newCheckoutService(t, &fakeStripeGateway{session: paidSession()}, &fakePayPalGateway{}, users, txns, true)

		// verification still succeeds, but nothing may be recorded
		result, err := svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.True(t, result.Paid)
		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Zero(t, user.Balance)
		assert.Empty(t, txns.created)

		txns.creditErr = nil
		_, err = svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		user, err = users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)
		assert.Len(t, txns.byType(domain.TransactionStripePurchase), 1)
	})

	t.Run("metadata amount with trailing garbage does not credit", func(t *testing.T) {
		session := paidSession()
		session.Metadata["amount"] = "1000credits"
		users := newFakeUserRepo(&domain.User{ID: "user-1", Balance: 0})
		txns := newFakeTransactionRepo()
		svc := newCheckoutService(t, &fakeStripeGateway{session: session}, &fakePayPalGateway{}, users, txns, true)

		result, err := svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.True(t, result.Paid)

		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Zero(t, user.Balance)
		assert.Empty(t, txns.created)
	})

	t.Run("unpaid session does not credit", func(t *testing.T) {
		session := paidSession()
		session.PaymentStatus = "unpaid"
		users := newFakeUserRepo(&domain.User{ID: "user-1", Balance: 0})
		txns := newFakeTransactionRepo()
		svc := newCheckoutService(t, &fakeStripeGateway{session: session}, &fakePayPalGateway{}, users, txns, true)

		result, err := svc.VerifyStripeSession(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.False(t, result.Paid)

		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Zero(t, user.Balance)
		assert.Empty(t, txns.created)
	})
}

func TestCreatePayPalOrder(t *testing.T) {
	ctx := context.Background()

	order := &payment.PayPalOrder{
		ID:     "ORDER-1",
		Status: "CREATED",
		Links: []payment.PayPalLink{
			{Href: "https://paypal.example/self", Rel: "self"},
			{Href: "https://paypal.example/approve", Rel: "approve"},
		},
	}

	t.Run("not configured", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{order: order}, newFakeUserRepo(), newFakeTransactionRepo(), false)
		_, err := svc.CreatePayPalOrder(ctx, service.PayPalCheckoutInput{AmountPresent: true, Amount: 10})
		assert.Equal(t, "paypal_not_configured", errCode(t, err))
	})

	t.Run("item totals must match within a cent", func(t *testing.T) {
		svc := newCheckoutService(t, &fakeStripeGateway{}, &fakePayPalGateway{order: order}, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreatePayPalOrder(ctx, service.PayPalCheckoutInput{
			AmountPresent: true,
			Amount:        10,
			Items: []service.PayPalItemInput{
				{Name: "pack", UnitPrice: 4.99, Quantity: 2},
			},
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "amount_mismatch", domainErr.Code)
		assert.Equal(t, 9.98, domainErr.Details["items_total"])
	})

	t.Run("sub-cent drift is tolerated", func(t *testing.T) {
		paypal := &fakePayPalGateway{order: order}
		svc := newCheckoutService(t, &fakeStripeGateway{}, paypal, newFakeUserRepo(), newFakeTransactionRepo(), true)
		result, err := svc.CreatePayPalOrder(ctx, service.PayPalCheckoutInput{
			AmountPresent: true,
			Amount:        29.97,
			Items: []service.PayPalItemInput{
				{Name: "pack", UnitPrice: 9.99, Quantity: 3},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "ORDER-1", result.Order.ID)
		assert.Equal(t, "https://paypal.example/approve", result.ApproveURL)
		assert.Equal(t, "EUR", paypal.lastInput.Currency)
	})

	t.Run("restricted merchant surfaces debug id", func(t *testing.T) {
		paypal := &fakePayPalGateway{createErr: &payment.PayPalAPIError{
			StatusCode: 422,
			Name:       "UNPROCESSABLE_ENTITY",
			Message:    "The requested action could not be performed.",
			DebugID:    "debug-123",
			Details: []payment.PayPalErrorDetail{
				{Issue: payment.IssuePayeeAccountRestricted, Description: "The merchant account is restricted."},
			},
		}}
		svc := newCheckoutService(t, &fakeStripeGateway{}, paypal, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreatePayPalOrder(ctx, service.PayPalCheckoutInput{AmountPresent: true, Amount: 10})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "payee_account_restricted", domainErr.Code)
		assert.Equal(t, 400, domainErr.HTTPStatus)
		assert.Equal(t, "debug-123", domainErr.Details["debug_id"])
	})

	t.Run("other provider errors map to create_order_failed", func(t *testing.T) {
		paypal := &fakePayPalGateway{createErr: &payment.PayPalAPIError{
			StatusCode: 400,
			Name:       "INVALID_REQUEST",
			Message:    "Request is not well-formed.",
			DebugID:    "debug-456",
		}}
		svc := newCheckoutService(t, &fakeStripeGateway{}, paypal, newFakeUserRepo(), newFakeTransactionRepo(), true)
		_, err := svc.CreatePayPalOrder(ctx, service.PayPalCheckoutInput{AmountPresent: true, Amount: 10})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "create_order_failed", domainErr.Code)
		assert.Equal(t, 502, domainErr.HTTPStatus)
	})
}
