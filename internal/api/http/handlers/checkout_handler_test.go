package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpapi "github.com/brainrot-market/market-service/internal/api/http"
	"github.com/brainrot-market/market-service/internal/api/http/handlers"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/payment"
	"github.com/brainrot-market/market-service/internal/service"
)

type stubStripeGateway struct {
	session *payment.StripeSession
}

func (g *stubStripeGateway) CreateCheckoutSession(context.Context, payment.StripeSessionInput) (string, error) {
	return g.session.ID, nil
}

func (g *stubStripeGateway) GetCheckoutSession(_ context.Context, id string) (*payment.StripeSession, error) {
	copied := *g.session
	copied.ID = id
	return &copied, nil
}

type stubPayPalGateway struct {
	order *payment.PayPalOrder
}

func (g *stubPayPalGateway) CreateOrder(context.Context, payment.PayPalOrderInput) (*payment.PayPalOrder, error) {
	return g.order, nil
}

func (g *stubPayPalGateway) GetOrder(context.Context, string) (*payment.PayPalOrder, error) {
	return g.order, nil
}

func newCheckoutApp(t *testing.T, stripe payment.StripeGateway, paypal payment.PayPalGateway) *fiber.App {
	t.Helper()
	handler := handlers.NewCheckoutHandler(service.NewCheckoutService(service.CheckoutDependencies{
		Stripe:           stripe,
		PayPal:           paypal,
		PayPalConfigured: true,
		Dispatcher:       events.NewInMemoryDispatcher(),
		Logger:           zap.NewNop(),
	}))

	app := fiber.New()
	httpapi.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/api/stripe/verify-session", handler.VerifyStripeSession)
	app.Post("/api/stripe/verify-session", handler.VerifyStripeSession)
	app.Post("/api/paypal/create-order", handler.CreatePayPalOrder)
	return app
}

func TestVerifyStripeSessionIdentifiers(t *testing.T) {
	stripe := &stubStripeGateway{session: &payment.StripeSession{
		ID:            "cs_test_1",
		Status:        "open",
		PaymentStatus: "unpaid",
	}}
	app := newCheckoutApp(t, stripe, &stubPayPalGateway{})

	cases := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"id in body", "POST", "/api/stripe/verify-session", `{"id":"cs_test_1"}`},
		{"id in query", "GET", "/api/stripe/verify-session?id=cs_test_1", ""},
		{"session_id alias in body", "POST", "/api/stripe/verify-session", `{"session_id":"cs_test_1"}`},
		{"session_id alias in query", "GET", "/api/stripe/verify-session?session_id=cs_test_1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, bytes.NewBufferString(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body struct {
				OK            bool   `json:"ok"`
				PaymentStatus string `json:"payment_status"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.True(t, body.OK)
			assert.Equal(t, "unpaid", body.PaymentStatus)
		})
	}

	t.Run("missing id", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/stripe/verify-session", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "missing_id", body.Error.Code)
	})
}

func TestCreatePayPalOrderEnvelope(t *testing.T) {
	paypal := &stubPayPalGateway{order: &payment.PayPalOrder{
		ID:     "ORDER-1",
		Status: "CREATED",
		Links: []payment.PayPalLink{
			{Href: "https://paypal.example/approve", Rel: "approve"},
		},
	}}
	app := newCheckoutApp(t, &stubStripeGateway{session: &payment.StripeSession{}}, paypal)

	req := httptest.NewRequest("POST", "/api/paypal/create-order", bytes.NewBufferString(`{"amount":9.99}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Order struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"order"`
		ApproveURL string `json:"approveUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ORDER-1", body.Order.ID)
	assert.Equal(t, "CREATED", body.Order.Status)
	assert.Equal(t, "https://paypal.example/approve", body.ApproveURL)
}
