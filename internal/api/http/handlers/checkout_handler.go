package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/payment"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// CheckoutHandler exposes Stripe and PayPal checkout endpoints. The
// storefront calls these before a session is established, so the buyer
// identity rides in the payload metadata.
type CheckoutHandler struct {
	service *service.CheckoutService
}

// NewCheckoutHandler constructs handler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: checkoutService}
}

// CreateStripeSession POST /api/stripe/create-checkout-session.
func (h *CheckoutHandler) CreateStripeSession(c *fiber.Ctx) error {
	var req dto.StripeCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}

	sessionID, err := h.service.CreateStripeSession(c.UserContext(), service.StripeCheckoutInput{
		AmountPresent: req.Amount.Present && req.Amount.Valid,
		Amount:        req.Amount.Value,
		AmountRaw:     req.Amount.Raw,
		Currency:      req.Currency,
		PackID:        req.PackID,
		Description:   req.Description,
		UID:           req.UID,
		Email:         req.Email,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.StripeCheckoutResponse{ID: sessionID})
}

// VerifyStripeSession GET|POST /api/stripe/verify-session. The session
// id arrives as "id" in the query string or body; "session_id" is kept
// as an alias.
func (h *CheckoutHandler) VerifyStripeSession(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		id = c.Query("session_id")
	}
	if id == "" {
		var req struct {
			ID        string `json:"id"`
			SessionID string `json:"session_id"`
		}
		if err := c.BodyParser(&req); err == nil {
			id = req.ID
			if id == "" {
				id = req.SessionID
			}
		}
	}

	result, err := h.service.VerifyStripeSession(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.StripeVerifyResponse{
		OK:            result.OK,
		Paid:          result.Paid,
		Status:        result.Status,
		PaymentStatus: result.PaymentStatus,
		AmountTotal:   result.AmountTotal,
		Currency:      result.Currency,
		Metadata:      result.Metadata,
	})
}

// CreatePayPalOrder POST /api/paypal/create-order.
func (h *CheckoutHandler) CreatePayPalOrder(c *fiber.Ctx) error {
	var req dto.PayPalCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}

	items := make([]service.PayPalItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.PayPalItemInput{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.Value,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.service.CreatePayPalOrder(c.UserContext(), service.PayPalCheckoutInput{
		AmountPresent: req.Amount.Present && req.Amount.Valid,
		Amount:        req.Amount.Value,
		Currency:      req.Currency,
		ReturnURL:     req.ReturnURL,
		CancelURL:     req.CancelURL,
		CustomID:      req.CustomID,
		Items:         items,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PayPalOrderResponse{
		Order:      paypalOrderDTO(result.Order),
		ApproveURL: result.ApproveURL,
	})
}

// GetPayPalOrder GET /api/paypal/orders/:id.
func (h *CheckoutHandler) GetPayPalOrder(c *fiber.Ctx) error {
	order, err := h.service.GetPayPalOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.PayPalOrderResponse{
		Order:      paypalOrderDTO(order),
		ApproveURL: order.ApproveURL(),
	})
}

func paypalOrderDTO(order *payment.PayPalOrder) dto.PayPalOrder {
	out := dto.PayPalOrder{ID: order.ID, Status: order.Status}
	for _, link := range order.Links {
		out.Links = append(out.Links, dto.PayPalOrderLink{Href: link.Href, Rel: link.Rel})
	}
	return out
}
