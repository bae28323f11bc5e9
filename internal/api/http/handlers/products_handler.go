package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// ProductsHandler manages marketplace listing endpoints.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// CreateProduct POST /api/products.
func (h *ProductsHandler) CreateProduct(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	product, err := h.service.CreateListing(c.UserContext(), principal.User, req.Title, req.Description, req.Price)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": productResponse(product)})
}

// ListProducts GET /api/products. Defaults to active listings.
func (h *ProductsHandler) ListProducts(c *fiber.Ctx) error {
	var status *domain.ProductStatus
	switch raw := c.Query("status", "active"); raw {
	case "all":
	default:
		st := domain.ProductStatus(raw)
		status = &st
	}
	limit, offset := parsePage(c)
	products, err := h.service.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProduct GET /api/products/:id.
func (h *ProductsHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// PurchaseProduct POST /api/products/:id/purchase.
func (h *ProductsHandler) PurchaseProduct(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	product, err := h.service.Purchase(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// RemoveProduct DELETE /api/products/:id.
func (h *ProductsHandler) RemoveProduct(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Remove(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func productResponse(product *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Status:      string(product.Status),
		BuyerID:     product.BuyerID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
