package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// AdminHandler exposes the management panel endpoints. Role checks
// happen in the router; every handler still resolves the acting staff
// member from the request context.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePage(c)
	users, err := h.admin.ListUsers(c.UserContext(), c.Query("search"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// FindUser GET /api/admin/users/find?email=...
func (h *AdminHandler) FindUser(c *fiber.Ctx) error {
	user, err := h.admin.FindUserByEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetRole POST /api/admin/users/:id/role.
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	if err := h.admin.SetRole(c.UserContext(), actor, c.Params("id"), domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// TempBan POST /api/admin/users/:id/tempban.
func (h *AdminHandler) TempBan(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	if err := h.admin.TempBan(c.UserContext(), actor, c.Params("id"), req.Days, req.Hours); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// PermBan POST /api/admin/users/:id/ban.
func (h *AdminHandler) PermBan(c *fiber.Ctx) error {
	actor := mustActor(c)
	if err := h.admin.PermBan(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Unban POST /api/admin/users/:id/unban.
func (h *AdminHandler) Unban(c *fiber.Ctx) error {
	actor := mustActor(c)
	if err := h.admin.Unban(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Warn POST /api/admin/users/:id/warn.
func (h *AdminHandler) Warn(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.WarnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	warnings, err := h.admin.Warn(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WarnResponse{Warnings: warnings}})
}

// Credit POST /api/admin/users/:id/credit.
func (h *AdminHandler) Credit(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.CreditRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	balance, err := h.admin.AdjustCredits(c.UserContext(), actor, c.Params("id"), req.Credits)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CreditResponse{Balance: balance}})
}

// Announce POST /api/admin/announcements.
func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	announcement, err := h.admin.Announce(c.UserContext(), actor, req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": announcementResponse(announcement)})
}

// Overview GET /api/admin/overview.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.admin.GetOverview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"active_listings": overview.ActiveListings}})
}

// ListAnnouncements GET /api/admin/announcements.
func (h *AdminHandler) ListAnnouncements(c *fiber.Ctx) error {
	announcements, err := h.admin.ListAnnouncements(c.UserContext(), parseInt(c.Query("limit"), 20))
	if err != nil {
		return err
	}
	items := make([]dto.AnnouncementResponse, 0, len(announcements))
	for i := range announcements {
		items = append(items, announcementResponse(&announcements[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetPromotion PUT /api/admin/promotion.
func (h *AdminHandler) SetPromotion(c *fiber.Ctx) error {
	var req dto.PromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	if err := h.admin.SetPromotion(c.UserContext(), req.AllPercent); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GetPromotion GET /api/admin/promotion.
func (h *AdminHandler) GetPromotion(c *fiber.Ctx) error {
	promo, err := h.admin.GetPromotion(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PromotionResponse{
		AllPercent: promo.AllPercent,
		UpdatedAt:  promo.UpdatedAt,
	}})
}

// SetMaintenance PUT /api/admin/maintenance.
func (h *AdminHandler) SetMaintenance(c *fiber.Ctx) error {
	var req dto.MaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	if err := h.admin.SetMaintenance(c.UserContext(), domain.MaintenanceState{
		Enabled: req.Enabled,
		Scope:   req.Scope,
		Message: req.Message,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GetMaintenance GET /api/maintenance. Public: the storefront polls it.
func (h *AdminHandler) GetMaintenance(c *fiber.Ctx) error {
	state, err := h.admin.GetMaintenance(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MaintenanceResponse{
		Enabled: state.Enabled,
		Scope:   state.Scope,
		Message: state.Message,
	}})
}

func announcementResponse(a *domain.Announcement) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		ID:        a.ID,
		Text:      a.Text,
		AuthorID:  a.AuthorID,
		CreatedAt: a.CreatedAt,
	}
}

// mustActor returns the acting user; the auth middleware guarantees one
// on every admin route.
func mustActor(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil
	}
	return principal.User
}
