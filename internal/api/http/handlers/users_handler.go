package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// UsersHandler covers registration, login, profile and wallet.
type UsersHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{authService: authService, userService: userService}
}

// Register POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	result, err := h.authService.Register(c.UserContext(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse(result))
}

// Login POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result))
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": userResponse(principal.User)})
}

// UpdateMe PATCH /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	user, err := h.userService.UpdateProfile(c.UserContext(), principal.User.ID, req.DisplayName, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Wallet GET /api/users/me/wallet.
func (h *UsersHandler) Wallet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePage(c)
	wallet, err := h.userService.GetWallet(c.UserContext(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	transactions := make([]dto.TransactionResponse, 0, len(wallet.Transactions))
	for i := range wallet.Transactions {
		transactions = append(transactions, transactionResponse(&wallet.Transactions[i]))
	}
	return c.JSON(fiber.Map{"data": dto.WalletResponse{
		Balance:      wallet.Balance,
		Transactions: transactions,
	}})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Role:        string(user.Role),
		Balance:     user.Balance,
		Warnings:    user.Warnings,
		Banned:      user.Banned,
		BannedUntil: user.BannedUntil,
		CreatedAt:   user.CreatedAt,
	}
}

func transactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        txn.ID,
		Type:      string(txn.Type),
		Credits:   txn.Credits,
		Note:      txn.Note,
		ActorName: txn.ActorName,
		Status:    txn.Status,
		CreatedAt: txn.CreatedAt,
	}
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
