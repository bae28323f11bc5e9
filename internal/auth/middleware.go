package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
	Role domain.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. Role and ban
// state come from the stored user record, not the token, so demotions
// and bans take effect immediately.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.IsBanned(time.Now()) {
		return apperrors.NewAccountBanned(user.BannedUntil)
	}

	c.Locals(principalKey, &Principal{User: user, Role: user.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
