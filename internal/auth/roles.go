package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/domain"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// RequireAuth ensures the caller is authenticated.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireStaff ensures the caller holds any staff role.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Role.IsStaff() {
			return apperrors.NewForbidden("staff role required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles. Role
// checks always consult the stored user record loaded by Handle, never
// a client-supplied flag.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
