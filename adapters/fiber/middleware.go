package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

// identityKey is the Locals key holding the verified access claims for the
// current request. Identity lives on the request, never in package state.
const identityKey = "identity"

// requireAuth verifies the access token and stores the claims for
// downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return handleError(c, core.ErrMissingToken)
	}

	claims, err := a.issuer.VerifyAccess(token)
	if err != nil {
		return handleError(c, err)
	}

	c.Locals(identityKey, claims)
	return c.Next()
}

// requireAdmin runs after requireAuth and rejects non-admin identities
// with 403 instead of a generic failure.
func (a *Adapter) requireAdmin(c fiber.Ctx) error {
	claims := identity(c)
	if claims == nil {
		return handleError(c, core.ErrMissingToken)
	}
	if claims.Role != core.RoleAdmin {
		return handleError(c, core.ErrAdminOnly)
	}
	return c.Next()
}

func identity(c fiber.Ctx) *core.AccessClaims {
	claims, _ := c.Locals(identityKey).(*core.AccessClaims)
	return claims
}

// extractToken checks the Authorization header first, then the access
// cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Cookies(accessCookie)
}
