package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	// The refresh cookie rides only on the refresh endpoint so it never
	// leaks onto other requests.
	refreshCookiePath = "/api/auth/refresh"

	refreshCookieMaxAge = 30 * 24 * time.Hour
)

func (a *Adapter) setAuthCookies(c fiber.Ctx, pair *core.TokenPair) {
	c.Cookie(a.cookie(accessCookie, pair.AccessToken, "/", a.config.CookieMaxAge))
	c.Cookie(a.cookie(refreshCookie, pair.RefreshToken, refreshCookiePath, refreshCookieMaxAge))
}

// clearAuthCookies expires both cookies with the same attributes they were
// set with, otherwise browsers keep the originals.
func (a *Adapter) clearAuthCookies(c fiber.Ctx) {
	access := a.cookie(accessCookie, "", "/", 0)
	access.MaxAge = -1
	c.Cookie(access)

	refresh := a.cookie(refreshCookie, "", refreshCookiePath, 0)
	refresh.MaxAge = -1
	c.Cookie(refresh)
}

func (a *Adapter) cookie(name, value, path string, maxAge time.Duration) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if a.config.Production {
		sameSite = fiber.CookieSameSiteStrictMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   a.config.Production,
		SameSite: sameSite,
	}
}
