package fiber

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) register(c fiber.Ctx) error {
	var input core.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	result, err := a.auth.Register(c.Context(), input)
	if err != nil {
		return handleError(c, err)
	}

	a.setAuthCookies(c, &result.TokenPair)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user":        result.User,
		"accessToken": result.AccessToken,
	})
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input core.LoginInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	result, err := a.auth.Login(c.Context(), input)
	if err != nil {
		return handleError(c, err)
	}

	a.setAuthCookies(c, &result.TokenPair)
	return c.JSON(fiber.Map{
		"user":        result.User,
		"accessToken": result.AccessToken,
	})
}

// logout invalidates the session behind the presented access token and
// clears both cookies either way.
func (a *Adapter) logout(c fiber.Ctx) error {
	token := extractToken(c)
	if token != "" {
		if err := a.auth.Logout(c.Context(), token); err != nil {
			return handleError(c, err)
		}
	}

	a.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "logout successful"})
}

// refresh rotates the token pair. The refresh token comes from its
// path-scoped cookie, with a JSON body fallback for non-browser clients.
func (a *Adapter) refresh(c fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookie)
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.Bind().Body(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}
	if refreshToken == "" {
		return handleError(c, core.ErrMissingToken)
	}

	pair, err := a.auth.Refresh(c.Context(), refreshToken)
	if err != nil {
		return handleError(c, err)
	}

	a.setAuthCookies(c, pair)
	return c.JSON(fiber.Map{"accessToken": pair.AccessToken})
}

func (a *Adapter) me(c fiber.Ctx) error {
	claims := identity(c)

	profile, err := a.auth.Me(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(profile)
}

func (a *Adapter) adminRegister(c fiber.Ctx) error {
	claims := identity(c)

	var input core.AdminRegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	profile, err := a.auth.AdminRegister(c.Context(), claims.UserID, input)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(profile)
}

func (a *Adapter) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
