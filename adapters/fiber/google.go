package fiber

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/avelez/boxkeep/core"
)

// GoogleConfig carries the OAuth client registration and where to land the
// user afterwards.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

const (
	stateCookie    = "oauthState"
	userinfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateCookieAge = 600 // seconds
)

func (a *Adapter) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.config.Google.ClientID,
		ClientSecret: a.config.Google.ClientSecret,
		RedirectURL:  a.config.Google.RedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
}

// googleRedirect starts the consent flow. The random state round-trips
// through a short-lived cookie and must come back on the callback.
func (a *Adapter) googleRedirect(c fiber.Ctx) error {
	if a.config.Google.ClientID == "" {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "google auth is not configured",
		})
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   stateCookieAge,
		HTTPOnly: true,
		Secure:   a.config.Production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect().To(a.oauthConfig().AuthCodeURL(state))
}

func (a *Adapter) googleCallback(c fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		return handleError(c, core.ErrInvalidToken)
	}

	code := c.Query("code")
	if code == "" {
		return handleError(c, core.ErrInvalidToken)
	}

	conf := a.oauthConfig()
	token, err := conf.Exchange(c.Context(), code)
	if err != nil {
		a.log.Warn("google code exchange failed", "error", err)
		return handleError(c, core.ErrInvalidToken)
	}

	profile, err := fetchGoogleProfile(c, conf, token)
	if err != nil {
		a.log.Warn("google userinfo fetch failed", "error", err)
		return handleError(c, core.ErrInvalidToken)
	}

	result, err := a.auth.GoogleSignInOrUp(c.Context(), *profile)
	if err != nil {
		return handleError(c, err)
	}

	a.setAuthCookies(c, &result.TokenPair)
	if a.config.Google.FrontendURL != "" {
		return c.Redirect().To(a.config.Google.FrontendURL)
	}
	return c.JSON(fiber.Map{
		"user":        result.User,
		"accessToken": result.AccessToken,
	})
}

func fetchGoogleProfile(c fiber.Ctx, conf *oauth2.Config, token *oauth2.Token) (*core.GoogleProfile, error) {
	resp, err := conf.Client(c.Context(), token).Get(userinfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	return &core.GoogleProfile{
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.GivenName,
		LastName:   info.FamilyName,
	}, nil
}
