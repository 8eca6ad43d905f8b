// Package fiber exposes the services over HTTP using fiber v3.
package fiber

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
	"github.com/avelez/boxkeep/services"
)

// Config carries everything the HTTP boundary needs beyond the services.
type Config struct {
	// Production switches cookies to Secure + SameSite=Strict.
	Production   bool
	CookieMaxAge time.Duration
	Google       GoogleConfig
}

type Adapter struct {
	auth      *services.AuthService
	payments  *services.PaymentService
	orders    *services.OrderService
	directory *services.DirectoryService
	issuer    core.TokenIssuer
	log       *slog.Logger
	config    Config
}

func New(
	auth *services.AuthService,
	payments *services.PaymentService,
	orders *services.OrderService,
	directory *services.DirectoryService,
	issuer core.TokenIssuer,
	log *slog.Logger,
	config Config,
) *Adapter {
	if config.CookieMaxAge <= 0 {
		config.CookieMaxAge = 7 * 24 * time.Hour
	}
	return &Adapter{
		auth:      auth,
		payments:  payments,
		orders:    orders,
		directory: directory,
		issuer:    issuer,
		log:       log,
		config:    config,
	}
}

// handleError maps service errors to HTTP responses.
func handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		// Internal detail stays in the logs, not the response body.
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrTermsNotAgreed),
		errors.Is(err, core.ErrCollaboratorsRequired),
		errors.Is(err, core.ErrSelfCollaborator),
		errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrCollaboratorEmailTaken),
		errors.Is(err, core.ErrLocalAccountExists):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrInvalidRefresh),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrAdminOnly):
		return http.StatusForbidden

	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrOrderNotFound),
		errors.Is(err, core.ErrAddressNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrWebhookSignature):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
