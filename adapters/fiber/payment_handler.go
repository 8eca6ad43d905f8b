package fiber

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) initOrder(c fiber.Ctx) error {
	claims := identity(c)

	var init core.OrderInitData
	if err := c.Bind().Body(&init); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	checkout, err := a.payments.InitOrder(c.Context(), claims.UserID, init)
	if err != nil {
		a.log.Error("init order failed", "userId", claims.UserID, "error", err)
		return handleError(c, err)
	}
	return c.JSON(checkout)
}

// stripeWebhook verifies and dispatches gateway events. The signature is
// computed over the exact bytes Stripe sent, so the raw body goes straight
// through.
func (a *Adapter) stripeWebhook(c fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")

	err := a.payments.HandleWebhook(c.Context(), c.Body(), signature)
	if err != nil {
		if errors.Is(err, core.ErrWebhookSignature) {
			a.log.Warn("webhook signature rejected", "error", err)
			return handleError(c, err)
		}
		// Non-2xx makes Stripe redeliver; the event-id dedup makes the
		// retry safe.
		a.log.Error("webhook processing failed", "error", err)
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
