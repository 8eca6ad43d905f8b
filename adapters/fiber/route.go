package fiber

import (
	"github.com/gofiber/fiber/v3"
)

func (a *Adapter) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	// The webhook must see the raw request body; it is registered before
	// anything that could touch it.
	pay := api.Group("/stripe")
	pay.Post("/webhook", a.stripeWebhook)
	pay.Post("/initOrder", a.requireAuth, a.initOrder)

	auth := api.Group("/auth")
	auth.Post("/register", a.register)
	auth.Post("/login", a.login)
	auth.Post("/logout", a.requireAuth, a.logout)
	auth.Post("/refresh", a.refresh)
	auth.Get("/me", a.requireAuth, a.me)
	auth.Get("/google", a.googleRedirect)
	auth.Get("/google/callback", a.googleCallback)

	admin := api.Group("/admin", a.requireAuth, a.requireAdmin)
	admin.Post("/register", a.adminRegister)
	admin.Get("/orders", a.adminOrders)

	orders := api.Group("/orders", a.requireAuth)
	orders.Get("/", a.getOrders)
	orders.Get("/:id", a.getOrder)
	orders.Put("/:id/status", a.changeOrderStatus)
	orders.Get("/:id/validate", a.validateOrderOwnership)

	addresses := api.Group("/address", a.requireAuth)
	addresses.Post("/", a.createAddress)
	addresses.Get("/", a.getAddresses)
	addresses.Get("/:id", a.getAddress)
	addresses.Put("/:id", a.updateAddress)
	addresses.Delete("/:id", a.deleteAddress)

	collaborators := api.Group("/collaborators", a.requireAuth)
	collaborators.Post("/", a.addCollaborator)
	collaborators.Get("/", a.getCollaborators)

	app.Get("/health", a.health)
}
