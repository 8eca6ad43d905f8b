package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) getOrders(c fiber.Ctx) error {
	claims := identity(c)

	orders, err := a.orders.GetOrders(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(orders)
}

func (a *Adapter) getOrder(c fiber.Ctx) error {
	order, err := a.orders.GetOrderByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(order)
}

func (a *Adapter) changeOrderStatus(c fiber.Ctx) error {
	var body struct {
		Status core.OrderStatus `json:"status"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}
	switch body.Status {
	case core.StatusAwaitingKitShipment, core.StatusAwaitingPickupScheduling:
	default:
		return handleError(c, core.ErrInvalidInput)
	}

	order, err := a.orders.ChangeOrderStatus(c.Context(), c.Params("id"), body.Status)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(order)
}

func (a *Adapter) validateOrderOwnership(c fiber.Ctx) error {
	claims := identity(c)

	isOwner, err := a.orders.ValidateOrderOwnership(c.Context(), claims.UserID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"isOwner": isOwner})
}

// adminOrders lists every order, optionally narrowed by user or status.
func (a *Adapter) adminOrders(c fiber.Ctx) error {
	filter := core.OrderFilter{
		UserID: c.Query("userId"),
		Status: core.OrderStatus(c.Query("status")),
	}

	orders, err := a.orders.ListOrders(c.Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(orders)
}
