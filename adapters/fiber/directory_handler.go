package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) createAddress(c fiber.Ctx) error {
	claims := identity(c)

	var input core.AddressInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	address, err := a.directory.CreateAddress(c.Context(), claims.UserID, input)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(address)
}

func (a *Adapter) getAddresses(c fiber.Ctx) error {
	claims := identity(c)

	addresses, err := a.directory.GetAddresses(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(addresses)
}

func (a *Adapter) getAddress(c fiber.Ctx) error {
	address, err := a.directory.GetAddressByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(address)
}

func (a *Adapter) updateAddress(c fiber.Ctx) error {
	var input core.AddressInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	address, err := a.directory.UpdateAddress(c.Context(), c.Params("id"), input)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(address)
}

func (a *Adapter) deleteAddress(c fiber.Ctx) error {
	if err := a.directory.DeleteAddress(c.Context(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "address deleted"})
}

func (a *Adapter) addCollaborator(c fiber.Ctx) error {
	claims := identity(c)

	var input core.CollaboratorInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrInvalidInput)
	}

	collaborator, err := a.directory.AddCollaborator(c.Context(), claims.UserID, input)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(collaborator)
}

func (a *Adapter) getCollaborators(c fiber.Ctx) error {
	claims := identity(c)

	collaborators, err := a.directory.GetCollaborators(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(collaborators)
}
