package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/models"
	"github.com/terraincognita07/drinktab/internal/services"
)

type loginInput struct {
	UserID    string `form:"id"`
	ProductID string `form:"prod_id"`
	Quantity  string `form:"quantity"`
}

// RecordConsumption records quantity units of the product for the current
// user, or asks an anonymous visitor to pick an identity first.
func (handler *Handler) RecordConsumption(c *fiber.Ctx) error {
	product, found, err := handler.lookupProduct(c.Params("id"))
	if err != nil {
		return err
	}
	if !found {
		return handler.NotFound(c)
	}

	quantity := services.ClampQuantity(c.FormValue("quantity"))
	user, ok := currentUser(c)
	if !ok {
		return handler.renderIdentitySelection(c, product, quantity)
	}
	return handler.recordAndConfirm(c, user, product, quantity)
}

// Login assumes the chosen identity and finishes the pending recording.
func (handler *Handler) Login(c *fiber.Ctx) error {
	input := loginInput{}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	userID, ok := services.ParseID(input.UserID)
	if !ok {
		return handler.NotFound(c)
	}
	user, err := handler.catalog.FindUser(userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return handler.NotFound(c)
	}
	if err != nil {
		return err
	}

	if input.ProductID == "" {
		if err := handler.startUserSession(c, user.ID); err != nil {
			return err
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	product, found, err := handler.lookupProduct(input.ProductID)
	if err != nil {
		return err
	}
	if !found {
		return handler.NotFound(c)
	}

	if err := handler.startUserSession(c, user.ID); err != nil {
		return err
	}
	c.Locals(contextUserKey, &user)
	return handler.recordAndConfirm(c, &user, product, services.ClampQuantity(input.Quantity))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if err := handler.endUserSession(c); err != nil {
		return err
	}
	c.Locals(contextUserKey, nil)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (handler *Handler) lookupProduct(rawID string) (models.Product, bool, error) {
	productID, ok := services.ParseID(rawID)
	if !ok {
		return models.Product{}, false, nil
	}
	product, err := handler.catalog.FindProduct(productID)
	if errors.Is(err, services.ErrProductNotFound) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, err
	}
	return product, true, nil
}

func (handler *Handler) renderIdentitySelection(c *fiber.Ctx, product models.Product, quantity int) error {
	users, err := handler.catalog.ListUsers()
	if err != nil {
		return err
	}

	messages := currentMessages(c)
	return handler.render(c, "login", fiber.Map{
		"Title":    localizedPageTitle(messages, "meta.title.login", "drinktab | Who are you?"),
		"Users":    users,
		"Product":  product,
		"Quantity": quantity,
	})
}

func (handler *Handler) recordAndConfirm(c *fiber.Ctx, user *models.User, product models.Product, quantity int) error {
	records, err := handler.consumptions.Record(user.ID, product, quantity)
	if err != nil {
		return err
	}
	handler.metrics.consumptions.WithLabelValues(strconv.FormatUint(uint64(product.ID), 10)).Add(float64(len(records)))
	handler.logger.Info().
		Uint("user_id", user.ID).
		Uint("product_id", product.ID).
		Int("quantity", len(records)).
		Msg("consumption recorded")

	productRecords, err := handler.consumptions.RecordsForProduct(user.ID, product.ID)
	if err != nil {
		return err
	}
	productTotal, err := handler.consumptions.TypePrice(user.ID, product.ID)
	if err != nil {
		return err
	}
	total, err := handler.consumptions.TotalPrice(user.ID)
	if err != nil {
		return err
	}

	messages := currentMessages(c)
	return handler.render(c, "done", fiber.Map{
		"Title":        localizedPageTitle(messages, "meta.title.done", "drinktab | Done"),
		"Message":      translateMessage(messages, services.ConfirmationMessageKey()),
		"User":         user,
		"Product":      product,
		"Quantity":     len(records),
		"ProductCount": len(productRecords),
		"ProductTotal": productTotal,
		"Total":        total,
	})
}
