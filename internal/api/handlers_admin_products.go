package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/services"
)

func (handler *Handler) AddProduct(c *fiber.Ctx) error {
	input := services.ProductInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.redirectWithError(c, "/admin", "admin.error.invalid_product")
	}

	product, err := handler.catalog.CreateProduct(input)
	if key := productValidationKey(err); key != "" {
		return handler.redirectWithError(c, "/admin", key)
	}
	if err != nil {
		return err
	}

	handler.logger.Info().Uint("product_id", product.ID).Msg("product created")
	return handler.redirectWithNotice(c, "/admin", "admin.notice.product_added")
}

func (handler *Handler) RemoveProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c)
	if !ok {
		return handler.NotFound(c)
	}

	err := handler.catalog.DeleteProduct(productID)
	if errors.Is(err, services.ErrProductNotFound) {
		return handler.NotFound(c)
	}
	if err != nil {
		return err
	}

	handler.logger.Info().Uint("product_id", productID).Msg("product removed")
	return handler.redirectWithNotice(c, "/admin", "admin.notice.product_removed")
}

func (handler *Handler) ShowProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c)
	if !ok {
		return handler.NotFound(c)
	}

	product, err := handler.catalog.FindProduct(productID)
	if errors.Is(err, services.ErrProductNotFound) {
		return handler.NotFound(c)
	}
	if err != nil {
		return err
	}

	recordCount, err := handler.consumptions.ProductRecordCount(productID)
	if err != nil {
		return err
	}

	flash := handler.popFlashCookie(c)
	messages := currentMessages(c)
	return handler.render(c, "admin_product", fiber.Map{
		"Title":       localizedPageTitle(messages, "meta.title.admin_product", "drinktab | Product"),
		"Product":     product,
		"PriceValue":  services.FormatPrice(product.Price),
		"RecordCount": recordCount,
		"AdminError":  flash.AdminError,
	})
}

func (handler *Handler) EditProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c)
	if !ok {
		return handler.NotFound(c)
	}
	productPath := fmt.Sprintf("/admin/product/%d", productID)

	input := services.ProductInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.redirectWithError(c, productPath, "admin.error.invalid_product")
	}

	_, err := handler.catalog.UpdateProduct(productID, input)
	if errors.Is(err, services.ErrProductNotFound) {
		return handler.NotFound(c)
	}
	if key := productValidationKey(err); key != "" {
		return handler.redirectWithError(c, productPath, key)
	}
	if err != nil {
		return err
	}

	handler.logger.Info().Uint("product_id", productID).Msg("product updated")
	return handler.redirectWithNotice(c, "/admin", "admin.notice.product_updated")
}

func productValidationKey(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidProductName):
		return "admin.error.invalid_product_name"
	case errors.Is(err, services.ErrInvalidProductPrice):
		return "admin.error.invalid_product_price"
	default:
		return ""
	}
}
