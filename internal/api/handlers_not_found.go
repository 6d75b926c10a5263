package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"error": "not found"})
	}

	return handler.render(c, "not_found", fiber.Map{
		"Title": localizedPageTitle(currentMessages(c), "meta.title.not_found", "drinktab | Not Found"),
	})
}
