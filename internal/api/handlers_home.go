package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ShowHome(c *fiber.Ctx) error {
	users, err := handler.catalog.ListUsers()
	if err != nil {
		return err
	}
	products, err := handler.catalog.ListProducts()
	if err != nil {
		return err
	}

	messages := currentMessages(c)
	return handler.render(c, "index", fiber.Map{
		"Title":    localizedPageTitle(messages, "meta.title.home", "drinktab"),
		"Users":    users,
		"Products": products,
	})
}
