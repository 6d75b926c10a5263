package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/models"
)

const (
	languageCookieName  = "drinktab_lang"
	flashCookieName     = "drinktab_flash"
	contextUserKey      = "current_user"
	contextLanguageKey  = "current_language"
	contextMessagesKey  = "current_messages"
	contextAdminUserKey = "admin_username"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}
