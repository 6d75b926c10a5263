package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// translateMessage returns the catalog text for key, or the key itself so a
// missing translation stays visible instead of rendering blank.
func translateMessage(messages map[string]string, key string) string {
	if value := strings.TrimSpace(messages[key]); value != "" {
		return messages[key]
	}
	return key
}

func localizedPageTitle(messages map[string]string, key string, fallback string) string {
	if title := translateMessage(messages, key); title != key {
		return title
	}
	return fallback
}

// localizedMonthName reads month.01 .. month.12 from the catalog and falls
// back to the English name.
func localizedMonthName(messages map[string]string, month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	key := fmt.Sprintf("month.%02d", int(month))
	if name := translateMessage(messages, key); name != key {
		return name
	}
	return month.String()
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func currentMessages(c *fiber.Ctx) map[string]string {
	if messages, ok := c.Locals(contextMessagesKey).(map[string]string); ok {
		return messages
	}
	return map[string]string{}
}

// withTemplateDefaults fills the layout fields every page needs without
// overriding values the handler already set.
func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}

	language := currentLanguage(c)
	if language == "" {
		language = handler.i18n.DefaultLanguage()
	}

	defaults := fiber.Map{
		"Messages":    currentMessages(c),
		"Lang":        language,
		"Languages":   handler.i18n.SupportedLanguages(),
		"CurrentPath": string(c.Request().URI().RequestURI()),
	}
	if user, ok := currentUser(c); ok {
		defaults["CurrentUser"] = user
	}

	for key, value := range defaults {
		if _, set := data[key]; !set {
			data[key] = value
		}
	}
	return data
}
