package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const languageCookieLifetime = 365 * 24 * time.Hour

// LanguageMiddleware resolves the UI language for the request. An explicit
// choice stored by /lang/:lang wins over Accept-Language; detection alone is
// never persisted so a browser language change still takes effect.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.resolveLanguage(c)

	c.Locals(contextLanguageKey, language)
	c.Locals(contextMessagesKey, handler.i18n.Messages(language))
	c.Set(fiber.HeaderContentLanguage, language)
	c.Vary(fiber.HeaderAcceptLanguage, fiber.HeaderCookie)
	return c.Next()
}

func (handler *Handler) resolveLanguage(c *fiber.Ctx) string {
	stored := c.Cookies(languageCookieName)
	if stored == "" {
		return handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	}

	language := handler.i18n.NormalizeLanguage(stored)
	if language != stored {
		handler.setLanguageCookie(c, language)
	}
	return language
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	c.Cookie(&fiber.Cookie{
		Name:     languageCookieName,
		Value:    handler.i18n.NormalizeLanguage(language),
		Path:     "/",
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(languageCookieLifetime),
	})
}
