package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/services"
)

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// sanitizeRedirectPath only lets local absolute paths through. Anything a
// browser could read as another host ("//x", "/\x", "https://x") falls back.
func sanitizeRedirectPath(raw string, fallback string) string {
	candidate := strings.TrimSpace(raw)
	if len(candidate) == 0 || candidate[0] != '/' {
		return fallback
	}
	if len(candidate) > 1 && (candidate[1] == '/' || candidate[1] == '\\') {
		return fallback
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return fallback
	}
	return candidate
}

func pathID(c *fiber.Ctx) (uint, bool) {
	return services.ParseID(c.Params("id"))
}
