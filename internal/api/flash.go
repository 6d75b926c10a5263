package api

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashLifetime = 5 * time.Minute

func encodeFlash(payload FlashPayload) (string, bool) {
	payload.AdminNotice = strings.TrimSpace(payload.AdminNotice)
	payload.AdminError = strings.TrimSpace(payload.AdminError)
	if payload == (FlashPayload{}) {
		return "", false
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return base64.RawURLEncoding.EncodeToString(serialized), true
}

func decodeFlash(raw string) FlashPayload {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return FlashPayload{}
	}

	var payload FlashPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return FlashPayload{}
	}
	payload.AdminNotice = strings.TrimSpace(payload.AdminNotice)
	payload.AdminError = strings.TrimSpace(payload.AdminError)
	return payload
}

func (handler *Handler) flashCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  expires,
	}
}

// setFlashCookie carries message keys across one redirect in a short lived
// cookie. The next page that renders pops and clears it.
func (handler *Handler) setFlashCookie(c *fiber.Ctx, payload FlashPayload) {
	value, ok := encodeFlash(payload)
	if !ok {
		c.Cookie(handler.flashCookie("", time.Now().Add(-time.Hour)))
		return
	}
	c.Cookie(handler.flashCookie(value, time.Now().Add(flashLifetime)))
}

func (handler *Handler) popFlashCookie(c *fiber.Ctx) FlashPayload {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return FlashPayload{}
	}
	c.Cookie(handler.flashCookie("", time.Now().Add(-time.Hour)))
	return decodeFlash(raw)
}

func (handler *Handler) redirectWithNotice(c *fiber.Ctx, path string, noticeKey string) error {
	handler.setFlashCookie(c, FlashPayload{AdminNotice: noticeKey})
	return c.Redirect(path, fiber.StatusSeeOther)
}

func (handler *Handler) redirectWithError(c *fiber.Ctx, path string, errorKey string) error {
	handler.setFlashCookie(c, FlashPayload{AdminError: errorKey})
	return c.Redirect(path, fiber.StatusSeeOther)
}
