package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/services"
	"github.com/terraincognita07/drinktab/internal/sessions"
)

// CurrentUserMiddleware resolves the session user once per request. A
// missing, expired or deleted user leaves the request anonymous.
func (handler *Handler) CurrentUserMiddleware(c *fiber.Ctx) error {
	sess, err := handler.sessions.Get(c)
	if err != nil {
		handler.logger.Warn().Err(err).Str("path", c.Path()).Msg("session lookup failed")
		return c.Next()
	}

	userID, ok := sessions.CurrentUserID(sess)
	if !ok {
		return c.Next()
	}

	user, err := handler.catalog.FindUser(userID)
	switch {
	case err == nil:
		c.Locals(contextUserKey, &user)
	case errors.Is(err, services.ErrUserNotFound):
		handler.logger.Debug().Uint("user_id", userID).Msg("session user no longer exists")
	default:
		return err
	}
	return c.Next()
}

func (handler *Handler) startUserSession(c *fiber.Ctx, userID uint) error {
	sess, err := handler.sessions.Get(c)
	if err != nil {
		return err
	}
	if !sess.Fresh() {
		if err := sess.Regenerate(); err != nil {
			return err
		}
	}
	sess.Set(sessions.UserIDKey, userID)
	return sess.Save()
}

func (handler *Handler) endUserSession(c *fiber.Ctx) error {
	sess, err := handler.sessions.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
