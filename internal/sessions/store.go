package sessions

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/terraincognita07/drinktab/internal/config"
	"github.com/terraincognita07/drinktab/internal/security"
	"gorm.io/gorm"
)

const (
	CookieName = "drinktab_session"
	Expiration = 15 * 24 * time.Hour
	UserIDKey  = "user_id"

	sessionIDLength = 48
)

// NewStorage picks the session backend named in the configuration.
func NewStorage(cfg config.SessionConfig, database *gorm.DB) (fiber.Storage, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		storage, err := NewRedisStorage(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		return storage, nil
	case config.SessionStoreGorm, "":
		return NewGormStorage(database), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}

func NewStore(storage fiber.Storage, cookieSecure bool) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		Expiration:     Expiration,
		KeyLookup:      "cookie:" + CookieName,
		CookiePath:     "/",
		CookieSecure:   cookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   newSessionID,
	})
}

func newSessionID() string {
	id, err := security.Token(sessionIDLength)
	if err != nil {
		panic(fmt.Sprintf("generate session id: %v", err))
	}
	return id
}

// CurrentUserID reads the user id stored in the session, if any.
func CurrentUserID(sess *session.Session) (uint, bool) {
	if sess == nil {
		return 0, false
	}
	switch value := sess.Get(UserIDKey).(type) {
	case uint:
		return value, value != 0
	case uint64:
		return uint(value), value != 0
	case int:
		return uint(value), value > 0
	default:
		return 0, false
	}
}
