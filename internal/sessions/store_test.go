package sessions

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/drinktab/internal/config"
)

func TestNewStorageSelectsBackend(t *testing.T) {
	storage, err := NewStorage(config.SessionConfig{Store: config.SessionStoreGorm}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GormStorage{}, storage)

	_, err = NewStorage(config.SessionConfig{Store: "memcached"}, nil)
	assert.Error(t, err)
}

func TestStoreKeepsUserAcrossRequestsUntilDestroyed(t *testing.T) {
	store := NewStore(newTestGormStorage(t), false)

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(UserIDKey, uint(7))
		return sess.Save()
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		userID, ok := CurrentUserID(sess)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		return sess.Destroy()
	})

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil), -1)
	require.NoError(t, err)
	cookie := findCookie(response.Cookies(), CookieName)
	require.NotNil(t, cookie, "expected session cookie to be issued")
	assert.True(t, cookie.HttpOnly)
	assert.Len(t, cookie.Value, sessionIDLength)

	request := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	request.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	response, err = app.Test(request, -1)
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":7}`, readBody(t, response))

	request = httptest.NewRequest(http.MethodGet, "/clear", nil)
	request.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	_, err = app.Test(request, -1)
	require.NoError(t, err)

	request = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	request.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	response, err = app.Test(request, -1)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", readBody(t, response), "destroyed session must not resolve a user")
}

func TestCurrentUserIDHandlesMissingValues(t *testing.T) {
	_, ok := CurrentUserID(nil)
	assert.False(t, ok)

	var empty *session.Session
	_, ok = CurrentUserID(empty)
	assert.False(t, ok)
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return string(body)
}
