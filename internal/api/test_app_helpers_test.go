package api

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/i18n"
	"github.com/terraincognita07/drinktab/internal/models"
	"github.com/terraincognita07/drinktab/internal/services"
	"github.com/terraincognita07/drinktab/internal/sessions"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "password"
)

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	handler  *Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppInLocation(t, time.UTC)
}

func newTestAppInLocation(t *testing.T, location *time.Location) *testApp {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve test file path: runtime.Caller failed")
	}
	internalDir := filepath.Join(filepath.Dir(thisFile), "..")

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "drinktab.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	i18nManager, err := i18n.NewManager("en", filepath.Join(internalDir, "i18n", "locales"))
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	adminAuth, err := services.NewAdminAuthenticator(testAdminUsername, "", string(hash))
	if err != nil {
		t.Fatalf("init admin auth: %v", err)
	}

	store := sessions.NewStore(sessions.NewGormStorage(database), false)
	handler, err := NewHandler(database, store, adminAuth, filepath.Join(internalDir, "templates"), location, i18nManager, zerolog.Nop(), false)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)

	return &testApp{app: app, database: database, handler: handler}
}

func (env *testApp) createUser(t *testing.T, name string) models.User {
	t.Helper()
	user := models.User{Name: name}
	if err := env.database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func (env *testApp) createProduct(t *testing.T, name string, price float64) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price}
	if err := env.database.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func (env *testApp) consumptionRecords(t *testing.T) []models.ConsumptionRecord {
	t.Helper()
	records := make([]models.ConsumptionRecord, 0)
	if err := env.database.Order("id ASC").Find(&records).Error; err != nil {
		t.Fatalf("load consumption records: %v", err)
	}
	return records
}

func (env *testApp) do(t *testing.T, request *http.Request) (*http.Response, string) {
	t.Helper()

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", request.Method, request.URL.Path, err)
	}
	return response, string(body)
}

func formRequest(method string, path string, values url.Values) *http.Request {
	request := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return request
}

func withSession(request *http.Request, sessionID string) *http.Request {
	if sessionID != "" {
		request.AddCookie(&http.Cookie{Name: sessions.CookieName, Value: sessionID})
	}
	return request
}

func withBasicAuth(request *http.Request, username string, password string) *http.Request {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	request.Header.Set("Authorization", "Basic "+credentials)
	return request
}

func withAdmin(request *http.Request) *http.Request {
	return withBasicAuth(request, testAdminUsername, testAdminPassword)
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// loginAs runs the identity selection flow without a pending product and
// returns the issued session id.
func (env *testApp) loginAs(t *testing.T, user models.User) string {
	t.Helper()

	response, _ := env.do(t, formRequest(http.MethodPost, "/login", url.Values{"id": {itoa(user.ID)}}))
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d", response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), sessions.CookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie after login")
	}
	return cookie.Value
}

func itoa(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}
