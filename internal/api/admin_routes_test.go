package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/models"
)

func TestAdminRoutesRequireBasicAuth(t *testing.T) {
	env := newTestApp(t)
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/admin", nil),
		httptest.NewRequest(http.MethodGet, "/admin/user/"+itoa(alice.ID), nil),
		httptest.NewRequest(http.MethodGet, "/admin/product/"+itoa(coffee.ID), nil),
		httptest.NewRequest(http.MethodGet, "/metrics", nil),
		formRequest(http.MethodPost, "/admin/users/add", url.Values{"name": {"Mallory"}}),
		formRequest(http.MethodPost, "/admin/user/"+itoa(alice.ID)+"/remove", url.Values{}),
		formRequest(http.MethodPost, "/admin/products/add", url.Values{"name": {"Tea"}, "price": {"0.50"}}),
		formRequest(http.MethodPost, "/admin/product/"+itoa(coffee.ID)+"/remove", url.Values{}),
		formRequest(http.MethodPost, "/admin/product/"+itoa(coffee.ID)+"/edit", url.Values{"name": {"Free"}, "price": {"0"}}),
	}

	for _, request := range requests {
		path := request.URL.Path
		response, body := env.do(t, request)
		if response.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s %s expected 401, got %d", request.Method, path, response.StatusCode)
		}
		if challenge := response.Header.Get("WWW-Authenticate"); challenge != `Basic realm="Restricted Area"` {
			t.Fatalf("%s %s unexpected challenge %q", request.Method, path, challenge)
		}
		if body != "Not authorized" {
			t.Fatalf("%s %s unexpected body %q", request.Method, path, body)
		}
	}

	wrong := withBasicAuth(formRequest(http.MethodPost, "/admin/users/add", url.Values{"name": {"Mallory"}}), testAdminUsername, "nope")
	if response, _ := env.do(t, wrong); response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected wrong password to be rejected, got %d", response.StatusCode)
	}

	var users int64
	env.database.Model(&models.User{}).Count(&users)
	var products int64
	env.database.Model(&models.Product{}).Count(&products)
	if users != 1 || products != 1 {
		t.Fatalf("expected no mutation without credentials, got %d users and %d products", users, products)
	}

	var stored models.Product
	env.database.First(&stored, coffee.ID)
	if stored.Name != "Coffee" || stored.Price != 0.6 {
		t.Fatalf("expected product to stay unchanged, got %#v", stored)
	}
}

func TestAdminCreatesAndRemovesUsers(t *testing.T) {
	env := newTestApp(t)

	response, _ := env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/users/add", url.Values{"name": {" Alice "}})))
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	flash := readFlash(t, response)
	if flash.AdminNotice != "admin.notice.user_added" {
		t.Fatalf("unexpected flash %#v", flash)
	}

	var alice models.User
	if err := env.database.Where("name = ?", "Alice").First(&alice).Error; err != nil {
		t.Fatalf("expected Alice to be created: %v", err)
	}

	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/users/add", url.Values{"name": {"   "}})))
	if flash := readFlash(t, response); flash.AdminError != "admin.error.invalid_user_name" {
		t.Fatalf("expected invalid name flash, got %#v", flash)
	}

	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/user/"+itoa(alice.ID)+"/remove", url.Values{})))
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected remove redirect, got %d", response.StatusCode)
	}

	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/user/"+itoa(alice.ID)+"/remove", url.Values{})))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 removing a removed user, got %d", response.StatusCode)
	}

	response, _ = env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/admin/user/"+itoa(alice.ID), nil)))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for removed user page, got %d", response.StatusCode)
	}
}

func TestAdminFlashIsShownOnce(t *testing.T) {
	env := newTestApp(t)

	response, _ := env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/products/add", url.Values{"name": {"Tea"}, "price": {"0,50"}, "style": {"tea"}})))
	flashCookie := responseCookie(response.Cookies(), flashCookieName)
	if flashCookie == nil {
		t.Fatal("expected flash cookie")
	}

	request := withAdmin(httptest.NewRequest(http.MethodGet, "/admin", nil))
	request.AddCookie(&http.Cookie{Name: flashCookieName, Value: flashCookie.Value})
	response, body := env.do(t, request)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected admin page, got %d", response.StatusCode)
	}
	if !strings.Contains(body, "Product added.") || !strings.Contains(body, "0.50") {
		t.Fatal("expected flash notice and new product on admin page")
	}
	cleared := responseCookie(response.Cookies(), flashCookieName)
	if cleared == nil || cleared.Value != "" {
		t.Fatal("expected flash cookie to be cleared after display")
	}
}

func TestAdminProductValidationAndEdit(t *testing.T) {
	env := newTestApp(t)
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)
	sessionID := env.loginAs(t, alice)

	env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{}), sessionID))

	response, _ := env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/products/add", url.Values{"name": {"Tea"}, "price": {"-1"}})))
	if flash := readFlash(t, response); flash.AdminError != "admin.error.invalid_product_price" {
		t.Fatalf("expected invalid price flash, got %#v", flash)
	}

	editPath := "/admin/product/" + itoa(coffee.ID) + "/edit"
	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, editPath, url.Values{"name": {""}, "price": {"0.80"}})))
	if location := response.Header.Get("Location"); location != "/admin/product/"+itoa(coffee.ID) {
		t.Fatalf("expected invalid edit to return to product page, got %q", location)
	}
	if flash := readFlash(t, response); flash.AdminError != "admin.error.invalid_product_name" {
		t.Fatalf("expected invalid name flash, got %#v", flash)
	}

	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, editPath, url.Values{"name": {"Espresso"}, "price": {"0.80"}, "style": {"coffee"}})))
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/admin" {
		t.Fatalf("expected edit redirect to /admin, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}

	var stored models.Product
	env.database.First(&stored, coffee.ID)
	if stored.Name != "Espresso" || stored.Price != 0.8 || stored.Style != "coffee" {
		t.Fatalf("unexpected updated product %#v", stored)
	}

	records := env.consumptionRecords(t)
	if len(records) != 1 || records[0].Price != 0.6 {
		t.Fatalf("expected recorded price to stay 0.60, got %#v", records)
	}

	response, body := env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/admin/product/"+itoa(coffee.ID), nil)))
	if response.StatusCode != fiber.StatusOK || !strings.Contains(body, `value="0.80"`) {
		t.Fatalf("expected product page with new price, got %d", response.StatusCode)
	}

	response, _ = env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/product/999/edit", url.Values{"name": {"Ghost"}, "price": {"1"}})))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 editing unknown product, got %d", response.StatusCode)
	}
}

func TestDeletedProductWithRecordsStillRenders(t *testing.T) {
	env := newTestApp(t)
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)
	sessionID := env.loginAs(t, alice)

	env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{"quantity": {"2"}}), sessionID))

	response, _ := env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/product/"+itoa(coffee.ID)+"/remove", url.Values{})))
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected remove redirect, got %d", response.StatusCode)
	}

	response, body := env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/admin/user/"+itoa(alice.ID), nil)))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected user page to render, got %d", response.StatusCode)
	}
	for _, fragment := range []string{"Coffee", "(removed)", `<strong data-total>1.20</strong>`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected user page to contain %q", fragment)
		}
	}

	response, body = env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if response.StatusCode != fiber.StatusOK || strings.Contains(body, "Coffee") {
		t.Fatal("expected removed product to disappear from the home page")
	}

	response, _ = env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{}), sessionID))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected removed product to be unrecordable, got %d", response.StatusCode)
	}
}

func TestAdminUserPageListsSelectedMonth(t *testing.T) {
	env := newTestApp(t)
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)
	sessionID := env.loginAs(t, alice)
	env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{}), sessionID))

	year := env.handler.consumptions.CurrentYear()
	path := "/admin/user/" + itoa(alice.ID) + "?year=" + itoa(uint(year)) + "&month=1"
	response, body := env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, path, nil)))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if !strings.Contains(body, "data-month-records") || !strings.Contains(body, "January") {
		t.Fatal("expected month record section for January")
	}
}

func TestAdminUserMonthListUsesConfiguredLocation(t *testing.T) {
	env := newTestAppInLocation(t, time.FixedZone("WEST", 60*60))
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)
	record := models.ConsumptionRecord{
		UserID:    alice.ID,
		ProductID: coffee.ID,
		Price:     coffee.Price,
		CreatedAt: time.Date(2024, time.June, 30, 23, 30, 0, 0, time.UTC),
	}
	if err := env.database.Create(&record).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}

	path := "/admin/user/" + itoa(alice.ID) + "?year=2024&month=7"
	response, body := env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, path, nil)))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	start := strings.Index(body, "data-month-records")
	if start < 0 {
		t.Fatal("expected month record section")
	}
	section := body[start:]
	section = section[:strings.Index(section, "</section>")]
	if !strings.Contains(section, "2024-07-01 00:30") {
		t.Fatalf("expected local timestamp in July list, got %s", section)
	}
	if strings.Contains(body, "2024-06-30 23:30") {
		t.Fatal("expected no UTC timestamp on the page")
	}
}

func TestAdminAuthFailuresAreThrottled(t *testing.T) {
	env := newTestApp(t)

	for attempt := 0; attempt < adminAuthFailureLimit; attempt++ {
		response, _ := env.do(t, withBasicAuth(httptest.NewRequest(http.MethodGet, "/admin", nil), "admin", "guess"))
		if response.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("attempt %d expected 401, got %d", attempt, response.StatusCode)
		}
	}

	response, _ := env.do(t, withBasicAuth(httptest.NewRequest(http.MethodGet, "/admin", nil), "admin", "guess"))
	if response.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", response.StatusCode)
	}
	if response.Header.Get(fiber.HeaderRetryAfter) == "" {
		t.Fatal("expected Retry-After on throttled response")
	}

	response, _ = env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected valid credentials to pass while throttled, got %d", response.StatusCode)
	}

	response, _ = env.do(t, withBasicAuth(httptest.NewRequest(http.MethodGet, "/admin", nil), "admin", "guess"))
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected successful login to clear the failure history, got %d", response.StatusCode)
	}
}

func TestMetricsExposeConsumptionCounter(t *testing.T) {
	env := newTestApp(t)
	alice := env.createUser(t, "Alice")
	coffee := env.createProduct(t, "Coffee", 0.6)
	sessionID := env.loginAs(t, alice)
	env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{"quantity": {"3"}}), sessionID))

	response, body := env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/metrics", nil)))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected metrics, got %d", response.StatusCode)
	}
	series := `drinktab_consumptions_recorded_total{product_id="` + itoa(coffee.ID) + `"} 3`
	if !strings.Contains(body, series) {
		t.Fatalf("expected consumption counter in metrics output, got %s", body)
	}

	edit := url.Values{"name": {"Espresso"}, "price": {"0.7"}}
	env.do(t, withAdmin(formRequest(http.MethodPost, "/admin/product/"+itoa(coffee.ID)+"/edit", edit)))
	env.do(t, withSession(formRequest(http.MethodPost, "/product/"+itoa(coffee.ID), url.Values{}), sessionID))

	_, body = env.do(t, withAdmin(httptest.NewRequest(http.MethodGet, "/metrics", nil)))
	series = `drinktab_consumptions_recorded_total{product_id="` + itoa(coffee.ID) + `"} 4`
	if !strings.Contains(body, series) {
		t.Fatalf("expected renamed product to keep its series, got %s", body)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestApp(t)

	response, body := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if response.StatusCode != fiber.StatusOK || body != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %s", response.StatusCode, body)
	}

	response, body = env.do(t, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if response.StatusCode != fiber.StatusNotFound || !strings.Contains(body, "Not found") {
		t.Fatalf("expected rendered 404 page, got %d", response.StatusCode)
	}
}

func TestLanguageSwitchRendersPortuguese(t *testing.T) {
	env := newTestApp(t)

	response, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/lang/pt?next=/admin", nil))
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/admin" {
		t.Fatalf("unexpected language redirect %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	cookie := responseCookie(response.Cookies(), languageCookieName)
	if cookie == nil || cookie.Value != "pt" {
		t.Fatal("expected pt language cookie")
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: languageCookieName, Value: "pt"})
	_, body := env.do(t, request)
	if !strings.Contains(body, "O que vais beber?") {
		t.Fatal("expected portuguese home title")
	}
}

func TestAcceptLanguageIsDetectedButNotPersisted(t *testing.T) {
	env := newTestApp(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Language", "pt-PT,pt;q=0.9,en;q=0.5")
	response, body := env.do(t, request)
	if !strings.Contains(body, "O que vais beber?") {
		t.Fatal("expected portuguese home title from Accept-Language")
	}
	if response.Header.Get("Content-Language") != "pt" {
		t.Fatalf("expected Content-Language pt, got %q", response.Header.Get("Content-Language"))
	}
	if cookie := responseCookie(response.Cookies(), languageCookieName); cookie != nil {
		t.Fatalf("expected detected language not to be stored, got cookie %q", cookie.Value)
	}
}

func readFlash(t *testing.T, response *http.Response) FlashPayload {
	t.Helper()

	cookie := responseCookie(response.Cookies(), flashCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected flash cookie")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		t.Fatalf("decode flash cookie: %v", err)
	}
	payload := FlashPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		t.Fatalf("parse flash cookie: %v", err)
	}
	return payload
}
