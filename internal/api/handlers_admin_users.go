package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/drinktab/internal/models"
	"github.com/terraincognita07/drinktab/internal/services"
)

type addUserInput struct {
	Name string `form:"name"`
}

func (handler *Handler) ShowAdmin(c *fiber.Ctx) error {
	users, err := handler.catalog.ListUsers()
	if err != nil {
		return err
	}
	products, err := handler.catalog.ListProducts()
	if err != nil {
		return err
	}

	flash := handler.popFlashCookie(c)
	messages := currentMessages(c)
	return handler.render(c, "admin_index", fiber.Map{
		"Title":       localizedPageTitle(messages, "meta.title.admin", "drinktab | Admin"),
		"Users":       users,
		"Products":    products,
		"AdminNotice": flash.AdminNotice,
		"AdminError":  flash.AdminError,
	})
}

func (handler *Handler) AddUser(c *fiber.Ctx) error {
	input := addUserInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.redirectWithError(c, "/admin", "admin.error.invalid_user_name")
	}

	user, err := handler.catalog.CreateUser(input.Name)
	if errors.Is(err, services.ErrInvalidUserName) {
		return handler.redirectWithError(c, "/admin", "admin.error.invalid_user_name")
	}
	if err != nil {
		return err
	}

	handler.logger.Info().Uint("user_id", user.ID).Msg("user created")
	return handler.redirectWithNotice(c, "/admin", "admin.notice.user_added")
}

func (handler *Handler) RemoveUser(c *fiber.Ctx) error {
	userID, ok := pathID(c)
	if !ok {
		return handler.NotFound(c)
	}

	err := handler.catalog.DeleteUser(userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return handler.NotFound(c)
	}
	if err != nil {
		return err
	}

	handler.logger.Info().Uint("user_id", userID).Msg("user removed")
	return handler.redirectWithNotice(c, "/admin", "admin.notice.user_removed")
}

// ShowUser renders totals for one user. ?year selects the monthly table and
// ?month additionally lists that month's non-batch records.
func (handler *Handler) ShowUser(c *fiber.Ctx) error {
	userID, ok := pathID(c)
	if !ok {
		return handler.NotFound(c)
	}

	user, err := handler.catalog.FindUser(userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return handler.NotFound(c)
	}
	if err != nil {
		return err
	}

	year := parseYearQuery(c.Query("year"), handler.consumptions.CurrentYear())
	summary, err := handler.consumptions.Summary(user.ID, year)
	if err != nil {
		return err
	}

	month, hasMonth := parseMonthQuery(c.Query("month"))
	var monthRecords []models.ConsumptionRecord
	if hasMonth {
		monthRecords, err = handler.consumptions.MonthlyRecords(user.ID, month, year)
		if err != nil {
			return err
		}
	}

	messages := currentMessages(c)
	selectedMonthName := ""
	if hasMonth {
		selectedMonthName = localizedMonthName(messages, time.Month(month))
	}
	return handler.render(c, "admin_user", fiber.Map{
		"Title":             localizedPageTitle(messages, "meta.title.admin_user", "drinktab | User"),
		"User":              user,
		"Summary":           summary,
		"PreviousYear":      year - 1,
		"NextYear":          year + 1,
		"HasMonth":          hasMonth,
		"SelectedMonth":     month,
		"SelectedMonthName": selectedMonthName,
		"MonthRecords":      monthRecords,
	})
}

func parseYearQuery(raw string, fallback int) int {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return fallback
	}
	return year
}

func parseMonthQuery(raw string) (int, bool) {
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	return month, true
}
