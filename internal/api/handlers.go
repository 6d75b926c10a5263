package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/drinktab/internal/i18n"
	"github.com/terraincognita07/drinktab/internal/services"
	"gorm.io/gorm"
)

func NewHandler(
	database *gorm.DB,
	store *session.Store,
	adminAuth *services.AdminAuthenticator,
	templateDir string,
	location *time.Location,
	i18nManager *i18n.Manager,
	logger zerolog.Logger,
	cookieSecure bool,
) (*Handler, error) {
	if location == nil {
		location = time.Local
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if adminAuth == nil {
		return nil, errors.New("admin authenticator is required")
	}

	templates, err := parsePages(templateDir, newTemplateFuncMap())
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		db:           database,
		location:     location,
		cookieSecure: cookieSecure,
		i18n:         i18nManager,
		templates:    templates,
		sessions:     store,
		adminAuth:    adminAuth,
		adminLimiter: newAttemptLimiter(adminAuthFailureLimit, adminAuthFailureWindow),
		logger:       logger,
		metrics:      newHandlerMetrics(),
	}
	return handler.withDependencies(database), nil
}
