package api

import (
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/i18n"
	"github.com/terraincognita07/drinktab/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	templates    map[string]*template.Template
	sessions     *session.Store
	adminAuth    *services.AdminAuthenticator
	adminLimiter *attemptLimiter
	logger       zerolog.Logger
	metrics      *handlerMetrics

	repositories *db.Repositories
	catalog      *services.CatalogService
	consumptions *services.ConsumptionService
}

type FlashPayload struct {
	AdminNotice string `json:"admin_notice,omitempty"`
	AdminError  string `json:"admin_error,omitempty"`
}

const (
	adminAuthFailureLimit  = 20
	adminAuthFailureWindow = 15 * time.Minute
)
