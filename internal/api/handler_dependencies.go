package api

import (
	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.catalog = services.NewCatalogService(handler.repositories.Users, handler.repositories.Products)
	handler.consumptions = services.NewConsumptionService(handler.repositories.Consumptions, handler.repositories.Products, handler.location)
	return handler
}
