package db

import (
	"time"

	"github.com/terraincognita07/drinktab/internal/models"
	"gorm.io/gorm"
)

type ConsumptionRepository struct {
	database *gorm.DB
}

func NewConsumptionRepository(database *gorm.DB) *ConsumptionRepository {
	return &ConsumptionRepository{database: database}
}

// CreateBatch inserts every record in one statement.
func (repo *ConsumptionRepository) CreateBatch(records []models.ConsumptionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return repo.database.Create(&records).Error
}

func (repo *ConsumptionRepository) ListRecentByUser(userID uint, limit int) ([]models.ConsumptionRecord, error) {
	records := make([]models.ConsumptionRecord, 0, limit)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *ConsumptionRepository) ListByUserAndProduct(userID uint, productID uint) ([]models.ConsumptionRecord, error) {
	records := make([]models.ConsumptionRecord, 0)
	if err := repo.database.
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListNonBatchByUserInRange returns records with created_at in [from, to).
func (repo *ConsumptionRepository) ListNonBatchByUserInRange(userID uint, from time.Time, to time.Time) ([]models.ConsumptionRecord, error) {
	records := make([]models.ConsumptionRecord, 0)
	if err := repo.database.
		Where("user_id = ? AND batch = ? AND created_at >= ? AND created_at < ?", userID, false, from, to).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *ConsumptionRepository) SumPriceByUser(userID uint) (float64, error) {
	var total float64
	if err := repo.database.
		Model(&models.ConsumptionRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (repo *ConsumptionRepository) SumPriceByUserAndProduct(userID uint, productID uint) (float64, error) {
	var total float64
	if err := repo.database.
		Model(&models.ConsumptionRecord{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// TotalsByProductForUser groups every record of the user, batch included.
func (repo *ConsumptionRepository) TotalsByProductForUser(userID uint) ([]models.ProductTotal, error) {
	rows := make([]models.ProductTotal, 0)
	if err := repo.database.
		Model(&models.ConsumptionRecord{}).
		Select("product_id, COUNT(*) AS count, COALESCE(SUM(price), 0) AS total").
		Where("user_id = ?", userID).
		Group("product_id").
		Order("product_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *ConsumptionRepository) CountByProduct(productID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.ConsumptionRecord{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
