package db

import (
	"github.com/terraincognita07/drinktab/internal/models"
	"gorm.io/gorm"
)

type ProductRepository struct {
	database *gorm.DB
}

func NewProductRepository(database *gorm.DB) *ProductRepository {
	return &ProductRepository{database: database}
}

func (repo *ProductRepository) List() ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := repo.database.Order("name ASC, id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (repo *ProductRepository) FindByID(productID uint) (models.Product, error) {
	var product models.Product
	if err := repo.database.First(&product, productID).Error; err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (repo *ProductRepository) ListByIDsUnscoped(ids []uint) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := repo.database.Unscoped().Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (repo *ProductRepository) Create(product *models.Product) error {
	return repo.database.Create(product).Error
}

func (repo *ProductRepository) UpdateByID(productID uint, updates map[string]any) error {
	return repo.database.Model(&models.Product{}).Where("id = ?", productID).Updates(updates).Error
}

// Delete soft-deletes the product; consumption records keep their copied price.
func (repo *ProductRepository) Delete(productID uint) (bool, error) {
	result := repo.database.Delete(&models.Product{}, productID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
