package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/terraincognita07/drinktab/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidUserName     = errors.New("invalid user name")
	ErrInvalidProductName  = errors.New("invalid product name")
	ErrInvalidProductPrice = errors.New("invalid product price")
)

const (
	maxUserNameLength    = 80
	maxProductNameLength = 80
	maxProductStyleLen   = 40
)

type CatalogUserRepository interface {
	CountUsers() (int64, error)
	List() ([]models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	Delete(userID uint) (bool, error)
}

type CatalogProductRepository interface {
	List() ([]models.Product, error)
	FindByID(productID uint) (models.Product, error)
	Create(product *models.Product) error
	UpdateByID(productID uint, updates map[string]any) error
	Delete(productID uint) (bool, error)
}

type CatalogService struct {
	users    CatalogUserRepository
	products CatalogProductRepository
}

// ProductInput is the raw admin form for creating or editing a product.
type ProductInput struct {
	Name  string `form:"name"`
	Price string `form:"price"`
	Style string `form:"style"`
}

func NewCatalogService(users CatalogUserRepository, products CatalogProductRepository) *CatalogService {
	return &CatalogService{users: users, products: products}
}

func (service *CatalogService) CountUsers() (int64, error) {
	return service.users.CountUsers()
}

func (service *CatalogService) ListUsers() ([]models.User, error) {
	return service.users.List()
}

func (service *CatalogService) FindUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (service *CatalogService) CreateUser(name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxUserNameLength {
		return models.User{}, ErrInvalidUserName
	}

	user := models.User{Name: name}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *CatalogService) DeleteUser(userID uint) error {
	deleted, err := service.users.Delete(userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func (service *CatalogService) ListProducts() ([]models.Product, error) {
	return service.products.List()
}

func (service *CatalogService) FindProduct(productID uint) (models.Product, error) {
	product, err := service.products.FindByID(productID)
	if err != nil {
		return models.Product{}, mapNotFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (service *CatalogService) CreateProduct(input ProductInput) (models.Product, error) {
	name, price, style, err := ValidateProductInput(input)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{Name: name, Price: price, Style: style}
	if err := service.products.Create(&product); err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// UpdateProduct changes catalog fields only; recorded consumptions keep the
// price they were created with.
func (service *CatalogService) UpdateProduct(productID uint, input ProductInput) (models.Product, error) {
	if _, err := service.FindProduct(productID); err != nil {
		return models.Product{}, err
	}

	name, price, style, err := ValidateProductInput(input)
	if err != nil {
		return models.Product{}, err
	}

	if err := service.products.UpdateByID(productID, map[string]any{
		"name":  name,
		"price": price,
		"style": style,
	}); err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return service.FindProduct(productID)
}

func (service *CatalogService) DeleteProduct(productID uint) error {
	deleted, err := service.products.Delete(productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return ErrProductNotFound
	}
	return nil
}

func ValidateProductInput(input ProductInput) (string, float64, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxProductNameLength {
		return "", 0, "", ErrInvalidProductName
	}

	price, err := ParsePrice(input.Price)
	if err != nil {
		return "", 0, "", err
	}

	style := strings.TrimSpace(input.Style)
	if len(style) > maxProductStyleLen {
		style = style[:maxProductStyleLen]
	}
	return name, price, style, nil
}

// ParsePrice accepts "0.60" and "0,60".
func ParsePrice(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if normalized == "" {
		return 0, ErrInvalidProductPrice
	}
	price, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, ErrInvalidProductPrice
	}
	return price, nil
}

// ParseID parses a positive path id.
func ParseID(raw string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func mapNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
