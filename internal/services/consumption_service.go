package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/drinktab/internal/models"
)

var (
	ErrInvalidMonth        = errors.New("invalid month")
	ErrRecordConsumption   = errors.New("record consumption failed")
	ErrLoadConsumptionData = errors.New("load consumption data failed")
)

const recentRecordsLimit = 20

type ConsumptionRepository interface {
	CreateBatch(records []models.ConsumptionRecord) error
	ListByUserAndProduct(userID uint, productID uint) ([]models.ConsumptionRecord, error)
	ListNonBatchByUserInRange(userID uint, from time.Time, to time.Time) ([]models.ConsumptionRecord, error)
	ListRecentByUser(userID uint, limit int) ([]models.ConsumptionRecord, error)
	SumPriceByUser(userID uint) (float64, error)
	SumPriceByUserAndProduct(userID uint, productID uint) (float64, error)
	TotalsByProductForUser(userID uint) ([]models.ProductTotal, error)
	CountByProduct(productID uint) (int64, error)
}

type ConsumptionProductReader interface {
	ListByIDsUnscoped(ids []uint) ([]models.Product, error)
}

type ConsumptionService struct {
	records  ConsumptionRepository
	products ConsumptionProductReader
	location *time.Location
	now      func() time.Time
}

type ProductLine struct {
	ProductID uint
	Name      string
	Style     string
	Removed   bool
	Count     int64
	Total     string
}

type MonthCount struct {
	Month time.Month
	Count int
}

type RecordLine struct {
	CreatedAt      time.Time
	ProductName    string
	ProductRemoved bool
	Price          string
	Batch          bool
}

type UserSummary struct {
	Total    string
	Products []ProductLine
	Year     int
	Months   []MonthCount
	Recent   []RecordLine
}

func NewConsumptionService(records ConsumptionRepository, products ConsumptionProductReader, location *time.Location) *ConsumptionService {
	if location == nil {
		location = time.Local
	}
	return &ConsumptionService{
		records:  records,
		products: products,
		location: location,
		now:      time.Now,
	}
}

// FormatPrice renders a price sum with exactly two decimals so float sums
// like 0.3+0.3 display as 0.60.
func FormatPrice(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	if formatted == "-0.00" {
		return "0.00"
	}
	return formatted
}

// ClampQuantity parses a submitted quantity; anything missing, non-numeric
// or outside [MinQuantity, MaxQuantity] becomes 1.
func ClampQuantity(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return NormalizeQuantity(value)
}

func NormalizeQuantity(value int) int {
	if value < models.MinQuantity || value > models.MaxQuantity {
		return 1
	}
	return value
}

// MonthBounds returns [first day of month, first day of next month) in location.
func MonthBounds(month int, year int, location *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, location)
	return from, from.AddDate(0, 1, 0), nil
}

// Record creates quantity identical records, each copying the product's
// current price. Multi-unit submissions are flagged as batch.
func (service *ConsumptionService) Record(userID uint, product models.Product, quantity int) ([]models.ConsumptionRecord, error) {
	quantity = NormalizeQuantity(quantity)
	createdAt := service.now().UTC()
	batch := quantity != 1

	records := make([]models.ConsumptionRecord, 0, quantity)
	for index := 0; index < quantity; index++ {
		records = append(records, models.ConsumptionRecord{
			UserID:    userID,
			ProductID: product.ID,
			Price:     product.Price,
			Batch:     batch,
			CreatedAt: createdAt,
		})
	}

	if err := service.records.CreateBatch(records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordConsumption, err)
	}
	return records, nil
}

// MonthlyRecords returns the user's non-batch records created in the given
// month, with CreatedAt in the service location.
func (service *ConsumptionService) MonthlyRecords(userID uint, month int, year int) ([]models.ConsumptionRecord, error) {
	from, to, err := MonthBounds(month, year, service.location)
	if err != nil {
		return nil, err
	}
	records, err := service.records.ListNonBatchByUserInRange(userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	for index := range records {
		records[index].CreatedAt = records[index].CreatedAt.In(service.location)
	}
	return records, nil
}

func (service *ConsumptionService) RecordsForProduct(userID uint, productID uint) ([]models.ConsumptionRecord, error) {
	return service.records.ListByUserAndProduct(userID, productID)
}

func (service *ConsumptionService) TotalPrice(userID uint) (string, error) {
	total, err := service.records.SumPriceByUser(userID)
	if err != nil {
		return "", err
	}
	return FormatPrice(total), nil
}

func (service *ConsumptionService) TypePrice(userID uint, productID uint) (string, error) {
	total, err := service.records.SumPriceByUserAndProduct(userID, productID)
	if err != nil {
		return "", err
	}
	return FormatPrice(total), nil
}

// ProductRecordCount counts every record of a product across all users.
func (service *ConsumptionService) ProductRecordCount(productID uint) (int64, error) {
	return service.records.CountByProduct(productID)
}

// MonthlyCounts buckets the user's non-batch records of one year by month.
func (service *ConsumptionService) MonthlyCounts(userID uint, year int) ([]MonthCount, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, service.location)
	to := from.AddDate(1, 0, 0)

	records, err := service.records.ListNonBatchByUserInRange(userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	counts := make([]MonthCount, 12)
	for index := range counts {
		counts[index].Month = time.Month(index + 1)
	}
	for _, record := range records {
		counts[record.CreatedAt.In(service.location).Month()-1].Count++
	}
	return counts, nil
}

// Summary builds the per-user totals shown on the admin user page. Products
// that were deleted keep their name with a removed flag; products missing
// entirely render with a blank name.
func (service *ConsumptionService) Summary(userID uint, year int) (UserSummary, error) {
	total, err := service.TotalPrice(userID)
	if err != nil {
		return UserSummary{}, fmt.Errorf("%w: %v", ErrLoadConsumptionData, err)
	}

	totals, err := service.records.TotalsByProductForUser(userID)
	if err != nil {
		return UserSummary{}, fmt.Errorf("%w: %v", ErrLoadConsumptionData, err)
	}

	recent, err := service.records.ListRecentByUser(userID, recentRecordsLimit)
	if err != nil {
		return UserSummary{}, fmt.Errorf("%w: %v", ErrLoadConsumptionData, err)
	}

	months, err := service.MonthlyCounts(userID, year)
	if err != nil {
		return UserSummary{}, fmt.Errorf("%w: %v", ErrLoadConsumptionData, err)
	}

	productByID, err := service.productsByID(totals)
	if err != nil {
		return UserSummary{}, fmt.Errorf("%w: %v", ErrLoadConsumptionData, err)
	}

	lines := make([]ProductLine, 0, len(totals))
	for _, row := range totals {
		product := productByID[row.ProductID]
		lines = append(lines, ProductLine{
			ProductID: row.ProductID,
			Name:      product.Name,
			Style:     product.Style,
			Removed:   product.ID == 0 || product.Removed(),
			Count:     row.Count,
			Total:     FormatPrice(row.Total),
		})
	}

	recentLines := make([]RecordLine, 0, len(recent))
	for _, record := range recent {
		product := productByID[record.ProductID]
		recentLines = append(recentLines, RecordLine{
			CreatedAt:      record.CreatedAt.In(service.location),
			ProductName:    product.Name,
			ProductRemoved: product.ID == 0 || product.Removed(),
			Price:          FormatPrice(record.Price),
			Batch:          record.Batch,
		})
	}

	return UserSummary{
		Total:    total,
		Products: lines,
		Year:     year,
		Months:   months,
		Recent:   recentLines,
	}, nil
}

func (service *ConsumptionService) productsByID(totals []models.ProductTotal) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(totals))
	for _, row := range totals {
		ids = append(ids, row.ProductID)
	}

	products, err := service.products.ListByIDsUnscoped(ids)
	if err != nil {
		return nil, err
	}

	productByID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}
	return productByID, nil
}

// CurrentYear is the year used when the admin page has no explicit one.
func (service *ConsumptionService) CurrentYear() int {
	return service.now().In(service.location).Year()
}
