package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRow struct {
	Key     string `gorm:"column:k;primaryKey"`
	Value   []byte `gorm:"column:v"`
	Expires int64  `gorm:"column:e"`
}

func (sessionRow) TableName() string {
	return "sessions"
}

// GormStorage keeps session payloads in the sessions table created by the
// embedded migrations. An expiry of 0 means the row never expires.
type GormStorage struct {
	database *gorm.DB
	now      func() time.Time
}

func NewGormStorage(database *gorm.DB) *GormStorage {
	return &GormStorage{database: database, now: time.Now}
}

func (storage *GormStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var row sessionRow
	err := storage.database.Where("k = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if row.Expires != 0 && row.Expires <= storage.now().Unix() {
		if err := storage.Delete(key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return row.Value, nil
}

func (storage *GormStorage) Set(key string, value []byte, expiration time.Duration) error {
	if key == "" || len(value) == 0 {
		return nil
	}

	var expires int64
	if expiration > 0 {
		expires = storage.now().Add(expiration).Unix()
	}

	row := sessionRow{Key: key, Value: value, Expires: expires}
	return storage.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "e"}),
	}).Create(&row).Error
}

func (storage *GormStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return storage.database.Where("k = ?", key).Delete(&sessionRow{}).Error
}

func (storage *GormStorage) Reset() error {
	return storage.database.Where("1 = 1").Delete(&sessionRow{}).Error
}

// Close is a no-op; the database handle is owned by the caller.
func (storage *GormStorage) Close() error {
	return nil
}

// PurgeExpired removes rows whose expiry has passed and returns how many were deleted.
func (storage *GormStorage) PurgeExpired() (int64, error) {
	result := storage.database.
		Where("e <> 0 AND e <= ?", storage.now().Unix()).
		Delete(&sessionRow{})
	return result.RowsAffected, result.Error
}

// StartJanitor purges expired rows once immediately and then every interval
// until ctx is cancelled.
func (storage *GormStorage) StartJanitor(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		storage.purge(logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				storage.purge(logger)
			}
		}
	}()
}

func (storage *GormStorage) purge(logger zerolog.Logger) {
	purged, err := storage.PurgeExpired()
	if err != nil {
		logger.Warn().Err(err).Msg("session purge failed")
		return
	}
	if purged > 0 {
		logger.Debug().Int64("purged", purged).Msg("expired sessions removed")
	}
}
