package repositories

import (
	"context"
	"errors"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	. "formsentry/internal/models"
	"formsentry/internal/services"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	IsEnabled(ctx context.Context, key string) bool
}

type settingsRepository struct {
	db  database.DB
	log logger.Logger
}

var settingsCacheExpiry = 5 * time.Minute

func NewSettings(db database.DB) SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: logger.New("settingsRepository"),
	}
}

func (r *settingsRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *settingsRepository) cacheItem(key string) database.CacheItem[string] {
	return database.CacheItem[string]{
		Cache:  r.db.Cache.General,
		Key:    "setting:" + key,
		Expiry: &settingsCacheExpiry,
	}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	log := r.log.Function("Get")

	if r.db.Cache.General != nil {
		if cached, ok, err := database.GetValue(ctx, r.cacheItem(key)); err == nil && ok {
			return cached, true, nil
		}
	}

	var setting Setting
	err := r.getDB(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, log.Err("failed to get setting", err, "key", key)
	}

	if r.db.Cache.General != nil {
		item := r.cacheItem(key)
		item.Value = setting.Value
		if err := database.SetValue(ctx, item); err != nil {
			log.Er("failed to cache setting", err, "key", key)
		}
	}

	return setting.Value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	log := r.log.Function("Set")

	if key == "" {
		return log.Error("setting key is empty")
	}

	setting := Setting{Key: key, Value: value}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return log.Err("failed to set setting", err, "key", key)
	}

	if r.db.Cache.General != nil {
		if err := database.DeleteCachedValue(ctx, r.cacheItem(key)); err != nil {
			log.Er("failed to invalidate cached setting", err, "key", key)
		}
	}

	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Where("key = ?", key).Delete(&Setting{}).Error; err != nil {
		return log.Err("failed to delete setting", err, "key", key)
	}

	if r.db.Cache.General != nil {
		if err := database.DeleteCachedValue(ctx, r.cacheItem(key)); err != nil {
			log.Er("failed to invalidate cached setting", err, "key", key)
		}
	}

	return nil
}

// IsEnabled treats any stored value other than "", "0" and "false" as on.
// Missing keys and storage errors read as off.
func (r *settingsRepository) IsEnabled(ctx context.Context, key string) bool {
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return value != "" && value != "0" && value != "false"
}
