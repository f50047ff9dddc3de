package initialize

import (
	"formsentry/config"
	"formsentry/internal/logger"
	. "formsentry/internal/models"

	"gorm.io/gorm"
)

// InitializeTables ensures the durable suppression latches exist so the
// admin surface always has a row to toggle.
func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	defaults := []Setting{
		{Key: SettingDisableEmailReceipt, Value: "0"},
		{Key: SettingDisableWebhooks, Value: "0"},
	}

	for _, setting := range defaults {
		var existing Setting
		if err := db.First(&existing, "key = ?", setting.Key).Error; err == nil {
			continue
		}
		if err := db.Create(&setting).Error; err != nil {
			return log.Err("failed to create default setting", err, "key", setting.Key)
		}
	}

	log.Info("Table initialization complete")
	return nil
}
