package seed

import (
	"formsentry/config"
	"formsentry/internal/logger"
	. "formsentry/internal/models"

	"gorm.io/gorm"
)

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	settings := []Setting{
		{Key: SettingFormRecipientPrefix + "contact-page", Value: "captures@" + config.TestMailDomain},
		{Key: SettingFormRecipientPrefix + "quote-request", Value: "captures@" + config.TestMailDomain},
	}

	for _, setting := range settings {
		var existing Setting
		if err := db.First(&existing, "key = ?", setting.Key).Error; err == nil {
			log.Info("Setting already exists", "key", setting.Key)
			continue
		}
		log.Info("Seeding setting", "key", setting.Key)
		if err := db.Create(&setting).Error; err != nil {
			log.Er("failed to create setting", err, "key", setting.Key)
		}
	}

	return nil
}
