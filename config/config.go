package config

import (
	"formsentry/internal/logger"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        int
	MetricsPort       int
	SiteURL           string
	Environment       string
	AdminKeyHash      string
	ControlPlaneURL   string
	TestMailDomain    string
	VerifyAddress     string
	SkipIPCheck       bool
	SessionTTLHours   int
	SweepIntervalMins int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int
}

const (
	defaultSessionTTLHours   = 24
	defaultSweepIntervalMins = 60
)

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")

	viper.SetEnvPrefix("FORMSENTRY")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("METRICS_PORT", 9090)
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("CONTROL_PLANE_URL", "https://api.formsentry.dev")
	viper.SetDefault("TEST_MAIL_DOMAIN", "test-mail.formsentry.dev")
	viper.SetDefault("VERIFY_ADDRESS", "verify@formsentry.dev")
	viper.SetDefault("SKIP_IP_CHECK", false)
	viper.SetDefault("SESSION_TTL_HOURS", defaultSessionTTLHours)
	viper.SetDefault("SWEEP_INTERVAL_MINS", defaultSweepIntervalMins)
	viper.SetDefault("DATABASE_DB_PATH", "data/formsentry.db")
	viper.SetDefault("DATABASE_CACHE_ADDRESS", "localhost")
	viper.SetDefault("DATABASE_CACHE_PORT", 6379)

	config := Config{
		ServerPort:           viper.GetInt("SERVER_PORT"),
		MetricsPort:          viper.GetInt("METRICS_PORT"),
		SiteURL:              viper.GetString("SITE_URL"),
		Environment:          viper.GetString("ENVIRONMENT"),
		AdminKeyHash:         viper.GetString("ADMIN_KEY_HASH"),
		ControlPlaneURL:      viper.GetString("CONTROL_PLANE_URL"),
		TestMailDomain:       viper.GetString("TEST_MAIL_DOMAIN"),
		VerifyAddress:        viper.GetString("VERIFY_ADDRESS"),
		SkipIPCheck:          viper.GetBool("SKIP_IP_CHECK"),
		SessionTTLHours:      viper.GetInt("SESSION_TTL_HOURS"),
		SweepIntervalMins:    viper.GetInt("SWEEP_INTERVAL_MINS"),
		DatabaseDbPath:       viper.GetString("DATABASE_DB_PATH"),
		DatabaseCacheAddress: viper.GetString("DATABASE_CACHE_ADDRESS"),
		DatabaseCachePort:    viper.GetInt("DATABASE_CACHE_PORT"),
	}

	if config.SiteURL == "" {
		return Config{}, log.ErrMsg("site url is required")
	}

	log.Info("Config initialized", "environment", config.Environment)
	return config, nil
}

func (c Config) SessionTTL() time.Duration {
	hours := c.SessionTTLHours
	if hours <= 0 {
		hours = defaultSessionTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) SweepInterval() time.Duration {
	mins := c.SweepIntervalMins
	if mins <= 0 {
		mins = defaultSweepIntervalMins
	}
	return time.Duration(mins) * time.Minute
}
