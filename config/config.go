package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	BotToken     string `mapstructure:"BOT_TOKEN"`
	AdminChatID  int64  `mapstructure:"ADMIN_CHAT_ID"`
	AdminName    string `mapstructure:"ADMIN_NAME"`
	AdminContact string `mapstructure:"ADMIN_CONTACT"`
	MiniAppURL   string `mapstructure:"MINI_APP_URL"`

	DBPath  string `mapstructure:"DB_PATH"`
	APIPort string `mapstructure:"API_PORT"`
	Env     string `mapstructure:"ENV"`

	// Hours before an abandoned guided-form session is discarded.
	// Zero disables the reaper.
	SessionTTLHours int `mapstructure:"SESSION_TTL_HOURS"`
}

var AppConfig Config

func Load() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	viper.SetDefault("ADMIN_CHAT_ID", 0)
	viper.SetDefault("ADMIN_NAME", "Администратор")
	viper.SetDefault("ADMIN_CONTACT", "Контактная информация не указана")
	viper.SetDefault("MINI_APP_URL", "")
	viper.SetDefault("DB_PATH", "data/hotelbooking.db")
	viper.SetDefault("API_PORT", "8000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SESSION_TTL_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
