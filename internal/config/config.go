package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	BadgerDBPath string `mapstructure:"BADGERDB_PATH"`
	ArtifactDir  string `mapstructure:"ARTIFACT_DIR"`
	TaxonomyFile string `mapstructure:"TAXONOMY_FILE"`
	ListenAddr   string `mapstructure:"LISTEN_ADDR"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Serving-boundary page cache.
	CacheSize       int `mapstructure:"CACHE_SIZE"`
	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS"`

	// Optional Telegram announcements; disabled when the token is empty.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`

	// URLs handed to the scraper on an ingest run.
	SourceURLs []string `mapstructure:"SOURCE_URLS"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = viper.ReadInConfig(); err != nil {
		// Config file not found is fine; env vars may carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.BadgerDBPath == "" {
		config.BadgerDBPath = "./badger_data"
	}
	if config.ArtifactDir == "" {
		config.ArtifactDir = "./artifacts"
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 256
	}
	if config.CacheTTLSeconds <= 0 {
		config.CacheTTLSeconds = 300
	}
	if config.TelegramBotToken != "" && config.TelegramChatID == "" {
		return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return config, nil
}
