package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"       required:"true"`
	HTTPPort          string        `envconfig:"HTTP_PORT"          default:":8080"`
	LogLevel          string        `envconfig:"LOG_LEVEL"          default:"info"`
	AdminUsername     string        `envconfig:"ADMIN_USERNAME"     default:"admin"`
	AdminPassword     string        `envconfig:"ADMIN_PASSWORD"     default:"admin123"`
	AdminTokenTTL     time.Duration `envconfig:"ADMIN_TOKEN_TTL"    default:"12h"`
	AtomicReservation bool          `envconfig:"ATOMIC_RESERVATION" default:"true"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, LogLevel=%s, AtomicReservation=%t",
			config.HTTPPort, config.LogLevel, config.AtomicReservation)
	})
	return &config
}

func GetConfig() *Config {
	if config.DatabaseURL == "" {
		log.Fatal("Configuration not loaded. Call LoadConfig first.")
	}
	return &config
}
