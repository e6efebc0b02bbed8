// config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	DB struct {
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
		ConnLifetime time.Duration
	}
	OpenAI struct {
		APIKey string
		Model  string
	}
	Email struct {
		SendGridKey string
		From        string
		AppURL      string
	}
	Session struct {
		TTL             time.Duration
		JanitorInterval time.Duration
	}
	ShutdownTimeout time.Duration
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Create a new viper instance
	v := viper.New()

	// Set the config name (without extension)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add paths where to look for the config file
	v.AddConfigPath(".")                    // Look in current directory
	v.AddConfigPath("./config")             // Look in config subdirectory
	v.AddConfigPath("$HOME/.fitness-coach") // Look in home directory

	// Set default values
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("OpenAI.Model", "gpt-4o-mini")
	v.SetDefault("Email.AppURL", "http://localhost:3000")
	v.SetDefault("Session.TTL", 24*time.Hour)
	v.SetDefault("Session.JanitorInterval", 10*time.Minute)
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)

	// Enable environment variables to override config values
	v.AutomaticEnv()

	// Try to read config file; fall back to environment variables alone
	if err := v.ReadInConfig(); err != nil {
		cfg := &Config{}

		cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
		cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
		cfg.DB.Port = getEnvOr("DB_PORT", "5432")
		cfg.DB.User = getEnvOr("DB_USER", "postgres")
		cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
		cfg.DB.DBName = getEnvOr("DB_NAME", "fitness_coach")
		cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
		cfg.DB.MaxOpenConns = 20
		cfg.DB.MaxIdleConns = 10
		cfg.DB.ConnLifetime = 5 * time.Minute
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.OpenAI.Model = getEnvOr("OPENAI_MODEL", "gpt-4o-mini")
		cfg.Email.SendGridKey = os.Getenv("SENDGRID_API_KEY")
		cfg.Email.From = os.Getenv("EMAIL_FROM")
		cfg.Email.AppURL = getEnvOr("APP_URL", "http://localhost:3000")
		cfg.Session.TTL = 24 * time.Hour
		cfg.Session.JanitorInterval = 10 * time.Minute
		cfg.ShutdownTimeout = 10 * time.Second

		return cfg, nil
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	// Unmarshal config to struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Helper function to get environment variable with default value
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
