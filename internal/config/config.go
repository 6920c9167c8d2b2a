package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	AllowOrigins        string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	TokenTTL            time.Duration
	AssistantConfigPath string
	AssistantAPIKey     string
	AssistantTimeout    time.Duration
	AssistantRetries    int
	ScoresCacheTTL      time.Duration
	GenerateRateLimit   int
	GenerateRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("IAGO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "IAgo API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "http://localhost:5173")
	v.SetDefault("token.ttl", "30m")
	v.SetDefault("assistant.config_path", "configs/assistant.yaml")
	v.SetDefault("assistant.timeout", "60s")
	v.SetDefault("assistant.retries", 2)
	v.SetDefault("scores.cache_ttl", "5m")
	v.SetDefault("generate.rate_limit", 5)
	v.SetDefault("generate.rate_window", "1m")

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	assistantTimeout, err := time.ParseDuration(v.GetString("assistant.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid assistant timeout: %w", err)
	}

	scoresTTL, err := time.ParseDuration(v.GetString("scores.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scores cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("generate.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid generate rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		AllowOrigins:        v.GetString("cors.origins"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		TokenTTL:            tokenTTL,
		AssistantConfigPath: v.GetString("assistant.config_path"),
		AssistantAPIKey:     v.GetString("assistant.api_key"),
		AssistantTimeout:    assistantTimeout,
		AssistantRetries:    v.GetInt("assistant.retries"),
		ScoresCacheTTL:      scoresTTL,
		GenerateRateLimit:   v.GetInt("generate.rate_limit"),
		GenerateRateWindow:  rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AssistantRetries < 0 {
		cfg.AssistantRetries = 0
	}

	return cfg, nil
}
