package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// LLM providers accepted by LLM_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// SessionIdleTTL is how long an unused conversation is kept in memory.
	SessionIdleTTL time.Duration

	// Weather enrichment.
	WeatherCacheTTL     time.Duration
	WeatherCacheSize    int
	WeatherTimeout      time.Duration
	WeatherForecastDays int
	WeatherContextDays  int
	GeocodingURL        string
	ForecastURL         string

	// LocationHistoryTurns bounds how many prior turns are scanned for a
	// destination. Zero scans the whole conversation.
	LocationHistoryTurns int

	// Language model.
	LLMProvider      string
	LLMTimeout       time.Duration
	LLMMaxTokens     int
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string

	// Turn event publishing.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaTurnsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sessionTTL, err := parseDuration("SESSION_IDLE_TTL", "2h")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("WEATHER_CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	llmTimeout, err := parseDuration("LLM_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("WEATHER_CACHE_SIZE", 1000, 1)
	if err != nil {
		return nil, err
	}
	forecastDays, err := parseInt("WEATHER_FORECAST_DAYS", 7, 1)
	if err != nil {
		return nil, err
	}
	contextDays, err := parseInt("WEATHER_CONTEXT_DAYS", 5, 1)
	if err != nil {
		return nil, err
	}
	historyTurns, err := parseInt("LOCATION_HISTORY_TURNS", 0, 0)
	if err != nil {
		return nil, err
	}
	maxTokens, err := parseInt("LLM_MAX_TOKENS", 1024, 1)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SessionIdleTTL: sessionTTL,

		WeatherCacheTTL:     cacheTTL,
		WeatherCacheSize:    cacheSize,
		WeatherTimeout:      weatherTimeout,
		WeatherForecastDays: forecastDays,
		WeatherContextDays:  contextDays,
		GeocodingURL:        sharedcfg.EnvOrDefault("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com"),
		ForecastURL:         sharedcfg.EnvOrDefault("OPEN_METEO_FORECAST_URL", "https://api.open-meteo.com"),

		LocationHistoryTurns: historyTurns,

		LLMProvider:      sharedcfg.EnvOrDefault("LLM_PROVIDER", ProviderAnthropic),
		LLMTimeout:       llmTimeout,
		LLMMaxTokens:     maxTokens,
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   sharedcfg.EnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:      sharedcfg.EnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaTurnsTopic: sharedcfg.EnvOrDefault("KAFKA_TURNS_TOPIC", "travel-assistant-turns"),
	}

	if cfg.WeatherForecastDays > 16 {
		return nil, errors.New("WEATHER_FORECAST_DAYS must be between 1 and 16")
	}
	if cfg.WeatherContextDays > cfg.WeatherForecastDays {
		return nil, errors.New("WEATHER_CONTEXT_DAYS must not exceed WEATHER_FORECAST_DAYS")
	}
	if cfg.LLMProvider != ProviderAnthropic && cfg.LLMProvider != ProviderOpenAI {
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTurnsTopic == "" {
		return nil, errors.New("KAFKA_TURNS_TOPIC is required")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseInt(key string, def, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
