package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	Nominatim NominatimConfig
	OpenMeteo OpenMeteoConfig
	Overpass  OverpassConfig
	Translate TranslateConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type OpenMeteoConfig struct {
	BaseURL string
	Timeout time.Duration
}

type OverpassConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TranslateConfig struct {
	BaseURL     string
	FallbackURL string
	Timeout     time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from the environment, with an optional .env
// file. The OpenAI key is optional: without it the intent extractor runs
// on its deterministic fallback.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Nominatim: NominatimConfig{
			BaseURL:   getEnv("NOMINATIM_URL", ""),
			UserAgent: getEnv("NOMINATIM_USER_AGENT", "tourism-system/1.0"),
			Timeout:   getEnvAsDuration("NOMINATIM_TIMEOUT", 10*time.Second),
		},
		OpenMeteo: OpenMeteoConfig{
			BaseURL: getEnv("OPENMETEO_URL", ""),
			Timeout: getEnvAsDuration("OPENMETEO_TIMEOUT", 10*time.Second),
		},
		Overpass: OverpassConfig{
			BaseURL: getEnv("OVERPASS_URL", ""),
			Timeout: getEnvAsDuration("OVERPASS_TIMEOUT", 30*time.Second),
		},
		Translate: TranslateConfig{
			BaseURL:     getEnv("LIBRETRANSLATE_URL", ""),
			FallbackURL: getEnv("MYMEMORY_URL", ""),
			Timeout:     getEnvAsDuration("TRANSLATE_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
