package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting. Loaded once at startup and
// passed explicitly into the modules; nothing in this package keeps global
// state.
type Config struct {
	// Basic
	AppName    string
	AppVersion string
	Port       string

	// Azure OpenAI
	AzureOpenAIKey        string
	AzureOpenAIEndpoint   string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	// AI request policy
	AITimeout    time.Duration
	AIMaxRetries int
	AIMaxTokens  int

	// Images
	MaxImageSize   int64
	MaxImageWidth  int
	MaxImageHeight int
	AllowedTypes   []string

	// CORS
	CORSOrigins []string

	// Rate limiting (disabled when RedisHost is empty)
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Frontend
	ServeFrontend bool
	StaticDir     string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "Canvas Smith API"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		Port:       getEnv("PORT", "8000"),

		AzureOpenAIKey:        getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIEndpoint:   strings.TrimRight(getEnv("AZURE_OPENAI_ENDPOINT", ""), "/"),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),

		AITimeout:    time.Duration(getEnvInt("AI_TIMEOUT", 120)) * time.Second,
		AIMaxRetries: getEnvInt("AI_MAX_RETRIES", 3),
		AIMaxTokens:  getEnvInt("AI_MAX_TOKENS", 6000),

		MaxImageSize:   getEnvInt64("MAX_IMAGE_SIZE", 10*1024*1024),
		MaxImageWidth:  getEnvInt("MAX_IMAGE_WIDTH", 2048),
		MaxImageHeight: getEnvInt("MAX_IMAGE_HEIGHT", 2048),
		AllowedTypes: getEnvList("ALLOWED_IMAGE_TYPES", []string{
			"image/jpeg", "image/jpg", "image/png", "image/webp",
			"image/gif", "image/bmp", "image/tiff", "image/svg+xml",
		}),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{
			"http://localhost:5173", "http://localhost:3000", "http://localhost:4173",
		}),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 3600)) * time.Second,

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		ServeFrontend: getEnvBool("SERVE_FRONTEND", false),
		StaticDir:     getEnv("STATIC_DIR", "static"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Azure OpenAI: %s (deployment: %s, api-version: %s)",
		cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIDeployment, cfg.AzureOpenAIAPIVersion)
	log.Printf("   AI policy: timeout=%s retries=%d max_tokens=%d",
		cfg.AITimeout, cfg.AIMaxRetries, cfg.AIMaxTokens)
	log.Printf("   Images: max %d bytes, bounding box %dx%d",
		cfg.MaxImageSize, cfg.MaxImageWidth, cfg.MaxImageHeight)

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AzureOpenAIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_API_KEY is required")
	}
	if c.AzureOpenAIEndpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if c.AzureOpenAIDeployment == "" {
		return fmt.Errorf("AZURE_OPENAI_DEPLOYMENT_NAME is required")
	}
	if c.AIMaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must not be negative")
	}
	return nil
}

// GetRedisAddr builds the Redis connection address.
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// RateLimitEnabled reports whether the Redis-backed limiter should run.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisHost != "" && c.RateLimitRequests > 0
}

// getEnv returns the variable's value or the default when unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
