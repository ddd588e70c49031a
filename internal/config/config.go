package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	AppEnv                string
	LogLevel              string
	LocalStore            string
	LocalDBPath           string
	DatabaseURL           string
	RemoteListen          bool
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AssistCacheTTLSeconds int
	GeminiAPIKey          string
	GeminiModel           string
	ImageMaxWidth         int
	ImageJPEGQuality      int
	SeedDemoProducts      bool
	ReportDir             string
	ReportAt              string
	Timezone              string
	ReapplyStockOnCancel  bool
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		AppEnv:                getEnv("APP_ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LocalStore:            strings.ToLower(getEnv("LOCAL_STORE", "sqlite")),
		LocalDBPath:           getEnv("LOCAL_DB_PATH", "warungpos.db"),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RemoteListen:          getEnvBool("REMOTE_LISTEN", true),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0, 0),
		AssistCacheTTLSeconds: getEnvInt("ASSIST_CACHE_TTL_SECONDS", 86400, 1),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ImageMaxWidth:         getEnvInt("IMAGE_MAX_WIDTH", 400, 1),
		ImageJPEGQuality:      getEnvInt("IMAGE_JPEG_QUALITY", 70, 1),
		SeedDemoProducts:      getEnvBool("SEED_DEMO_PRODUCTS", true),
		ReportDir:             getEnv("REPORT_DIR", "reports"),
		ReportAt:              getEnv("REPORT_AT", "23:55"),
		Timezone:              getEnv("TIMEZONE", "Local"),
		ReapplyStockOnCancel:  getEnvBool("REAPPLY_STOCK_ON_CANCEL", false),
	}
	if cfg.ImageJPEGQuality > 100 {
		cfg.ImageJPEGQuality = 70
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) RemoteConfigured() bool {
	return c.DatabaseURL != ""
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// getEnvInt falls back when the value is missing, malformed or below min.
func getEnvInt(key string, fallback int, min int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || parsed < min {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return parsed
}
