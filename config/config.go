package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with simple defaults.
type Config struct {
	ServerPort string

	FFmpegPath string

	// Object storage (MinIO / S3-compatible). Submissions are read from and
	// renditions are written to the same bucket.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Public domain prepended to storage keys when building media URLs.
	CDNDomain string

	// URL substituted for cover and thumb when a submission carries no artwork.
	PlaceholderArtURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Transactional email API. Leave EmailAPIURL empty to disable notifications.
	EmailAPIURL    string
	EmailAPIKey    string
	EmailSender    string
	EmailAdminAddr string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"), // no hardcoded default for secrets
		MinioBucket:    getEnv("MINIO_BUCKET", "freshwax"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		CDNDomain:         getEnv("CDN_DOMAIN", "https://cdn.freshwax.store"),
		PlaceholderArtURL: getEnv("PLACEHOLDER_ART_URL", "https://cdn.freshwax.store/static/placeholder-cover.webp"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "freshwax"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EmailAPIURL:    getEnv("EMAIL_API_URL", ""),
		EmailAPIKey:    os.Getenv("EMAIL_API_KEY"),
		EmailSender:    getEnv("EMAIL_SENDER", "submissions@freshwax.store"),
		EmailAdminAddr: getEnv("EMAIL_ADMIN_ADDR", "admin@freshwax.store"),
	}
}
