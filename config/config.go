package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBUrl    string
	LogLevel string
	GinMode  string
	// Auth provider
	AuthJWKSURL   string
	AuthJWTSecret string
	AuthIssuer    string
	FrontendURL   string
	AppURL        string
	// SMTP Configuration (invitations)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Import limits
	UploadMaxPerMinute int
	UploadMaxPerDay    int
	ImportMaxBytes     int64
	ImportTimezone     string
	ClamAVAddress      string // empty disables malware scanning
	// Import archive (S3 compatible)
	S3Provider          string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	S3Region            string
	ImportArchiveBucket string
	WasabiEndpoint      string
	// Security Configuration
	SecurityLogToDB bool
	// Reports
	ReportCacheSeconds int
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environments inject variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBUrl:    getEnv("DATABASE_URL", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		// Trailing slashes would produce double slashes when joined
		AuthJWKSURL:   strings.TrimRight(getEnv("AUTH_JWKS_URL", ""), "/"),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuthIssuer:    getEnv("AUTH_ISSUER", ""),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AppURL:        strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@hiring.local"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Import limits
		UploadMaxPerMinute: getEnvInt("UPLOAD_MAX_PER_MINUTE", 10),
		UploadMaxPerDay:    getEnvInt("UPLOAD_MAX_PER_DAY", 50),
		ImportMaxBytes:     int64(getEnvInt("IMPORT_MAX_BYTES", 5<<20)),
		ImportTimezone:     getEnv("IMPORT_TIMEZONE", "UTC"),
		ClamAVAddress:      getEnv("CLAMAV_ADDRESS", ""),
		// Import archive
		S3Provider:          getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		ImportArchiveBucket: getEnv("IMPORT_ARCHIVE_BUCKET", ""),
		WasabiEndpoint:      getEnv("WASABI_ENDPOINT", ""),
		// Security Configuration
		SecurityLogToDB: getEnvBool("SECURITY_LOG_TO_DB", false),
		// Reports
		ReportCacheSeconds: getEnvInt("REPORT_CACHE_SECONDS", 60),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Upload rate limiting and report caching are disabled.")
	}

	if cfg.AuthJWKSURL == "" && cfg.AuthJWTSecret == "" {
		log.Println("WARNING: neither AUTH_JWKS_URL nor AUTH_JWT_SECRET is set. All authenticated requests will be rejected.")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether uploaded import files should be copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ImportArchiveBucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
