package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, loaded once at startup
// and handed to constructors. Nothing outside this package reads the
// environment.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	Origin         string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret  string
	RefreshTokenSecret string
	ActivationSecret   string
	PasswordSecret     string
	EmailSecret        string

	// Access tokens live minutes, refresh tokens live days.
	AccessTokenExpireMin  int
	RefreshTokenExpireDay int

	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	MeiliHost      string
	MeiliMasterKey string

	// Development-only seed credentials.
	OwnerEmail    string
	OwnerPassword string
}

func Load() *Config {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		Origin:         getEnv("ORIGIN", "http://localhost:3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASS"),
		DBName:     getEnv("DB_NAME", "acadex"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "change-me"),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "change-me-too"),
		ActivationSecret:   getEnv("SECRET_ACTIVATION_KEY", "change-me-activation"),
		PasswordSecret:     getEnv("SECRET_PASSWORD_KEY", "change-me-password"),
		EmailSecret:        getEnv("SECRET_EMAIL_KEY", "change-me-email"),

		AccessTokenExpireMin:  getEnvInt("ACCESS_TOKEN_EXPIRE", 5),
		RefreshTokenExpireDay: getEnvInt("REFRESH_TOKEN_EXPIRE", 3),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@acadex.dev"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "Acadex"),

		MeiliHost:      getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey: os.Getenv("MEILI_MASTER_KEY"),

		OwnerEmail:    getEnv("OWNER_EMAIL", "owner@acadex.dev"),
		OwnerPassword: getEnv("OWNER_PASSWORD", "owner123"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
