package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"oreoffice-backend/utils"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DBDriver    string // mysql | postgres | sqlite
	DatabaseURL string
	SQLitePath  string
	DBLogLevel  string

	JWTSecret string
	JWTTTL    time.Duration

	UploadDir      string
	UploadMaxBytes int64

	FrontendURL    string
	SigningLinkTTL time.Duration

	SMTP utils.SMTPConfig

	DefaultAdminEmail    string
	DefaultAdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		CORSOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),

		DBDriver:    strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envOrDefault("SQLITE_PATH", "oreoffice.db"),
		DBLogLevel:  envOrDefault("DB_LOG_LEVEL", "warn"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(envInt("JWT_TTL_HOURS", 12)) * time.Hour,

		UploadDir:      envOrDefault("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes: int64(envInt("UPLOAD_MAX_MB", 20)) << 20,

		FrontendURL:    strings.TrimRight(envOrDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		SigningLinkTTL: time.Duration(envInt("SIGNING_LINK_TTL_HOURS", 168)) * time.Hour,

		SMTP: utils.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			FromName: envOrDefault("SMTP_FROM_NAME", "OREOffice"),
		},

		DefaultAdminEmail:    envOrDefault("DEFAULT_ADMIN_EMAIL", "admin@oreoffice.local"),
		DefaultAdminPassword: os.Getenv("DEFAULT_ADMIN_PASSWORD"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = strings.TrimSpace(os.Getenv("MYSQL_URL"))
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
