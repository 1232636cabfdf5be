package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// JWTSecret signs admin session tokens. Must be overridden outside local dev.
	JWTSecret string

	// SessionTTLMinutes bounds how long an issued admin token stays valid.
	SessionTTLMinutes int

	// UploadDir is where multipart uploads (payment proofs, menu images,
	// QR codes, profile photos) land on disk.
	UploadDir string

	// MaxUploadBytes caps a single multipart upload.
	MaxUploadBytes int64

	// AllowedOrigins is a comma-separated allowlist of browser origins for
	// the admin console and the student app. Example:
	//   https://admin.canteen.example.edu,http://localhost:5173
	AllowedOrigins []string

	// Bootstrap admin credentials, applied once on startup when no admin
	// account exists yet.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "canteen"),
			User:     env("DB_USER", "canteen"),
			Password: env("DB_PASSWORD", "canteen"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},

		JWTSecret:         env("JWT_SECRET", "dev-only-secret"),
		SessionTTLMinutes: envInt("SESSION_TTL_MINUTES", 12*60),

		UploadDir:      env("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5<<20)),

		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			s := v[start:i]
			start = i + 1
			// trim spaces
			for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
				s = s[1:]
			}
			for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
				s = s[:len(s)-1]
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
