// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	Auth    AuthConfig
	Storage StorageConfig
	Email   EmailConfig
	Admin   AdminConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	AllowedOrigins  []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// IsProduction mirrors the storefront's NODE_ENV=PRODUCTION switch.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
}

type StorageConfig struct {
	Provider       string // r2 or gcs
	AvatarFolder   string
	MaxUploadBytes int64
	AllowedMIME    []string
	Timeout        time.Duration
	R2Bucket       string
	R2AccessKey    string
	R2SecretKey    string
	R2Endpoint     string
	R2PublicDomain string
	GCSBucket      string
	GCSCredentials string
}

type EmailConfig struct {
	Transport    string // smtp or nats
	FrontendURL  string
	From         string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	NatsURL      string
	NatsSubject  string
	Timeout      time.Duration
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

var (
	ErrMissingJWTSecret = errors.New("missing JWT_SECRET env var")
	ErrMissingMongoURI  = errors.New("missing MONGODB_URI env var")
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            listenAddr(getEnv("PORT", "4000")),
			Env:             getEnv("APP_ENV", "DEVELOPMENT"),
			AllowedOrigins:  getSliceEnv("ALLOWED_ORIGINS", nil),
			MaxBodyBytes:    getInt64Env("MAX_BODY_BYTES", 10<<20),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGODB_URI"),
			Database: getEnv("DATABASE_NAME", "shopit"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTL:      getDurationEnv("JWT_EXPIRES_TIME", 7*24*time.Hour),
			ResetTokenTTL: getDurationEnv("RESET_PASSWORD_TTL", 30*time.Minute),
			BcryptCost:    getIntEnv("BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			Provider:       strings.ToLower(getEnv("STORAGE_PROVIDER", "r2")),
			AvatarFolder:   getEnv("AVATAR_FOLDER", "shopit/avatars"),
			MaxUploadBytes: getInt64Env("MAX_UPLOAD_SIZE_MB", 5) << 20,
			AllowedMIME:    getSliceEnv("ALLOWED_IMAGE_MIME_TYPES", []string{"image/png", "image/jpeg", "image/gif", "image/webp"}),
			Timeout:        getDurationEnv("STORAGE_TIMEOUT", 30*time.Second),
			R2Bucket:       os.Getenv("R2_BUCKET"),
			R2AccessKey:    os.Getenv("R2_ACCESS_KEY_ID"),
			R2SecretKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
			R2Endpoint:     os.Getenv("R2_ENDPOINT"),
			R2PublicDomain: os.Getenv("R2_PUBLIC_DOMAIN"),
			GCSBucket:      os.Getenv("GCS_BUCKET"),
			GCSCredentials: os.Getenv("CREDENTIALS_FILE_LOCATION"),
		},
		Email: EmailConfig{
			Transport:    strings.ToLower(getEnv("EMAIL_TRANSPORT", "smtp")),
			FrontendURL:  strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			From:         getEnv("SMTP_FROM_EMAIL", "noreply@shopit.com"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     os.Getenv("SMTP_EMAIL"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			NatsURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			NatsSubject:  getEnv("EMAIL_NATS_SUBJECT", "mail.send"),
			Timeout:      getDurationEnv("EMAIL_TIMEOUT", 15*time.Second),
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Admin"),
			Email:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.Mongo.URI == "" {
		errs = append(errs, ErrMissingMongoURI)
	}
	return errors.Join(errs...)
}

// listenAddr accepts either a bare port or a host:port pair.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getInt64Env(key string, def int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getSliceEnv(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
