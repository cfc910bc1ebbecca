package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
)

var (
	// ErrMissingRepositoryURL is returned when the repository endpoint is not configured
	ErrMissingRepositoryURL = errors.New("TURSO_DATABASE_URL is required")
	// ErrMissingRepositoryKey is returned when the repository access key is not configured
	ErrMissingRepositoryKey = errors.New("TURSO_AUTH_TOKEN is required")
)

type Config struct {
	ServerPort      string
	Environment     string
	DefaultLanguage string
	UploadDir       string
	AppURL          string
	SessionSecret   string
	// Repository (Turso / libsql)
	RepositoryURL string
	RepositoryKey string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	// Headless Chrome for PDF sheets
	ChromePath string
}

// Load reads the configuration from the environment and stops the process
// when a required setting is missing.
func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := os.Getenv("SESSION_SECRET")

	// Validate session secret - this will fatal in production if invalid
	ValidateSessionSecret(sessionSecret, environment)

	// In development, generate a secure secret if none provided
	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Environment:       environment,
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "es"),
		UploadDir:         getEnv("UPLOAD_DIR", "static/uploads"),
		AppURL:            strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		SessionSecret:     sessionSecret,
		RepositoryURL:     os.Getenv("TURSO_DATABASE_URL"),
		RepositoryKey:     os.Getenv("TURSO_AUTH_TOKEN"),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		EmailFrom:         getEnv("EMAIL_FROM", "noreply@asistitravel.com"),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "AsistiTravel"),
		EmailTestMode:     getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		ChromePath:        os.Getenv("CHROME_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[CRITICAL] Invalid configuration: %v", err)
	}

	return cfg
}

// Validate checks the settings the application cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RepositoryURL) == "" {
		errs = append(errs, ErrMissingRepositoryURL)
	}
	if strings.TrimSpace(c.RepositoryKey) == "" {
		errs = append(errs, ErrMissingRepositoryKey)
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Configured reports whether every R2 credential is present
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on", "si":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// ValidateSessionSecret validates the session secret meets security requirements
// In production, it must be at least 32 bytes and not a known insecure default
func ValidateSessionSecret(secret string, environment string) error {
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				log.Fatal("[CRITICAL] SESSION_SECRET is set to an insecure default value. Generate a secure random secret with: openssl rand -base64 32")
			}
			log.Printf("[WARNING] SESSION_SECRET is set to an insecure default value. This is acceptable only in development.")
			return fmt.Errorf("insecure session secret")
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		log.Fatalf("[CRITICAL] SESSION_SECRET must be at least %d characters in production (current: %d). Generate with: openssl rand -base64 32", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
// This is used only for development when no secret is provided
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
