package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	AppURL      string
	// Email (Resend, SMTP fallback)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	// Other
	AllowedOrigins   []string
	SessionSecret    string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// AI flows
	AIFlowsURL       string
	AIFlowsAPIKey    string
	AITimeoutSeconds int
	// Events
	AMQPURL string
	// Intake links
	IntakeLinkTTLHours int
	// Jobs
	TaskReminderCron string
	// PDF rendering (headless-shell path in Docker)
	ChromePath string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")

	// Fatal in production if invalid
	ValidateSessionSecret(sessionSecret, environment)

	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "db/crm.db"),
		Environment:        environment,
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		AppURL:             getEnv("APP_URL", "http://localhost:8080"),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "noreply@visacrm.app"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Visa CRM"),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", true),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		SessionSecret:      sessionSecret,
		TursoDatabaseURL:   getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:     getEnv("TURSO_AUTH_TOKEN", ""),
		R2AccountID:        getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:      getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:  getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:       getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:        getEnv("R2_PUBLIC_URL", ""),
		AIFlowsURL:         getEnv("AI_FLOWS_URL", "http://localhost:3400/flows"),
		AIFlowsAPIKey:      getEnv("AI_FLOWS_API_KEY", ""),
		AITimeoutSeconds:   getEnvInt("AI_TIMEOUT_SECONDS", 60),
		AMQPURL:            getEnv("AMQP_URL", ""),
		IntakeLinkTTLHours: getEnvInt("INTAKE_LINK_TTL_HOURS", 72),
		TaskReminderCron:   getEnv("TASK_REMINDER_CRON", "0 7 * * *"),
		ChromePath:         getEnv("CHROME_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARNING] Invalid integer for %s (%q), using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// ValidateSessionSecret validates the session secret meets security requirements.
// In production, it must be at least 32 bytes and not a known insecure default.
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
			return nil
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		log.Fatalf("[CRITICAL] SESSION_SECRET must be at least %d characters in production (current: %d)", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
