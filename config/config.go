package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	LogMode string

	CertificateApiURL string // Certificate issuance service base URL
	CertificateApiKey string // Certificate issuance service API key
	ServiceApiKey     string // Shared key for internal (payment/refund) callbacks

	PromoEnrollmentDays   int    // Validity window for PROMOTIONAL enrollments
	CertificateCron       string // Cron schedule for the certificate outbox dispatcher
	CertificateMaxRetries int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		LogMode: getEnv("LOG_MODE", "development"),

		CertificateApiURL: getEnv("CERTIFICATE_API_URL", "http://localhost:4100/v1/certificates"),
		CertificateApiKey: getEnv("CERTIFICATE_API_KEY", "defaultSecret"),
		ServiceApiKey:     getEnv("SERVICE_API_KEY", "defaultSecret"),

		PromoEnrollmentDays:   getEnvInt("PROMO_ENROLLMENT_DAYS", 30),
		CertificateCron:       getEnv("CERTIFICATE_DISPATCH_CRON", "@every 1m"),
		CertificateMaxRetries: getEnvInt("CERTIFICATE_MAX_RETRIES", 5),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.ServiceApiKey == "defaultSecret" {
		log.Println("Warning: Using default SERVICE_API_KEY. Internal status callbacks are not protected.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
