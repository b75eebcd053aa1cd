package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Rules holds the operational thresholds of the tracking engine. They are
// passed by value into each service at construction so the engine never
// reads ambient configuration.
type Rules struct {
	ConfidenceThreshold float64 // below this, sealing requires a confirmed review
	DeltaAlert          int     // reconciliation delta at which a line becomes ALERT
	DeltaCritical       int     // reconciliation delta at which a line becomes CRITICAL
	MaxSkusPerPallet    int
	StaleTransitHours   int // manifests in transit longer than this are flagged
}

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	VisionApiURL string // AI count estimator endpoint; empty disables the HTTP client
	VisionApiKey string

	EmailSender    string
	Password       string // SMTP Password
	AlertRecipient string // receives critical discrepancy and stale transit mails

	Rules Rules
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
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		VisionApiURL: getEnv("VISION_API_URL", ""),
		VisionApiKey: getEnv("VISION_API_KEY", ""),

		EmailSender:    getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:       getEnv("PASSWORD", "defaultSecret"),
		AlertRecipient: getEnv("ALERT_RECIPIENT", ""),

		Rules: Rules{
			ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.65),
			DeltaAlert:          getEnvInt("DELTA_ALERT", 2),
			DeltaCritical:       getEnvInt("DELTA_CRITICAL", 5),
			MaxSkusPerPallet:    getEnvInt("MAX_SKUS_PER_PALLET", 2),
			StaleTransitHours:   getEnvInt("STALE_TRANSIT_HOURS", 72),
		},
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.Rules.DeltaCritical < AppConfig.Rules.DeltaAlert {
		log.Println("Warning: DELTA_CRITICAL is below DELTA_ALERT. Check your environment.")
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

// getEnvFloat retrieves an environment variable as a float or returns the default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}

// DefaultRules returns the shipped thresholds without reading the environment.
// Used by tests and tooling that run before LoadConfig.
func DefaultRules() Rules {
	return Rules{
		ConfidenceThreshold: 0.65,
		DeltaAlert:          2,
		DeltaCritical:       5,
		MaxSkusPerPallet:    2,
		StaleTransitHours:   72,
	}
}
