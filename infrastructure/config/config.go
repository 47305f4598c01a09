package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Detection
	DetectorAPIURL      string
	DetectorPopID       string
	DetectorSecretKey   string
	ConfidenceThreshold float64
	IoUThreshold        float64

	// OpenAI-compatible API
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIEmbedModel  string
	OpenAIChatModel   string
	OpenAIVisionModel string

	// Accounting ledger
	LedgerBaseURL      string
	LedgerTokenURL     string
	LedgerClientID     string
	LedgerClientSecret string
	LedgerRefreshToken string
	LedgerRealmID      string

	// Receipt OCR
	ReceiptAPIURL string
	ReceiptAPIKey string

	// External call timeout
	UpstreamTimeout time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableEvents  bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "homegraph")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "homegraph-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false) || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		DetectorAPIURL:      getEnv("EYEPOP_API_URL", "https://api.eyepop.ai"),
		DetectorPopID:       getEnv("EYEPOP_POP_ID", ""),
		DetectorSecretKey:   getEnv("EYEPOP_SECRET_KEY", ""),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.3),
		IoUThreshold:        getEnvFloat("IOU_THRESHOLD", 0.5),

		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbedModel:  getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:   getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", ""),

		LedgerBaseURL:      getEnv("LEDGER_BASE_URL", ""),
		LedgerTokenURL:     getEnv("LEDGER_TOKEN_URL", ""),
		LedgerClientID:     getEnv("LEDGER_CLIENT_ID", ""),
		LedgerClientSecret: getEnv("LEDGER_CLIENT_SECRET", ""),
		LedgerRefreshToken: getEnv("LEDGER_REFRESH_TOKEN", ""),
		LedgerRealmID:      getEnv("LEDGER_REALM_ID", ""),

		ReceiptAPIURL: getEnv("RECEIPT_API_URL", "https://api.unstructuredapp.io/general/v0/general"),
		ReceiptAPIKey: getEnv("RECEIPT_API_KEY", ""),

		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 60000)) * time.Millisecond,

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "homegraph"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.DetectorPopID == "" || c.DetectorSecretKey == "" {
			return fmt.Errorf("EYEPOP_POP_ID and EYEPOP_SECRET_KEY are required in production")
		}
		if c.LedgerBaseURL == "" || c.LedgerRealmID == "" {
			return fmt.Errorf("LEDGER_BASE_URL and LEDGER_REALM_ID are required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
