package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Gateway GatewayConfig
	Secrets SecretsConfig
	Logger  LoggerConfig
}

// GatewayConfig holds GoEmerchant gateway configuration
type GatewayConfig struct {
	Endpoint            string // Single-transaction XML gateway URL
	BatchEndpoint       string // Multipart batch upload URL
	TransactionCenterID string // API login id (transaction_center_id)
	GatewayID           string // Transaction key (gateway_id); may come from the secrets backend instead
	MID                 string // Optional merchant routing default
	TID                 string
	Processor           string
	ProcessorID         string // Mutually exclusive with the MID trio
	Timeout             int    // Request timeout in seconds (default: 30)
	BatchTimeout        int    // Batch/query timeout in seconds (default: 90)
}

// SecretsConfig selects where the gateway transaction key is loaded from
type SecretsConfig struct {
	Backend      string // env, local, aws, vault
	Path         string // secret path/name within the backend
	LocalBase    string // base directory for the local backend
	AWSRegion    string
	VaultAddress string
	VaultToken   string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Gateway: GatewayConfig{
			Endpoint:            getEnv("GOEMERCHANT_ENDPOINT", "https://secure.goemerchant.com/secure/gateway/xmlgateway.aspx"),
			BatchEndpoint:       getEnv("GOEMERCHANT_BATCH_ENDPOINT", "https://secure.goemerchant.com/secure/gateway/batchgateway.aspx"),
			TransactionCenterID: getEnv("GOEMERCHANT_TRANSACTION_CENTER_ID", ""),
			GatewayID:           getEnv("GOEMERCHANT_GATEWAY_ID", ""),
			MID:                 getEnv("GOEMERCHANT_MID", ""),
			TID:                 getEnv("GOEMERCHANT_TID", ""),
			Processor:           getEnv("GOEMERCHANT_PROCESSOR", ""),
			ProcessorID:         getEnv("GOEMERCHANT_PROCESSOR_ID", ""),
			Timeout:             getEnvAsInt("GOEMERCHANT_TIMEOUT", 30),
			BatchTimeout:        getEnvAsInt("GOEMERCHANT_BATCH_TIMEOUT", 90),
		},
		Secrets: SecretsConfig{
			Backend:      getEnv("SECRETS_BACKEND", "env"),
			Path:         getEnv("SECRETS_PATH", "goemerchant/gateway_id"),
			LocalBase:    getEnv("SECRETS_LOCAL_BASE", ".secrets"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			VaultAddress: getEnv("VAULT_ADDR", ""),
			VaultToken:   getEnv("VAULT_TOKEN", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Gateway.TransactionCenterID == "" {
		return nil, fmt.Errorf("GOEMERCHANT_TRANSACTION_CENTER_ID is required")
	}
	if cfg.Secrets.Backend == "env" && cfg.Gateway.GatewayID == "" {
		return nil, fmt.Errorf("GOEMERCHANT_GATEWAY_ID is required when SECRETS_BACKEND=env")
	}
	if cfg.Gateway.MID != "" && cfg.Gateway.ProcessorID != "" {
		return nil, fmt.Errorf("GOEMERCHANT_MID and GOEMERCHANT_PROCESSOR_ID can not be used at the same time")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
