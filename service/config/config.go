package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Solana configuration
	SolanaRPCURL  string
	SolanaNetwork string // "mainnet" or "devnet"

	// Wallet configuration. The server signs with this keypair; the CLI can
	// override it per invocation.
	WalletKeypairPath string

	// History persistence. DatabaseURL selects the Postgres slot store; when
	// empty, HistoryFilePath selects the local file store.
	DatabaseURL     string
	HistoryFilePath string

	// NATS configuration (optional; empty disables event publishing)
	NATSURL string

	// Confirmation polling
	ConfirmationPollInterval time.Duration
	ConfirmationTimeout      time.Duration

	// Payment request configuration
	PaymentRequestLabel   string
	PaymentRequestTimeout time.Duration
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Solana configuration
	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	cfg.SolanaNetwork = getEnvOrDefault("SOLANA_NETWORK", "devnet")
	if cfg.SolanaNetwork != "mainnet" && cfg.SolanaNetwork != "devnet" {
		errs = append(errs, fmt.Errorf("SOLANA_NETWORK must be mainnet or devnet, got %q", cfg.SolanaNetwork))
	}

	// Wallet configuration
	cfg.WalletKeypairPath = os.Getenv("WALLET_KEYPAIR_PATH")
	if cfg.WalletKeypairPath == "" {
		errs = append(errs, fmt.Errorf("WALLET_KEYPAIR_PATH is required"))
	}

	// History persistence
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.HistoryFilePath = getEnvOrDefault("HISTORY_FILE", defaultHistoryFile())

	// NATS configuration
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Confirmation polling
	pollInterval, err := parseDuration("CONFIRMATION_POLL_INTERVAL", "2s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmationPollInterval = pollInterval
	}

	confirmTimeout, err := parseDuration("CONFIRMATION_TIMEOUT", "90s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmationTimeout = confirmTimeout
	}

	// Payment requests
	cfg.PaymentRequestLabel = getEnvOrDefault("PAYMENT_REQUEST_LABEL", "SolCash")
	requestTimeout, err := parseDuration("PAYMENT_REQUEST_TIMEOUT", "15m")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.PaymentRequestTimeout = requestTimeout
	}

	if cfg.ConfirmationPollInterval > cfg.ConfirmationTimeout {
		errs = append(errs, fmt.Errorf("CONFIRMATION_POLL_INTERVAL (%v) cannot be greater than CONFIRMATION_TIMEOUT (%v)",
			cfg.ConfirmationPollInterval, cfg.ConfirmationTimeout))
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.SolanaNetwork != "mainnet" && c.SolanaNetwork != "devnet" {
		errs = append(errs, fmt.Errorf("SolanaNetwork must be mainnet or devnet"))
	}

	if c.WalletKeypairPath == "" {
		errs = append(errs, fmt.Errorf("WalletKeypairPath is required"))
	}

	if c.DatabaseURL == "" && c.HistoryFilePath == "" {
		errs = append(errs, fmt.Errorf("one of DatabaseURL or HistoryFilePath is required"))
	}

	if c.ConfirmationPollInterval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("ConfirmationPollInterval must be at least 100ms"))
	}

	if c.ConfirmationPollInterval > c.ConfirmationTimeout {
		errs = append(errs, fmt.Errorf("ConfirmationPollInterval cannot be greater than ConfirmationTimeout"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// defaultHistoryFile places the local history blob under the user's home
// directory, falling back to the working directory when home is unknown.
func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "solcash-history.json"
	}
	return home + "/.solcash/history.json"
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
