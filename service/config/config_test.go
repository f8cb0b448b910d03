package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupEnv() {
	for _, key := range []string{
		"SERVER_ADDR",
		"LOG_LEVEL",
		"SOLANA_RPC_URL",
		"SOLANA_NETWORK",
		"WALLET_KEYPAIR_PATH",
		"DATABASE_URL",
		"HISTORY_FILE",
		"NATS_URL",
		"CONFIRMATION_POLL_INTERVAL",
		"CONFIRMATION_TIMEOUT",
		"PAYMENT_REQUEST_LABEL",
		"PAYMENT_REQUEST_TIMEOUT",
	} {
		os.Unsetenv(key)
	}
}

func setRequiredEnv() {
	os.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	os.Setenv("WALLET_KEYPAIR_PATH", "/tmp/wallet.json")
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnv()
	defer cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.devnet.solana.com", cfg.SolanaRPCURL)
	assert.Equal(t, "/tmp/wallet.json", cfg.WalletKeypairPath)
	assert.Equal(t, ":8080", cfg.ServerAddr) // Default
	assert.Equal(t, "info", cfg.LogLevel)    // Default
	assert.Equal(t, "devnet", cfg.SolanaNetwork)
	assert.Equal(t, 2*time.Second, cfg.ConfirmationPollInterval)
	assert.Equal(t, 90*time.Second, cfg.ConfirmationTimeout)
	assert.Equal(t, "SolCash", cfg.PaymentRequestLabel)
	assert.Equal(t, 15*time.Minute, cfg.PaymentRequestTimeout)
	assert.NotEmpty(t, cfg.HistoryFilePath)
}

func TestLoad_MissingSolanaRPCURL(t *testing.T) {
	os.Setenv("WALLET_KEYPAIR_PATH", "/tmp/wallet.json")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SOLANA_RPC_URL is required")
}

func TestLoad_MissingWalletKeypairPath(t *testing.T) {
	os.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "WALLET_KEYPAIR_PATH is required")
}

func TestLoad_InvalidNetwork(t *testing.T) {
	setRequiredEnv()
	os.Setenv("SOLANA_NETWORK", "testnet")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SOLANA_NETWORK must be mainnet or devnet")
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	setRequiredEnv()
	os.Setenv("CONFIRMATION_POLL_INTERVAL", "invalid")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_PollIntervalGreaterThanTimeout(t *testing.T) {
	setRequiredEnv()
	os.Setenv("CONFIRMATION_POLL_INTERVAL", "2m")
	os.Setenv("CONFIRMATION_TIMEOUT", "30s")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cannot be greater than")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv()
	os.Setenv("SOLANA_NETWORK", "mainnet")
	os.Setenv("DATABASE_URL", "postgres://localhost/solcash")
	os.Setenv("NATS_URL", "nats://localhost:4222")
	os.Setenv("CONFIRMATION_POLL_INTERVAL", "5s")
	os.Setenv("PAYMENT_REQUEST_LABEL", "My Shop")
	defer cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.SolanaNetwork)
	assert.Equal(t, "postgres://localhost/solcash", cfg.DatabaseURL)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 5*time.Second, cfg.ConfirmationPollInterval)
	assert.Equal(t, "My Shop", cfg.PaymentRequestLabel)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		SolanaRPCURL:             "https://api.devnet.solana.com",
		SolanaNetwork:            "devnet",
		WalletKeypairPath:        "/tmp/wallet.json",
		HistoryFilePath:          "/tmp/history.json",
		ConfirmationPollInterval: 2 * time.Second,
		ConfirmationTimeout:      90 * time.Second,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing rpc url",
			mutate:  func(c *Config) { c.SolanaRPCURL = "" },
			wantMsg: "SolanaRPCURL is required",
		},
		{
			name:    "bad network",
			mutate:  func(c *Config) { c.SolanaNetwork = "localnet" },
			wantMsg: "SolanaNetwork must be mainnet or devnet",
		},
		{
			name:    "no persistence",
			mutate:  func(c *Config) { c.DatabaseURL = ""; c.HistoryFilePath = "" },
			wantMsg: "one of DatabaseURL or HistoryFilePath is required",
		},
		{
			name:    "poll interval too small",
			mutate:  func(c *Config) { c.ConfirmationPollInterval = 10 * time.Millisecond },
			wantMsg: "at least 100ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
