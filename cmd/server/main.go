package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brojonat/solcash/service/config"
	"github.com/brojonat/solcash/service/history"
	"github.com/brojonat/solcash/service/metrics"
	"github.com/brojonat/solcash/service/nats"
	"github.com/brojonat/solcash/service/payment"
	"github.com/brojonat/solcash/service/server"
	"github.com/brojonat/solcash/service/solana"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"network", cfg.SolanaNetwork,
		"log_level", cfg.LogLevel,
	)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the service wallet keypair. The server signs submitted payments
	// with this key; it is also the pay-to address for payment requests.
	walletKey, err := solanago.PrivateKeyFromSolanaKeygenFile(cfg.WalletKeypairPath)
	if err != nil {
		logger.Error("failed to load wallet keypair", "path", cfg.WalletKeypairPath, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded service wallet", "address", walletKey.PublicKey().String())

	// Initialize metrics
	m := metrics.NewMetrics(nil)

	// Initialize Solana RPC client and the pipeline components
	rpcClient := solana.NewRPCClient(cfg.SolanaRPCURL)
	builder := solana.NewBuilder(rpcClient, cfg.SolanaNetwork, m, logger)
	signer := solana.NewWalletSigner(walletKey, rpcClient, cfg.SolanaNetwork, m, logger)
	poller := solana.NewPoller(rpcClient, cfg.ConfirmationPollInterval, cfg.SolanaNetwork, m, logger)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	// Initialize the history store: Postgres slot when DATABASE_URL is set,
	// local file otherwise.
	var store history.Store
	storeBackend := "file"
	if cfg.DatabaseURL != "" {
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		pgStore := history.NewPostgresStore(dbPool, history.SlotKey, logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure history schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
		storeBackend = "postgres"
		logger.Info("history store: postgres", "slot_key", history.SlotKey)
	} else {
		store = history.NewFileStore(cfg.HistoryFilePath, logger)
		logger.Info("history store: file", "path", cfg.HistoryFilePath)
	}
	store = history.NewInstrumentedStore(store, storeBackend, m)

	// Initialize payment service options
	opts := []payment.Option{
		payment.WithPoller(poller),
		payment.WithMetrics(m),
		payment.WithConfirmationTimeout(cfg.ConfirmationTimeout),
	}

	// Initialize NATS publisher (optional)
	if cfg.NATSURL != "" {
		publisher, err := nats.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to initialize NATS publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, payment.WithPublisher(publisher))
	}

	payments := payment.NewService(walletKey.PublicKey(), builder, signer, store, logger, opts...)

	// Initialize HTTP server
	httpServer := server.New(cfg.ServerAddr, cfg, payments, walletKey.PublicKey(), m, logger)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
