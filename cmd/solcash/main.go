package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/service/history"
	"github.com/brojonat/solcash/service/payment"
	"github.com/brojonat/solcash/service/solana"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "solcash",
		Usage: "Solana payment CLI with local history",
		Description: `Send native-SOL payments with an attached purpose, keep a local
history of past payments, and generate Solana Pay requests.

Payments are signed with a local keypair file and tagged with a unique
reference key so they can be located on-chain later.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			payCommand(),
			historyCommand(),
			requestCommand(),
			// On-chain profile commands
			{
				Name:  "profile",
				Usage: "On-chain profile account commands",
				Subcommands: []*cli.Command{
					profileStatusCommand(),
					profileInitCommand(),
				},
			},
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
				Value:   "https://api.devnet.solana.com",
			},
			&cli.StringFlag{
				Name:    "keypair",
				Usage:   "Path to the wallet keypair file (solana-keygen format)",
				EnvVars: []string{"WALLET_KEYPAIR_PATH"},
			},
			&cli.StringFlag{
				Name:    "history-file",
				Usage:   "Path to the local history file",
				EnvVars: []string{"HISTORY_FILE"},
			},
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Server URL for remote commands",
				EnvVars: []string{"SOLCASH_SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging to stderr",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLogger creates the CLI logger; quiet by default, debug with --verbose.
func newLogger(c *cli.Context) *slog.Logger {
	if c.Bool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// loadKeypair loads the wallet keypair named by the global --keypair flag.
func loadKeypair(c *cli.Context) (solanago.PrivateKey, error) {
	path := c.String("keypair")
	if path == "" {
		return nil, fmt.Errorf("--keypair (or WALLET_KEYPAIR_PATH) is required")
	}
	key, err := solanago.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return key, nil
}

// historyFilePath resolves the local history file path.
func historyFilePath(c *cli.Context) string {
	if path := c.String("history-file"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "solcash-history.json"
	}
	return home + "/.solcash/history.json"
}

// newLocalService wires the payment pipeline against the RPC endpoint and the
// local history file, signing with the local keypair.
func newLocalService(c *cli.Context, withConfirmation bool) (*payment.Service, error) {
	key, err := loadKeypair(c)
	if err != nil {
		return nil, err
	}

	logger := newLogger(c)
	rpcClient := solana.NewRPCClient(c.String("rpc-url"))
	builder := solana.NewBuilder(rpcClient, "cli", nil, logger)
	signer := solana.NewWalletSigner(key, rpcClient, "cli", nil, logger)
	store := history.NewFileStore(historyFilePath(c), logger)

	opts := []payment.Option{}
	if withConfirmation {
		opts = append(opts, payment.WithPoller(solana.NewPoller(rpcClient, 0, "cli", nil, logger)))
	}

	return payment.NewService(key.PublicKey(), builder, signer, store, logger, opts...), nil
}
