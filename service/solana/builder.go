package solana

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/solcash/service/metrics"
)

// BuildParams contains the inputs for assembling a payment transaction.
type BuildParams struct {
	Payer     solana.PublicKey
	Payee     solana.PublicKey
	AmountSOL float64          // whole-token units; converted to lamports
	Reference solana.PublicKey // non-signing tag for later lookup
}

// Builder assembles unsigned payment transactions. Each Build fetches a fresh
// blockhash; the result must be signed and broadcast promptly or the
// blockhash goes stale and the network rejects it.
type Builder struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", "devnet", rpc host)
}

// NewBuilder creates a transaction builder.
// If m is nil, no metrics will be recorded.
func NewBuilder(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Builder {
	return &Builder{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// Build assembles an unsigned transfer transaction moving
// round(AmountSOL * LAMPORTS_PER_SOL) lamports from payer to payee, with the
// payer designated as fee payer and the reference appended to the transfer
// instruction's account list as a non-signer, non-writable meta. The blockhash
// is fetched at finalized commitment immediately before the transaction is
// returned, so the output is only valid for prompt submission.
func (b *Builder) Build(ctx context.Context, params BuildParams) (*solana.Transaction, error) {
	lamports, err := LamportsFromSOL(params.AmountSOL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recent, err := b.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if b.metrics != nil {
		b.metrics.RecordRPCCall("GetLatestBlockhash", status, b.endpoint, duration)
	}

	if err != nil {
		b.logger.ErrorContext(ctx, "failed to fetch latest blockhash", "error", err)
		return nil, fmt.Errorf("%w: fetch latest blockhash: %v", ErrNetworkUnavailable, err)
	}

	// The transfer instruction moves the lamports; the reference rides along
	// on the same instruction's account list. It must not be a separate
	// instruction or it would not be indexed alongside the transfer on-chain.
	transfer := system.NewTransferInstruction(lamports, params.Payer, params.Payee).Build()
	data, err := transfer.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transfer instruction: %w", err)
	}
	accounts := transfer.Accounts()
	accounts = append(accounts, solana.Meta(params.Reference))

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(system.ProgramID, accounts, data),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(params.Payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	b.logger.DebugContext(ctx, "assembled payment transaction",
		"payer", params.Payer.String(),
		"payee", params.Payee.String(),
		"lamports", lamports,
		"reference", params.Reference.String(),
		"blockhash", recent.Value.Blockhash.String(),
	)

	return tx, nil
}

// LamportsFromSOL converts a whole-SOL amount to lamports. The amount must be
// a finite value greater than zero.
func LamportsFromSOL(amount float64) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount is not a finite number", ErrInvalidAmount)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero, got %v", ErrInvalidAmount, amount)
	}
	return uint64(math.Round(amount * float64(solana.LAMPORTS_PER_SOL))), nil
}
