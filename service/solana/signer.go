package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/brojonat/solcash/service/metrics"
)

// Signer is the external capability that signs an assembled transaction and
// broadcasts it. The payment pipeline never holds private keys itself; it
// hands the unsigned transaction to a Signer and awaits a signature or an
// error. Implementations should return ErrUserRejected when the holder of the
// key declines to sign.
type Signer interface {
	SignAndSubmit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// WalletSigner signs with a locally held keypair and broadcasts through the
// RPC client. This is the signer used by the CLI and the server's service
// wallet; a browser-wallet integration would provide its own Signer.
type WalletSigner struct {
	key      solana.PrivateKey
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string
}

// NewWalletSigner creates a signer backed by a local private key.
// If m is nil, no metrics will be recorded.
func NewWalletSigner(key solana.PrivateKey, rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *WalletSigner {
	return &WalletSigner{
		key:      key,
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// PublicKey returns the address of the signing key.
func (s *WalletSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// SignAndSubmit signs the transaction with the wallet key and broadcasts it.
// A node-side rejection maps to ErrSubmissionFailed; a transport failure maps
// to ErrNetworkUnavailable. There is no retry: the caller must rebuild the
// transaction before trying again because the blockhash will be stale.
func (s *WalletSigner) SignAndSubmit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrUserRejected, err)
	}

	start := time.Now()
	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.RecordRPCCall("SendTransaction", status, s.endpoint, duration)
	}

	if err != nil {
		// A structured RPC error means the node received and rejected the
		// transaction; anything else is a transport problem.
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			s.logger.ErrorContext(ctx, "node rejected transaction",
				"code", rpcErr.Code,
				"message", rpcErr.Message,
			)
			return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		s.logger.ErrorContext(ctx, "failed to broadcast transaction", "error", err)
		return solana.Signature{}, fmt.Errorf("%w: broadcast: %v", ErrNetworkUnavailable, err)
	}

	s.logger.InfoContext(ctx, "transaction broadcast accepted",
		"signature", sig.String(),
		"fee_payer", s.key.PublicKey().String(),
	)

	return sig, nil
}
