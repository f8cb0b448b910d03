package solana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/solcash/service/metrics"
)

// Confirmation is the terminal outcome of a submitted transaction.
type Confirmation struct {
	Signature solana.Signature
	Slot      uint64
	Finalized bool
	Err       *string // on-chain execution error, nil if the transaction succeeded
}

// Poller polls the cluster for the finality of a submitted transaction.
// Broadcast acceptance alone is not confirmation; a record only becomes
// "confirmed" once the signature reaches finalized commitment.
type Poller struct {
	rpc      RPCClient
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string
}

// NewPoller creates a confirmation poller. If interval is zero a 2s default
// is used. If m is nil, no metrics will be recorded.
func NewPoller(rpcClient RPCClient, interval time.Duration, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		rpc:      rpcClient,
		interval: interval,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// WaitForConfirmation polls getSignatureStatuses until the signature is
// finalized, fails on-chain, or the context expires. Context expiry returns
// ctx.Err(); the caller decides whether to keep the record in its submitted
// state. A status-poll transport failure is returned as ErrNetworkUnavailable
// rather than being retried past the context deadline.
func (p *Poller) WaitForConfirmation(ctx context.Context, sig solana.Signature) (*Confirmation, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		conf, done, err := p.checkOnce(ctx, sig)
		if err != nil {
			return nil, err
		}
		if done {
			return conf, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) checkOnce(ctx context.Context, sig solana.Signature) (*Confirmation, bool, error) {
	start := time.Now()
	out, err := p.rpc.GetSignatureStatuses(ctx, true, sig)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("GetSignatureStatuses", status, p.endpoint, duration)
	}

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to poll signature status",
			"signature", sig.String(),
			"error", err,
		)
		return nil, false, fmt.Errorf("%w: signature status poll: %v", ErrNetworkUnavailable, err)
	}

	if len(out.Value) == 0 || out.Value[0] == nil {
		// Not yet visible to the cluster; keep polling.
		p.logger.DebugContext(ctx, "signature not yet visible", "signature", sig.String())
		return nil, false, nil
	}

	st := out.Value[0]

	if st.Err != nil {
		errMsg := fmt.Sprintf("%v", st.Err)
		p.logger.WarnContext(ctx, "transaction failed on-chain",
			"signature", sig.String(),
			"slot", st.Slot,
			"error", errMsg,
		)
		return &Confirmation{
			Signature: sig,
			Slot:      st.Slot,
			Finalized: false,
			Err:       &errMsg,
		}, true, nil
	}

	if st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		p.logger.InfoContext(ctx, "transaction finalized",
			"signature", sig.String(),
			"slot", st.Slot,
		)
		return &Confirmation{
			Signature: sig,
			Slot:      st.Slot,
			Finalized: true,
		}, true, nil
	}

	p.logger.DebugContext(ctx, "awaiting finality",
		"signature", sig.String(),
		"confirmation_status", string(st.ConfirmationStatus),
	)
	return nil, false, nil
}
