package solana

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call sequences.
type mockRPCClient struct {
	blockhash    solana.Hash
	blockhashErr error

	sendSig solana.Signature
	sendErr error

	// statusQueue is consumed one entry per GetSignatureStatuses call; when
	// exhausted the last entry repeats.
	statusQueue []*rpc.GetSignatureStatusesResult
	statusErr   error

	accountInfo    *rpc.GetAccountInfoResult
	accountInfoErr error
}

func (m *mockRPCClient) GetLatestBlockhash(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	if m.blockhashErr != nil {
		return nil, m.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            m.blockhash,
			LastValidBlockHeight: 1000,
		},
	}, nil
}

func (m *mockRPCClient) SendTransactionWithOpts(
	ctx context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	if m.sendErr != nil {
		return solana.Signature{}, m.sendErr
	}
	return m.sendSig, nil
}

func (m *mockRPCClient) GetSignatureStatuses(
	ctx context.Context,
	searchTransactionHistory bool,
	signatures ...solana.Signature,
) (*rpc.GetSignatureStatusesResult, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if len(m.statusQueue) == 0 {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	out := m.statusQueue[0]
	if len(m.statusQueue) > 1 {
		m.statusQueue = m.statusQueue[1:]
	}
	return out, nil
}

func (m *mockRPCClient) GetAccountInfo(
	ctx context.Context,
	account solana.PublicKey,
) (*rpc.GetAccountInfoResult, error) {
	if m.accountInfoErr != nil {
		return nil, m.accountInfoErr
	}
	return m.accountInfo, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLamportsFromSOL(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected uint64
		wantErr  bool
	}{
		{name: "one and a half SOL", amount: 1.5, expected: 1_500_000_000},
		{name: "one SOL", amount: 1, expected: 1_000_000_000},
		{name: "smallest unit", amount: 0.000000001, expected: 1},
		{name: "rounds to nearest lamport", amount: 0.0000000015, expected: 2},
		{name: "zero", amount: 0, wantErr: true},
		{name: "negative", amount: -5, wantErr: true},
		{name: "NaN", amount: math.NaN(), wantErr: true},
		{name: "positive infinity", amount: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LamportsFromSOL(tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuild_TransactionShape(t *testing.T) {
	ctx := context.Background()

	payer := solana.NewWallet().PublicKey()
	payee := solana.NewWallet().PublicKey()
	reference := NewReference()
	blockhash := solana.Hash(solana.NewWallet().PublicKey())

	mock := &mockRPCClient{blockhash: blockhash}
	builder := NewBuilder(mock, "test", nil, testLogger())

	tx, err := builder.Build(ctx, BuildParams{
		Payer:     payer,
		Payee:     payee,
		AmountSOL: 1.5,
		Reference: reference,
	})
	require.NoError(t, err)
	require.NotNil(t, tx)

	// Fee payer is the payer, and the blockhash is the freshly fetched one.
	require.NotEmpty(t, tx.Message.AccountKeys)
	assert.Equal(t, payer, tx.Message.AccountKeys[0])
	assert.Equal(t, blockhash, tx.Message.RecentBlockhash)

	// Single instruction carrying both the transfer accounts and the
	// reference tag.
	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]
	require.Len(t, ix.Accounts, 3)

	refInMessage := false
	for _, key := range tx.Message.AccountKeys {
		if key.Equals(reference) {
			refInMessage = true
		}
	}
	assert.True(t, refInMessage, "reference key must appear in the message")

	// The reference rides along without signing and without being writable.
	assert.False(t, tx.Message.IsSigner(reference))
	writable, err := tx.Message.IsWritable(reference)
	require.NoError(t, err)
	assert.False(t, writable)

	// The payer signs; the payee does not.
	assert.True(t, tx.Message.IsSigner(payer))
	assert.False(t, tx.Message.IsSigner(payee))

	// Instruction data encodes the transfer with the converted lamports.
	lamports := binary.LittleEndian.Uint64(ix.Data[4:12])
	assert.Equal(t, uint64(1_500_000_000), lamports)
}

func TestBuild_InvalidAmount(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{blockhash: solana.Hash(solana.NewWallet().PublicKey())}
	builder := NewBuilder(mock, "test", nil, testLogger())

	for _, amount := range []float64{0, -1.5, math.NaN()} {
		_, err := builder.Build(ctx, BuildParams{
			Payer:     solana.NewWallet().PublicKey(),
			Payee:     solana.NewWallet().PublicKey(),
			AmountSOL: amount,
			Reference: NewReference(),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestBuild_BlockhashUnavailable(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{blockhashErr: errors.New("connection refused")}
	builder := NewBuilder(mock, "test", nil, testLogger())

	_, err := builder.Build(ctx, BuildParams{
		Payer:     solana.NewWallet().PublicKey(),
		Payee:     solana.NewWallet().PublicKey(),
		AmountSOL: 1,
		Reference: NewReference(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}
