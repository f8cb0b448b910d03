// Package profile manages the on-chain user profile account that the payment
// UI gates on. The profile lives at a program-derived address seeded with
// "user" and the owner's public key. Lookup is an explicit existence check:
// absence and transport failure are distinct outcomes, never conflated.
package profile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	solanaclient "github.com/brojonat/solcash/service/solana"
)

// pdaSeed is the seed prefix for the user profile PDA.
const pdaSeed = "user"

// Account is a user profile account as found on-chain. The business payload
// is carried opaquely; this service only cares about existence.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Service looks up and initializes user profile accounts.
type Service struct {
	rpc       solanaclient.RPCClient
	programID solana.PublicKey
	logger    *slog.Logger
}

// NewService creates a profile service for the given program.
func NewService(rpcClient solanaclient.RPCClient, programID solana.PublicKey, logger *slog.Logger) *Service {
	return &Service{
		rpc:       rpcClient,
		programID: programID,
		logger:    logger,
	}
}

// DeriveAddress returns the profile PDA for the given owner.
func (s *Service) DeriveAddress(owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(pdaSeed), owner.Bytes()},
		s.programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive profile address: %w", err)
	}
	return addr, nil
}

// Lookup fetches the profile account for the given owner. It returns
// (nil, false, nil) when no account exists at the derived address; a
// transport failure is returned as an error so callers never mistake an
// unreachable node for an uninitialized profile.
func (s *Service) Lookup(ctx context.Context, owner solana.PublicKey) (*Account, bool, error) {
	addr, err := s.DeriveAddress(owner)
	if err != nil {
		return nil, false, err
	}

	out, err := s.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			s.logger.DebugContext(ctx, "profile account does not exist",
				"owner", owner.String(),
				"address", addr.String(),
			)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: profile lookup: %v", solanaclient.ErrNetworkUnavailable, err)
	}

	if out == nil || out.Value == nil {
		return nil, false, nil
	}

	acct := &Account{
		Address:  addr,
		Owner:    out.Value.Owner,
		Lamports: out.Value.Lamports,
	}
	if out.Value.Data != nil {
		acct.Data = out.Value.Data.GetBinary()
	}

	s.logger.DebugContext(ctx, "profile account found",
		"owner", owner.String(),
		"address", addr.String(),
		"lamports", acct.Lamports,
	)

	return acct, true, nil
}

// initArgs is the borsh-encoded argument block for the init instruction.
type initArgs struct {
	Name   string
	Avatar string
}

// Initialize creates the profile account for the owner by submitting the
// program's init instruction through the signer capability. Name and avatar
// are opaque strings passed through to the program.
func (s *Service) Initialize(ctx context.Context, owner solana.PublicKey, name, avatar string, signer solanaclient.Signer) (solana.Signature, error) {
	addr, err := s.DeriveAddress(owner)
	if err != nil {
		return solana.Signature{}, err
	}

	data, err := initInstructionData(name, avatar)
	if err != nil {
		return solana.Signature{}, err
	}

	recent, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: fetch latest blockhash: %v", solanaclient.ErrNetworkUnavailable, err)
	}

	ix := solana.NewInstruction(
		s.programID,
		solana.AccountMetaSlice{
			solana.Meta(addr).WRITE(),
			solana.Meta(owner).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(owner),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to assemble init transaction: %w", err)
	}

	sig, err := signer.SignAndSubmit(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	s.logger.InfoContext(ctx, "profile initialization submitted",
		"owner", owner.String(),
		"address", addr.String(),
		"signature", sig.String(),
	)

	return sig, nil
}

// initInstructionData produces the instruction payload: the 8-byte method
// discriminator followed by the borsh-encoded arguments.
func initInstructionData(name, avatar string) ([]byte, error) {
	disc := sha256.Sum256([]byte("global:init_user"))

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.Encode(initArgs{Name: name, Avatar: avatar}); err != nil {
		return nil, fmt.Errorf("failed to encode init arguments: %w", err)
	}

	return append(disc[:8], buf.Bytes()...), nil
}
