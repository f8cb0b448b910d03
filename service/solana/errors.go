package solana

import "errors"

// Sentinel errors for the payment pipeline. Callers match with errors.Is;
// the pipeline never retries on any of them — a failed submission must be
// re-initiated with a freshly built transaction.
var (
	// ErrInvalidAmount indicates a non-numeric, zero, or negative amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAddress indicates recipient text that is not a well-formed
	// base58 public key.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNetworkUnavailable indicates a transport failure talking to the RPC
	// node (blockhash fetch, broadcast, status poll).
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrUserRejected indicates the signer declined to sign the transaction.
	ErrUserRejected = errors.New("user rejected signing")

	// ErrSubmissionFailed indicates the network rejected or dropped the
	// broadcast after signing.
	ErrSubmissionFailed = errors.New("submission failed")
)
