package solana

import (
	"github.com/gagliardetto/solana-go"
)

// NewReference generates a fresh reference key for tagging a payment
// transaction. It is the public half of a throwaway keypair; the private half
// is discarded and never signs anything. Attaching the reference to the
// transfer instruction lets the payment be located later by scanning the
// ledger for transactions that mention it, without granting the key any
// authority over funds.
func NewReference() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}
