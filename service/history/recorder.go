package history

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Verifier reports whether a party's identity has been verified. No actual
// verification exists yet; the pipeline is wired against this interface so
// one can be plugged in without changing the record shape.
type Verifier interface {
	Verify(address solana.PublicKey) bool
}

// UnverifiedParties is the stub Verifier. It reports every party as verified,
// matching the surface the UI expects, while making the absence of real
// verification explicit in the type system rather than a buried hardcode.
type UnverifiedParties struct{}

func (UnverifiedParties) Verify(solana.PublicKey) bool { return true }

// NewRecordParams contains the inputs for building a history record.
type NewRecordParams struct {
	Payer     solana.PublicKey
	Payee     solana.PublicKey
	Amount    float64 // whole SOL
	Purpose   string
	Signature solana.Signature
	Reference solana.PublicKey
}

// NewRecord builds the record for a successfully submitted payment. The ID is
// a monotonically increasing counter relative to the existing history length;
// TransactionDate is the capture time, not the confirmation time. The record
// starts in StatusSubmitted — confirmation is a separate, later transition.
func NewRecord(h History, params NewRecordParams, now time.Time, verifier Verifier) Record {
	if verifier == nil {
		verifier = UnverifiedParties{}
	}
	return Record{
		ID: strconv.Itoa(len(h) + 1),
		From: Party{
			Name:     params.Payer.String(),
			Handle:   params.Payer.String(),
			Verified: verifier.Verify(params.Payer),
		},
		To: Party{
			Name:     params.Payee.String(),
			Handle:   "-",
			Verified: verifier.Verify(params.Payee),
		},
		Description:     params.Purpose,
		TransactionDate: now,
		Status:          StatusSubmitted,
		Amount:          params.Amount,
		Source:          "-",
		Signature:       params.Signature.String(),
		Reference:       params.Reference.String(),
	}
}
