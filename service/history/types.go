package history

import (
	"time"
)

// Record statuses. A record is written StatusSubmitted immediately after the
// broadcast is accepted and transitions at most once, to StatusConfirmed when
// the signature reaches finalized commitment or to StatusFailed when the
// transaction errors on-chain.
const (
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Party identifies one side of a payment as it appears in the history list.
// Verified is produced by an injected Verifier; the default implementation is
// an explicit stub (see UnverifiedParties) so real identity verification can
// be added without changing this shape.
type Party struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Verified bool   `json:"verified"`
}

// Record is a single entry in the payment history. Records are created
// exactly once, immediately after a successful submission; apart from the
// Status transition they are immutable and exclusively owned by the history.
type Record struct {
	ID              string    `json:"id"`
	From            Party     `json:"from"`
	To              Party     `json:"to"`
	Description     string    `json:"description"`
	TransactionDate time.Time `json:"transaction_date"` // capture time, not confirmation time
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"` // whole SOL
	Source          string    `json:"source"`
	Signature       string    `json:"signature"`
	Reference       string    `json:"reference"`
}

// History is the ordered payment history, newest first. It is never reordered
// and never mutated in place; Prepend returns a new slice with the prior
// elements untouched.
type History []Record

// Prepend returns a new history with rec at index 0 and all prior records
// following in their original order.
func (h History) Prepend(rec Record) History {
	out := make(History, 0, len(h)+1)
	out = append(out, rec)
	out = append(out, h...)
	return out
}

// WithStatus returns a copy of the history where the record with the given
// signature carries the new status. All other records are unchanged. The
// second return reports whether a record was found.
func (h History) WithStatus(signature, status string) (History, bool) {
	out := make(History, len(h))
	copy(out, h)
	for i := range out {
		if out[i].Signature == signature {
			out[i].Status = status
			return out, true
		}
	}
	return out, false
}
