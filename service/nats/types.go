package nats

import (
	"time"

	"github.com/brojonat/solcash/service/history"
)

// PaymentEvent represents an outbound payment event published to NATS.
// This is published to the subject "payments.{payer_address}" in JetStream.
type PaymentEvent struct {
	// Payment identifiers
	Signature string `json:"signature"`
	Reference string `json:"reference"`

	// Parties
	PayerAddress string `json:"payer_address"`
	PayeeAddress string `json:"payee_address"`

	// Payment details
	Amount  float64 `json:"amount"` // whole SOL
	Purpose string  `json:"purpose,omitempty"`
	Status  string  `json:"status"` // submitted, confirmed, failed

	// Timing information
	TransactionDate time.Time `json:"transaction_date"`

	// Metadata
	PublishedAt time.Time `json:"published_at"`
}

// FromRecord converts a history record to a PaymentEvent for publishing.
func FromRecord(rec history.Record) *PaymentEvent {
	return &PaymentEvent{
		Signature:       rec.Signature,
		Reference:       rec.Reference,
		PayerAddress:    rec.From.Handle,
		PayeeAddress:    rec.To.Name,
		Amount:          rec.Amount,
		Purpose:         rec.Description,
		Status:          rec.Status,
		TransactionDate: rec.TransactionDate,
		PublishedAt:     time.Now().UTC(),
	}
}
