package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/brojonat/solcash/service/payment"
	"github.com/brojonat/solcash/service/solana"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - plenty for a payment submission
	maxAddressLength   = 100     // Solana addresses are 44 chars, give buffer
)

var (
	// Valid Solana address characters: base58 (no 0, O, I, l)
	validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// submitPaymentRequest is the request body for POST /api/v1/payments.
type submitPaymentRequest struct {
	Payee   string `json:"payee"`
	Amount  string `json:"amount"`
	Purpose string `json:"purpose"`
	NoWait  bool   `json:"no_wait"` // skip the confirmation wait, record stays "submitted"
}

// handleSubmitPayment returns a handler that runs the payment pipeline.
// POST /api/v1/payments
func handleSubmitPayment(payments *payment.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req submitPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := validateAddress(req.Payee); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		receipt, err := payments.SubmitPayment(r.Context(), payment.SubmitParams{
			PayeeText:           req.Payee,
			AmountText:          req.Amount,
			Purpose:             req.Purpose,
			WaitForConfirmation: !req.NoWait,
		})
		if err != nil {
			status := errorStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Error("payment submission failed", "payee", req.Payee, "error", err)
			} else {
				logger.Debug("payment rejected", "payee", req.Payee, "error", err)
			}
			writeError(w, err.Error(), status)
			return
		}

		logger.Info("payment submitted",
			"signature", receipt.Signature.String(),
			"payee", req.Payee,
			"status", receipt.Record.Status,
		)

		writeJSON(w, map[string]interface{}{
			"signature": receipt.Signature.String(),
			"reference": receipt.Reference.String(),
			"record":    receipt.Record,
		}, http.StatusCreated)
	})
}

// handleListPayments returns a handler that lists the payment history,
// newest first.
// GET /api/v1/payments
func handleListPayments(payments *payment.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hist, err := payments.History(r.Context())
		if err != nil {
			logger.Error("failed to load payment history", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Debug("payment history listed", "count", len(hist))

		writeJSON(w, map[string]interface{}{
			"payments": hist,
		}, http.StatusOK)
	})
}

// errorStatus maps pipeline errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, solana.ErrInvalidAmount),
		errors.Is(err, solana.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, solana.ErrUserRejected):
		return http.StatusConflict
	case errors.Is(err, solana.ErrNetworkUnavailable),
		errors.Is(err, solana.ErrSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validateAddress performs a basic sanity check on a base58 address string.
func validateAddress(address string) error {
	if address == "" {
		return errors.New("address is required")
	}
	if len(address) > maxAddressLength {
		return errors.New("address is too long")
	}
	if !validAddressRegex.MatchString(address) {
		return errors.New("address contains invalid characters")
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response in JSON format.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, map[string]string{"error": message}, status)
}
