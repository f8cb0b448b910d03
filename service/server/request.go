package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/brojonat/solcash/service/config"
	"github.com/brojonat/solcash/service/solana"
)

// PaymentRequest is an inbound payment request: a Solana Pay URL (plus QR
// code) asking another wallet to pay this service's wallet. The embedded
// reference key lets the resulting transaction be located on-chain later.
type PaymentRequest struct {
	ID           string    `json:"id"`             // Unique request ID (UUID)
	PayToAddress string    `json:"pay_to_address"` // This service's wallet
	Network      string    `json:"network"`        // "mainnet" or "devnet"
	AmountSOL    float64   `json:"amount_sol"`     // Requested amount in SOL
	Reference    string    `json:"reference"`      // Reference key embedded in the URL
	Label        string    `json:"label"`
	Message      string    `json:"message,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	PaymentURL   string    `json:"payment_url"`  // Solana Pay URL for wallet apps
	QRCodeData   string    `json:"qr_code_data"` // Base64 encoded QR code image
	CreatedAt    time.Time `json:"created_at"`
}

// handleCreatePaymentRequest returns a handler that generates a payment request.
// POST /api/v1/payment-requests
func handleCreatePaymentRequest(cfg *config.Config, serviceWallet solanago.PublicKey, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			Amount  string `json:"amount"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		amount, err := strconv.ParseFloat(req.Amount, 64)
		if err != nil || amount <= 0 {
			writeError(w, "amount must be a positive number", http.StatusBadRequest)
			return
		}

		request := generatePaymentRequest(cfg, serviceWallet, amount, req.Message)

		logger.Info("payment request created",
			"id", request.ID,
			"amount_sol", request.AmountSOL,
			"reference", request.Reference,
		)

		writeJSON(w, request, http.StatusCreated)
	})
}

// generatePaymentRequest creates a new payment request for the service wallet.
func generatePaymentRequest(cfg *config.Config, payTo solanago.PublicKey, amountSOL float64, message string) PaymentRequest {
	requestID := uuid.New().String()
	reference := solana.NewReference()
	now := time.Now()

	paymentURL := buildSolanaPayURL(payTo.String(), amountSOL, reference.String(), cfg.PaymentRequestLabel, message)

	// Generate QR code
	qrCodeData, err := generateQRCode(paymentURL)
	if err != nil {
		// Log error but continue - QR code is optional
		qrCodeData = ""
	}

	return PaymentRequest{
		ID:           requestID,
		PayToAddress: payTo.String(),
		Network:      cfg.SolanaNetwork,
		AmountSOL:    amountSOL,
		Reference:    reference.String(),
		Label:        cfg.PaymentRequestLabel,
		Message:      message,
		ExpiresAt:    now.Add(cfg.PaymentRequestTimeout),
		PaymentURL:   paymentURL,
		QRCodeData:   qrCodeData,
		CreatedAt:    now,
	}
}

// buildSolanaPayURL creates a Solana Pay-compatible URL for payment.
// Format: solana:{recipient}?amount={amount}&reference={reference}&label={label}&message={message}
func buildSolanaPayURL(recipient string, amountSOL float64, reference, label, message string) string {
	params := url.Values{}
	params.Set("amount", strconv.FormatFloat(amountSOL, 'f', -1, 64))
	params.Set("reference", reference)
	params.Set("label", label)
	if message != "" {
		params.Set("message", message)
	}

	return fmt.Sprintf("solana:%s?%s", recipient, params.Encode())
}

// generateQRCode creates a QR code image from a payment URL and returns it as base64-encoded PNG.
func generateQRCode(data string) (string, error) {
	// Generate QR code with medium error correction
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Encode as PNG (256x256 pixels)
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code as PNG: %w", err)
	}

	// Return base64-encoded PNG for easy embedding in JSON/HTML
	return base64.StdEncoding.EncodeToString(png), nil
}
