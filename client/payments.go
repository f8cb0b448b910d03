package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Party identifies one side of a payment as returned by the server.
type Party struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Verified bool   `json:"verified"`
}

// Payment is a single entry in the server's payment history.
type Payment struct {
	ID              string    `json:"id"`
	From            Party     `json:"from"`
	To              Party     `json:"to"`
	Description     string    `json:"description"`
	TransactionDate time.Time `json:"transaction_date"`
	Status          string    `json:"status"` // submitted, confirmed, failed
	Amount          float64   `json:"amount"`
	Source          string    `json:"source"`
	Signature       string    `json:"signature"`
	Reference       string    `json:"reference"`
}

// Receipt is the server's response to a payment submission.
type Receipt struct {
	Signature string  `json:"signature"`
	Reference string  `json:"reference"`
	Record    Payment `json:"record"`
}

// PaymentRequest is a generated Solana Pay request.
type PaymentRequest struct {
	ID           string    `json:"id"`
	PayToAddress string    `json:"pay_to_address"`
	Network      string    `json:"network"`
	AmountSOL    float64   `json:"amount_sol"`
	Reference    string    `json:"reference"`
	Label        string    `json:"label"`
	Message      string    `json:"message,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	PaymentURL   string    `json:"payment_url"`
	QRCodeData   string    `json:"qr_code_data"`
	CreatedAt    time.Time `json:"created_at"`
}

// Client is the HTTP client for the solcash payment service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new payment service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		// Default timeout is generous because submissions may block on the
		// server-side confirmation wait.
		httpClient = &http.Client{Timeout: 150 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SubmitPayment asks the server to run the payment pipeline.
// If noWait is true the server records the payment as submitted without
// blocking on finality.
func (c *Client) SubmitPayment(ctx context.Context, payee, amount, purpose string, noWait bool) (*Receipt, error) {
	reqBody := map[string]interface{}{
		"payee":   payee,
		"amount":  amount,
		"purpose": purpose,
		"no_wait": noWait,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseErrorResponse(resp)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("payment submitted", "signature", receipt.Signature, "payee", payee)
	return &receipt, nil
}

// ListPayments retrieves the payment history, newest first.
func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/payments", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var response struct {
		Payments []Payment `json:"payments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Payments, nil
}

// CreatePaymentRequest asks the server to generate a Solana Pay request for
// the given amount.
func (c *Client) CreatePaymentRequest(ctx context.Context, amount, message string) (*PaymentRequest, error) {
	reqBody := map[string]interface{}{
		"amount":  amount,
		"message": message,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/payment-requests", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseErrorResponse(resp)
	}

	var request PaymentRequest
	if err := json.NewDecoder(resp.Body).Decode(&request); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &request, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
