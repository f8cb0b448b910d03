package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/solcash/service/config"
)

func testConfig() *config.Config {
	return &config.Config{
		SolanaNetwork:         "devnet",
		PaymentRequestLabel:   "SolCash",
		PaymentRequestTimeout: 15 * time.Minute,
	}
}

func TestBuildSolanaPayURL(t *testing.T) {
	recipient := solanago.NewWallet().PublicKey().String()
	reference := solanago.NewWallet().PublicKey().String()

	raw := buildSolanaPayURL(recipient, 1.5, reference, "SolCash", "dinner split")

	require.True(t, strings.HasPrefix(raw, "solana:"+recipient+"?"))

	params, err := url.ParseQuery(strings.SplitN(raw, "?", 2)[1])
	require.NoError(t, err)
	assert.Equal(t, "1.5", params.Get("amount"))
	assert.Equal(t, reference, params.Get("reference"))
	assert.Equal(t, "SolCash", params.Get("label"))
	assert.Equal(t, "dinner split", params.Get("message"))
}

func TestBuildSolanaPayURL_NoMessage(t *testing.T) {
	raw := buildSolanaPayURL("abc", 0.1, "ref", "SolCash", "")
	assert.NotContains(t, raw, "message=")
}

func TestGeneratePaymentRequest(t *testing.T) {
	wallet := solanago.NewWallet().PublicKey()
	cfg := testConfig()

	req := generatePaymentRequest(cfg, wallet, 2.5, "rent")

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, wallet.String(), req.PayToAddress)
	assert.Equal(t, "devnet", req.Network)
	assert.Equal(t, 2.5, req.AmountSOL)
	assert.NotEmpty(t, req.Reference)
	assert.Equal(t, "SolCash", req.Label)
	assert.Equal(t, "rent", req.Message)
	assert.Contains(t, req.PaymentURL, req.Reference)
	assert.True(t, req.ExpiresAt.After(req.CreatedAt))

	// QR code payload is a valid base64 PNG.
	require.NotEmpty(t, req.QRCodeData)
	png, err := base64.StdEncoding.DecodeString(req.QRCodeData)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	// Each request gets its own reference.
	again := generatePaymentRequest(cfg, wallet, 2.5, "rent")
	assert.NotEqual(t, req.Reference, again.Reference)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestHandleCreatePaymentRequest(t *testing.T) {
	wallet := solanago.NewWallet().PublicKey()
	handler := handleCreatePaymentRequest(testConfig(), wallet, testLogger())

	body := strings.NewReader(`{"amount": "1.5", "message": "dinner"}`)
	req := httptest.NewRequest("POST", "/api/v1/payment-requests", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp PaymentRequest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, wallet.String(), resp.PayToAddress)
	assert.Equal(t, 1.5, resp.AmountSOL)
	assert.Equal(t, "dinner", resp.Message)
	assert.NotEmpty(t, resp.PaymentURL)
}

func TestHandleCreatePaymentRequest_BadAmount(t *testing.T) {
	handler := handleCreatePaymentRequest(testConfig(), solanago.NewWallet().PublicKey(), testLogger())

	for _, body := range []string{
		`{"amount": "abc"}`,
		`{"amount": "-1"}`,
		`{"amount": "0"}`,
		`{not json`,
	} {
		req := httptest.NewRequest("POST", "/api/v1/payment-requests", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}
