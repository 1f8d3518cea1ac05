package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
)

// PaystackVerification is the distilled result of a transaction lookup.
type PaystackVerification struct {
	Status         string `json:"status"` // "success", "failed", "abandoned"
	Reference      string `json:"reference"`
	AmountSubunits int64  `json:"amount"`
	Currency       string `json:"currency"`
	Channel        string `json:"channel,omitempty"`
	PaidAt         string `json:"paid_at,omitempty"`
}

// Succeeded reports whether Paystack captured the funds.
func (v *PaystackVerification) Succeeded() bool {
	return v.Status == "success"
}

// PaystackInterface defines the payment provider operations the API uses
type PaystackInterface interface {
	VerifyTransaction(ctx context.Context, reference string) (*PaystackVerification, error)
}

// PaystackService talks to the Paystack REST API with the secret key
type PaystackService struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

var paystackServiceInstance PaystackInterface

// InitPaystackService initializes the Paystack service from configuration
func InitPaystackService(cfg *config.Config) PaystackInterface {
	paystackServiceInstance = &PaystackService{
		baseURL:   cfg.PaystackBaseURL,
		secretKey: cfg.PaystackSecretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	return paystackServiceInstance
}

// GetPaystackService returns the initialized Paystack service instance
func GetPaystackService() PaystackInterface {
	return paystackServiceInstance
}

// SetPaystackService sets the Paystack service instance (primarily for testing)
func SetPaystackService(service PaystackInterface) {
	paystackServiceInstance = service
}

// verifyResponse mirrors Paystack's transaction verification envelope.
type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Channel   string `json:"channel"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

// VerifyTransaction fetches a transaction by reference and reports whether
// the charge succeeded. The reference is the client-generated order id.
func (s *PaystackService) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerification, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", s.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Paystack: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verification returned status %d", resp.StatusCode)
	}

	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Paystack response: %w", err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("paystack verification rejected: %s", parsed.Message)
	}

	return &PaystackVerification{
		Status:         parsed.Data.Status,
		Reference:      parsed.Data.Reference,
		AmountSubunits: parsed.Data.Amount,
		Currency:       parsed.Data.Currency,
		Channel:        parsed.Data.Channel,
		PaidAt:         parsed.Data.PaidAt,
	}, nil
}
