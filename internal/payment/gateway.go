// Package payment is a thin client for the checkout gateway. The
// server creates orders here and hands the order parameters to the
// browser checkout; the gateway calls back with a signed confirmation.
package payment

import (
	"bytes"         // Request body buffer
	"context"       // Request cancellation
	"crypto/hmac"   // Callback signature verification
	"crypto/sha256" // Signatures are HMAC-SHA256
	"encoding/hex"  // Signatures travel hex-encoded
	"encoding/json" // JSON request/response bodies
	"fmt"           // Error formatting
	"net/http"      // Gateway HTTP API
	"time"          // Client timeout
)

// Order holds the parameters the browser checkout needs
type Order struct {
	ID       string  `json:"id"`       // Gateway order ID
	Amount   float64 `json:"amount"`   // Order amount
	Currency string  `json:"currency"` // Currency code
	Receipt  string  `json:"receipt"`  // Our invoice reference
}

// Client talks to the payment gateway
type Client struct {
	baseURL string       // Gateway base URL
	key     string       // API key
	secret  string       // Signing secret
	http    *http.Client // Shared HTTP client
}

// NewClient creates a gateway client
func NewClient(baseURL, key, secret string) *Client {
	return &Client{
		baseURL: baseURL,                                 // Gateway base URL
		key:     key,                                     // API key
		secret:  secret,                                  // Signing secret
		http:    &http.Client{Timeout: 15 * time.Second}, // Bounded request time
	}
}

// Key returns the public API key the checkout client embeds
func (c *Client) Key() string { return c.key }

// CreateOrder registers an order with the gateway and returns the
// parameters the checkout client needs
func (c *Client) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   amount,   // Order amount
		"currency": currency, // Currency code
		"receipt":  receipt,  // Our invoice reference
	})
	if err != nil {
		return nil, err // Marshal failure
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err // Request build failure
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.key, c.secret) // Gateway authenticates with key/secret basic auth
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err // Network failure
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err // Decode failure
	}
	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 the gateway attaches to a
// completed payment, computed over "orderID|paymentID"
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(orderID + "|" + paymentID)) // Signed payload
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(signature)) // Constant-time compare
}
