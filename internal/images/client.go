// Package images uploads base64 image payloads to the hosting service
// and returns the CDN URL stored on profiles, listings and posts.
package images

import (
	"bytes"           // Request body buffer
	"context"         // Request cancellation
	"encoding/base64" // Payload validation before upload
	"encoding/json"   // JSON request/response bodies
	"fmt"             // Error formatting
	"net/http"        // Image host HTTP API
	"strings"         // Data-URI prefix stripping
	"time"            // Client timeout
)

// Client talks to the image hosting service
type Client struct {
	uploadURL string       // Upload endpoint
	apiKey    string       // API key
	http      *http.Client // Shared HTTP client
}

// NewClient creates an image host client
func NewClient(uploadURL, apiKey string) *Client {
	return &Client{
		uploadURL: uploadURL,                               // Upload endpoint
		apiKey:    apiKey,                                  // API key
		http:      &http.Client{Timeout: 30 * time.Second}, // Uploads can be slow
	}
}

// Upload sends a base64 payload (optionally a data: URI) and returns
// the hosted URL
func (c *Client) Upload(ctx context.Context, name, payload string) (string, error) {
	// Strip a data URI header if the client sent one
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	// Reject payloads that are not valid base64 before going to the network
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	body, err := json.Marshal(map[string]string{
		"name":  name,    // Stored object name
		"image": payload, // Base64 image bytes
	})
	if err != nil {
		return "", err // Marshal failure
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(body))
	if err != nil {
		return "", err // Request build failure
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey) // Host authenticates with a bearer key
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err // Network failure
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}
	var out struct {
		URL string `json:"url"` // Hosted image URL
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err // Decode failure
	}
	if out.URL == "" {
		return "", fmt.Errorf("image host returned no url")
	}
	return out.URL, nil
}
