// Package oauth verifies Google ID tokens by asking Google's tokeninfo
// endpoint, which validates the signature server-side.
package oauth

import (
	"context"       // Request cancellation
	"encoding/json" // JSON response body
	"fmt"           // Error formatting
	"net/http"      // Tokeninfo HTTP API
	"net/url"       // Token query escaping
	"time"          // Client timeout
)

// DefaultTokenInfoURL is Google's token validation endpoint
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Identity is the verified subject of a Google ID token
type Identity struct {
	Subject   string `json:"sub"`            // Stable Google account ID
	Email     string `json:"email"`          // Account email
	Verified  string `json:"email_verified"` // "true" when Google verified the email
	Name      string `json:"name"`           // Display name
	Picture   string `json:"picture"`        // Avatar URL
	Audience  string `json:"aud"`            // Client ID the token was issued for
}

// GoogleVerifier validates ID tokens for one OAuth client ID
type GoogleVerifier struct {
	tokenInfoURL string       // Validation endpoint
	clientID     string       // Expected audience
	http         *http.Client // Shared HTTP client
}

// NewGoogleVerifier creates a verifier; tokenInfoURL falls back to
// Google's endpoint when empty
func NewGoogleVerifier(tokenInfoURL, clientID string) *GoogleVerifier {
	if tokenInfoURL == "" {
		tokenInfoURL = DefaultTokenInfoURL
	}
	return &GoogleVerifier{
		tokenInfoURL: tokenInfoURL,                            // Validation endpoint
		clientID:     clientID,                                // Expected audience
		http:         &http.Client{Timeout: 10 * time.Second}, // Bounded request time
	}
}

// Verify checks an ID token and returns the identity it asserts
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.tokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err // Request build failure
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return nil, err // Network failure
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token rejected with status %d", resp.StatusCode)
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, err // Decode failure
	}
	// The token must have been issued for this application
	if id.Audience != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if id.Verified != "true" {
		return nil, fmt.Errorf("google account email is not verified")
	}
	return &id, nil
}
