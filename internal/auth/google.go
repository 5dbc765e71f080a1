package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrAudienceMismatch is returned when the token was issued for another client
var ErrAudienceMismatch = errors.New("token audience does not match client ID")

// GoogleIdentity holds the verified identity fields of a Google ID token
type GoogleIdentity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Audience      string `json:"aud"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// GoogleVerifier verifies Google ID tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

// GoogleVerifierOption configures the GoogleVerifier
type GoogleVerifierOption func(*GoogleVerifier)

// WithTokenInfoEndpoint overrides the verification endpoint (used in tests)
func WithTokenInfoEndpoint(endpoint string) GoogleVerifierOption {
	return func(v *GoogleVerifier) {
		v.endpoint = endpoint
	}
}

// WithVerifierHTTPClient sets a custom HTTP client
func WithVerifierHTTPClient(client *http.Client) GoogleVerifierOption {
	return func(v *GoogleVerifier) {
		v.httpClient = client
	}
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID
func NewGoogleVerifier(clientID string, opts ...GoogleVerifierOption) *GoogleVerifier {
	v := &GoogleVerifier{
		clientID: clientID,
		endpoint: googleTokenInfoURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks an ID token with Google and returns the identity it carries.
// The token audience must match the configured client ID.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	endpoint := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(idToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned status %d", ErrInvalidToken, resp.StatusCode)
	}

	var identity GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if v.clientID != "" && identity.Audience != v.clientID {
		return nil, ErrAudienceMismatch
	}

	if identity.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrInvalidClaims)
	}

	return &identity, nil
}
