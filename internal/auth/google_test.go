package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func tokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") == "" {
			t.Error("expected id_token query parameter")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGoogleVerifier_Valid(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK,
		`{"sub":"123","email":"student@udc.edu.ar","aud":"client-id","name":"Test Student"}`)

	v := NewGoogleVerifier("client-id", WithTokenInfoEndpoint(server.URL))

	identity, err := v.Verify(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Email != "student@udc.edu.ar" {
		t.Errorf("unexpected email: %s", identity.Email)
	}
	if identity.Subject != "123" {
		t.Errorf("unexpected subject: %s", identity.Subject)
	}
}

func TestGoogleVerifier_AudienceMismatch(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK,
		`{"sub":"123","email":"student@udc.edu.ar","aud":"someone-else"}`)

	v := NewGoogleVerifier("client-id", WithTokenInfoEndpoint(server.URL))

	if _, err := v.Verify(context.Background(), "token"); !errors.Is(err, ErrAudienceMismatch) {
		t.Errorf("expected ErrAudienceMismatch, got %v", err)
	}
}

func TestGoogleVerifier_RejectedToken(t *testing.T) {
	server := tokenInfoServer(t, http.StatusBadRequest, `{"error":"invalid_token"}`)

	v := NewGoogleVerifier("client-id", WithTokenInfoEndpoint(server.URL))

	if _, err := v.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGoogleVerifier_MissingEmail(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK, `{"sub":"123","aud":"client-id"}`)

	v := NewGoogleVerifier("client-id", WithTokenInfoEndpoint(server.URL))

	if _, err := v.Verify(context.Background(), "token"); err == nil {
		t.Error("expected error for identity without email")
	}
}
