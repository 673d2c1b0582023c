package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"glamai-server-go/internal/platform/config"
	"glamai-server-go/internal/platform/logging"
)

func testAuthLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "error"})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	return logger
}

func newTestBackend(t *testing.T, baseURL string) *Backend {
	t.Helper()
	backend, err := NewBackend(&config.AuthConfig{BackendURL: baseURL, Collection: "users"}, testAuthLogger(t))
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return backend
}

func TestRegisterCreatesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/collections/users/records" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}

		var reg Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if reg.Email != "jo@example.com" || reg.Password != "hunter22" || reg.PasswordConfirm != "hunter22" {
			t.Errorf("unexpected registration payload: %+v", reg)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "rec_1", "email": "jo@example.com", "verified": false}`))
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL)
	user, err := backend.Register(context.Background(), Registration{
		Email:           "jo@example.com",
		Password:        "hunter22",
		PasswordConfirm: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID != "rec_1" || user.Email != "jo@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRegisterSurfacesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"code": 400,
			"message": "Failed to create record.",
			"data": {"email": {"code": "validation_invalid_email", "message": "Must be a valid email address."}}
		}`))
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL)
	_, err := backend.Register(context.Background(), Registration{Email: "nope"})

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", backendErr.Status)
	}
	if backendErr.Message != "Failed to create record." {
		t.Errorf("backend message must pass through verbatim, got %q", backendErr.Message)
	}
	if got := backendErr.Fields["email"]; got != "Must be a valid email address." {
		t.Errorf("unexpected field error: %q", got)
	}
}

func TestLoginReturnsTokenAndRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/collections/users/auth-with-password" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload["identity"] != "jo@example.com" || payload["password"] != "hunter22" {
			t.Errorf("unexpected login payload: %v", payload)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token": "jwt-token", "record": {"id": "rec_1", "email": "jo@example.com", "verified": true}}`))
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL)
	result, err := backend.Login(context.Background(), Credentials{Email: "jo@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token != "jwt-token" {
		t.Errorf("unexpected token %q", result.Token)
	}
	if result.Record.ID != "rec_1" || !result.Record.Verified {
		t.Errorf("unexpected record: %+v", result.Record)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 400, "message": "Failed to authenticate.", "data": {}}`))
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL)
	_, err := backend.Login(context.Background(), Credentials{Email: "jo@example.com", Password: "wrong"})

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Message != "Failed to authenticate." {
		t.Errorf("unexpected message: %q", backendErr.Message)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token": "", "record": {"id": "rec_1"}}`))
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL)
	if _, err := backend.Login(context.Background(), Credentials{Email: "jo@example.com", Password: "hunter22"}); err == nil {
		t.Fatal("expected error for a reply without a token")
	}
}

func TestNewBackendRequiresURL(t *testing.T) {
	if _, err := NewBackend(&config.AuthConfig{}, testAuthLogger(t)); err == nil {
		t.Fatal("expected error for missing backend URL")
	}
}
