package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
)

const backendTimeout = 15 * time.Second

// Backend talks to the hosted record-collection auth service. The
// service is opaque: we send its documented request shapes and decode
// its replies, nothing more.
type Backend struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *logging.Logger
}

// AuthResult is a successful password authentication: the bearer
// token plus the account record it belongs to.
type AuthResult struct {
	Token  string `json:"token"`
	Record User   `json:"record"`
}

// NewBackend builds a client for the configured auth service.
func NewBackend(cfg *config.AuthConfig, logger *logging.Logger) (*Backend, error) {
	if cfg == nil || cfg.BackendURL == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "auth.backend", "auth backend URL is not configured")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "users"
	}

	return &Backend{
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: backendTimeout},
		logger:     logger,
	}, nil
}

// Register creates a new account record. The backend validates the
// email format and password confirmation; its field errors come back
// inside BackendError.Fields.
func (b *Backend) Register(ctx context.Context, reg Registration) (*User, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/records", b.baseURL, url.PathEscape(b.collection))

	var user User
	if err := b.post(ctx, endpoint, reg, &user); err != nil {
		return nil, err
	}

	b.logger.InfoTag("AUTH", "registered account %s", user.ID)
	return &user, nil
}

// Login authenticates with email and password and returns the token
// the backend issued together with the account record.
func (b *Backend) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/auth-with-password", b.baseURL, url.PathEscape(b.collection))
	payload := map[string]string{
		"identity": creds.Email,
		"password": creds.Password,
	}

	var result AuthResult
	if err := b.post(ctx, endpoint, payload, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, platformerrors.New(platformerrors.KindAuth, "auth.login", "backend reply is missing a token")
	}

	b.logger.InfoTag("AUTH", "authenticated account %s", result.Record.ID)
	return &result, nil
}

func (b *Backend) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "auth.request", "encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "auth.request", "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "auth.request", "reach auth backend", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "auth.request", "read backend reply", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeBackendError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return platformerrors.Wrap(platformerrors.KindAuth, "auth.request", "decode backend reply", err)
		}
	}
	return nil
}

// decodeBackendError reads the backend's error envelope, which nests
// per-field details under data: {"field": {"code", "message"}}.
func decodeBackendError(status int, raw []byte) error {
	var envelope struct {
		Message string `json:"message"`
		Data    map[string]struct {
			Message string `json:"message"`
		} `json:"data"`
	}

	backendErr := &BackendError{Status: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			backendErr.Message = envelope.Message
		}
		if len(envelope.Data) > 0 {
			backendErr.Fields = make(map[string]string, len(envelope.Data))
			for field, detail := range envelope.Data {
				backendErr.Fields[field] = detail.Message
			}
		}
	}
	return backendErr
}
