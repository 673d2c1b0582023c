package analysis

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
)

const retryBaseDelay = 200 * time.Millisecond

// Client performs the remote chat-completion call. One underlying
// client per kind so each carries its own identification headers.
type Client struct {
	config  *config.AnalysisConfig
	clients map[Kind]*openai.Client
	logger  *logging.Logger
}

// headerTransport attaches the provider's usage-policy headers to
// every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("HTTP-Referer", t.referer)
	cloned.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(cloned)
}

// NewClient builds a remote analysis client. The bearer credential
// must already be resolved into the config; it is never compiled in.
func NewClient(cfg *config.AnalysisConfig, logger *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysis.client", "remote API key is not configured")
	}

	clients := make(map[Kind]*openai.Client, len(Kinds()))
	for _, kind := range Kinds() {
		profile, err := ProfileFor(kind)
		if err != nil {
			return nil, err
		}

		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &headerTransport{
				base:    http.DefaultTransport,
				referer: cfg.Referer,
				title:   profile.ClientTitle,
			},
		}
		clients[kind] = openai.NewClientWithConfig(clientConfig)
	}

	return &Client{
		config:  cfg,
		clients: clients,
		logger:  logger,
	}, nil
}

// Send performs the call and returns the raw message content. Only
// transport-class failures are retried; schema and remote errors are
// not transient and surface immediately.
func (c *Client) Send(ctx context.Context, kind Kind, request openai.ChatCompletionRequest) (string, error) {
	client, ok := c.clients[kind]
	if !ok {
		return "", platformerrors.New(platformerrors.KindAnalysis, "send", "no client for kind "+string(kind))
	}

	var lastErr error
	attempts := c.config.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			c.logger.WarnTag("ANALYSIS",
				"transport failure, retrying in %s (attempt %d/%d): %v",
				delay, attempt+1, attempts, lastErr,
			)
			select {
			case <-ctx.Done():
				return "", &TransportError{Cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		response, err := client.CreateChatCompletion(ctx, request)
		if err != nil {
			lastErr = classify(err)
			var transport *TransportError
			if errors.As(lastErr, &transport) && ctx.Err() == nil {
				continue
			}
			return "", lastErr
		}

		if len(response.Choices) == 0 {
			return "", platformerrors.New(platformerrors.KindAnalysis, "send", "remote response contains no choices")
		}
		return response.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

// classify maps provider errors onto the pipeline's failure taxonomy:
// an HTTP error status becomes RemoteError, the absence of any
// response becomes TransportError.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &RemoteError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	return &TransportError{Cause: err}
}
