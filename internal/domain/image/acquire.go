package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
)

// ErrCancelled marks an acquisition the caller abandoned. It is a
// silent no-op for presentation purposes, never an alert.
var ErrCancelled = errors.New("image acquisition cancelled")

// ErrPermissionDenied marks a source the caller may not read, such as
// a remote image behind authentication.
var ErrPermissionDenied = errors.New("image source permission denied")

// Adapter obtains an image from one of the supported sources and
// normalizes it into a CapturedImage. A successful acquisition is the
// caller's cue to discard any previously held result.
type Adapter struct {
	pipeline   *Pipeline
	httpClient *http.Client
	config     *config.ImageConfig
	logger     *logging.Logger
}

// NewAdapter wires an acquisition adapter over the streaming pipeline.
func NewAdapter(cfg *config.ImageConfig, logger *logging.Logger) (*Adapter, error) {
	pipeline, err := NewPipeline(Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Adapter{
		pipeline:   pipeline,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		config:     cfg,
		logger:     logger,
	}, nil
}

// Acquire normalizes the source into a CapturedImage. Context
// cancellation maps to ErrCancelled; every other failure is an
// acquisition error carrying the underlying message.
func (a *Adapter) Acquire(ctx context.Context, src Source) (*CapturedImage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	captured, err := a.acquire(ctx, src)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled) {
			return nil, ErrCancelled
		}
		return nil, platformerrors.Wrap(platformerrors.KindImage, "acquire", "failed to acquire image", err)
	}

	if captured.Base64 == "" {
		return nil, platformerrors.New(platformerrors.KindImage, "acquire", "empty encoded payload")
	}

	return captured, nil
}

func (a *Adapter) acquire(ctx context.Context, src Source) (*CapturedImage, error) {
	var (
		reader io.ReadCloser
		format = src.DeclaredFormat
		label  string
		err    error
	)

	switch {
	case src.Reader != nil:
		label = "upload"
		reader = io.NopCloser(src.Reader)
	case src.Inline != "":
		label = "inline"
		payload, inlineFormat := StripDataURI(src.Inline)
		if inlineFormat != "" {
			format = inlineFormat
		}
		reader = io.NopCloser(base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload)))
	case src.URL != "":
		label = src.URL
		reader, format, err = a.download(ctx, src.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("missing image source")
	}
	defer reader.Close()

	output, err := a.pipeline.Process(ctx, Input{
		Reader:         reader,
		DeclaredFormat: format,
		Source:         label,
	})
	if err != nil {
		return nil, err
	}

	return &CapturedImage{
		URI:    src.URI,
		Base64: output.Base64,
		Bytes:  output.Bytes,
		Format: output.Format,
		Width:  output.Validation.Width,
		Height: output.Validation.Height,
		Size:   int64(len(output.Bytes)),
	}, nil
}

func (a *Adapter) download(ctx context.Context, url string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "GlamAI-Server/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: %s", ErrPermissionDenied, resp.Status)
	default:
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isImageContentType(contentType) {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unsupported content-type: %s", contentType)
	}

	if resp.ContentLength > 0 && a.config.MaxFileSize > 0 && resp.ContentLength > a.config.MaxFileSize {
		resp.Body.Close()
		return nil, "", fmt.Errorf("remote image exceeds max size: %d", resp.ContentLength)
	}

	return resp.Body, formatFromContentType(contentType), nil
}

// StripDataURI removes a data:image/...;base64, prefix if present and
// reports the format named by the prefix.
func StripDataURI(payload string) (string, string) {
	if !strings.HasPrefix(payload, "data:") {
		return payload, ""
	}

	comma := strings.Index(payload, ",")
	if comma < 0 {
		return payload, ""
	}

	header := payload[:comma]
	format := ""
	if rest, ok := strings.CutPrefix(header, "data:image/"); ok {
		if semi := strings.Index(rest, ";"); semi > 0 {
			format = strings.ToLower(rest[:semi])
		}
	}

	return payload[comma+1:], format
}

func isImageContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	lower := strings.ToLower(contentType)
	valid := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
	}

	for _, candidate := range valid {
		if strings.Contains(lower, candidate) {
			return true
		}
	}
	return false
}

func formatFromContentType(contentType string) string {
	lower := strings.ToLower(contentType)
	switch {
	case strings.Contains(lower, "jpeg"), strings.Contains(lower, "jpg"):
		return "jpeg"
	case strings.Contains(lower, "png"):
		return "png"
	case strings.Contains(lower, "gif"):
		return "gif"
	case strings.Contains(lower, "webp"):
		return "webp"
	case strings.Contains(lower, "bmp"):
		return "bmp"
	default:
		return ""
	}
}
