package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"glamai-server-go/internal/platform/config"
	"glamai-server-go/internal/platform/logging"
)

// Pipeline streams ingestion, validation and base64 encoding of image
// payloads in a single pass.
type Pipeline struct {
	validator *Validator
	logger    *logging.Logger
	config    *config.ImageConfig
}

// Options configures the pipeline behaviour.
type Options struct {
	Config *config.ImageConfig
	Logger *logging.Logger
}

// Input describes a streaming image payload.
type Input struct {
	Reader         io.Reader
	DeclaredFormat string
	Source         string
}

// Output contains the sanitised artefacts produced by the pipeline.
type Output struct {
	Base64     string
	Bytes      []byte
	Format     string
	Validation ValidationResult
}

// NewPipeline constructs a streaming image pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("image config is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Pipeline{
		validator: NewValidator(opts.Config, opts.Logger),
		logger:    opts.Logger,
		config:    opts.Config,
	}, nil
}

// Process streams the input through validation and base64 encoding.
func (p *Pipeline) Process(ctx context.Context, input Input) (*Output, error) {
	if input.Reader == nil {
		return nil, fmt.Errorf("image reader is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxSize := p.config.MaxFileSize
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}

	limited := &io.LimitedReader{
		R: input.Reader,
		N: maxSize + 1,
	}

	rawBuf := bytes.NewBuffer(make([]byte, 0, 32*1024))
	base64Buf := bytes.NewBuffer(make([]byte, 0, 64*1024))

	encoder := base64.NewEncoder(base64.StdEncoding, base64Buf)
	writer := io.MultiWriter(rawBuf, encoder)

	if _, err := io.Copy(writer, limited); err != nil {
		return nil, fmt.Errorf("stream image bytes: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("finalise base64 encoding: %w", err)
	}

	if limited.N <= 0 {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", maxSize)
	}

	rawBytes := rawBuf.Bytes()
	validation := p.validator.Validate(rawBytes, input.DeclaredFormat)
	if !validation.IsValid {
		if validation.Error != nil {
			return nil, validation.Error
		}
		return nil, fmt.Errorf("image validation failed")
	}

	sanitised := make([]byte, len(rawBytes))
	copy(sanitised, rawBytes)

	return &Output{
		Base64:     base64Buf.String(),
		Bytes:      sanitised,
		Format:     validation.Format,
		Validation: validation,
	}, nil
}
