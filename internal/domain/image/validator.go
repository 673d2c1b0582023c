package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"glamai-server-go/internal/platform/config"
	"glamai-server-go/internal/platform/logging"
)

// Validator performs layered checks against incoming image payloads
// before they are handed to the remote analysis endpoint.
type Validator struct {
	config *config.ImageConfig
	logger *logging.Logger
}

func NewValidator(cfg *config.ImageConfig, logger *logging.Logger) *Validator {
	return &Validator{
		config: cfg,
		logger: logger,
	}
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"jpg":  {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
	"bmp":  {0x42, 0x4D},
}

// Validate inspects raw bytes: size cap, declared-format allowlist,
// decodability, and dimension limits. On success the result carries
// the detected format and pixel dimensions.
func (v *Validator) Validate(raw []byte, declaredFormat string) ValidationResult {
	result := ValidationResult{IsValid: false}

	if len(raw) == 0 {
		result.Error = fmt.Errorf("empty image payload")
		return result
	}

	if int64(len(raw)) > v.config.MaxFileSize {
		result.Error = fmt.Errorf(
			"file size exceeds limit: %d bytes (max %d bytes)",
			len(raw),
			v.config.MaxFileSize,
		)
		result.Risk = "file too large"
		v.logger.WarnTag("IMAGE",
			"oversized payload rejected: size=%d max_size=%d format=%s",
			len(raw), v.config.MaxFileSize, declaredFormat,
		)
		return result
	}

	if declaredFormat != "" && !v.isFormatAllowed(declaredFormat) {
		result.Error = fmt.Errorf("unsupported format: %s", declaredFormat)
		result.Risk = "unapproved format"
		return result
	}

	decoded := v.validateDecoding(raw, declaredFormat)
	if !decoded.IsValid {
		if declaredFormat != "" && !v.matchesSignature(raw, declaredFormat) {
			header := fmt.Sprintf("%x", raw[:min(len(raw), 16)])
			v.logger.WarnTag("IMAGE",
				"file signature mismatch: declared_format=%s actual_header=%s",
				declaredFormat, header,
			)
		}
		return decoded
	}

	decoded.FileSize = int64(len(raw))
	return decoded
}

func (v *Validator) isFormatAllowed(format string) bool {
	allowed := v.config.AllowedFormats
	if len(allowed) == 0 {
		allowed = []string{"jpeg", "jpg", "png", "webp", "gif", "bmp"}
	}

	format = strings.ToLower(format)
	for _, candidate := range allowed {
		if strings.ToLower(candidate) == format {
			return true
		}
	}
	return false
}

func (v *Validator) matchesSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[strings.ToLower(format)]
	if !ok || len(signature) == 0 {
		return true
	}
	if len(raw) < len(signature) {
		return false
	}
	return bytes.Equal(signature, raw[:len(signature)])
}

func (v *Validator) validateDecoding(raw []byte, format string) ValidationResult {
	result := ValidationResult{Format: format}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		result.Error = fmt.Errorf("decode image config: %w", err)
		result.Risk = "corrupted image data"
		return result
	}

	if actualFormat != "" {
		result.Format = actualFormat
	}

	if cfg.Width > v.config.MaxWidth || cfg.Height > v.config.MaxHeight {
		result.Error = fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
			cfg.Width, cfg.Height, v.config.MaxWidth, v.config.MaxHeight)
		result.Risk = "dimensions too large"
		return result
	}

	totalPixels := int64(cfg.Width) * int64(cfg.Height)
	if v.config.MaxPixels > 0 && totalPixels > v.config.MaxPixels {
		result.Error = fmt.Errorf("pixel count exceeds limit: %d (max %d)", totalPixels, v.config.MaxPixels)
		result.Risk = "pixel count too high"
		return result
	}

	result.IsValid = true
	result.Width = cfg.Width
	result.Height = cfg.Height

	v.logger.DebugTag("IMAGE",
		"validation success: format=%s width=%d height=%d size=%d",
		result.Format, result.Width, result.Height, len(raw),
	)

	return result
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
