package analysis

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"glamai-server-go/internal/platform/config"
)

// Builder constructs the outbound multimodal chat request for an
// analysis kind. Build is pure: no network or state access, and
// identical inputs yield identical requests.
type Builder struct {
	model       string
	maxTokens   int
	temperature float32
}

// NewBuilder derives a builder from the analysis configuration.
func NewBuilder(cfg *config.AnalysisConfig) *Builder {
	return &Builder{
		model:       cfg.ModelName,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Build assembles the request: the kind's system instruction, the
// JSON-only user directive, and the image embedded as a jpeg data URI
// in the same user turn. The provider's structured-JSON response mode
// is requested as a best-effort hint; the parser stays defensive
// regardless.
func (b *Builder) Build(kind Kind, encodedImage string) (openai.ChatCompletionRequest, error) {
	profile, err := ProfileFor(kind)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	if encodedImage == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("encoded image payload is empty")
	}

	return openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: profile.SystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: profile.UserDirective,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", encodedImage),
						},
					},
				},
			},
		},
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}, nil
}
