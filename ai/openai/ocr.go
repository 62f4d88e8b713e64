package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OCRReader implements ai.OCRReader by asking a vision-capable chat model to
// transcribe the text visible in an image.
type OCRReader struct {
	client    llms.Model
	languages []string
	logger    *slog.Logger
}

// newOCRReader is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOCRReader(config *ai.Config) (*OCRReader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &OCRReader{
		client:    client,
		languages: config.OCRLanguages,
		logger:    slog.Default().With("component", "openai-ocr"),
	}, nil
}

// NewOCRReader creates a new OCR reader using the provided configuration.
//
// Returns ai.OCRReader interface to enforce abstraction.
func NewOCRReader(config *ai.Config) (ai.OCRReader, error) {
	return newOCRReader(config)
}

// ReadImage extracts the text visible in the encoded image.
func (o *OCRReader) ReadImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	o.logger.Debug("running OCR over image", "bytes", len(image), "mimeType", mimeType)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildOCRPrompt(o.languages)),
				llms.BinaryPart(mimeType, image),
			},
		},
	}

	response, err := o.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		o.logger.Error("OCR call failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
