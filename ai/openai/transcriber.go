package openai

import (
	"context"
	"log/slog"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/poiesic/docit/ai"
)

// Transcriber implements ai.Transcriber against a whisper-style audio
// transcription endpoint of an OpenAI-compatible service.
type Transcriber struct {
	client *goopenai.Client
	model  string
	logger *slog.Logger
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig("none")
	clientConfig.BaseURL = config.Host

	return &Transcriber{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  config.SpeechModel,
		logger: slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe produces a transcript of the audio file at path.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	t.logger.Debug("transcribing audio file", "path", path, "model", t.model)

	response, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: path,
	})
	if err != nil {
		t.logger.Error("transcription failed", "path", path, "err", err)
		return "", err
	}

	return strings.TrimSpace(response.Text), nil
}

// Model reports the speech model variant producing the transcripts.
func (t *Transcriber) Model() string {
	return t.model
}
