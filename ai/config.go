// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers. All model identities
// are fixed at process start; there is no runtime reconfiguration.
type Config struct {
	// Host is the base URL of the OpenAI-compatible service.
	// Example: "http://localhost:11434/v1" for a local Ollama server.
	Host string

	// EmbeddingModel is the model identifier used for text embeddings.
	// It must match between index build time and query time.
	EmbeddingModel string

	// LLMModel is the chat model identifier used for answering and for
	// vision-based OCR.
	LLMModel string

	// SpeechModel is the speech-to-text model variant, e.g. "whisper-1" or a
	// whisper.cpp size such as "base".
	SpeechModel string

	// OCRLanguages hints which languages the OCR step should expect.
	// Default: Spanish, Portuguese and English.
	OCRLanguages []string

	// CallTimeout bounds individual embedding, OCR, transcription and
	// language-model calls. Default: 120s.
	CallTimeout time.Duration

	// MaxRetries is the number of attempts for transient backend failures.
	// Default: 3.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff. Default: 1s.
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the backend service base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithLLMModel sets the chat model identifier.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// WithSpeechModel sets the speech-to-text model variant.
func WithSpeechModel(model string) ConfigOption {
	return func(c *Config) {
		c.SpeechModel = model
	}
}

// WithOCRLanguages sets the OCR language hints.
func WithOCRLanguages(langs ...string) ConfigOption {
	return func(c *Config) {
		if len(langs) > 0 {
			c.OCRLanguages = langs
		}
	}
}

// WithCallTimeout bounds individual backend calls.
func WithCallTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.CallTimeout = d
		}
	}
}

// WithRetry sets the retry attempt count and base backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		if maxRetries > 0 {
			c.MaxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.RetryDelay = baseDelay
		}
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		LLMModel:       "qwen2.5:3b",
		SpeechModel:    "base",
		OCRLanguages:   []string{"spa", "por", "eng"},
		CallTimeout:    120 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in canonical form. It adds the /v1
// suffix to the host if missing, which is required by most OpenAI-compatible
// APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.LLMModel == "" {
		return errors.New("ai config: LLMModel is required")
	}
	if c.SpeechModel == "" {
		return errors.New("ai config: SpeechModel is required")
	}
	if c.CallTimeout <= 0 {
		return errors.New("ai config: CallTimeout must be positive")
	}
	if c.MaxRetries < 1 {
		return errors.New("ai config: MaxRetries must be at least 1")
	}
	return nil
}
