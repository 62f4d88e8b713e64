package mock

import (
	"context"
	"fmt"
	"path/filepath"
)

// MockOCR is a test double for ai.OCRReader.
// It allows custom behavior injection via function fields.
type MockOCR struct {
	// ReadImageFunc is called by ReadImage if set.
	// If nil, returns a deterministic string derived from the image size.
	ReadImageFunc func(ctx context.Context, image []byte, mimeType string) (string, error)

	callCount int
}

// NewMockOCR creates a mock OCR reader with default deterministic behavior.
func NewMockOCR() *MockOCR {
	return &MockOCR{}
}

// ReadImage returns deterministic mock text for the image.
func (m *MockOCR) ReadImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	m.callCount++

	if m.ReadImageFunc != nil {
		return m.ReadImageFunc(ctx, image, mimeType)
	}

	if len(image) == 0 {
		return "", nil
	}
	return fmt.Sprintf("mock ocr text (%d bytes, %s)", len(image), mimeType), nil
}

// CallCount returns the number of times ReadImage was called.
func (m *MockOCR) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockOCR) Reset() {
	m.callCount = 0
	m.ReadImageFunc = nil
}

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, returns a deterministic string derived from the file name.
	TranscribeFunc func(ctx context.Context, path string) (string, error)

	// ModelName is reported by Model. Defaults to "mock-whisper".
	ModelName string

	callCount int
}

// NewMockTranscriber creates a mock transcriber with default deterministic
// behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{ModelName: "mock-whisper"}
}

// Transcribe returns deterministic mock transcript text for the file.
func (m *MockTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, path)
	}

	return fmt.Sprintf("mock transcript of %s", filepath.Base(path)), nil
}

// Model reports the mock speech model name.
func (m *MockTranscriber) Model() string {
	if m.ModelName == "" {
		return "mock-whisper"
	}
	return m.ModelName
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockTranscriber) Reset() {
	m.callCount = 0
	m.TranscribeFunc = nil
}

// MockAnswerer is a test double for ai.Answerer.
// It allows custom behavior injection via function fields.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, returns a deterministic string echoing the question.
	AnswerFunc func(ctx context.Context, question, contextBlock string) (string, error)

	callCount int

	lastQuestion string
	lastContext  string
}

// NewMockAnswerer creates a mock answerer with default deterministic behavior.
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// Answer returns a deterministic mock answer and records the inputs for
// assertions.
func (m *MockAnswerer) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	m.callCount++
	m.lastQuestion = question
	m.lastContext = contextBlock

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, contextBlock)
	}

	return fmt.Sprintf("mock answer to: %s", question), nil
}

// CallCount returns the number of times Answer was called.
func (m *MockAnswerer) CallCount() int {
	return m.callCount
}

// LastQuestion returns the question from the most recent Answer call.
func (m *MockAnswerer) LastQuestion() string {
	return m.lastQuestion
}

// LastContext returns the context block from the most recent Answer call.
func (m *MockAnswerer) LastContext() string {
	return m.lastContext
}

// Reset clears the call count, recorded inputs and injected behavior.
func (m *MockAnswerer) Reset() {
	m.callCount = 0
	m.lastQuestion = ""
	m.lastContext = ""
	m.AnswerFunc = nil
}
