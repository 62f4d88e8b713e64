package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/core"
)

// AudioExtractor produces transcripts of recorded speech.
type AudioExtractor struct {
	transcriber ai.Transcriber
}

// NewAudioExtractor creates an audio extractor backed by the given transcriber.
func NewAudioExtractor(transcriber ai.Transcriber) *AudioExtractor {
	return &AudioExtractor{transcriber: transcriber}
}

// Kind reports the document type this extractor handles.
func (e *AudioExtractor) Kind() core.DocumentType {
	return core.DocumentTypeAudio
}

// Extensions lists the file extensions this extractor claims.
func (e *AudioExtractor) Extensions() []string {
	return []string{".wav", ".mp3", ".m4a", ".ogg", ".flac"}
}

// Extract transcribes the file and returns a single unit stamped with the
// speech model that produced the transcript.
func (e *AudioExtractor) Extract(ctx context.Context, path string) ([]core.Unit, error) {
	text, err := e.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", path, err)
	}

	return []core.Unit{{
		Text: text,
		Meta: core.ChunkMeta{
			Source:       path,
			Type:         core.DocumentTypeAudio,
			Name:         filepath.Base(path),
			WhisperModel: e.transcriber.Model(),
		},
	}}, nil
}
