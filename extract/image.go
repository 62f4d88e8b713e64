package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/core"
)

var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// ImageExtractor extracts text from standalone image files via OCR.
type ImageExtractor struct {
	ocr ai.OCRReader
}

// NewImageExtractor creates an image extractor backed by the given OCR reader.
func NewImageExtractor(ocr ai.OCRReader) *ImageExtractor {
	return &ImageExtractor{ocr: ocr}
}

// Kind reports the document type this extractor handles.
func (e *ImageExtractor) Kind() core.DocumentType {
	return core.DocumentTypeImage
}

// Extensions lists the file extensions this extractor claims.
func (e *ImageExtractor) Extensions() []string {
	exts := make([]string, 0, len(imageMimeTypes))
	for ext := range imageMimeTypes {
		exts = append(exts, ext)
	}
	return exts
}

// Extract OCRs the whole image and returns a single unit. An image with no
// readable text yields one unit with empty text.
func (e *ImageExtractor) Extract(ctx context.Context, path string) ([]core.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}

	mimeType, ok := imageMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mimeType = "application/octet-stream"
	}

	text, err := e.ocr.ReadImage(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("ocr image %s: %w", path, err)
	}

	return []core.Unit{{
		Text: text,
		Meta: core.ChunkMeta{
			Source: path,
			Type:   core.DocumentTypeImage,
			Name:   filepath.Base(path),
			OCR:    true,
		},
	}}, nil
}
