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


package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/core"
)

// ocrRasterDPI renders pages at double the 72 DPI baseline before OCR, so
// small print survives recognition.
const ocrRasterDPI = 144

// PDFExtractor extracts text from PDF files page by page. Pages whose native
// text layer is empty are rasterized and sent through OCR.
type PDFExtractor struct {
	ocr    ai.OCRReader
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF extractor. The OCR reader handles scanned
// pages without a text layer; it may be nil, in which case such pages yield
// empty units.
func NewPDFExtractor(ocr ai.OCRReader) *PDFExtractor {
	return &PDFExtractor{
		ocr:    ocr,
		logger: slog.Default().With("component", "pdf-extractor"),
	}
}

// Kind reports the document type this extractor handles.
func (e *PDFExtractor) Kind() core.DocumentType {
	return core.DocumentTypePDF
}

// Extensions lists the file extensions this extractor claims.
func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns one unit per page, numbered from 1. A page falls back to
// OCR only when its native text is empty or whitespace.
func (e *PDFExtractor) Extract(ctx context.Context, path string) ([]core.Unit, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer doc.Close()

	name := filepath.Base(path)
	units := make([]core.Unit, 0, doc.NumPage())

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i+1, path, err)
		}

		ocrUsed := false
		if strings.TrimSpace(text) == "" && e.ocr != nil {
			e.logger.Debug("page has no text layer, falling back to OCR",
				"path", path, "page", i+1)

			text, err = e.ocrPage(ctx, doc, i)
			if err != nil {
				return nil, fmt.Errorf("ocr page %d of %s: %w", i+1, path, err)
			}
			ocrUsed = true
		}

		units = append(units, core.Unit{
			Text: text,
			Meta: core.ChunkMeta{
				Source: path,
				Type:   core.DocumentTypePDF,
				Name:   name,
				Page:   i + 1,
				OCR:    ocrUsed,
			},
		})
	}

	return units, nil
}

func (e *PDFExtractor) ocrPage(ctx context.Context, doc *fitz.Document, page int) (string, error) {
	img, err := doc.ImageDPI(page, ocrRasterDPI)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode raster: %w", err)
	}

	return e.ocr.ReadImage(ctx, buf.Bytes(), "image/png")
}
