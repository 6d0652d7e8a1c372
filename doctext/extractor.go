// Copyright 2025 Lekodex Labs
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

// Package doctext converts binary regulatory documents into plain text
// suitable for fact extraction.
package doctext

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// Extractor converts one binary document payload into plain text.
type Extractor interface {
	// ExtractText returns the document's textual content.
	// An empty string with no error means the document carried no
	// extractable text.
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PDFExtractor extracts text from PDF payloads page by page.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		logger: slog.Default().With("component", "doctext"),
	}
}

// ExtractText loads the PDF and concatenates the text of all pages.
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))

	pages, err := loader.Load(ctx)
	if err != nil {
		e.logger.Error("failed to load pdf", "size", len(data), "err", err)
		return "", err
	}

	var b strings.Builder
	for _, page := range pages {
		if page.PageContent == "" {
			continue
		}
		b.WriteString(page.PageContent)
		b.WriteString("\n")
	}

	text := b.String()
	e.logger.Debug("extracted pdf text", "pages", len(pages), "chars", len(text))
	return text, nil
}

// PlainExtractor treats the payload as UTF-8 text as-is.
type PlainExtractor struct{}

// NewPlainExtractor creates a plain text pass-through extractor.
func NewPlainExtractor() *PlainExtractor {
	return &PlainExtractor{}
}

// ExtractText returns the payload unchanged.
func (e *PlainExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return string(data), nil
}

// ForContent picks an extractor by sniffing the payload: PDF documents by
// their magic header, anything else as plain text.
func ForContent(data []byte) Extractor {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return NewPDFExtractor()
	}
	return NewPlainExtractor()
}
