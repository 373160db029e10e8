// Package importer loads reference documents into the context store.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/valkyrie8787/llm-dictionary/internal/ragcontext"
)

// Importer replaces the stored context with the text of a document.
type Importer struct {
	store ragcontext.Store
	log   *slog.Logger
}

// New creates an Importer writing into store.
func New(store ragcontext.Store, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// ImportBytes stores the text of content as the active context and returns
// it. PDFs are converted to plain text; everything else is kept verbatim.
func (i *Importer) ImportBytes(ctx context.Context, filename string, content []byte) (string, error) {
	text := i.extractText(filename, content)
	if err := i.store.Set(ctx, text); err != nil {
		return "", fmt.Errorf("failed to store context: %w", err)
	}
	i.log.Info("context imported", "filename", filename, "bytes", len(content), "chars", len(text))
	return text, nil
}

// ImportFile reads path and imports it.
func (i *Importer) ImportFile(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return i.ImportBytes(ctx, filepath.Base(path), content)
}

func (i *Importer) extractText(filename string, content []byte) string {
	if IsPDF(filename) {
		text, err := extractPDF(content)
		if err != nil {
			i.log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	return string(content)
}

// IsPDF reports whether filename has a .pdf extension.
func IsPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
