// Package extract turns uploaded files into plain text for ingestion.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type DocType string

const (
	PDF  DocType = "pdf"
	DOCX DocType = "docx"
	TEXT DocType = "text"
	ERR  DocType = ""
)

var errPageTimeout = errors.New("page extraction timed out")

type Extractor struct {
	maxBytes    int64
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func New(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = config.MaxUploadBytes
	}
	return &Extractor{
		maxBytes:    maxBytes,
		pageTimeout: config.PDFPageTimeout,
		logger:      logger_i.NewLogger("Extract"),
	}
}

func DocTypeOf(filename string) DocType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".txt", ".md":
		return TEXT
	default:
		return ERR
	}
}

// Extract validates the upload and returns its trimmed text content.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	const op = "extract"
	if filename == "" {
		return "", ragErrors.InvalidInput(op, "no filename provided")
	}
	docType := DocTypeOf(filename)
	if docType == ERR {
		return "", ragErrors.InvalidInput(op, "unsupported file type: %s", strings.ToLower(filepath.Ext(filename)))
	}
	if int64(len(content)) > e.maxBytes {
		return "", ragErrors.InvalidInput(op, "file too large, maximum size is %d bytes", e.maxBytes)
	}

	loggr := e.logger.FromContext(ctx)
	loggr.Debug("Extracting document", "filename", filename, "type", docType, "bytes", len(content))

	var text string
	var err error
	switch docType {
	case PDF:
		text, err = e.extractPDF(ctx, content)
	case DOCX:
		text, err = extractDocx(content)
	case TEXT:
		text, err = decodeText(content)
	}
	if err != nil {
		loggr.Error("Error extracting text", "filename", filename, "error", err)
		return "", ragErrors.EnsureKind(ragErrors.KindInvalidInput, op, fmt.Errorf("failed to extract text from %s: %w", docType, err))
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) extractPDF(ctx context.Context, content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := e.protectExtract(page)
		if err != nil {
			// one unreadable page should not lose the rest of the document
			e.logger.FromContext(ctx).Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (e *Extractor) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("pdf page panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(e.pageTimeout):
		return "", errPageTimeout
	}
}

// cat only reads from disk, so the upload is staged in a temp file.
func extractDocx(content []byte) (string, error) {
	f, err := os.CreateTemp("", config.ServiceName+"-*.docx")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	text, err := cat.File(f.Name())
	if err != nil {
		return "", fmt.Errorf("failed to extract docx: %w", err)
	}
	return text, nil
}

// Summary returns a preview of at most 500 characters built from whole sentences.
func Summary(content string) string {
	const maxLen = 500
	if len(content) <= maxLen {
		return content
	}
	var summary strings.Builder
	for _, sentence := range strings.Split(content, ".") {
		if summary.Len()+len(sentence) > maxLen {
			break
		}
		summary.WriteString(sentence)
		summary.WriteString(".")
	}
	return strings.TrimSpace(summary.String())
}
