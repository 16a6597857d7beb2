package rag

import (
	"strings"
	"time"

	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
)

// upper bound on texts per /embeddings call
const maxEmbedTexts = 256

func captureStep(label string, start time.Time) {
	metrics.CaptureExecutionMetrics(label, time.Since(start))
}

func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return ragErrors.InvalidInput("embed_text", "texts must not be empty")
	}
	if len(texts) > maxEmbedTexts {
		return ragErrors.InvalidInput("embed_text", "at most %d texts per call, got %d", maxEmbedTexts, len(texts))
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return ragErrors.InvalidInput("embed_text", "text %d is empty", i)
		}
	}
	return nil
}
