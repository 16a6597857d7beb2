package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		expected DocType
	}{
		{"report.pdf", PDF},
		{"REPORT.PDF", PDF},
		{"notes.DOCX", DOCX},
		{"notes.txt", TEXT},
		{"README.md", TEXT},
		{"image.png", ERR},
		{"archive", ERR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DocTypeOf(tt.name))
		})
	}
}

func TestExtract_RejectsInvalidUploads(t *testing.T) {
	e := New(16)
	ctx := context.Background()

	_, err := e.Extract(ctx, "", []byte("x"))
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)

	_, err = e.Extract(ctx, "photo.png", []byte("x"))
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), ".png")

	_, err = e.Extract(ctx, "big.txt", []byte(strings.Repeat("a", 17)))
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)
}

func TestExtract_PlainTextIsTrimmed(t *testing.T) {
	text, err := New(0).Extract(context.Background(), "notes.md", []byte("\n  # Title\nbody text  \n"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody text", text)
}

func TestExtract_CorruptDocumentsAreInvalidInput(t *testing.T) {
	e := New(0)
	_, err := e.Extract(context.Background(), "broken.pdf", []byte("not a pdf at all"))
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)

	_, err = e.Extract(context.Background(), "broken.docx", []byte("not a zip archive"))
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)
}

func TestDecodeText(t *testing.T) {
	t.Run("utf8", func(t *testing.T) {
		text, err := decodeText([]byte("naïve café"))
		require.NoError(t, err)
		assert.Equal(t, "naïve café", text)
	})

	t.Run("utf16 with bom", func(t *testing.T) {
		// "hi" little endian with BOM
		text, err := decodeText([]byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00})
		require.NoError(t, err)
		assert.Equal(t, "hi", text)
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		text, err := decodeText([]byte{'c', 'a', 'f', 0xE9})
		require.NoError(t, err)
		assert.Equal(t, "café", text)
	})
}

func TestSummary(t *testing.T) {
	short := "A short document."
	assert.Equal(t, short, Summary(short))

	sentence := strings.Repeat("word ", 19) + "end" // 98 chars
	long := strings.Repeat(sentence+".", 8)
	summary := Summary(long)

	assert.LessOrEqual(t, len(summary), 500)
	assert.True(t, strings.HasSuffix(summary, "."))
	assert.Equal(t, 5, strings.Count(summary, "."))
}
