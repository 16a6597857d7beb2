// Package chunker splits extracted document text into overlapping, word-aligned chunks.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/docvector/internal/domain/commonModels"
)

// approximate characters per word used to turn an overlap size into a word count
const charsPerOverlapWord = 5

type Config struct {
	ChunkSizeChars int
	OverlapChars   int
}

func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Chunk splits text on whitespace and packs words into chunks of at most
// ChunkSizeChars, counting each word as its rune length plus one separator. A single
// word longer than the limit becomes its own chunk and is never split.
//
// When a chunk closes, the next one starts with the last OverlapChars/5 words of
// the closed chunk, provided the closed chunk held more words than that.
func Chunk(text string, documentID string, cfg Config) []commonModels.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	overlapWords := cfg.OverlapChars / charsPerOverlapWord
	var chunks []commonModels.Chunk
	var buf []string
	bufLen := 0

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word) + 1
		if bufLen+wordLen > cfg.ChunkSizeChars && len(buf) > 0 {
			chunks = append(chunks, newChunk(buf, documentID, len(chunks)))

			var carried []string
			if overlapWords > 0 && len(buf) > overlapWords {
				carried = buf[len(buf)-overlapWords:]
			}
			next := make([]string, 0, len(carried)+1)
			next = append(next, carried...)
			buf = append(next, word)
			bufLen = measure(buf)
			continue
		}
		buf = append(buf, word)
		bufLen += wordLen
	}

	if len(buf) > 0 {
		chunks = append(chunks, newChunk(buf, documentID, len(chunks)))
	}
	return chunks
}

func measure(words []string) int {
	n := 0
	for _, w := range words {
		n += utf8.RuneCountInString(w) + 1
	}
	return n
}

func newChunk(words []string, documentID string, index int) commonModels.Chunk {
	content := strings.Join(words, " ")
	return commonModels.Chunk{
		ChunkID:    ChunkID(documentID, index),
		Content:    content,
		ChunkIndex: index,
		Metadata: map[string]any{
			commonModels.PayloadCharCount: utf8.RuneCountInString(content),
			commonModels.PayloadWordCount: len(words),
		},
	}
}
