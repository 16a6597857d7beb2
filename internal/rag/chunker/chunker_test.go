package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultCfg = Config{ChunkSizeChars: 1000, OverlapChars: 200}

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%04d", i)
	}
	return out
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Empty(t, Chunk("", "doc", defaultCfg))
	assert.Empty(t, Chunk(" \n\t  ", "doc", defaultCfg))
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("  hello   brave\nnew world ", "doc-1", defaultCfg)

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "doc-1_chunk_0", c.ChunkID)
	assert.Equal(t, 0, c.ChunkIndex)
	assert.Equal(t, "hello brave new world", c.Content)
	assert.Equal(t, len("hello brave new world"), c.Metadata[commonModels.PayloadCharCount])
	assert.Equal(t, 4, c.Metadata[commonModels.PayloadWordCount])
}

func TestChunk_SixHundredWords(t *testing.T) {
	input := words(600)
	chunks := Chunk(strings.Join(input, " "), "doc", defaultCfg)

	// 166 five-char words fill 996 of 1000 chars; each later chunk re-carries 40 words
	require.Len(t, chunks, 5)
	wantStarts := []int{0, 126, 252, 378, 504}
	wantCounts := []int{166, 166, 166, 166, 96}
	for i, c := range chunks {
		got := strings.Fields(c.Content)
		assert.Len(t, got, wantCounts[i], "chunk %d", i)
		assert.Equal(t, input[wantStarts[i]], got[0], "chunk %d", i)
		assert.LessOrEqual(t, len(c.Content), 1000)
	}

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		next := strings.Fields(chunks[i].Content)
		assert.Equal(t, prev[len(prev)-40:], next[:40], "boundary %d", i)
	}
}

func TestChunk_IndicesContiguousAndWordsReconstruct(t *testing.T) {
	cfgs := []Config{
		{ChunkSizeChars: 1000, OverlapChars: 200},
		{ChunkSizeChars: 120, OverlapChars: 30},
		{ChunkSizeChars: 50, OverlapChars: 0},
	}
	input := words(437)

	for _, cfg := range cfgs {
		t.Run(fmt.Sprintf("size=%d,overlap=%d", cfg.ChunkSizeChars, cfg.OverlapChars), func(t *testing.T) {
			chunks := Chunk(strings.Join(input, " "), "d", cfg)
			require.NotEmpty(t, chunks)

			var rebuilt []string
			for i, c := range chunks {
				assert.Equal(t, i, c.ChunkIndex)
				assert.Equal(t, ChunkID("d", i), c.ChunkID)
				assert.NotEmpty(t, c.Content)

				got := strings.Fields(c.Content)
				if i > 0 {
					got = got[overlapLen(rebuilt, got):]
				}
				rebuilt = append(rebuilt, got...)
			}
			assert.Equal(t, input, rebuilt)
		})
	}
}

// overlapLen finds how many leading words of next repeat the tail of prev.
func overlapLen(prev, next []string) int {
	for k := len(next) - 1; k > 0; k-- {
		if k > len(prev) {
			continue
		}
		match := true
		for j := 0; j < k; j++ {
			if prev[len(prev)-k+j] != next[j] {
				match = false
				break
			}
		}
		if match {
			return k
		}
	}
	return 0
}

func TestChunk_OverlapCarry(t *testing.T) {
	chunks := Chunk("aa bb cc dd ee ff", "d", Config{ChunkSizeChars: 15, OverlapChars: 5})

	require.Len(t, chunks, 2)
	assert.Equal(t, "aa bb cc dd ee", chunks[0].Content)
	assert.Equal(t, "ee ff", chunks[1].Content)
}

func TestChunk_NoCarryWhenBufferNotLargerThanOverlap(t *testing.T) {
	// overlap of 10 chars means 2 words; a closed chunk of exactly 2 words carries nothing
	chunks := Chunk("aaaa bbbb cccc", "d", Config{ChunkSizeChars: 12, OverlapChars: 10})

	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa bbbb", chunks[0].Content)
	assert.Equal(t, "cccc", chunks[1].Content)
}

func TestChunk_OversizedWordNotSplit(t *testing.T) {
	long := strings.Repeat("x", 40)
	chunks := Chunk("a "+long+" b", "d", Config{ChunkSizeChars: 10, OverlapChars: 0})

	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Content)
	assert.Equal(t, long, chunks[1].Content)
	assert.Equal(t, "b", chunks[2].Content)
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Join(words(321), "  ")
	assert.Equal(t, Chunk(text, "d", defaultCfg), Chunk(text, "d", defaultCfg))
}

func TestChunk_CountsCharactersNotBytes(t *testing.T) {
	cyrillic := strings.TrimSpace(strings.Repeat("мама ", 10))
	chunks := Chunk(cyrillic, "doc", Config{ChunkSizeChars: 60})

	require.Len(t, chunks, 1)
	assert.Equal(t, 49, chunks[0].Metadata[commonModels.PayloadCharCount])
	assert.Equal(t, 10, chunks[0].Metadata[commonModels.PayloadWordCount])

	cjk := strings.TrimSpace(strings.Repeat("日本語テキスト ", 6))
	chunks = Chunk(cjk, "doc", Config{ChunkSizeChars: 16})

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, "日本語テキスト 日本語テキスト", c.Content, "chunk %d", i)
		assert.Equal(t, 15, c.Metadata[commonModels.PayloadCharCount], "chunk %d", i)
	}
}
