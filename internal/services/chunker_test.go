package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInput(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("A short role description.", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short role description.", chunks[0])
}

func TestChunkTextSplitsParagraphs(t *testing.T) {
	chunker := NewTextChunker()

	var paragraphs []string
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 50))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := chunker.ChunkText(text, 500, 0)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 600)
	}
}

func TestChunkTextOversizedParagraph(t *testing.T) {
	chunker := NewTextChunker()

	text := strings.Repeat("This is a sentence about screening. ", 100)
	chunks := chunker.ChunkText(text, 400, 50)
	require.Greater(t, len(chunks), 1)
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker()
	assert.Empty(t, chunker.ChunkText("", 1000, 200))
	assert.Empty(t, chunker.ChunkText("\n\n  \n\n", 1000, 200))
}
