package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"hyphenated", "data/papers/uhde-2018.pdf", "Uhde 2018"},
		{"underscores", "/x/oocyte_maturation_review.pdf", "Oocyte Maturation Review"},
		{"mixed case", "BOVINE-Oocytes.PDF", "Bovine Oocytes"},
		{"repeated separators", "a__b--c.pdf", "A B C"},
		{"no extension", "notes", "Notes"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleFromPath(tt.path))
		})
	}
}

func TestDocument_Text(t *testing.T) {
	doc := Document{
		Pages: []Page{
			{Number: 1, Text: "first"},
			{Number: 2, Text: "second"},
		},
	}

	assert.Equal(t, "first\n\nsecond", doc.Text())
	assert.Empty(t, Document{}.Text())
}

func TestRetrievedSet_Chunks(t *testing.T) {
	set := RetrievedSet{
		{Chunk: Chunk{ID: "a"}, Score: 0.9, Rank: 1},
		{Chunk: Chunk{ID: "b"}, Score: 0.5, Rank: 2},
	}

	chunks := set.Chunks()
	assert.Len(t, chunks, 2)
	assert.Equal(t, "a", chunks[0].ID)
	assert.Equal(t, "b", chunks[1].ID)
}

func TestAnswerResult_Degraded(t *testing.T) {
	assert.False(t, AnswerResult{Answer: "ok"}.Degraded())
	assert.True(t, AnswerResult{Answer: "sorry", Err: ErrProvider}.Degraded())
}

func TestFiniteVector(t *testing.T) {
	assert.True(t, FiniteVector(nil))
	assert.True(t, FiniteVector([]float32{0, -1.5, 3e38}))
	assert.False(t, FiniteVector([]float32{1, float32(math.NaN())}))
	assert.False(t, FiniteVector([]float32{float32(math.Inf(1))}))
	assert.False(t, FiniteVector([]float32{float32(math.Inf(-1)), 0}))
}
