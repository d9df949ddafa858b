package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edge-rag/internal/model"
)

func candidate(id string, score float32, text string) model.Candidate {
	return model.Candidate{ID: id, Namespace: "docs", Score: score, Text: text}
}

func TestRerankDropsBelowFloor(t *testing.T) {
	out := Rerank("abc", []model.Candidate{
		candidate("low", 0.5, "abc"),
		candidate("high", 0.9, "abc"),
	}, 0.7, 5)

	require.Len(t, out, 1)
	assert.Equal(t, "high", out[0].ID)
}

func TestRerankDropsZeroOverlap(t *testing.T) {
	out := Rerank("abc", []model.Candidate{
		candidate("related", 0.8, "a book about cats"),
		candidate("unrelated", 0.95, "xyz"),
	}, 0.7, 5)

	// "unrelated" clears the floor but shares no characters with the query.
	require.Len(t, out, 1)
	assert.Equal(t, "related", out[0].ID)
}

func TestRerankOrdersByCombinedScore(t *testing.T) {
	out := Rerank("abc", []model.Candidate{
		candidate("one-char", 0.9, "a"),     // combined 1.9
		candidate("all-chars", 0.75, "abc"), // combined 3.75
		candidate("two-chars", 0.8, "ab"),   // combined 2.8
	}, 0.7, 5)

	require.Len(t, out, 3)
	assert.Equal(t, "all-chars", out[0].ID)
	assert.Equal(t, "two-chars", out[1].ID)
	assert.Equal(t, "one-char", out[2].ID)
}

func TestRerankOverlapCountsDuplicates(t *testing.T) {
	out := Rerank("aab", []model.Candidate{candidate("c", 0.8, "ab")}, 0.7, 5)

	require.Len(t, out, 1)
	// Both 'a' occurrences in the query count.
	assert.Equal(t, 3, out[0].LexicalOverlap)
}

func TestRerankTruncates(t *testing.T) {
	in := make([]model.Candidate, 8)
	for i := range in {
		in[i] = candidate(string(rune('a'+i)), 0.8, "query text")
	}

	out := Rerank("query", in, 0.7, 5)
	assert.Len(t, out, 5)
}

func TestRerankEmptyInput(t *testing.T) {
	out := Rerank("abc", nil, 0.7, 5)
	assert.Empty(t, out)
}

func TestRerankStableForTies(t *testing.T) {
	out := Rerank("ab", []model.Candidate{
		candidate("first", 0.8, "ab"),
		candidate("second", 0.8, "ba"),
	}, 0.7, 5)

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
}

func TestRerankUnicodeQuery(t *testing.T) {
	out := Rerank("営業時間", []model.Candidate{
		candidate("jp", 0.9, "営業時間は9時から17時です"),
	}, 0.7, 5)

	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].LexicalOverlap)
}
