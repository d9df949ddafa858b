// Package biz contains the business logic of the edge-rag service.
package biz

import (
	"sort"
	"strings"

	"github.com/kart-io/edge-rag/internal/model"
)

// Rerank filters and reorders search candidates for prompt construction.
//
// Candidates below the similarity floor are dropped first. The survivors
// are scored by lexical overlap: every character of the query counts once
// per occurrence in the query if it appears anywhere in the candidate text,
// so repeated characters weigh more. Candidates are sorted by similarity
// plus overlap, candidates with zero overlap are discarded, and at most
// limit results are returned.
func Rerank(query string, candidates []model.Candidate, floor float32, limit int) []model.RankedCandidate {
	ranked := make([]model.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < floor {
			continue
		}
		ranked = append(ranked, model.RankedCandidate{
			Candidate:      c,
			LexicalOverlap: lexicalOverlap(query, c.Text),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore() > ranked[j].CombinedScore()
	})

	kept := ranked[:0]
	for _, r := range ranked {
		if r.LexicalOverlap > 0 {
			kept = append(kept, r)
		}
	}

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// lexicalOverlap counts the query characters that occur in text. Duplicate
// query characters count every time.
func lexicalOverlap(query, text string) int {
	overlap := 0
	for _, r := range query {
		if strings.ContainsRune(text, r) {
			overlap++
		}
	}
	return overlap
}
