// Package ranking fuses lexical and semantic retrieval signals into one
// ranked candidate list.
//
// Each signal is a named Ranker variant with its own independent
// implementation; Hybrid composes the two rather than subclassing either.
package ranking

import (
	"sort"

	"aide/internal/lexical"
	"aide/internal/logging"
	"aide/internal/semantic"
)

// Result is a ranked candidate with its fused score and the raw
// per-signal breakdown.
type Result struct {
	Path     string  `json:"path"`
	Score    float64 `json:"score"`
	Lexical  float64 `json:"lexical"`  // normalized to [0,1] within the query
	Semantic float64 `json:"semantic"` // raw cosine similarity
}

// Ranker is the capability shared by all retrieval variants.
type Ranker interface {
	Search(query string, top int) []Result
}

// LexicalRanker ranks by literal term occurrence only.
type LexicalRanker struct {
	Index   *lexical.Index
	Include []string
	Exclude []string
}

// Search implements Ranker.
func (r *LexicalRanker) Search(query string, top int) []Result {
	ranked := r.Index.RankFiles(query, r.Include, r.Exclude, top)
	out := make([]Result, 0, len(ranked))
	maxScore := 0.0
	for _, c := range ranked {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	for _, c := range ranked {
		norm := 0.0
		if maxScore > 0 {
			norm = c.Score / maxScore
		}
		out = append(out, Result{Path: c.Path, Score: norm, Lexical: norm})
	}
	return out
}

// SemanticRanker ranks by embedding cosine similarity only.
type SemanticRanker struct {
	Index *semantic.Index
}

// Search implements Ranker.
func (r *SemanticRanker) Search(query string, top int) []Result {
	ranked := r.Index.Search(query, top)
	out := make([]Result, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, Result{Path: c.Path, Score: c.Score, Semantic: c.Score})
	}
	return out
}

// Hybrid fuses the lexical and semantic signals with a configurable
// weight alpha in [0,1]: combined = alpha*lexical + (1-alpha)*semantic.
type Hybrid struct {
	Lexical  *lexical.Index
	Semantic *semantic.Index
	Alpha    float64
	Include  []string
	Exclude  []string
	Logger   *logging.Logger
}

// Search implements Ranker. Candidate sets come from both signals
// independently; a file present in only one source scores 0 for the
// missing term. Lexical scores are normalized by the per-query maximum.
func (h *Hybrid) Search(query string, top int) []Result {
	if top <= 0 {
		return nil
	}
	alpha := h.Alpha
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	lexRanked := h.Lexical.RankFiles(query, h.Include, h.Exclude, top)
	semRanked := h.Semantic.Search(query, top)

	maxLex := 0.0
	for _, c := range lexRanked {
		if c.Score > maxLex {
			maxLex = c.Score
		}
	}

	union := make(map[string]*Result, len(lexRanked)+len(semRanked))
	for _, c := range lexRanked {
		norm := 0.0
		if maxLex > 0 {
			norm = c.Score / maxLex
		}
		union[c.Path] = &Result{Path: c.Path, Lexical: norm}
	}
	for _, c := range semRanked {
		r, ok := union[c.Path]
		if !ok {
			r = &Result{Path: c.Path}
			union[c.Path] = r
		}
		r.Semantic = c.Score
	}

	results := make([]Result, 0, len(union))
	for _, r := range union {
		r.Score = alpha*r.Lexical + (1-alpha)*r.Semantic
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if len(results) > top {
		results = results[:top]
	}

	if h.Logger != nil {
		h.Logger.Debug("Hybrid search completed", map[string]interface{}{
			"query":      query,
			"candidates": len(union),
			"returned":   len(results),
			"alpha":      alpha,
		})
	}
	return results
}
