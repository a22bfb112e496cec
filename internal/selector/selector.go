// Package selector trims ranked retrieval candidates to a token budget.
package selector

import (
	"os"
	"path/filepath"

	"aide/internal/logging"
	"aide/internal/ranking"
)

// TokenEstimator estimates the language-model token cost of text. No
// exactness is promised, only monotonic-enough behavior to keep the
// selection under budget.
type TokenEstimator interface {
	Estimate(text string) int
}

// HeuristicEstimator approximates tokens as len/4, minimum 1 for
// non-empty text. Fast and tokenizer-free.
type HeuristicEstimator struct{}

// Estimate implements TokenEstimator.
func (HeuristicEstimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// ContextFile is one selected file with its relevance score.
type ContextFile struct {
	Path           string  `json:"path"`
	RelevanceScore float64 `json:"relevanceScore"`
	Tokens         int     `json:"tokens"`
}

// Selection is an ordered set of context files within a token budget.
// TotalTokens never exceeds the requested budget.
type Selection struct {
	Files       []ContextFile `json:"files"`
	TotalTokens int           `json:"totalTokens"`
	Budget      int           `json:"budget"`
}

// Selector walks ranked candidates in order and keeps whatever fits.
type Selector struct {
	root      string
	ranker    ranking.Ranker
	estimator TokenEstimator
	logger    *logging.Logger

	// candidateFactor controls how generous the initial candidate list
	// is relative to a rough files-per-budget guess.
	candidateFactor int
}

// New creates a context selector over a ranker. A nil estimator falls
// back to the heuristic default.
func New(root string, ranker ranking.Ranker, estimator TokenEstimator, logger *logging.Logger) *Selector {
	if estimator == nil {
		estimator = HeuristicEstimator{}
	}
	return &Selector{
		root:            root,
		ranker:          ranker,
		estimator:       estimator,
		logger:          logger,
		candidateFactor: 4,
	}
}

// SetCandidateFactor overrides how many candidates are requested per
// expected file. Values below 1 are ignored.
func (s *Selector) SetCandidateFactor(factor int) {
	if factor >= 1 {
		s.candidateFactor = factor
	}
}

// SelectContext returns the highest-ranked files whose cumulative
// estimated token cost stays within budget. Candidates that individually
// exceed the remaining budget are skipped, not terminal: the walk
// continues so smaller lower-ranked files can still fill the budget.
// File content is read only for estimation; callers re-read by path.
func (s *Selector) SelectContext(query string, budgetTokens int) Selection {
	sel := Selection{Budget: budgetTokens, Files: []ContextFile{}}
	if budgetTokens <= 0 {
		return sel
	}

	// A generous candidate list: assume an average file costs at least
	// ~50 tokens and over-fetch by candidateFactor.
	top := s.candidateFactor * (budgetTokens/50 + 1)
	if top < 20 {
		top = 20
	}

	for _, cand := range s.ranker.Search(query, top) {
		data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(cand.Path)))
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("Skipping unreadable candidate", map[string]interface{}{
					"path":  cand.Path,
					"error": err.Error(),
				})
			}
			continue
		}

		cost := s.estimator.Estimate(string(data))
		if sel.TotalTokens+cost > budgetTokens {
			continue // too big for what's left; keep walking
		}

		sel.Files = append(sel.Files, ContextFile{
			Path:           cand.Path,
			RelevanceScore: cand.Score,
			Tokens:         cost,
		})
		sel.TotalTokens += cost
	}

	if s.logger != nil {
		s.logger.Debug("Context selected", map[string]interface{}{
			"query":  query,
			"files":  len(sel.Files),
			"tokens": sel.TotalTokens,
			"budget": budgetTokens,
		})
	}
	return sel
}
