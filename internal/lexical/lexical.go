// Package lexical scores workspace files by literal term occurrence.
//
// Ranking is intentionally simple: the score of a file is the sum of
// whole-word, case-insensitive occurrence counts of each query term. No
// document-frequency weighting is applied; the hybrid ranker normalizes
// scores before fusing them with the semantic signal.
package lexical

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"aide/internal/logging"
	"aide/internal/paths"
)

// Result is a single ranked file.
type Result struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Index ranks files under a workspace root by literal term counts.
// Files are scanned on demand; nothing is persisted.
type Index struct {
	root   string
	walk   paths.WalkOptions
	logger *logging.Logger
}

// NewIndex creates a lexical index over the given workspace root.
func NewIndex(root string, walk paths.WalkOptions, logger *logging.Logger) *Index {
	return &Index{root: root, walk: walk, logger: logger}
}

// RankFiles scores every file matching include minus exclude globs against
// the whitespace-delimited terms of query and returns the top highest
// scoring files. Ties break by path in ascending order. Files that cannot
// be read as text are skipped. A query with no hits yields an empty slice.
func (ix *Index) RankFiles(query string, include, exclude []string, top int) []Result {
	terms := splitTerms(query)
	if len(terms) == 0 || top <= 0 {
		return nil
	}

	var results []Result
	for _, rel := range paths.ListTextFiles(ix.root, ix.walk) {
		if !paths.MatchAny(include, rel) {
			continue
		}
		if len(exclude) > 0 && paths.MatchAny(exclude, rel) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(ix.root, filepath.FromSlash(rel)))
		if err != nil {
			if ix.logger != nil {
				ix.logger.Debug("Skipping unreadable file", map[string]interface{}{
					"path":  rel,
					"error": err.Error(),
				})
			}
			continue
		}

		score := scoreTerms(string(data), terms)
		if score > 0 {
			results = append(results, Result{Path: rel, Score: score})
		}
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
	return results
}

// CountOccurrences returns the whole-word, case-insensitive count of term
// in text. Exposed for the rename engine's change statistics.
func CountOccurrences(text, term string) int {
	return countWord(strings.ToLower(text), strings.ToLower(term))
}

func splitTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.ToLower(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func scoreTerms(text string, terms []string) float64 {
	lower := strings.ToLower(text)
	total := 0
	for _, term := range terms {
		total += countWord(lower, term)
	}
	return float64(total)
}

// countWord counts whole-word occurrences of term in text. Both arguments
// must already be lowercased. A word boundary is any rune that is not a
// letter, digit or underscore.
func countWord(text, term string) int {
	if term == "" {
		return 0
	}
	count := 0
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return count
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
		}
		offset = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
