package selector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aide/internal/embedding"
	"aide/internal/lexical"
	"aide/internal/paths"
	"aide/internal/ranking"
	"aide/internal/semantic"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newSelector(t *testing.T, root string) *Selector {
	t.Helper()
	lex := lexical.NewIndex(root, paths.WalkOptions{}, nil)
	sem := semantic.NewIndex(root, embedding.NewHashModel(128), semantic.Options{Workers: 1}, nil)
	sem.Build()
	h := &ranking.Hybrid{Lexical: lex, Semantic: sem, Alpha: 0.5}
	return New(root, h, nil, nil)
}

func TestSelectContextRespectsBudget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", strings.Repeat("hello ", 16)) // ~96 bytes, ~24 tokens
	writeFile(t, dir, "large.txt", strings.Repeat("hello ", 3400)) // ~20KB, ~5000 tokens

	sel := newSelector(t, dir).SelectContext("hello", 200)

	if sel.TotalTokens > 200 {
		t.Errorf("TotalTokens = %d, exceeds budget 200", sel.TotalTokens)
	}
	found := map[string]bool{}
	for _, f := range sel.Files {
		found[f.Path] = true
	}
	if !found["small.txt"] {
		t.Error("small.txt should fit the budget")
	}
	if found["large.txt"] {
		t.Error("large.txt should be skipped, it exceeds the budget")
	}
}

func TestSelectContextSkipsBigAndContinues(t *testing.T) {
	dir := t.TempDir()
	// Rank order will be large first (most occurrences), but only the
	// smaller files fit. The walk must continue past the big one.
	writeFile(t, dir, "big.txt", strings.Repeat("needle ", 500))
	writeFile(t, dir, "mid.txt", strings.Repeat("needle ", 30))
	writeFile(t, dir, "tiny.txt", "needle\n")

	sel := newSelector(t, dir).SelectContext("needle", 80)

	if sel.TotalTokens > 80 {
		t.Errorf("TotalTokens = %d, exceeds budget", sel.TotalTokens)
	}
	if len(sel.Files) == 0 {
		t.Fatal("smaller candidates after a too-big one should still be selected")
	}
	for _, f := range sel.Files {
		if f.Path == "big.txt" {
			t.Error("big.txt cannot fit an 80 token budget")
		}
	}
}

func TestSelectContextZeroBudget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello\n")

	sel := newSelector(t, dir).SelectContext("hello", 0)
	if len(sel.Files) != 0 || sel.TotalTokens != 0 {
		t.Errorf("zero budget should select nothing, got %+v", sel)
	}
}

func TestSelectContextOrderedByRank(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "best.txt", "query query query query\n")
	writeFile(t, dir, "ok.txt", "query\n")

	sel := newSelector(t, dir).SelectContext("query", 1000)
	if len(sel.Files) < 2 {
		t.Fatalf("want both files selected, got %v", sel.Files)
	}
	if sel.Files[0].Path != "best.txt" {
		t.Errorf("first selected = %q, want best.txt", sel.Files[0].Path)
	}
	if sel.Files[0].RelevanceScore < sel.Files[1].RelevanceScore {
		t.Error("selection should preserve rank order")
	}
}

func TestHeuristicEstimator(t *testing.T) {
	est := HeuristicEstimator{}
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 1}, // minimum 1 for non-empty
		{"abcd", 1},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := est.Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%d bytes) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

type fixedEstimator struct{ cost int }

func (f fixedEstimator) Estimate(string) int { return f.cost }

func TestSelectContextCustomEstimator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello\n")
	writeFile(t, dir, "b.txt", "hello\n")
	writeFile(t, dir, "c.txt", "hello\n")

	lex := lexical.NewIndex(dir, paths.WalkOptions{}, nil)
	sem := semantic.NewIndex(dir, embedding.NewHashModel(64), semantic.Options{Workers: 1}, nil)
	sem.Build()
	h := &ranking.Hybrid{Lexical: lex, Semantic: sem, Alpha: 1.0}

	s := New(dir, h, fixedEstimator{cost: 10}, nil)
	sel := s.SelectContext("hello", 25)

	if len(sel.Files) != 2 || sel.TotalTokens != 20 {
		t.Errorf("with cost 10 and budget 25 expect 2 files/20 tokens, got %d files/%d tokens",
			len(sel.Files), sel.TotalTokens)
	}
}
