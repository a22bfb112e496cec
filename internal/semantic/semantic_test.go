package semantic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aide/internal/embedding"
	"aide/internal/paths"
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

func newTestIndex(t *testing.T, root string, workers int) *Index {
	t.Helper()
	return NewIndex(root, embedding.NewHashModel(128), Options{
		Walk:    paths.WalkOptions{IgnoreDirs: []string{".aide"}},
		Workers: workers,
	}, nil)
}

func TestBuildCountsReadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha beta gamma")
	writeFile(t, dir, "b.txt", "beta gamma delta")
	writeFile(t, dir, "c.txt", "unrelated content")

	ix := newTestIndex(t, dir, 2)
	if n := ix.Build(); n != 3 {
		t.Errorf("Build = %d, want 3", n)
	}
	if ix.Len() != 3 {
		t.Errorf("Len = %d, want 3", ix.Len())
	}
}

func TestSearchRanksOverlappingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha beta gamma")
	writeFile(t, dir, "b.txt", "beta gamma delta")
	writeFile(t, dir, "c.txt", "unrelated content")

	ix := newTestIndex(t, dir, 1)
	ix.Build()

	results := ix.Search("alpha gamma", 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	top := results[0].Path
	if top != "a.txt" && top != "b.txt" {
		t.Errorf("top result = %q, want a.txt or b.txt", top)
	}
	for _, r := range results {
		if r.Score < -1 || r.Score > 1 {
			t.Errorf("score %g outside [-1,1]", r.Score)
		}
	}
}

func TestSearchBeforeBuildIsEmpty(t *testing.T) {
	ix := newTestIndex(t, t.TempDir(), 1)
	if results := ix.Search("anything", 5); len(results) != 0 {
		t.Errorf("expected no results before Build, got %v", results)
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"one.txt", "first file contents"},
		{"two.txt", "second file contents"},
		{"three.txt", "third file contents"},
		{"four.txt", "fourth file contents"},
	} {
		writeFile(t, dir, f.name, f.content)
	}

	serial := newTestIndex(t, dir, 1)
	parallel := newTestIndex(t, dir, 4)
	serial.Build()
	parallel.Build()

	for _, path := range []string{"one.txt", "two.txt", "three.txt", "four.txt"} {
		a, aok := serial.Embedding(path)
		b, bok := parallel.Embedding(path)
		if !aok || !bok {
			t.Fatalf("missing embedding for %s", path)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("embeddings for %s differ at %d", path, i)
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha beta gamma")
	writeFile(t, dir, "b.txt", "delta epsilon")

	ix := newTestIndex(t, dir, 1)
	ix.Build()
	if err := ix.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := newTestIndex(t, dir, 1)
	n, err := restored.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if n != 2 {
		t.Errorf("restored %d files, want 2", n)
	}

	a, _ := ix.Embedding("a.txt")
	b, ok := restored.Embedding("a.txt")
	if !ok {
		t.Fatal("restored index missing a.txt")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("restored embedding differs at %d", i)
		}
	}
}

func TestSnapshotStaleAfterEdit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha beta gamma")

	ix := newTestIndex(t, dir, 1)
	ix.Build()
	if err := ix.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	writeFile(t, dir, "a.txt", "completely different now")

	restored := newTestIndex(t, dir, 1)
	if _, err := restored.LoadSnapshot(); !errors.Is(err, ErrSnapshotStale) {
		t.Errorf("LoadSnapshot after edit = %v, want ErrSnapshotStale", err)
	}
}

func TestSnapshotMissing(t *testing.T) {
	ix := newTestIndex(t, t.TempDir(), 1)
	if _, err := ix.LoadSnapshot(); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("LoadSnapshot = %v, want ErrSnapshotNotFound", err)
	}
}
