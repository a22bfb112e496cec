package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildFileFormat(t *testing.T) {
	out := BuildFile("pkg/util.go", "one\ntwo\nthree\n", "one\nTWO\nthree\n")

	if !strings.HasPrefix(out, "--- a/pkg/util.go\n+++ b/pkg/util.go\n") {
		t.Errorf("missing file headers:\n%s", out)
	}
	if !strings.Contains(out, "@@ -1,3 +1,3 @@") {
		t.Errorf("missing hunk header:\n%s", out)
	}
	if !strings.Contains(out, "-two\n") || !strings.Contains(out, "+TWO\n") {
		t.Errorf("missing change lines:\n%s", out)
	}
	if !strings.Contains(out, " one\n") || !strings.Contains(out, " three\n") {
		t.Errorf("missing context lines:\n%s", out)
	}
}

func TestBuildFileNewFile(t *testing.T) {
	out := BuildFile("new.txt", "", "hello\nworld\n")

	if !strings.Contains(out, "@@ -0,0 +1,2 @@") {
		t.Errorf("new-file hunk header wrong:\n%s", out)
	}
	if !strings.Contains(out, "+hello\n+world\n") {
		t.Errorf("all lines should be additions:\n%s", out)
	}
}

func TestBuildFileIdenticalHasNoHunks(t *testing.T) {
	out := BuildFile("same.txt", "a\nb\n", "a\nb\n")
	if strings.Contains(out, "@@") {
		t.Errorf("identical content should produce no hunks:\n%s", out)
	}
}

func TestBuildReadsExistingContent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("old line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(dir)
	out := e.Build(map[string]string{"f.txt": "new line\n"})

	if !strings.Contains(out, "-old line\n") || !strings.Contains(out, "+new line\n") {
		t.Errorf("diff should compare against file content:\n%s", out)
	}
}

func TestBuildMultipleFilesSortedByPath(t *testing.T) {
	e := NewEngine(t.TempDir())
	out := e.Build(map[string]string{
		"zz.txt": "z\n",
		"aa.txt": "a\n",
	})

	if strings.Index(out, "+++ b/aa.txt") > strings.Index(out, "+++ b/zz.txt") {
		t.Errorf("fragments should be ordered by path:\n%s", out)
	}
}

func TestAnalyzeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc old() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(dir)
	diffText := e.Build(map[string]string{"main.go": "package main\n\nfunc renamed() {}\n"})
	stats := Analyze(diffText)

	if len(stats.Files) != 1 || stats.Files[0] != "main.go" {
		t.Errorf("Files = %v, want [main.go]", stats.Files)
	}
	if stats.LinesAdded < 1 {
		t.Errorf("LinesAdded = %d, want >= 1", stats.LinesAdded)
	}
	if stats.LinesRemoved < 1 {
		t.Errorf("LinesRemoved = %d, want >= 1", stats.LinesRemoved)
	}
}

func TestAnalyzeExcludesHeaders(t *testing.T) {
	diffText := "--- a/x.txt\n+++ b/x.txt\n@@ -1,1 +1,1 @@\n-old\n+new\n"
	stats := Analyze(diffText)

	if stats.LinesAdded != 1 {
		t.Errorf("LinesAdded = %d, want 1 (+++ header excluded)", stats.LinesAdded)
	}
	if stats.LinesRemoved != 1 {
		t.Errorf("LinesRemoved = %d, want 1 (--- header excluded)", stats.LinesRemoved)
	}
}

func TestAnalyzeDeduplicatesFiles(t *testing.T) {
	diffText := strings.Repeat("--- a/x.txt\n+++ b/x.txt\n@@ -1,1 +1,1 @@\n-a\n+b\n", 2)
	stats := Analyze(diffText)

	if len(stats.Files) != 1 {
		t.Errorf("Files = %v, want de-duplicated single entry", stats.Files)
	}
}

func TestAnalyzeBodyLinesResemblingHeaders(t *testing.T) {
	// An added line beginning "++ " serializes as "+++ ..." and a removed
	// line beginning "-- " serializes as "--- ...". Both are body lines,
	// not headers, and must count.
	diffText := BuildFile("main.c",
		"keep\n-- SQL comment\n",
		"keep\n++ incremented twice\n")
	stats := Analyze(diffText)

	if len(stats.Files) != 1 || stats.Files[0] != "main.c" {
		t.Errorf("Files = %v, want [main.c]", stats.Files)
	}
	if stats.LinesAdded != 1 {
		t.Errorf("LinesAdded = %d, want 1", stats.LinesAdded)
	}
	if stats.LinesRemoved != 1 {
		t.Errorf("LinesRemoved = %d, want 1", stats.LinesRemoved)
	}
}

func TestAnalyzeMalformedIsEmpty(t *testing.T) {
	for _, text := range []string{"", "not a diff at all", "@@ bogus @@\ngarbage"} {
		stats := Analyze(text)
		if len(stats.Files) != 0 || stats.LinesAdded != 0 || stats.LinesRemoved != 0 {
			t.Errorf("Analyze(%q) = %+v, want empty stats", text, stats)
		}
	}
}

func TestBuildFileLargeCommonRegions(t *testing.T) {
	lines := make([]string, 50000)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	oldContent := strings.Join(lines, "\n") + "\n"
	lines[25000] = "changed"
	newContent := strings.Join(lines, "\n") + "\n"

	out := BuildFile("big.txt", oldContent, newContent)

	if !strings.Contains(out, "-line 25000\n") || !strings.Contains(out, "+changed\n") {
		t.Errorf("single-line change missing from output")
	}
	if strings.Count(out, "@@ -") != 1 {
		t.Errorf("single changed line should produce one hunk, got %d", strings.Count(out, "@@ -"))
	}
}

func TestBuildHunksSeparatedByLargeGap(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		oldLines = append(oldLines, "line")
		newLines = append(newLines, "line")
	}
	oldLines[0] = "first-old"
	newLines[0] = "first-new"
	oldLines[29] = "last-old"
	newLines[29] = "last-new"

	out := BuildFile("f.txt", strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n")

	if strings.Count(out, "@@ -") != 2 {
		t.Errorf("changes separated by a large gap should produce 2 hunks:\n%s", out)
	}
}
