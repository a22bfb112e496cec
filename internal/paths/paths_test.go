package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**", "a/b/c.go", true},
		{"*.go", "main.go", true},
		{"*.go", "internal/engine/engine.go", true}, // basename match
		{"*.md", "main.go", false},
		{"internal/**", "internal/engine/engine.go", true},
		{"internal/**", "cmd/main.go", false},
		{"**/*.go", "a/b/c.go", true},
		{"**/*.go", "c.go", true},
		{"cmd/*/main.go", "cmd/aide/main.go", true},
		{"cmd/*/main.go", "cmd/aide/sub/main.go", false},
		{"docs/**", "docs", false},
		{"docs/**", "docs/guide.md", true},
	}

	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatchAnyEmptyMatchesAll(t *testing.T) {
	if !MatchAny(nil, "anything/at/all.txt") {
		t.Error("empty pattern list should match everything")
	}
	if MatchAny([]string{"*.go"}, "readme.md") {
		t.Error("*.go should not match readme.md")
	}
}

func TestListTextFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", "hello\n")
	writeFile(t, dir, "sub/b.go", "package b\n")
	writeFile(t, dir, ".git/objects/junk", "x")
	writeFile(t, dir, "bin.dat", "abc\x00def")

	files := ListTextFiles(dir, WalkOptions{IgnoreDirs: []string{".git"}})

	want := []string{"a.txt", "sub/b.go"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestListTextFilesSizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", "ok")
	writeFile(t, dir, "big.txt", string(make([]byte, 2048)))
	// NUL-filled big file is binary anyway; make it text
	writeFile(t, dir, "big2.txt", stringOfLen(2048))

	files := ListTextFiles(dir, WalkOptions{MaxFileSizeBytes: 1024})
	for _, f := range files {
		if f == "big2.txt" {
			t.Error("files over the size limit should be skipped")
		}
	}
}

func TestIsTextFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t.txt", "plain text")
	writeFile(t, dir, "b.bin", "a\x00b")

	if !IsTextFile(filepath.Join(dir, "t.txt")) {
		t.Error("t.txt should be text")
	}
	if IsTextFile(filepath.Join(dir, "b.bin")) {
		t.Error("b.bin should be binary")
	}
	if IsTextFile(filepath.Join(dir, "missing.txt")) {
		t.Error("missing file should not be text")
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

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
