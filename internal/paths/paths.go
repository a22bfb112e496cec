// Package paths provides workspace file enumeration and glob matching
// shared by the index and mutation engines. All paths handed out are
// workspace-relative with forward slashes, which is the key format every
// index uses.
package paths

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Canonical converts a path to the workspace-relative, forward-slash form
// used as an index key.
func Canonical(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// WalkOptions controls workspace enumeration.
type WalkOptions struct {
	// IgnoreDirs are directory names skipped entirely (".git" etc).
	IgnoreDirs []string
	// MaxFileSizeBytes skips larger files when positive.
	MaxFileSizeBytes int64
}

// ListTextFiles returns the workspace-relative paths of all readable text
// files under root, sorted ascending. Unreadable and binary files are
// skipped, never fatal.
func ListTextFiles(root string, opts WalkOptions) []string {
	var files []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if isIgnoredDir(d.Name(), opts.IgnoreDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.MaxFileSizeBytes > 0 {
			if info, ierr := d.Info(); ierr != nil || info.Size() > opts.MaxFileSizeBytes {
				return nil
			}
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		if !IsTextFile(path) {
			return nil
		}
		files = append(files, Canonical(rel))
		return nil
	})

	sort.Strings(files)
	return files
}

func isIgnoredDir(name string, ignore []string) bool {
	for _, ig := range ignore {
		if name == ig {
			return true
		}
	}
	return false
}

// IsTextFile reports whether the file at path reads as text. A NUL byte in
// the first 8KB classifies the file as binary, the same sniff git uses.
func IsTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if n == 0 {
		// Empty files count as text.
		return err == nil || errors.Is(err, io.EOF)
	}
	return !bytes.ContainsRune(buf[:n], 0)
}

// MatchAny reports whether path matches at least one pattern. An empty
// pattern list matches everything.
func MatchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

// MatchGlob matches a pattern with ** support against a slash-separated
// relative path. A bare pattern without a separator also matches on the
// base name, so "*.go" matches files in any directory.
func MatchGlob(pattern, path string) bool {
	if pattern == "**" {
		return true
	}
	path = Canonical(path)

	if !strings.Contains(pattern, "/") {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return matchParts(splitSegments(pattern), splitSegments(path))
}

func splitSegments(s string) []string {
	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(s), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

func matchParts(pattern, path []string) bool {
	pi, pathi := 0, 0

	for pi < len(pattern) && pathi < len(path) {
		if pattern[pi] == "**" {
			// ** matches zero or more path segments
			if pi == len(pattern)-1 {
				return true
			}
			for i := pathi; i <= len(path); i++ {
				if matchParts(pattern[pi+1:], path[i:]) {
					return true
				}
			}
			return false
		}

		matched, _ := filepath.Match(pattern[pi], path[pathi])
		if !matched {
			return false
		}
		pi++
		pathi++
	}

	return pi == len(pattern) && pathi == len(path)
}
