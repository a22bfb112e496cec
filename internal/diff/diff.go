// Package diff builds and analyzes unified diffs.
//
// The wire format is fixed: "--- a/<path>", "+++ b/<path>",
// "@@ -<start>,<len> +<start>,<len> @@" headers and "+"/"-"/" " prefixed
// body lines. This is the contract between the patch engine and any
// downstream reviewer or renderer.
package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aide/internal/paths"
)

// contextLines is the number of unchanged lines kept around each hunk.
const contextLines = 3

// Engine builds unified diffs from proposed content changes and extracts
// change statistics from diff text.
type Engine struct {
	root string
}

// NewEngine creates a diff engine reading current file content relative
// to root.
func NewEngine(root string) *Engine {
	return &Engine{root: root}
}

// Build produces one unified diff covering every path in changes,
// comparing the file's current content (empty if it does not exist yet)
// to the proposed content. Fragments concatenate in ascending path order
// so output is deterministic.
func (e *Engine) Build(changes map[string]string) string {
	pathsSorted := make([]string, 0, len(changes))
	for p := range changes {
		pathsSorted = append(pathsSorted, paths.Canonical(p))
	}
	sort.Strings(pathsSorted)

	var b strings.Builder
	for _, p := range pathsSorted {
		old := ""
		if data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(p))); err == nil {
			old = string(data)
		}
		b.WriteString(BuildFile(p, old, changes[p]))
	}
	return b.String()
}

// BuildFile produces the unified diff fragment for a single path.
// Identical content yields headers with no hunks.
func BuildFile(path, oldContent, newContent string) string {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)

	for _, h := range buildHunks(oldLines, newLines) {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldLen, h.newStart, h.newLen)
		for _, line := range h.lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Stats summarizes a parsed diff.
type Stats struct {
	Files        []string `json:"files"` // ordered, de-duplicated
	LinesAdded   int      `json:"linesAdded"`
	LinesRemoved int      `json:"linesRemoved"`
}

// Analyze parses diff text and counts changes. The "--- a/" "+++ b/"
// header pair recovers the affected paths; "+"/"-" body lines count as
// added/removed. Header lines are only recognized outside hunks, so body
// lines whose content happens to start with "++" or "--" still count:
// each "@@" header carries the hunk's line extents and every line within
// them is classified by its first byte alone. Malformed input degrades to
// an empty Stats, never an error.
func Analyze(diffText string) Stats {
	stats := Stats{Files: []string{}}
	seen := map[string]bool{}

	lines := strings.Split(diffText, "\n")
	oldRemain, newRemain := 0, 0
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if oldRemain > 0 || newRemain > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				stats.LinesAdded++
				newRemain--
			case strings.HasPrefix(line, "-"):
				stats.LinesRemoved++
				oldRemain--
			default:
				oldRemain--
				newRemain--
			}
			if oldRemain < 0 {
				oldRemain = 0
			}
			if newRemain < 0 {
				newRemain = 0
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "--- a/") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ b/"):
			p := strings.TrimSpace(strings.TrimPrefix(lines[i+1], "+++ b/"))
			if p != "" && !seen[p] {
				seen[p] = true
				stats.Files = append(stats.Files, p)
			}
			i++
		case strings.HasPrefix(line, "@@ -"):
			var oldStart, oldLen, newStart, newLen int
			if _, err := fmt.Sscanf(line, "@@ -%d,%d +%d,%d @@", &oldStart, &oldLen, &newStart, &newLen); err == nil {
				oldRemain, newRemain = oldLen, newLen
			}
		case strings.HasPrefix(line, "+"):
			stats.LinesAdded++
		case strings.HasPrefix(line, "-"):
			stats.LinesRemoved++
		}
	}
	return stats
}

// splitLines splits content into lines without trailing newline
// artifacts: "a\nb\n" and "a\nb" both yield ["a","b"].
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type hunk struct {
	oldStart, oldLen int
	newStart, newLen int
	lines            []string
}

type op struct {
	kind byte // ' ', '-', '+'
	text string
}

// buildHunks turns an edit script into context-trimmed hunks.
func buildHunks(oldLines, newLines []string) []hunk {
	ops := editScript(oldLines, newLines)

	changed := false
	for _, o := range ops {
		if o.kind != ' ' {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	var hunks []hunk
	i := 0
	for i < len(ops) {
		if ops[i].kind == ' ' {
			i++
			continue
		}

		// Found a change; open a hunk with up to contextLines of
		// leading context.
		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i
		// Extend through changes, closing only after a gap of more than
		// 2*contextLines equal lines.
		equalRun := 0
		for end < len(ops) {
			if ops[end].kind == ' ' {
				equalRun++
				if equalRun > 2*contextLines {
					break
				}
			} else {
				equalRun = 0
			}
			end++
		}
		// Trim trailing context to contextLines.
		trailing := 0
		for end > i && ops[end-1].kind == ' ' {
			trailing++
			end--
		}
		if trailing > contextLines {
			trailing = contextLines
		}
		end += trailing

		hunks = append(hunks, makeHunk(ops, oldLines, newLines, start, end))
		i = end
	}
	return hunks
}

func makeHunk(ops []op, oldLines, newLines []string, start, end int) hunk {
	// Count old/new line offsets up to start.
	oldPos, newPos := 1, 1
	for _, o := range ops[:start] {
		switch o.kind {
		case ' ':
			oldPos++
			newPos++
		case '-':
			oldPos++
		case '+':
			newPos++
		}
	}

	h := hunk{oldStart: oldPos, newStart: newPos}
	for _, o := range ops[start:end] {
		h.lines = append(h.lines, string(o.kind)+o.text)
		switch o.kind {
		case ' ':
			h.oldLen++
			h.newLen++
		case '-':
			h.oldLen++
		case '+':
			h.newLen++
		}
	}
	// Unified format uses start 0 for empty sides.
	if h.oldLen == 0 {
		h.oldStart = oldPos - 1
	}
	if h.newLen == 0 {
		h.newStart = newPos - 1
	}
	return h
}

// editScript computes a line-level edit script via LCS. Equal lines keep
// kind ' '; removals and additions are ordered removals-first within a
// changed region. Equal prefix and suffix runs are peeled off before the
// quadratic table so its size tracks the changed region, not the files.
func editScript(oldLines, newLines []string) []op {
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	oldMid, newMid := oldLines[prefix:], newLines[prefix:]

	suffix := 0
	for suffix < len(oldMid) && suffix < len(newMid) &&
		oldMid[len(oldMid)-1-suffix] == newMid[len(newMid)-1-suffix] {
		suffix++
	}
	oldMid = oldMid[:len(oldMid)-suffix]
	newMid = newMid[:len(newMid)-suffix]

	ops := make([]op, 0, prefix+len(oldMid)+len(newMid)+suffix)
	for _, line := range oldLines[:prefix] {
		ops = append(ops, op{' ', line})
	}
	ops = append(ops, lcsOps(oldMid, newMid)...)
	for _, line := range oldLines[len(oldLines)-suffix:] {
		ops = append(ops, op{' ', line})
	}
	return ops
}

func lcsOps(oldLines, newLines []string) []op {
	n, m := len(oldLines), len(newLines)

	// LCS length table.
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []op
	i, j := 0, 0
	for i < n && j < m {
		if oldLines[i] == newLines[j] {
			ops = append(ops, op{' ', oldLines[i]})
			i++
			j++
		} else if lcs[i+1][j] >= lcs[i][j+1] {
			ops = append(ops, op{'-', oldLines[i]})
			i++
		} else {
			ops = append(ops, op{'+', newLines[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, op{'-', oldLines[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, op{'+', newLines[j]})
	}
	return ops
}
