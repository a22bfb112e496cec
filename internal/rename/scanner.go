package rename

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// spanKind classifies a region of source text.
type spanKind int

const (
	kindCode spanKind = iota
	kindString
	kindComment
)

// replaceInCode rewrites whole-identifier occurrences of oldName with
// newName inside code spans only, leaving string literals and comments
// byte-identical. Returns the rewritten text and the replacement count.
func replaceInCode(src string, lang *LangSyntax, oldName, newName string) (string, int) {
	var out strings.Builder
	out.Grow(len(src))

	count := 0
	i := 0
	for i < len(src) {
		// Comment and string openers only matter in code.
		if adv := copyLineComment(&out, src, i, lang); adv > 0 {
			i += adv
			continue
		}
		if adv := copyBlockComment(&out, src, i, lang); adv > 0 {
			i += adv
			continue
		}
		if adv := copyString(&out, src, i, lang); adv > 0 {
			i += adv
			continue
		}

		r, size := utf8.DecodeRuneInString(src[i:])
		if isIdentStart(r) {
			ident, adv := readIdentifier(src[i:])
			if ident == oldName {
				out.WriteString(newName)
				count++
			} else {
				out.WriteString(ident)
			}
			i += adv
			continue
		}

		out.WriteString(src[i : i+size])
		i += size
	}
	return out.String(), count
}

// copyLineComment copies a line comment (through its newline) verbatim
// and returns how many bytes were consumed, or 0 if no comment starts
// at i.
func copyLineComment(out *strings.Builder, src string, i int, lang *LangSyntax) int {
	for _, marker := range lang.LineComments {
		if !strings.HasPrefix(src[i:], marker) {
			continue
		}
		end := strings.IndexByte(src[i:], '\n')
		if end < 0 {
			end = len(src) - i
		}
		out.WriteString(src[i : i+end])
		return end
	}
	return 0
}

// copyBlockComment copies a block comment verbatim. An unterminated
// block comment runs to end of input.
func copyBlockComment(out *strings.Builder, src string, i int, lang *LangSyntax) int {
	for _, bc := range lang.BlockComments {
		if !strings.HasPrefix(src[i:], bc.Start) {
			continue
		}
		rel := strings.Index(src[i+len(bc.Start):], bc.End)
		var end int
		if rel < 0 {
			end = len(src) - i
		} else {
			end = len(bc.Start) + rel + len(bc.End)
		}
		out.WriteString(src[i : i+end])
		return end
	}
	return 0
}

// copyString copies a string literal verbatim, honoring the language's
// escape prefix. Tables are pre-sorted longest-delimiter-first, so
// Python's triple quotes win over a single quote at the same position.
// An unterminated literal runs to end of input.
func copyString(out *strings.Builder, src string, i int, lang *LangSyntax) int {
	for _, ss := range lang.Strings {
		if !strings.HasPrefix(src[i:], ss.Delim) {
			continue
		}
		j := i + len(ss.Delim)
		for j < len(src) {
			if ss.Escape != "" && strings.HasPrefix(src[j:], ss.Escape) {
				j += len(ss.Escape)
				_, size := utf8.DecodeRuneInString(src[j:])
				j += size
				continue
			}
			if strings.HasPrefix(src[j:], ss.Delim) {
				j += len(ss.Delim)
				break
			}
			_, size := utf8.DecodeRuneInString(src[j:])
			j += size
		}
		if j > len(src) {
			j = len(src)
		}
		out.WriteString(src[i:j])
		return j - i
	}
	return 0
}

func readIdentifier(s string) (string, int) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isIdentRune(r) {
			break
		}
		i += size
	}
	return s[:i], i
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdentifier reports whether name is a valid identifier token for the
// scanner: identifier start rune followed by identifier runes.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
		} else if !isIdentRune(r) {
			return false
		}
	}
	return true
}
