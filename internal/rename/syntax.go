package rename

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// StringSyntax describes one string-literal form of a language.
type StringSyntax struct {
	Delim  string `toml:"delim"`  // opening/closing delimiter, e.g. "\"" or "\"\"\""
	Escape string `toml:"escape"` // escape prefix inside the literal, "" for raw strings
}

// BlockComment is a start/end delimited comment form.
type BlockComment struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// LangSyntax is the scanner table for one language: which byte sequences
// open comments and string literals. The scanner is entirely table
// driven; adding a language means adding a table, not code.
type LangSyntax struct {
	Name          string         `toml:"name"`
	Extensions    []string       `toml:"extensions"`
	LineComments  []string       `toml:"line_comments"`
	BlockComments []BlockComment `toml:"block_comments"`
	Strings       []StringSyntax `toml:"strings"`
}

// builtinSyntax returns the built-in language tables. Longer string
// delimiters must sort before shorter prefixes of themselves (Python's
// triple quotes before single quotes); normalize() enforces that.
func builtinSyntax() []LangSyntax {
	return []LangSyntax{
		{
			Name:          "go",
			Extensions:    []string{".go"},
			LineComments:  []string{"//"},
			BlockComments: []BlockComment{{Start: "/*", End: "*/"}},
			Strings: []StringSyntax{
				{Delim: `"`, Escape: `\`},
				{Delim: "'", Escape: `\`},
				{Delim: "`"}, // raw string, no escapes
			},
		},
		{
			Name:         "python",
			Extensions:   []string{".py"},
			LineComments: []string{"#"},
			Strings: []StringSyntax{
				{Delim: `"""`, Escape: `\`},
				{Delim: "'''", Escape: `\`},
				{Delim: `"`, Escape: `\`},
				{Delim: "'", Escape: `\`},
			},
		},
		{
			Name:          "javascript",
			Extensions:    []string{".js", ".jsx", ".ts", ".tsx"},
			LineComments:  []string{"//"},
			BlockComments: []BlockComment{{Start: "/*", End: "*/"}},
			Strings: []StringSyntax{
				{Delim: `"`, Escape: `\`},
				{Delim: "'", Escape: `\`},
				{Delim: "`", Escape: `\`},
			},
		},
		{
			Name:          "c",
			Extensions:    []string{".c", ".h", ".cpp", ".hpp", ".cc"},
			LineComments:  []string{"//"},
			BlockComments: []BlockComment{{Start: "/*", End: "*/"}},
			Strings: []StringSyntax{
				{Delim: `"`, Escape: `\`},
				{Delim: "'", Escape: `\`},
			},
		},
		{
			Name:         "shell",
			Extensions:   []string{".sh", ".bash"},
			LineComments: []string{"#"},
			Strings: []StringSyntax{
				{Delim: `"`, Escape: `\`},
				{Delim: "'"}, // single quotes are raw in shell
			},
		},
		{
			Name:         "rust",
			Extensions:   []string{".rs"},
			LineComments: []string{"//"},
			BlockComments: []BlockComment{
				{Start: "/*", End: "*/"},
			},
			Strings: []StringSyntax{
				{Delim: `"`, Escape: `\`},
			},
		},
	}
}

// SyntaxTable maps file extensions to language tables.
type SyntaxTable struct {
	byExt map[string]*LangSyntax
}

// NewSyntaxTable builds the table from the built-in languages.
func NewSyntaxTable() *SyntaxTable {
	t := &SyntaxTable{byExt: make(map[string]*LangSyntax)}
	for _, lang := range builtinSyntax() {
		t.add(lang)
	}
	return t
}

func (t *SyntaxTable) add(lang LangSyntax) {
	normalize(&lang)
	l := lang
	for _, ext := range l.Extensions {
		t.byExt[strings.ToLower(ext)] = &l
	}
}

// Lookup returns the language table for a file extension.
func (t *SyntaxTable) Lookup(ext string) (*LangSyntax, bool) {
	lang, ok := t.byExt[strings.ToLower(ext)]
	return lang, ok
}

// overlayFile is the shape of a .aide/languages.toml overlay.
type overlayFile struct {
	Language []LangSyntax `toml:"language"`
}

// LoadOverlay merges language tables from a TOML file. Entries replace
// built-ins for any extension they claim. A missing file is not an
// error; a malformed one is.
func (t *SyntaxTable) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading language overlay: %w", err)
	}

	var overlay overlayFile
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing language overlay: %w", err)
	}

	for _, lang := range overlay.Language {
		if lang.Name == "" || len(lang.Extensions) == 0 {
			return fmt.Errorf("language overlay entry needs name and extensions")
		}
		t.add(lang)
	}
	return nil
}

// normalize sorts string delimiters longest-first so the scanner always
// matches the longest delimiter at a position.
func normalize(lang *LangSyntax) {
	sort.SliceStable(lang.Strings, func(i, j int) bool {
		return len(lang.Strings[i].Delim) > len(lang.Strings[j].Delim)
	})
}
