//go:build cgo

// Package symbols extracts declaration-level symbols from source files
// with tree-sitter. The index layer uses them to enrich search output;
// nothing here depends on a compiler or language server being installed.
package symbols

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Symbol is one extracted declaration.
type Symbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "function", "method", "class", "type", "interface"
	Path      string `json:"path"`
	Line      int    `json:"line"`    // 1-indexed
	EndLine   int    `json:"endLine"` // 1-indexed
	Container string `json:"container,omitempty"`
	Signature string `json:"signature"`
}

// Extractor parses source files and pulls out their declarations.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor returns an extractor, or nil when parsing is unavailable.
func NewExtractor() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// IsAvailable reports whether symbol extraction is compiled in.
func IsAvailable() bool {
	return true
}

// ExtractFile extracts all symbols from a single file. Files in an
// unsupported language yield an empty result, not an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	lang, ok := LanguageFromExtension(filepath.Ext(path))
	if !ok {
		return nil, nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractSource(ctx, path, source, lang)
}

// ExtractSource extracts symbols from source bytes.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) ([]Symbol, error) {
	root, err := e.parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	var symbols []Symbol

	for _, fn := range findNodes(root, functionNodeTypes(lang)) {
		if sym := makeFunctionSymbol(fn, source, lang, path, ""); sym != nil {
			symbols = append(symbols, *sym)
		}
	}

	for _, cls := range findNodes(root, classNodeTypes(lang)) {
		sym := makeClassSymbol(cls, source, lang, path)
		if sym == nil {
			continue
		}
		symbols = append(symbols, *sym)
		for _, m := range findNodes(cls, methodNodeTypes(lang)) {
			if msym := makeFunctionSymbol(m, source, lang, path, sym.Name); msym != nil {
				symbols = append(symbols, *msym)
			}
		}
	}

	return symbols, nil
}

func (e *Extractor) parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}
	e.parser.SetLanguage(grammar)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", lang, err)
	}
	return tree.RootNode(), nil
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"function_declaration", "generator_function_declaration"}
	case LangPython:
		return []string{"function_definition"}
	case LangRust:
		return []string{"function_item"}
	default:
		return nil
	}
}

func classNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"type_declaration"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"class_declaration", "interface_declaration"}
	case LangPython:
		return []string{"class_definition"}
	case LangRust:
		return []string{"struct_item", "enum_item", "trait_item", "impl_item"}
	default:
		return nil
	}
}

func methodNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return nil // receiver methods sit at top level
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"method_definition"}
	case LangPython:
		return []string{"function_definition"}
	case LangRust:
		return []string{"function_item"}
	default:
		return nil
	}
}

func makeFunctionSymbol(node *sitter.Node, source []byte, lang Language, path, container string) *Symbol {
	name := functionName(node, source, lang)
	if name == "" {
		return nil
	}

	kind := "function"
	if container != "" || node.Type() == "method_declaration" || node.Type() == "method_definition" {
		kind = "method"
	}

	return &Symbol{
		Name:      name,
		Kind:      kind,
		Path:      path,
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Container: container,
		Signature: firstLine(node, source, 200),
	}
}

func makeClassSymbol(node *sitter.Node, source []byte, lang Language, path string) *Symbol {
	name := className(node, source, lang)
	if name == "" {
		return nil
	}
	return &Symbol{
		Name:      name,
		Kind:      classKind(node, lang),
		Path:      path,
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Signature: firstLine(node, source, 120),
	}
}

func functionName(node *sitter.Node, source []byte, lang Language) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil && lang == LangGo {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "identifier" {
				nameNode = child
				break
			}
		}
	}
	if nameNode == nil {
		return ""
	}
	return string(source[nameNode.StartByte():nameNode.EndByte()])
}

func className(node *sitter.Node, source []byte, lang Language) string {
	var nameNode *sitter.Node

	switch lang {
	case LangGo:
		// type_declaration wraps type_spec, which carries the name
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "type_spec" {
				nameNode = child.ChildByFieldName("name")
				break
			}
		}
	case LangRust:
		nameNode = node.ChildByFieldName("name")
		if nameNode == nil && node.Type() == "impl_item" {
			for i := 0; i < int(node.ChildCount()); i++ {
				child := node.Child(i)
				if child != nil && child.Type() == "type_identifier" {
					nameNode = child
					break
				}
			}
		}
	default:
		nameNode = node.ChildByFieldName("name")
	}

	if nameNode == nil {
		return ""
	}
	return string(source[nameNode.StartByte():nameNode.EndByte()])
}

func classKind(node *sitter.Node, lang Language) string {
	switch lang {
	case LangGo:
		return "type"
	case LangPython:
		return "class"
	case LangRust:
		if node.Type() == "trait_item" {
			return "interface"
		}
		return "type"
	default:
		if node.Type() == "interface_declaration" {
			return "interface"
		}
		return "class"
	}
}

// firstLine returns the declaration up to its first newline, opening
// brace, or colon, trimmed and capped at max bytes.
func firstLine(node *sitter.Node, source []byte, max int) string {
	text := source[node.StartByte():node.EndByte()]
	for i, b := range text {
		if b == '\n' || b == '{' || b == ':' {
			if sig := strings.TrimSpace(string(text[:i])); sig != "" {
				return sig
			}
		}
	}
	if len(text) > max {
		return strings.TrimSpace(string(text[:max])) + "..."
	}
	return strings.TrimSpace(string(text))
}

func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	if len(types) == 0 {
		return nil
	}

	var result []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		for _, t := range types {
			if node.Type() == t {
				result = append(result, node)
				break
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return result
}
