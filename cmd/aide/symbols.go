package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aide/internal/symbols"
)

var symbolsFormat string

var symbolsCmd = &cobra.Command{
	Use:   "symbols [path]",
	Short: "List declared symbols",
	Long: `List functions, methods, types and classes declared in a file or
directory tree using tree-sitter. Defaults to the current directory.
Requires a cgo build; without it the command reports unavailability.

Examples:
  aide symbols
  aide symbols internal/server
  aide symbols main.go --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(symbolsCmd)
}

// SymbolsResponseCLI contains extracted symbols for CLI output
type SymbolsResponseCLI struct {
	Path    string           `json:"path"`
	Symbols []symbols.Symbol `json:"symbols"`
}

func runSymbols(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	if !symbols.IsAvailable() {
		return fmt.Errorf("symbol extraction requires a cgo build")
	}

	extractor := symbols.NewExtractor()
	ctx := context.Background()

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var found []symbols.Symbol
	if info.IsDir() {
		err = filepath.Walk(target, func(path string, fi os.FileInfo, werr error) error {
			if werr != nil {
				return nil // skip unreadable entries
			}
			if fi.IsDir() {
				name := fi.Name()
				if name != "." && (name[0] == '.' || name == "node_modules" || name == "vendor" || name == "__pycache__") {
					return filepath.SkipDir
				}
				return nil
			}
			syms, eerr := extractor.ExtractFile(ctx, path)
			if eerr != nil {
				return nil // skip unparseable files
			}
			found = append(found, syms...)
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		found, err = extractor.ExtractFile(ctx, target)
		if err != nil {
			return err
		}
	}

	resp := &SymbolsResponseCLI{Path: target, Symbols: found}
	if resp.Symbols == nil {
		resp.Symbols = []symbols.Symbol{}
	}

	output, err := FormatResponse(resp, OutputFormat(symbolsFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}
