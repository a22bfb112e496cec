package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aide/internal/config"
	"aide/internal/logging"
	"aide/internal/ranking"
)

var (
	searchTop      int
	searchAlpha    float64
	searchLexical  bool
	searchSemantic bool
	searchInclude  []string
	searchExclude  []string
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search workspace files",
	Long: `Search workspace files with the hybrid ranker.

Two signals are fused: whole-word lexical term counts (normalized per
query) and embedding cosine similarity, weighted by alpha:
  combined = alpha*lexical + (1-alpha)*semantic

Examples:
  aide search "token bucket"
  aide search retry --top 5 --alpha 0.8
  aide search retry --lexical --include "**/*.go"
  aide search retry --semantic --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchTop, "top", 10, "Maximum number of results")
	searchCmd.Flags().Float64Var(&searchAlpha, "alpha", -1, "Lexical/semantic weight in [0,1] (default from config)")
	searchCmd.Flags().BoolVar(&searchLexical, "lexical", false, "Use the lexical signal only")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "Use the semantic signal only")
	searchCmd.Flags().StringSliceVar(&searchInclude, "include", nil, "Include globs (** supported)")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Exclude globs (** supported)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(searchCmd)
}

// SearchResponseCLI contains search results for CLI output
type SearchResponseCLI struct {
	Query   string           `json:"query"`
	Mode    string           `json:"mode"`
	Alpha   float64          `json:"alpha"`
	Results []ranking.Result `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(searchFormat)
	query := args[0]

	root := mustGetWorkspaceRoot()
	cfg := loadConfig(root, logger)

	if searchLexical && searchSemantic {
		fmt.Fprintln(os.Stderr, "Error: --lexical and --semantic are mutually exclusive")
		os.Exit(1)
	}

	alpha := cfg.Retrieval.Alpha
	if searchAlpha >= 0 {
		alpha = searchAlpha
	}

	ranker, mode := buildRanker(root, cfg, alpha, logger)

	resp := &SearchResponseCLI{
		Query:   query,
		Mode:    mode,
		Alpha:   alpha,
		Results: ranker.Search(query, searchTop),
	}
	if resp.Results == nil {
		resp.Results = []ranking.Result{}
	}

	output, err := FormatResponse(resp, OutputFormat(searchFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Search completed", map[string]interface{}{
		"query":    query,
		"results":  len(resp.Results),
		"duration": time.Since(start).Milliseconds(),
	})
}

// buildRanker assembles the requested ranker variant. The semantic index
// is only loaded (or built) when the variant needs it.
func buildRanker(root string, cfg *config.Config, alpha float64, logger *logging.Logger) (ranking.Ranker, string) {
	lex := newLexicalIndex(root, cfg, logger)

	if searchLexical {
		return &ranking.LexicalRanker{
			Index:   lex,
			Include: searchInclude,
			Exclude: searchExclude,
		}, "lexical"
	}

	sem := newSemanticIndex(root, cfg, logger)
	loadOrBuildSemanticIndex(sem, logger)

	if searchSemantic {
		return &ranking.SemanticRanker{Index: sem}, "semantic"
	}

	return &ranking.Hybrid{
		Lexical:  lex,
		Semantic: sem,
		Alpha:    alpha,
		Include:  searchInclude,
		Exclude:  searchExclude,
		Logger:   logger,
	}, "hybrid"
}
