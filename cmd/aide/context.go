package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aide/internal/ranking"
	"aide/internal/selector"
)

var (
	contextBudget int
	contextAlpha  float64
	contextFormat string
)

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Select context files within a token budget",
	Long: `Select the most relevant files for a query, bounded by a token budget.

Candidates come from the hybrid ranker; the selection walks them in rank
order and keeps whatever fits. A file too big for the remaining budget is
skipped, not terminal, so smaller lower-ranked files can still fill it.

Examples:
  aide context "connection pooling" --budget 2000
  aide context retry --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextBudget, "budget", 0, "Token budget (default from config)")
	contextCmd.Flags().Float64Var(&contextAlpha, "alpha", -1, "Lexical/semantic weight in [0,1] (default from config)")
	contextCmd.Flags().StringVar(&contextFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(contextCmd)
}

// ContextResponseCLI contains a context selection for CLI output
type ContextResponseCLI struct {
	Query       string                 `json:"query"`
	Budget      int                    `json:"budget"`
	TotalTokens int                    `json:"totalTokens"`
	Files       []selector.ContextFile `json:"files"`
}

func runContext(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(contextFormat)
	query := args[0]

	root := mustGetWorkspaceRoot()
	cfg := loadConfig(root, logger)

	budget := cfg.Retrieval.MaxTokens
	if contextBudget > 0 {
		budget = contextBudget
	}
	alpha := cfg.Retrieval.Alpha
	if contextAlpha >= 0 {
		alpha = contextAlpha
	}

	sem := newSemanticIndex(root, cfg, logger)
	loadOrBuildSemanticIndex(sem, logger)

	ranker := &ranking.Hybrid{
		Lexical:  newLexicalIndex(root, cfg, logger),
		Semantic: sem,
		Alpha:    alpha,
		Logger:   logger,
	}

	sel := selector.New(root, ranker, nil, logger)
	sel.SetCandidateFactor(cfg.Retrieval.CandidateFactor)
	selection := sel.SelectContext(query, budget)

	resp := &ContextResponseCLI{
		Query:       query,
		Budget:      selection.Budget,
		TotalTokens: selection.TotalTokens,
		Files:       selection.Files,
	}

	output, err := FormatResponse(resp, OutputFormat(contextFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Context selection completed", map[string]interface{}{
		"query":    query,
		"files":    len(resp.Files),
		"duration": time.Since(start).Milliseconds(),
	})
}
