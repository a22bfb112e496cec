package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aide/internal/semantic"
)

var indexFormat string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the semantic index",
	Long: `Build the semantic index: every readable text file in the workspace is
embedded and the result is persisted under .aide/cache so unchanged
workspaces can skip the rebuild.

Examples:
  aide index
  aide index --format json`,
	Run: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(indexCmd)
}

// IndexResponseCLI reports an index build for CLI output
type IndexResponseCLI struct {
	Files        int    `json:"files"`
	DurationMs   int64  `json:"durationMs"`
	SnapshotPath string `json:"snapshotPath,omitempty"`
}

func runIndex(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(indexFormat)
	root := mustGetWorkspaceRoot()
	cfg := loadConfig(root, logger)

	ix := newSemanticIndex(root, cfg, logger)
	n := ix.Build()

	snapshotPath := semantic.SnapshotPath(root)
	if err := ix.Save(); err != nil {
		logger.Warn("Failed to persist snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		snapshotPath = ""
	}

	resp := &IndexResponseCLI{
		Files:        n,
		DurationMs:   time.Since(start).Milliseconds(),
		SnapshotPath: snapshotPath,
	}

	output, err := FormatResponse(resp, OutputFormat(indexFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
