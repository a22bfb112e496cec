package main

import (
	"github.com/spf13/cobra"

	"aide/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "aide",
	Short: "aide - retrieval and mutation core for codebases",
	Long: `aide indexes a workspace for hybrid lexical/semantic retrieval, selects
budget-bounded context for language models, and applies reviewable,
reversible patches (including literal-aware symbol renames).`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("aide version {{.Version}}\n")
}
