package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aide/internal/patch"
	"aide/internal/rename"
)

var (
	renameApply   bool
	renameInclude []string
	renameFormat  string
)

var renameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a symbol across the workspace",
	Long: `Rename a symbol by whole-identifier replacement in code spans only:
string literals and comments are never touched. The rename is planned
first and routed through the patch engine, so applying it creates a
backup and prints the backup id for rollback.

By default the unified diff is printed without writing anything; --apply
performs the rename.

Examples:
  aide rename parseConfig loadConfig
  aide rename parseConfig loadConfig --include "internal/**"
  aide rename parseConfig loadConfig --apply`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().BoolVar(&renameApply, "apply", false, "Apply the rename (default: print the diff)")
	renameCmd.Flags().StringSliceVar(&renameInclude, "include", nil, "Limit the rename to files matching these globs")
	renameCmd.Flags().StringVar(&renameFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(renameCmd)
}

// RenameResponseCLI contains a rename plan (and apply result) for CLI output
type RenameResponseCLI struct {
	OldName      string         `json:"oldName"`
	NewName      string         `json:"newName"`
	FilesChanged int            `json:"filesChanged"`
	Replacements map[string]int `json:"replacements"`
	SafetyScore  float64        `json:"safetyScore"`
	Diff         string         `json:"diff,omitempty"`
	BackupID     string         `json:"backupId,omitempty"`
}

func runRename(cmd *cobra.Command, args []string) error {
	logger := newLogger(renameFormat)
	oldName, newName := args[0], args[1]

	root := mustGetWorkspaceRoot()
	cfg := loadConfig(root, logger)

	engine, err := rename.NewEngine(root, logger)
	if err != nil {
		return err
	}

	scope := engine.ScopeFromGlobs(renameInclude, walkOptions(cfg))
	plan, changes, err := engine.RenameSymbol(oldName, newName, scope)
	if err != nil {
		return err
	}

	store, err := patch.OpenStore(root, logger)
	if err != nil {
		return fmt.Errorf("opening backup store: %w", err)
	}
	defer store.Close()

	patcher := patch.NewEngine(root, store, logger)
	proposal := patcher.ProposeFromChanges(
		fmt.Sprintf("rename %s to %s", oldName, newName), changes)

	resp := &RenameResponseCLI{
		OldName:      oldName,
		NewName:      newName,
		FilesChanged: plan.FilesChanged,
		Replacements: plan.ChangeStats,
		SafetyScore:  proposal.SafetyScore,
	}

	if renameApply {
		backupID, err := patcher.Apply(proposal)
		if err != nil {
			if backupID != "" {
				fmt.Fprintf(os.Stderr, "Apply failed; backup %s captured the prior state\n", backupID)
			}
			return err
		}
		resp.BackupID = backupID
	} else {
		resp.Diff = proposal.Diff
	}

	output, err := FormatResponse(resp, OutputFormat(renameFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}
