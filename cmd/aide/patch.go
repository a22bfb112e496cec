package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aide/internal/patch"
)

var (
	patchDescription string
	patchOut         string
	patchKeep        int
	patchFormat      string
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Propose, apply and roll back patches",
	Long: `Manage the patch lifecycle. A proposal is built from a YAML changes file
(either a full proposal document or a bare "path: content" mapping),
scored for safety, and can be applied with an automatic backup. Every
apply returns a backup id that 'aide patch rollback' restores exactly.`,
}

var patchProposeCmd = &cobra.Command{
	Use:   "propose <changes.yaml>",
	Short: "Build a scored patch proposal from a changes file",
	Long: `Build a patch proposal without writing anything. Prints the unified
diff, impact and safety score; --out persists the proposal as YAML for
review and later apply.

Examples:
  aide patch propose changes.yaml
  aide patch propose changes.yaml --description "rename helper" --out proposal.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPatchPropose,
}

var patchApplyCmd = &cobra.Command{
	Use:   "apply <proposal.yaml>",
	Short: "Apply a proposal with an automatic backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatchApply,
}

var patchRollbackCmd = &cobra.Command{
	Use:   "rollback <backup-id>",
	Short: "Restore every file captured in a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatchRollback,
}

var patchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, newest first",
	RunE:  runPatchList,
}

var patchPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups",
	RunE:  runPatchPrune,
}

func init() {
	patchProposeCmd.Flags().StringVar(&patchDescription, "description", "", "Proposal description")
	patchProposeCmd.Flags().StringVar(&patchOut, "out", "", "Write the proposal to this YAML file")
	patchPruneCmd.Flags().IntVar(&patchKeep, "keep", 10, "Number of newest backups to keep")
	patchCmd.PersistentFlags().StringVar(&patchFormat, "format", "human", "Output format (json, human)")

	patchCmd.AddCommand(patchProposeCmd)
	patchCmd.AddCommand(patchApplyCmd)
	patchCmd.AddCommand(patchRollbackCmd)
	patchCmd.AddCommand(patchListCmd)
	patchCmd.AddCommand(patchPruneCmd)
	rootCmd.AddCommand(patchCmd)
}

// ProposalResponseCLI contains a proposal (and apply result) for CLI output
type ProposalResponseCLI struct {
	Description   string   `json:"description"`
	AffectedFiles []string `json:"affectedFiles"`
	LinesAdded    int      `json:"linesAdded"`
	LinesRemoved  int      `json:"linesRemoved"`
	SafetyScore   float64  `json:"safetyScore"`
	Diff          string   `json:"diff,omitempty"`
	BackupID      string   `json:"backupId,omitempty"`
}

// BackupListResponseCLI contains stored backups for CLI output
type BackupListResponseCLI struct {
	Backups []patch.BackupInfo `json:"backups"`
}

func proposalResponse(p *patch.Proposal, backupID string, includeDiff bool) *ProposalResponseCLI {
	resp := &ProposalResponseCLI{
		Description:   p.Description,
		AffectedFiles: p.AffectedFiles,
		LinesAdded:    p.Impact.LinesAdded,
		LinesRemoved:  p.Impact.LinesRemoved,
		SafetyScore:   p.SafetyScore,
		BackupID:      backupID,
	}
	if includeDiff {
		resp.Diff = p.Diff
	}
	return resp
}

// newPatchEngine opens the backup store and builds the engine. The caller
// must invoke the returned close func.
func newPatchEngine(format string) (*patch.Engine, func(), error) {
	logger := newLogger(format)
	root := mustGetWorkspaceRoot()

	store, err := patch.OpenStore(root, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening backup store: %w", err)
	}
	return patch.NewEngine(root, store, logger), func() { _ = store.Close() }, nil
}

func runPatchPropose(cmd *cobra.Command, args []string) error {
	logger := newLogger(patchFormat)
	root := mustGetWorkspaceRoot()

	desc, changes, err := patch.LoadChanges(args[0])
	if err != nil {
		return err
	}
	if patchDescription != "" {
		desc = patchDescription
	}

	store, err := patch.OpenStore(root, logger)
	if err != nil {
		return fmt.Errorf("opening backup store: %w", err)
	}
	defer store.Close()

	engine := patch.NewEngine(root, store, logger)
	p := engine.ProposeFromChanges(desc, changes)

	if patchOut != "" {
		if err := patch.SaveProposal(p, patchOut); err != nil {
			return err
		}
		fmt.Printf("Proposal written to: %s\n", patchOut)
	}

	output, err := FormatResponse(proposalResponse(p, "", true), OutputFormat(patchFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

func runPatchApply(cmd *cobra.Command, args []string) error {
	engine, closeStore, err := newPatchEngine(patchFormat)
	if err != nil {
		return err
	}
	defer closeStore()

	// Changes are re-scored against the current workspace; the serialized
	// diff and score in the file are never trusted.
	desc, changes, err := patch.LoadChanges(args[0])
	if err != nil {
		return err
	}

	p := engine.ProposeFromChanges(desc, changes)
	backupID, err := engine.Apply(p)
	if err != nil {
		if backupID != "" {
			fmt.Fprintf(os.Stderr, "Apply failed; backup %s captured the prior state\n", backupID)
		}
		return err
	}

	output, ferr := FormatResponse(proposalResponse(p, backupID, false), OutputFormat(patchFormat))
	if ferr != nil {
		return ferr
	}
	fmt.Println(output)
	return nil
}

func runPatchRollback(cmd *cobra.Command, args []string) error {
	engine, closeStore, err := newPatchEngine(patchFormat)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := engine.Rollback(args[0]); err != nil {
		return err
	}
	fmt.Printf("Rolled back backup %s\n", args[0])
	return nil
}

func runPatchList(cmd *cobra.Command, args []string) error {
	logger := newLogger(patchFormat)
	root := mustGetWorkspaceRoot()

	store, err := patch.OpenStore(root, logger)
	if err != nil {
		return fmt.Errorf("opening backup store: %w", err)
	}
	defer store.Close()

	backups, err := store.List()
	if err != nil {
		return err
	}

	resp := &BackupListResponseCLI{Backups: backups}
	if resp.Backups == nil {
		resp.Backups = []patch.BackupInfo{}
	}

	output, err := FormatResponse(resp, OutputFormat(patchFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

func runPatchPrune(cmd *cobra.Command, args []string) error {
	logger := newLogger(patchFormat)
	root := mustGetWorkspaceRoot()

	store, err := patch.OpenStore(root, logger)
	if err != nil {
		return fmt.Errorf("opening backup store: %w", err)
	}
	defer store.Close()

	deleted, err := store.Prune(patchKeep)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d backups, kept newest %d\n", deleted, patchKeep)
	return nil
}
