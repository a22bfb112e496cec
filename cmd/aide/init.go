package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aide/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize aide configuration",
	Long:  "Creates a .aide/ directory with default configuration in the current workspace root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (overwrites existing config)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()

	configPath := filepath.Join(root, config.AideDir, "config.json")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		// Idempotent behavior: already initialized is success (CI-friendly)
		fmt.Println("aide already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'aide init --force' to overwrite with defaults.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Println("aide initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'aide index' to build the semantic index")
	fmt.Println("  2. Run 'aide search <query>' to try retrieval")
	return nil
}
