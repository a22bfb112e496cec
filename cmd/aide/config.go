package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aide/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration values",
	Long: `Read and write values in .aide/config.json by dotted key.

Known keys:
  retrieval.max_tokens   default context token budget (positive integer)
  retrieval.alpha        lexical/semantic fusion weight in [0,1]
  logging.format         json or human
  logging.level          debug, info, warn or error`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	logger := newLogger("human")
	root := mustGetWorkspaceRoot()
	cfg := loadConfig(root, logger)

	value := cfg.Get(args[0], nil)
	if value == nil {
		return fmt.Errorf("unknown config key %q", args[0])
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	logger := newLogger("human")
	root := mustGetWorkspaceRoot()

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.Save(root); err != nil {
		return err
	}

	logger.Info("Config updated", map[string]interface{}{
		"key":   args[0],
		"value": args[1],
	})
	return nil
}
