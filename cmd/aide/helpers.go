package main

import (
	"errors"
	"fmt"
	"os"

	"aide/internal/config"
	"aide/internal/embedding"
	"aide/internal/lexical"
	"aide/internal/logging"
	"aide/internal/paths"
	"aide/internal/semantic"
)

// getWorkspaceRoot returns the workspace root directory.
func getWorkspaceRoot() (string, error) {
	return os.Getwd()
}

// mustGetWorkspaceRoot returns the workspace root or exits on error.
func mustGetWorkspaceRoot() string {
	root, err := getWorkspaceRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newLogger creates a logger matching the output format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}

// loadConfig loads the workspace config, warning and falling back to the
// defaults when the file is unreadable.
func loadConfig(root string, logger *logging.Logger) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// walkOptions derives file enumeration options from the config.
func walkOptions(cfg *config.Config) paths.WalkOptions {
	return paths.WalkOptions{
		IgnoreDirs:       cfg.Index.Ignore,
		MaxFileSizeBytes: cfg.Index.MaxFileSizeBytes,
	}
}

// newLexicalIndex builds the on-demand lexical index for the workspace.
func newLexicalIndex(root string, cfg *config.Config, logger *logging.Logger) *lexical.Index {
	return lexical.NewIndex(root, walkOptions(cfg), logger)
}

// newSemanticIndex builds an empty semantic index for the workspace.
func newSemanticIndex(root string, cfg *config.Config, logger *logging.Logger) *semantic.Index {
	model := embedding.NewHashModel(cfg.Embedding.Dimensions)
	return semantic.NewIndex(root, model, semantic.Options{
		Walk:    walkOptions(cfg),
		Workers: cfg.Index.Workers,
	}, logger)
}

// loadOrBuildSemanticIndex restores the snapshot when the workspace is
// unchanged and rebuilds (then re-persists) otherwise. Returns the number
// of indexed files.
func loadOrBuildSemanticIndex(ix *semantic.Index, logger *logging.Logger) int {
	n, err := ix.LoadSnapshot()
	if err == nil {
		logger.Debug("Semantic snapshot restored", map[string]interface{}{
			"files": n,
		})
		return n
	}
	if !errors.Is(err, semantic.ErrSnapshotNotFound) && !errors.Is(err, semantic.ErrSnapshotStale) {
		logger.Warn("Failed to load semantic snapshot, rebuilding", map[string]interface{}{
			"error": err.Error(),
		})
	}

	n = ix.Build()
	if err := ix.Save(); err != nil {
		logger.Warn("Failed to persist semantic snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return n
}
