// Package rename performs literal-aware symbol substitution.
//
// The engine never writes files. It emits a changes mapping compatible
// with the patch engine's ProposeFromChanges, so mutation and safety
// scoring stay centralized in one place.
package rename

import (
	"fmt"
	"os"
	"path/filepath"

	aideerrors "aide/internal/errors"
	"aide/internal/logging"
	"aide/internal/paths"
)

// Plan records what a rename would change.
type Plan struct {
	OldName      string         `json:"oldName"`
	NewName      string         `json:"newName"`
	ChangeStats  map[string]int `json:"changeStats"` // path -> replacement count
	FilesChanged int            `json:"filesChanged"`
}

// Engine scans files and plans symbol renames.
type Engine struct {
	root   string
	table  *SyntaxTable
	logger *logging.Logger
}

// NewEngine creates a rename engine for the workspace root. If
// .aide/languages.toml exists its tables overlay the built-ins.
func NewEngine(root string, logger *logging.Logger) (*Engine, error) {
	table := NewSyntaxTable()
	if err := table.LoadOverlay(filepath.Join(root, ".aide", "languages.toml")); err != nil {
		return nil, err
	}
	return &Engine{root: root, table: table, logger: logger}, nil
}

// RenameSymbol scans every file in scope (workspace-relative paths) and
// replaces oldName with newName where it appears as a whole identifier
// inside code spans; string literals and comments are never touched.
// Returns the plan plus the changes mapping for the patch engine. An
// empty scope yields an empty plan, not an error. Files with unknown
// extensions or unreadable content are skipped.
func (e *Engine) RenameSymbol(oldName, newName string, scope []string) (*Plan, map[string]string, error) {
	if !IsIdentifier(oldName) || !IsIdentifier(newName) {
		return nil, nil, aideerrors.New(aideerrors.ScopeInvalid,
			fmt.Sprintf("rename requires identifier names, got %q -> %q", oldName, newName), nil)
	}

	plan := &Plan{
		OldName:     oldName,
		NewName:     newName,
		ChangeStats: make(map[string]int),
	}
	changes := make(map[string]string)

	for _, rel := range scope {
		rel = paths.Canonical(rel)

		lang, ok := e.table.Lookup(filepath.Ext(rel))
		if !ok {
			if e.logger != nil {
				e.logger.Debug("Skipping file with unknown language", map[string]interface{}{
					"path": rel,
				})
			}
			continue
		}

		data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(rel)))
		if err != nil {
			if e.logger != nil {
				e.logger.Debug("Skipping unreadable file", map[string]interface{}{
					"path":  rel,
					"error": err.Error(),
				})
			}
			continue
		}

		rewritten, count := replaceInCode(string(data), lang, oldName, newName)
		if count == 0 {
			continue
		}

		plan.ChangeStats[rel] = count
		plan.FilesChanged++
		changes[rel] = rewritten
	}

	if e.logger != nil {
		e.logger.Info("Rename planned", map[string]interface{}{
			"oldName":      oldName,
			"newName":      newName,
			"filesChanged": plan.FilesChanged,
		})
	}
	return plan, changes, nil
}

// ScopeFromGlobs expands include globs into a scope of workspace files.
func (e *Engine) ScopeFromGlobs(include []string, walk paths.WalkOptions) []string {
	var scope []string
	for _, rel := range paths.ListTextFiles(e.root, walk) {
		if paths.MatchAny(include, rel) {
			scope = append(scope, rel)
		}
	}
	return scope
}
