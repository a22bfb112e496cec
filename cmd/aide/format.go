package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *SearchResponseCLI:
		return formatSearchHuman(v)
	case *ContextResponseCLI:
		return formatContextHuman(v)
	case *IndexResponseCLI:
		return formatIndexHuman(v)
	case *ProposalResponseCLI:
		return formatProposalHuman(v)
	case *BackupListResponseCLI:
		return formatBackupListHuman(v)
	case *SymbolsResponseCLI:
		return formatSymbolsHuman(v)
	case *RenameResponseCLI:
		return formatRenameHuman(v)
	default:
		// Unknown types fall back to JSON
		return formatJSON(resp)
	}
}

func formatSearchHuman(resp *SearchResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Search Results for: %s\n", resp.Query))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Mode: %s, alpha: %.2f\n", resp.Mode, resp.Alpha))
	b.WriteString(fmt.Sprintf("Found %d results\n\n", len(resp.Results)))

	for i, r := range resp.Results {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Path))
		b.WriteString(fmt.Sprintf("   Score: %.4f (lexical %.4f, semantic %.4f)\n",
			r.Score, r.Lexical, r.Semantic))
	}

	return b.String(), nil
}

func formatContextHuman(resp *ContextResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Context for: %s\n", resp.Query))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Budget: %d tokens, used: %d\n\n", resp.Budget, resp.TotalTokens))

	for i, f := range resp.Files {
		b.WriteString(fmt.Sprintf("%d. %s (%d tokens, relevance %.4f)\n",
			i+1, f.Path, f.Tokens, f.RelevanceScore))
	}

	return b.String(), nil
}

func formatIndexHuman(resp *IndexResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Index Build\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Files indexed: %d\n", resp.Files))
	b.WriteString(fmt.Sprintf("Duration: %dms\n", resp.DurationMs))
	if resp.SnapshotPath != "" {
		b.WriteString(fmt.Sprintf("Snapshot: %s\n", resp.SnapshotPath))
	}

	return b.String(), nil
}

func formatProposalHuman(resp *ProposalResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Patch Proposal: %s\n", resp.Description))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Files affected: %d\n", len(resp.AffectedFiles)))
	for _, f := range resp.AffectedFiles {
		b.WriteString(fmt.Sprintf("  - %s\n", f))
	}
	b.WriteString(fmt.Sprintf("Lines: +%d -%d\n", resp.LinesAdded, resp.LinesRemoved))
	b.WriteString(fmt.Sprintf("Safety score: %.2f\n", resp.SafetyScore))

	if resp.BackupID != "" {
		b.WriteString(fmt.Sprintf("\nApplied. Backup id: %s\n", resp.BackupID))
		b.WriteString(fmt.Sprintf("Rollback with: aide patch rollback %s\n", resp.BackupID))
	} else if resp.Diff != "" {
		b.WriteString("\n" + resp.Diff)
	}

	return b.String(), nil
}

func formatBackupListHuman(resp *BackupListResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Stored Backups\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Backups) == 0 {
		b.WriteString("No backups stored.\n")
		return b.String(), nil
	}

	for _, info := range resp.Backups {
		b.WriteString(fmt.Sprintf("%s  %s\n", info.ID, info.CreatedAt.Format("2006-01-02 15:04:05")))
		if info.Description != "" {
			b.WriteString(fmt.Sprintf("  %s\n", info.Description))
		}
		b.WriteString(fmt.Sprintf("  Files: %d\n", info.FileCount))
	}

	return b.String(), nil
}

func formatRenameHuman(resp *RenameResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Rename: %s -> %s\n", resp.OldName, resp.NewName))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Files changed: %d\n", resp.FilesChanged))
	paths := make([]string, 0, len(resp.Replacements))
	for path := range resp.Replacements {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		b.WriteString(fmt.Sprintf("  %s: %d replacements\n", path, resp.Replacements[path]))
	}
	b.WriteString(fmt.Sprintf("Safety score: %.2f\n", resp.SafetyScore))

	if resp.BackupID != "" {
		b.WriteString(fmt.Sprintf("\nApplied. Backup id: %s\n", resp.BackupID))
		b.WriteString(fmt.Sprintf("Rollback with: aide patch rollback %s\n", resp.BackupID))
	} else if resp.Diff != "" {
		b.WriteString("\n" + resp.Diff)
	}

	return b.String(), nil
}

func formatSymbolsHuman(resp *SymbolsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Symbols in: %s\n", resp.Path))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Found %d symbols\n\n", len(resp.Symbols)))

	for _, s := range resp.Symbols {
		name := s.Name
		if s.Container != "" {
			name = s.Container + "." + s.Name
		}
		b.WriteString(fmt.Sprintf("%-10s %s\n", s.Kind, name))
		b.WriteString(fmt.Sprintf("           %s:%d\n", s.Path, s.Line))
		if s.Signature != "" {
			b.WriteString(fmt.Sprintf("           %s\n", s.Signature))
		}
	}

	return b.String(), nil
}
