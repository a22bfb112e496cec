package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"aide/internal/diff"
	aideerrors "aide/internal/errors"
	"aide/internal/logging"
	"aide/internal/paths"
)

// Impact is the line-level change summary of a proposal.
type Impact struct {
	LinesAdded   int `json:"linesAdded" yaml:"linesAdded"`
	LinesRemoved int `json:"linesRemoved" yaml:"linesRemoved"`
}

// Proposal is an immutable, single-use patch: once applied it cannot be
// applied again.
type Proposal struct {
	Description   string            `json:"description" yaml:"description"`
	Diff          string            `json:"diff" yaml:"diff"`
	AffectedFiles []string          `json:"affectedFiles" yaml:"affectedFiles"`
	Impact        Impact            `json:"impact" yaml:"impact"`
	SafetyScore   float64           `json:"safetyScore" yaml:"safetyScore"`
	Changes       map[string]string `json:"changes" yaml:"changes"`

	applied bool
}

// Applied reports whether this proposal has been consumed by Apply.
func (p *Proposal) Applied() bool { return p.applied }

// Engine proposes, applies and rolls back patches against a workspace.
type Engine struct {
	root   string
	differ *diff.Engine
	store  *Store
	logger *logging.Logger
}

// NewEngine creates a patch engine for the workspace root, persisting
// backups in store.
func NewEngine(root string, store *Store, logger *logging.Logger) *Engine {
	return &Engine{
		root:   root,
		differ: diff.NewEngine(root),
		store:  store,
		logger: logger,
	}
}

// ProposeFromChanges builds a scored proposal from a path -> new content
// mapping. Nothing is written.
func (e *Engine) ProposeFromChanges(description string, changes map[string]string) *Proposal {
	canonical := make(map[string]string, len(changes))
	for p, content := range changes {
		canonical[paths.Canonical(p)] = content
	}

	diffText := e.differ.Build(canonical)
	stats := diff.Analyze(diffText)

	return &Proposal{
		Description:   description,
		Diff:          diffText,
		AffectedFiles: stats.Files,
		Impact:        Impact{LinesAdded: stats.LinesAdded, LinesRemoved: stats.LinesRemoved},
		SafetyScore:   e.safetyScore(canonical, stats),
		Changes:       canonical,
	}
}

// safetyScore estimates how risky a proposal is, in [0,1]. The score
// decreases with the fraction of changed lines relative to total file
// size, with the number of files touched, and with large deletions. A
// few lines in one file score near 1; broad multi-file rewrites near 0.
func (e *Engine) safetyScore(changes map[string]string, stats diff.Stats) float64 {
	totalLines := 0
	for path, newContent := range changes {
		old := ""
		if data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(path))); err == nil {
			old = string(data)
		}
		totalLines += countLines(old)
		totalLines += countLines(newContent)
	}

	score := 1.0

	changed := float64(stats.LinesAdded + stats.LinesRemoved)
	if totalLines > 0 {
		fraction := changed / float64(totalLines)
		if fraction > 1 {
			fraction = 1
		}
		score -= 0.5 * fraction
	} else if changed > 0 {
		score -= 0.5
	}

	// Every file beyond the first costs a little breadth.
	extraFiles := float64(len(stats.Files) - 1)
	if extraFiles > 0 {
		breadth := 0.08 * extraFiles
		if breadth > 0.3 {
			breadth = 0.3
		}
		score -= breadth
	}

	// Large deletions are the riskiest change shape.
	if stats.LinesRemoved > 100 || (stats.LinesRemoved > 20 && stats.LinesRemoved > 3*stats.LinesAdded) {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Apply captures a backup of every affected file and then writes the
// proposal's target content. The backup id is returned even on failure
// so the caller can inspect what was captured. If a write fails partway,
// files already written in this apply are restored from the in-flight
// backup before the error returns: a failed apply never leaves the
// workspace in a mixed state.
func (e *Engine) Apply(p *Proposal) (string, error) {
	if p.applied {
		return "", aideerrors.New(aideerrors.InternalError, "proposal already applied", nil)
	}

	backupID := uuid.NewString()

	// Capture every snapshot before any write.
	snapshots := make([]FileSnapshot, 0, len(p.Changes))
	for path := range p.Changes {
		snap := FileSnapshot{Path: path}
		if data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(path))); err == nil {
			snap.Existed = true
			snap.Content = data
		}
		snapshots = append(snapshots, snap)
	}

	if err := e.store.Put(backupID, p.Description, snapshots); err != nil {
		return backupID, aideerrors.New(aideerrors.WriteFailure, "persisting backup", err)
	}

	byPath := make(map[string]FileSnapshot, len(snapshots))
	for _, snap := range snapshots {
		byPath[snap.Path] = snap
	}

	var written []string
	for _, snap := range snapshots {
		target := filepath.Join(e.root, filepath.FromSlash(snap.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err == nil {
			err = os.WriteFile(target, []byte(p.Changes[snap.Path]), 0644)
			if err == nil {
				written = append(written, snap.Path)
				continue
			}
			e.restore(written, byPath)
			return backupID, aideerrors.New(aideerrors.WriteFailure,
				fmt.Sprintf("writing %s", snap.Path), err)
		} else {
			e.restore(written, byPath)
			return backupID, aideerrors.New(aideerrors.WriteFailure,
				fmt.Sprintf("creating directory for %s", snap.Path), err)
		}
	}

	p.applied = true

	if e.logger != nil {
		e.logger.Info("Patch applied", map[string]interface{}{
			"backupId": backupID,
			"files":    len(written),
			"safety":   p.SafetyScore,
		})
	}
	return backupID, nil
}

// restore undoes writes from a failed apply using in-memory snapshots.
func (e *Engine) restore(written []string, byPath map[string]FileSnapshot) {
	for _, path := range written {
		snap := byPath[path]
		target := filepath.Join(e.root, filepath.FromSlash(path))
		if snap.Existed {
			_ = os.WriteFile(target, snap.Content, 0644)
		} else {
			_ = os.Remove(target)
		}
	}
}

// Rollback restores every file captured in the backup to its exact prior
// bytes, deleting files that did not exist before the patch. Restoring is
// idempotent for files still holding the applied content.
func (e *Engine) Rollback(backupID string) error {
	snapshots, err := e.store.Get(backupID)
	if err != nil {
		return err
	}

	for _, snap := range snapshots {
		target := filepath.Join(e.root, filepath.FromSlash(snap.Path))
		if snap.Existed {
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return aideerrors.New(aideerrors.WriteFailure,
					fmt.Sprintf("restoring %s", snap.Path), err)
			}
			if err := os.WriteFile(target, snap.Content, 0644); err != nil {
				return aideerrors.New(aideerrors.WriteFailure,
					fmt.Sprintf("restoring %s", snap.Path), err)
			}
		} else {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return aideerrors.New(aideerrors.WriteFailure,
					fmt.Sprintf("removing %s", snap.Path), err)
			}
		}
	}

	if e.logger != nil {
		e.logger.Info("Rollback complete", map[string]interface{}{
			"backupId": backupID,
			"files":    len(snapshots),
		})
	}
	return nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
