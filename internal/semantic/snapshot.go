package semantic

import (
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"aide/internal/paths"
)

// Snapshot persistence. The index is rebuildable from the workspace at any
// time; the snapshot only exists so an unchanged workspace can skip
// re-embedding. Fingerprints let Load detect staleness per file.

var (
	// ErrSnapshotNotFound is returned when no snapshot exists on disk.
	ErrSnapshotNotFound = errors.New("semantic snapshot not found")
	// ErrSnapshotStale is returned when the snapshot does not match the
	// current workspace or model.
	ErrSnapshotStale = errors.New("semantic snapshot is stale")
)

const (
	// SnapshotVersion is the on-disk format version.
	SnapshotVersion = 1

	snapshotFile = "semantic.gob"
)

type snapshot struct {
	Version      int
	ModelName    string
	Dimensions   int
	CreatedAt    time.Time
	Embeddings   map[string][]float32
	Fingerprints map[string]string // path -> blake2b-256 hex of content
}

// SnapshotPath returns the snapshot location for a workspace root.
func SnapshotPath(root string) string {
	return filepath.Join(root, ".aide", "cache", snapshotFile)
}

// Fingerprint returns the blake2b-256 hex digest of content.
func Fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Save persists the current embedding set. Written to a temp file first,
// then renamed, so readers never see a partial snapshot.
func (ix *Index) Save() error {
	ix.mu.RLock()
	snap := snapshot{
		Version:      SnapshotVersion,
		ModelName:    ix.model.Name(),
		Dimensions:   ix.model.Dimensions(),
		CreatedAt:    ix.builtAt,
		Embeddings:   make(map[string][]float32, len(ix.embeddings)),
		Fingerprints: make(map[string]string, len(ix.embeddings)),
	}
	for path, vec := range ix.embeddings {
		snap.Embeddings[path] = vec
	}
	ix.mu.RUnlock()

	for path := range snap.Embeddings {
		data, err := os.ReadFile(filepath.Join(ix.root, filepath.FromSlash(path)))
		if err != nil {
			continue // file vanished since build; snapshot omits its fingerprint
		}
		snap.Fingerprints[path] = Fingerprint(data)
	}

	target := SnapshotPath(ix.root)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores the embedding set from disk if the snapshot
// matches the current model and every fingerprinted file is unchanged.
// On success the loaded set is swapped in atomically and the number of
// restored files is returned.
func (ix *Index) LoadSnapshot() (int, error) {
	f, err := os.Open(SnapshotPath(ix.root))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrSnapshotNotFound
		}
		return 0, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	if snap.Version != SnapshotVersion {
		return 0, fmt.Errorf("%w: format version %d, want %d", ErrSnapshotStale, snap.Version, SnapshotVersion)
	}
	if snap.ModelName != ix.model.Name() || snap.Dimensions != ix.model.Dimensions() {
		return 0, fmt.Errorf("%w: built with model %s/%d", ErrSnapshotStale, snap.ModelName, snap.Dimensions)
	}

	current := paths.ListTextFiles(ix.root, ix.opts.Walk)
	if len(current) != len(snap.Embeddings) {
		return 0, fmt.Errorf("%w: workspace file set changed", ErrSnapshotStale)
	}
	for _, rel := range current {
		want, ok := snap.Fingerprints[rel]
		if !ok {
			return 0, fmt.Errorf("%w: %s not in snapshot", ErrSnapshotStale, rel)
		}
		data, err := os.ReadFile(filepath.Join(ix.root, filepath.FromSlash(rel)))
		if err != nil || Fingerprint(data) != want {
			return 0, fmt.Errorf("%w: %s changed", ErrSnapshotStale, rel)
		}
	}

	ix.mu.Lock()
	ix.embeddings = snap.Embeddings
	ix.builtAt = snap.CreatedAt
	ix.mu.Unlock()

	return len(snap.Embeddings), nil
}
