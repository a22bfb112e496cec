// Package patch turns proposed content changes into scored, applyable,
// reversible patches. Backups are the sole source of truth for rollback
// and live in a workspace-local SQLite database.
package patch

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"golang.org/x/crypto/blake2b"

	aideerrors "aide/internal/errors"
	"aide/internal/logging"
)

// FileSnapshot is the exact prior state of one file captured at apply
// time. Existed false marks a file that was absent before the patch.
type FileSnapshot struct {
	Path    string
	Existed bool
	Content []byte
}

// BackupInfo summarizes one stored backup.
type BackupInfo struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	FileCount   int       `json:"fileCount"`
}

// Store persists backups in .aide/aide.db. Content blobs are zstd
// compressed and carry a blake2b checksum verified on read.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// OpenStore opens or creates the backup database under root/.aide.
func OpenStore(root string, logger *logging.Logger) (*Store, error) {
	dir := filepath.Join(root, ".aide")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating .aide directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "aide.db"))
	if err != nil {
		return nil, fmt.Errorf("opening backup database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS backups (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS backup_files (
			backup_id TEXT NOT NULL REFERENCES backups(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			existed INTEGER NOT NULL,
			content BLOB,
			checksum TEXT,
			PRIMARY KEY (backup_id, path)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing backup schema: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Store{db: db, logger: logger, enc: enc, dec: dec}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func checksum(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Put stores a backup with all its file snapshots in one transaction.
func (s *Store) Put(id, description string, snapshots []FileSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning backup transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO backups (id, description, created_at) VALUES (?, ?, ?)",
		id, description, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("inserting backup %s: %w", id, err)
	}

	for _, snap := range snapshots {
		var blob []byte
		var sum string
		if snap.Existed {
			blob = s.enc.EncodeAll(snap.Content, nil)
			sum = checksum(snap.Content)
		}
		if _, err := tx.Exec(
			"INSERT INTO backup_files (backup_id, path, existed, content, checksum) VALUES (?, ?, ?, ?, ?)",
			id, snap.Path, boolToInt(snap.Existed), blob, sum,
		); err != nil {
			return fmt.Errorf("inserting backup file %s: %w", snap.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing backup %s: %w", id, err)
	}

	if s.logger != nil {
		s.logger.Debug("Backup stored", map[string]interface{}{
			"backupId": id,
			"files":    len(snapshots),
		})
	}
	return nil
}

// Get returns all file snapshots for a backup id. A missing id yields a
// BACKUP_NOT_FOUND error.
func (s *Store) Get(id string) ([]FileSnapshot, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM backups WHERE id = ?", id).Scan(&count); err != nil {
		return nil, fmt.Errorf("looking up backup %s: %w", id, err)
	}
	if count == 0 {
		return nil, aideerrors.New(aideerrors.BackupNotFound,
			fmt.Sprintf("no backup with id %s", id), nil)
	}

	rows, err := s.db.Query(
		"SELECT path, existed, content, checksum FROM backup_files WHERE backup_id = ? ORDER BY path",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", id, err)
	}
	defer rows.Close()

	var snapshots []FileSnapshot
	for rows.Next() {
		var snap FileSnapshot
		var existed int
		var blob []byte
		var sum string
		if err := rows.Scan(&snap.Path, &existed, &blob, &sum); err != nil {
			return nil, fmt.Errorf("scanning backup row: %w", err)
		}
		snap.Existed = existed != 0
		if snap.Existed {
			content, derr := s.dec.DecodeAll(blob, nil)
			if derr != nil {
				return nil, fmt.Errorf("decompressing %s: %w", snap.Path, derr)
			}
			if checksum(content) != sum {
				return nil, fmt.Errorf("backup %s: checksum mismatch for %s", id, snap.Path)
			}
			snap.Content = content
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// List returns stored backups, newest first.
func (s *Store) List() ([]BackupInfo, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.description, b.created_at, COUNT(f.path)
		FROM backups b LEFT JOIN backup_files f ON f.backup_id = b.id
		GROUP BY b.id ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	defer rows.Close()

	var infos []BackupInfo
	for rows.Next() {
		var info BackupInfo
		var created string
		if err := rows.Scan(&info.ID, &info.Description, &created, &info.FileCount); err != nil {
			return nil, fmt.Errorf("scanning backup list: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes one backup and its snapshots.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM backups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting backup %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return aideerrors.New(aideerrors.BackupNotFound,
			fmt.Sprintf("no backup with id %s", id), nil)
	}
	return nil
}

// Prune keeps the newest keep backups and deletes the rest. Retention is
// caller-triggered; nothing is evicted implicitly.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(`
		DELETE FROM backups WHERE id NOT IN (
			SELECT id FROM backups ORDER BY created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning backups: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
