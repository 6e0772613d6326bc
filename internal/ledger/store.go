package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"wpmeta/internal/wallpaper"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded build.
type Run struct {
	ID         string
	SourceDir  string
	StagingDir string
	StartedAt  time.Time
	FinishedAt time.Time
	Wallpapers int
	Status     Status
	Error      string
}

// Duration is zero while the run is still in progress.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StagedFile is one file written by a run.
type StagedFile struct {
	RunID       string
	WallpaperID string
	Variant     string
	Path        string
	Width       int
	Height      int
	Format      string
}

// Store manages build history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the ledger database and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of a build.
func (s *Store) BeginRun(ctx context.Context, id, sourceDir, stagingDir string) (*Run, error) {
	run := &Run{
		ID:         id,
		SourceDir:  sourceDir,
		StagingDir: stagingDir,
		StartedAt:  s.now().UTC(),
		Status:     StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_dir, staging_dir, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.StagingDir, formatTime(run.StartedAt), run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordWallpapers stores every staged file of the collection under runID,
// replacing any rows already recorded for the same paths.
func (s *Store) RecordWallpapers(ctx context.Context, runID string, col wallpaper.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO staged_files (run_id, wallpaper_id, variant, path, width, height, format)
         VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, wp := range col {
		for _, f := range wp.Files {
			if _, err := stmt.ExecContext(ctx, runID, wp.ID, f.Variant.String(), f.RelPath,
				f.Resolution.Width, f.Resolution.Height, string(f.Format)); err != nil {
				return fmt.Errorf("insert staged file %s: %w", f.RelPath, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit staged files: %w", err)
	}
	return nil
}

// FinishRun marks runID finished. A nil runErr marks it succeeded.
func (s *Store) FinishRun(ctx context.Context, runID string, wallpapers int, runErr error) error {
	status := StatusSucceeded
	message := ""
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, wallpapers = ?, status = ?, error = ? WHERE id = ?`,
		formatTime(s.now().UTC()), wallpapers, status, message, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// Runs lists the most recent runs first. limit <= 0 returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_dir, staging_dir, started_at, finished_at, wallpapers, status, error
              FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given id, accepting a unique id prefix.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, staging_dir, started_at, finished_at, wallpapers, status, error
         FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, stripLikeWildcards(id)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Files returns the files recorded for runID ordered by wallpaper and path.
func (s *Store) Files(ctx context.Context, runID string) ([]StagedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, wallpaper_id, variant, path, width, height, format
         FROM staged_files WHERE run_id = ? ORDER BY wallpaper_id, path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query staged files: %w", err)
	}
	defer rows.Close()

	var files []StagedFile
	for rows.Next() {
		var f StagedFile
		if err := rows.Scan(&f.RunID, &f.WallpaperID, &f.Variant, &f.Path, &f.Width, &f.Height, &f.Format); err != nil {
			return nil, fmt.Errorf("scan staged file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
		status   string
	)
	if err := row.Scan(&run.ID, &run.SourceDir, &run.StagingDir, &started, &finished, &run.Wallpapers, &status, &run.Error); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stripLikeWildcards(s string) string {
	return strings.NewReplacer(`%`, ``, `_`, ``).Replace(s)
}
