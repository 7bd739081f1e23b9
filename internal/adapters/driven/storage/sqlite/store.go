package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/papermap/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunExporter = (*Store)(nil)

// Store is a SQLite-backed run exporter.
type Store struct {
	db   *sql.DB
	path string
}

// RunSummary describes a stored run.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	Provider   string
	Model      string
	Seed       int64
	Papers     int
	Algorithms []string
}

// NewStore opens (or creates) the database at path and applies migrations.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ExportRun writes the run, its papers and every projection's coordinates.
// A run without an ID is assigned one.
func (s *Store) ExportRun(ctx context.Context, run *domain.Run) (err error) {
	if run == nil {
		return fmt.Errorf("%w: run is nil", domain.ErrInvalidInput)
	}
	for _, proj := range run.Projections {
		if len(proj.Points) != len(run.Papers) || len(proj.Records) != len(run.Papers) {
			return fmt.Errorf("%w: %s has %d points and %d records for %d papers",
				domain.ErrLengthMismatch, proj.Algorithm, len(proj.Points), len(proj.Records), len(run.Papers))
		}
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, completed_at, input_path, output_dir, provider, model, dimensions, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), nullTime(run.CompletedAt), run.InputPath, run.OutputDir,
		run.Provider, run.Model, run.Dimensions, run.Seed)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	paperStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO papers (run_id, paper_id, title, authors, session, location, url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	for _, p := range run.Papers {
		if _, err = paperStmt.ExecContext(ctx, run.ID, p.ID, p.Title, p.Authors, p.Session, p.Location, p.URL); err != nil {
			return fmt.Errorf("saving paper %d: %w", p.ID, err)
		}
	}

	coordStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coordinates (run_id, paper_id, algorithm, raw_x, raw_y, x, y)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing coordinate insert: %w", err)
	}
	defer coordStmt.Close()

	for _, proj := range run.Projections {
		for i, rec := range proj.Records {
			raw := proj.Points[i]
			if _, err = coordStmt.ExecContext(ctx, run.ID, rec.ID, proj.Algorithm, raw.X, raw.Y, rec.X, rec.Y); err != nil {
				return fmt.Errorf("saving %s coordinates for paper %d: %w", proj.Algorithm, rec.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.provider, r.model, r.seed,
			(SELECT COUNT(*) FROM papers p WHERE p.run_id = r.id),
			COALESCE((SELECT GROUP_CONCAT(DISTINCT c.algorithm) FROM coordinates c WHERE c.run_id = r.id), '')
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var algorithms string
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Provider, &r.Model, &r.Seed, &r.Papers, &algorithms); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if algorithms != "" {
			r.Algorithms = strings.Split(algorithms, ",")
			sort.Strings(r.Algorithms)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Coordinates returns the normalised records of one algorithm in a run,
// ordered by paper ID.
func (s *Store) Coordinates(ctx context.Context, runID, algorithm string) ([]domain.VisualizationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.paper_id, p.title, p.authors, p.session, p.location, p.url, c.x, c.y
		FROM coordinates c
		JOIN papers p ON p.run_id = c.run_id AND p.paper_id = c.paper_id
		WHERE c.run_id = ? AND c.algorithm = ?
		ORDER BY p.paper_id
	`, runID, algorithm)
	if err != nil {
		return nil, fmt.Errorf("querying coordinates: %w", err)
	}
	defer rows.Close()

	var records []domain.VisualizationRecord
	for rows.Next() {
		var r domain.VisualizationRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Authors, &r.Session, &r.Location, &r.URL, &r.X, &r.Y); err != nil {
			return nil, fmt.Errorf("scanning coordinates: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
