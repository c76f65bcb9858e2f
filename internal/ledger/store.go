package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"loom/internal/config"
	"loom/internal/services"
)

const (
	dbFileName   = "loom.db"
	lockFileName = "loom.lock"
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the workspace ledger for writing. It takes
// the workspace lock; a second writer in the same workspace is refused until
// the first store is closed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.Workspace, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another loom run is active in %s", cfg.Paths.Workspace)
	}

	store, err := open(filepath.Join(cfg.Paths.Workspace, dbFileName))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	store.lock = lock
	return store, nil
}

// OpenReadOnly connects to an existing ledger without taking the workspace
// lock, so inspection commands can run beside an active alignment. WAL mode
// keeps such reads from blocking the writer.
func OpenReadOnly(cfg *config.Config) (*Store, error) {
	path := filepath.Join(cfg.Paths.Workspace, dbFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "ledger", "open",
				fmt.Sprintf("no run ledger at %s", path), nil)
		}
		return nil, fmt.Errorf("stat ledger: %w", err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the workspace lock and closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
		s.lock = nil
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a new run in the running state and returns it.
func (s *Store) BeginRun(ctx context.Context, spec RunSpec) (*Run, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	tiersJSON, err := json.Marshal(spec.Tiers)
	if err != nil {
		return nil, fmt.Errorf("marshal tier list: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, audio_path, transcript_path, tiers_json, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		spec.AudioPath,
		spec.TranscriptPath,
		string(tiersJSON),
		RunRunning,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.Run(ctx, id)
}

// RecordSegment appends one segment outcome to a run.
func (s *Store) RecordSegment(ctx context.Context, runID string, seg Segment) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO segments (
            run_id, seg_index, tier, t1, t2, text, status, detail, elapsed_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		seg.Index,
		seg.Tier,
		seg.T1,
		seg.T2,
		nullableString(seg.Text),
		seg.Status,
		nullableString(seg.Detail),
		seg.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

// FinishRun records the terminal status and output location of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus, outputPath, errorMessage string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, output_path = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(outputPath),
		nullableString(errorMessage),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "ledger", "finish run", fmt.Sprintf("run %s", id), nil)
	}
	return nil
}

// Run fetches a run by identifier. A missing run returns nil without error.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Runs returns runs newest first. A limit of zero or less returns all of
// them.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Segments returns a run's segments in the order they were recorded.
func (s *Store) Segments(ctx context.Context, runID string) ([]*Segment, error) {
	return s.querySegments(ctx, `SELECT `+segmentColumns+` FROM segments WHERE run_id = ? ORDER BY id`, runID)
}

// FailedSegments returns only the segments that did not align.
func (s *Store) FailedSegments(ctx context.Context, runID string) ([]*Segment, error) {
	return s.querySegments(ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE run_id = ? AND status = '`+string(SegmentFailed)+`' ORDER BY id`,
		runID)
}

func (s *Store) querySegments(ctx context.Context, query string, args ...any) ([]*Segment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// SegmentStats returns a count of a run's segments grouped by status.
func (s *Store) SegmentStats(ctx context.Context, runID string) (map[SegmentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM segments WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("segment stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[SegmentStatus]int)
	for rows.Next() {
		var status SegmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const runColumns = "id, audio_path, transcript_path, tiers_json, status, output_path, error_message, created_at, updated_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           string
		audioPath    string
		transcript   string
		tiersRaw     sql.NullString
		statusStr    string
		outputPath   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&audioPath,
		&transcript,
		&tiersRaw,
		&statusStr,
		&outputPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:             id,
		AudioPath:      audioPath,
		TranscriptPath: transcript,
		Status:         RunStatus(statusStr),
		OutputPath:     outputPath.String,
		ErrorMessage:   errorMessage.String,
	}
	if tiersRaw.Valid && tiersRaw.String != "" {
		if err := json.Unmarshal([]byte(tiersRaw.String), &run.Tiers); err != nil {
			return nil, fmt.Errorf("decode tier list: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

const segmentColumns = "id, run_id, seg_index, tier, t1, t2, text, status, detail, elapsed_ms"

func scanSegment(scanner interface{ Scan(dest ...any) error }) (*Segment, error) {
	var (
		id        int64
		runID     string
		index     int
		tier      string
		t1        float64
		t2        float64
		text      sql.NullString
		statusStr string
		detail    sql.NullString
		elapsedMS int64
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&index,
		&tier,
		&t1,
		&t2,
		&text,
		&statusStr,
		&detail,
		&elapsedMS,
	); err != nil {
		return nil, err
	}

	return &Segment{
		ID:      id,
		RunID:   runID,
		Index:   index,
		Tier:    tier,
		T1:      t1,
		T2:      t2,
		Text:    text.String,
		Status:  SegmentStatus(statusStr),
		Detail:  detail.String,
		Elapsed: time.Duration(elapsedMS) * time.Millisecond,
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
