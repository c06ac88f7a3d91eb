package manifest

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

	"encoderkit/internal/config"
)

// Outcome is the result of a download attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Attempt is one recorded download attempt.
type Attempt struct {
	ID           int64
	Destination  string
	SourceURL    string
	SourceKey    string
	Outcome      Outcome
	Stage        string
	ErrorMessage string
	SHA256       string
	SizeBytes    int64
	Verified     bool
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Succeeded reports whether the attempt installed a binary.
func (a Attempt) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the state directory and opens the manifest configured by cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("manifest: nil config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.ManifestPath())
}

// OpenPath initializes or connects to the manifest database at path.
func OpenPath(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("manifest: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
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

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordAttempt inserts an attempt and returns its identifier.
func (s *Store) RecordAttempt(ctx context.Context, attempt Attempt) (int64, error) {
	if strings.TrimSpace(attempt.Destination) == "" {
		return 0, errors.New("record attempt: destination required")
	}
	if attempt.Outcome == "" {
		return 0, errors.New("record attempt: outcome required")
	}
	now := time.Now().UTC()
	if attempt.StartedAt.IsZero() {
		attempt.StartedAt = now
	}
	if attempt.FinishedAt.IsZero() {
		attempt.FinishedAt = now
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO download_attempts (
            destination, source_url, source_key, outcome, stage, error_message,
            sha256, size_bytes, verified, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.Destination,
		nullableString(attempt.SourceURL),
		nullableString(attempt.SourceKey),
		string(attempt.Outcome),
		nullableString(attempt.Stage),
		nullableString(attempt.ErrorMessage),
		nullableString(attempt.SHA256),
		attempt.SizeBytes,
		boolToInt(attempt.Verified),
		attempt.StartedAt.UTC().Format(time.RFC3339Nano),
		attempt.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// LastAttempt returns the most recent attempt for destination, or nil.
func (s *Store) LastAttempt(ctx context.Context, destination string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM download_attempts WHERE destination = ? ORDER BY id DESC LIMIT 1`,
		destination,
	)
	return scanOptional(row, "last attempt")
}

// LastSuccess returns the most recent successful attempt for destination, or nil.
func (s *Store) LastSuccess(ctx context.Context, destination string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM download_attempts WHERE destination = ? AND outcome = ? ORDER BY id DESC LIMIT 1`,
		destination, string(OutcomeSuccess),
	)
	return scanOptional(row, "last success")
}

// List returns up to limit attempts, newest first. A non-positive limit returns all rows.
func (s *Store) List(ctx context.Context, limit int) ([]Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM download_attempts ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		attempts = append(attempts, *attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

const attemptColumns = `id, destination, source_url, source_key, outcome, stage, error_message,
    sha256, size_bytes, verified, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOptional(row *sql.Row, op string) (*Attempt, error) {
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return attempt, nil
}

func scanAttempt(row scanner) (*Attempt, error) {
	var (
		attempt                                       Attempt
		sourceURL, sourceKey, stage, errMsg, checksum sql.NullString
		outcome, startedAt, finishedAt                string
		verified                                      int
	)
	if err := row.Scan(
		&attempt.ID,
		&attempt.Destination,
		&sourceURL,
		&sourceKey,
		&outcome,
		&stage,
		&errMsg,
		&checksum,
		&attempt.SizeBytes,
		&verified,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	attempt.SourceURL = sourceURL.String
	attempt.SourceKey = sourceKey.String
	attempt.Outcome = Outcome(outcome)
	attempt.Stage = stage.String
	attempt.ErrorMessage = errMsg.String
	attempt.SHA256 = checksum.String
	attempt.Verified = verified != 0
	attempt.StartedAt = parseTime(startedAt)
	attempt.FinishedAt = parseTime(finishedAt)
	return &attempt, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
