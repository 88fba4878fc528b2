package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"f1league-app/internal/model"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

type SQLiteOptions struct {
	// MigrationsDir is a directory on disk holding the *.sql files.
	MigrationsDir string
	// Migrations is read at "migrations" when MigrationsDir is empty,
	// typically the binary's embedded files.
	Migrations fs.FS
}

func NewSQLiteStore(ctx context.Context, path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	fsys, dir := migrationSource(opts.MigrationsDir, opts.Migrations, "migrations")
	if err := applyMigrations(ctx, db, fsys, dir, `INSERT INTO schema_migrations (filename) VALUES (?)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Migrations(ctx context.Context) ([]string, error) {
	return AppliedMigrations(ctx, s.db)
}

func (s *SQLiteStore) ListOverrides(ctx context.Context) ([]model.GroupOverride, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT competitor_id, group_name, group_color, updated_at FROM group_overrides ORDER BY competitor_id`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	out := []model.GroupOverride{}
	for rows.Next() {
		o, err := scanSQLiteOverrideRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertOverride(ctx context.Context, o model.GroupOverride) error {
	if err := checkOverride(o); err != nil {
		return err
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO group_overrides (competitor_id, group_name, group_color, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (competitor_id) DO UPDATE SET
  group_name = excluded.group_name,
  group_color = excluded.group_color,
  updated_at = excluded.updated_at`,
		o.CompetitorID, o.Group, o.GroupColor, formatTime(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteOverride(ctx context.Context, competitorID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM group_overrides WHERE competitor_id = ?`, competitorID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

const sqliteResultColumns = `event_id, ranked, driver_of_the_day, fastest_lap, most_overtakes, cleanest_driver, updated_at`

func (s *SQLiteStore) ListResults(ctx context.Context) ([]model.EventResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteResultColumns+` FROM event_results ORDER BY event_id`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := []model.EventResult{}
	for rows.Next() {
		r, err := scanSQLiteResultRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetResult(ctx context.Context, eventID int) (model.EventResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteResultColumns+` FROM event_results WHERE event_id = ?`, eventID)
	r, err := scanSQLiteResultRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventResult{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) UpsertResult(ctx context.Context, r model.EventResult) error {
	if err := checkResult(r); err != nil {
		return err
	}
	ranked, err := encodeRanked(r.Ranked)
	if err != nil {
		return err
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = s.now()
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO event_results (`+sqliteResultColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (event_id) DO UPDATE SET
  ranked = excluded.ranked,
  driver_of_the_day = excluded.driver_of_the_day,
  fastest_lap = excluded.fastest_lap,
  most_overtakes = excluded.most_overtakes,
  cleanest_driver = excluded.cleanest_driver,
  updated_at = excluded.updated_at`,
		r.EventID, ranked, r.DriverOfTheDay, r.FastestLap, r.MostOvertakes, r.CleanestDriver, formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteResult(ctx context.Context, eventID int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM event_results WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRoster(ctx context.Context) ([]model.RosterAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, player_name, competitor_id, created_at FROM roster_assignments ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	out := []model.RosterAssignment{}
	for rows.Next() {
		a, err := scanSQLiteRosterRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertRoster(ctx context.Context, playerName, competitorID string) (string, error) {
	if err := checkRoster(playerName, competitorID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO roster_assignments (id, player_name, competitor_id, created_at) VALUES (?, ?, ?, ?)`,
		id, strings.TrimSpace(playerName), competitorID, formatTime(s.now()))
	if err != nil {
		if isSQLiteUnique(err) {
			return "", ErrCompetitorTaken
		}
		return "", fmt.Errorf("insert roster: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) DeleteRoster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roster_assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete roster: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) UpdateRoster(ctx context.Context, id, competitorID string) error {
	if strings.TrimSpace(competitorID) == "" {
		return fmt.Errorf("%w: roster entry without competitor", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE roster_assignments SET competitor_id = ? WHERE id = ?`, competitorID, id)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrCompetitorTaken
		}
		return fmt.Errorf("update roster: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, table := range []string{"group_overrides", "event_results", "roster_assignments"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteOverrideRow(scanner interface{ Scan(dest ...any) error }) (model.GroupOverride, error) {
	var o model.GroupOverride
	var updatedAt string
	if err := scanner.Scan(&o.CompetitorID, &o.Group, &o.GroupColor, &updatedAt); err != nil {
		return model.GroupOverride{}, err
	}
	o.UpdatedAt = parseTime(updatedAt)
	return o, nil
}

func scanSQLiteResultRow(scanner interface{ Scan(dest ...any) error }) (model.EventResult, error) {
	var r model.EventResult
	var ranked, updatedAt string
	if err := scanner.Scan(&r.EventID, &ranked, &r.DriverOfTheDay, &r.FastestLap, &r.MostOvertakes, &r.CleanestDriver, &updatedAt); err != nil {
		return model.EventResult{}, err
	}
	list, err := decodeRanked(ranked)
	if err != nil {
		return model.EventResult{}, err
	}
	r.Ranked = list
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func scanSQLiteRosterRow(scanner interface{ Scan(dest ...any) error }) (model.RosterAssignment, error) {
	var a model.RosterAssignment
	var createdAt string
	if err := scanner.Scan(&a.ID, &a.PlayerName, &a.CompetitorID, &createdAt); err != nil {
		return model.RosterAssignment{}, err
	}
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

func isSQLiteUnique(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
