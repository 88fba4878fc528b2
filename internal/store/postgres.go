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
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

type PostgresOptions struct {
	// MigrationsDir is a directory on disk holding the *.sql files.
	MigrationsDir string
	// Migrations is read at "migrations/postgres" when MigrationsDir is empty,
	// typically the binary's embedded files.
	Migrations fs.FS
}

func NewPostgresStore(ctx context.Context, dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	fsys, dir := migrationSource(opts.MigrationsDir, opts.Migrations, "migrations/postgres")
	if err := applyMigrations(ctx, db, fsys, dir, `INSERT INTO schema_migrations (filename) VALUES ($1)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) Migrations(ctx context.Context) ([]string, error) {
	return AppliedMigrations(ctx, s.db)
}

func (s *PostgresStore) ListOverrides(ctx context.Context) ([]model.GroupOverride, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT competitor_id, group_name, group_color, updated_at FROM group_overrides ORDER BY competitor_id`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	out := []model.GroupOverride{}
	for rows.Next() {
		o, err := scanOverrideRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertOverride(ctx context.Context, o model.GroupOverride) error {
	if err := checkOverride(o); err != nil {
		return err
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO group_overrides (competitor_id, group_name, group_color, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (competitor_id) DO UPDATE SET
  group_name = EXCLUDED.group_name,
  group_color = EXCLUDED.group_color,
  updated_at = EXCLUDED.updated_at`,
		o.CompetitorID, o.Group, o.GroupColor, o.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteOverride(ctx context.Context, competitorID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM group_overrides WHERE competitor_id = $1`, competitorID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

const pgResultColumns = `event_id, ranked, driver_of_the_day, fastest_lap, most_overtakes, cleanest_driver, updated_at`

func (s *PostgresStore) ListResults(ctx context.Context) ([]model.EventResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pgResultColumns+` FROM event_results ORDER BY event_id`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := []model.EventResult{}
	for rows.Next() {
		r, err := scanResultRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetResult(ctx context.Context, eventID int) (model.EventResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pgResultColumns+` FROM event_results WHERE event_id = $1`, eventID)
	r, err := scanResultRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventResult{}, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) UpsertResult(ctx context.Context, r model.EventResult) error {
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
INSERT INTO event_results (`+pgResultColumns+`)
VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7)
ON CONFLICT (event_id) DO UPDATE SET
  ranked = EXCLUDED.ranked,
  driver_of_the_day = EXCLUDED.driver_of_the_day,
  fastest_lap = EXCLUDED.fastest_lap,
  most_overtakes = EXCLUDED.most_overtakes,
  cleanest_driver = EXCLUDED.cleanest_driver,
  updated_at = EXCLUDED.updated_at`,
		r.EventID, ranked, r.DriverOfTheDay, r.FastestLap, r.MostOvertakes, r.CleanestDriver, r.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteResult(ctx context.Context, eventID int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM event_results WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRoster(ctx context.Context) ([]model.RosterAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, player_name, competitor_id, created_at FROM roster_assignments ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	out := []model.RosterAssignment{}
	for rows.Next() {
		a, err := scanRosterRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertRoster(ctx context.Context, playerName, competitorID string) (string, error) {
	if err := checkRoster(playerName, competitorID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO roster_assignments (id, player_name, competitor_id, created_at) VALUES ($1, $2, $3, $4)`,
		id, strings.TrimSpace(playerName), competitorID, s.now().UTC())
	if err != nil {
		if isPgUnique(err) {
			return "", ErrCompetitorTaken
		}
		return "", fmt.Errorf("insert roster: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) DeleteRoster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roster_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete roster: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) UpdateRoster(ctx context.Context, id, competitorID string) error {
	if strings.TrimSpace(competitorID) == "" {
		return fmt.Errorf("%w: roster entry without competitor", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE roster_assignments SET competitor_id = $1 WHERE id = $2`, competitorID, id)
	if err != nil {
		if isPgUnique(err) {
			return ErrCompetitorTaken
		}
		return fmt.Errorf("update roster: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE group_overrides, event_results, roster_assignments`); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanOverrideRow(scanner interface{ Scan(dest ...any) error }) (model.GroupOverride, error) {
	var o model.GroupOverride
	var updatedAt sql.NullTime
	if err := scanner.Scan(&o.CompetitorID, &o.Group, &o.GroupColor, &updatedAt); err != nil {
		return model.GroupOverride{}, err
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	return o, nil
}

func scanResultRow(scanner interface{ Scan(dest ...any) error }) (model.EventResult, error) {
	var r model.EventResult
	var ranked []byte
	var updatedAt sql.NullTime
	if err := scanner.Scan(&r.EventID, &ranked, &r.DriverOfTheDay, &r.FastestLap, &r.MostOvertakes, &r.CleanestDriver, &updatedAt); err != nil {
		return model.EventResult{}, err
	}
	list, err := decodeRanked(string(ranked))
	if err != nil {
		return model.EventResult{}, err
	}
	r.Ranked = list
	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time
	}
	return r, nil
}

func scanRosterRow(scanner interface{ Scan(dest ...any) error }) (model.RosterAssignment, error) {
	var a model.RosterAssignment
	var createdAt sql.NullTime
	if err := scanner.Scan(&a.ID, &a.PlayerName, &a.CompetitorID, &createdAt); err != nil {
		return model.RosterAssignment{}, err
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	return a, nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
