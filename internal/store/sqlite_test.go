package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqliteMigrations = filepath.Join("..", "..", "migrations")

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "league.db"), SQLiteOptions{MigrationsDir: sqliteMigrations})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return newTestSQLiteStore(t) })
}

func TestSQLiteMigrationsApplyOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "league.db")

	s, err := NewSQLiteStore(ctx, path, SQLiteOptions{MigrationsDir: sqliteMigrations})
	require.NoError(t, err)
	_, err = s.InsertRoster(ctx, "Kim", "a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path, SQLiteOptions{MigrationsDir: sqliteMigrations})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	applied, err := reopened.Migrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, applied)

	roster, err := reopened.ListRoster(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 1, "data survives reopening")
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), " ", SQLiteOptions{})
	assert.Error(t, err)
}

func TestSQLiteMigrationsFromFS(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"migrations/001_init.sql": {Data: mustReadFile(t, filepath.Join(sqliteMigrations, "001_init.sql"))},
		"migrations/README.md":    {Data: []byte("not sql")},
	}

	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "league.db"), SQLiteOptions{Migrations: fsys})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	applied, err := s.Migrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, applied)

	_, err = s.InsertRoster(ctx, "Kim", "a")
	assert.NoError(t, err, "schema comes from the embedded files")
}

func TestSQLiteMigrationsDirWinsOverFS(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "league.db"), SQLiteOptions{
		MigrationsDir: sqliteMigrations,
		Migrations:    fstest.MapFS{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	applied, err := s.Migrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, applied)
}

func mustReadFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	return data
}
