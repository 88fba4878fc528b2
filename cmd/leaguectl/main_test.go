package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"f1league-app/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:      "leaguectl",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "missing.yaml"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			standingsCommand(),
			exportCommand(),
			chartCommand(),
			hashPasswordCommand(),
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "hash-password", "s3cret"}))

	hash := strings.TrimSpace(out.String())
	assert.True(t, auth.CheckPassword(hash, "s3cret"))
}

func TestStandingsUsesSeededDevStore(t *testing.T) {
	t.Setenv("APP", "dev")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "standings"}))
	assert.Contains(t, out.String(), "DRIVER")

	out.Reset()
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "standings", "--constructors"}))
	assert.Contains(t, out.String(), "TEAM")
}

func TestExportAndChartWriteFiles(t *testing.T) {
	t.Setenv("APP", "dev")
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()

	var out bytes.Buffer
	xlsx := filepath.Join(dir, "standings.xlsx")
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "export", "--out", xlsx}))
	raw, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx is a zip archive")

	png := filepath.Join(dir, "chart.png")
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "chart", "--out", png, "--top", "3"}))
	raw, err = os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestMigrateRejectsMemoryStore(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	var out bytes.Buffer
	err := testApp(&out).Run([]string{"leaguectl", "migrate"})
	assert.ErrorContains(t, err, "sqlite or postgres")
}

func TestMigrateSQLite(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "league.db"))
	t.Setenv("DB_MIGRATIONS_DIR", "../../migrations")

	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"leaguectl", "migrate"}))
	assert.Contains(t, out.String(), "001_init.sql")
}
