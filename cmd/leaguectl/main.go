package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"f1league-app/internal/app"
	"f1league-app/internal/auth"
	"f1league-app/internal/config"
	"f1league-app/internal/league"
	"f1league-app/internal/report"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cliApp := &cli.App{
		Name:  "leaguectl",
		Usage: "manage and inspect the fantasy league",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file", EnvVars: []string{"CONFIG_PATH"}},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			standingsCommand(),
			exportCommand(),
			chartCommand(),
			hashPasswordCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env is what every data command needs. close releases the store and service.
type env struct {
	svc   *league.Service
	close func()
}

func open(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg, os.Stderr)
	ref, err := app.LoadReference(cfg)
	if err != nil {
		return nil, err
	}
	st, err := app.OpenStore(c.Context, cfg, ref, nil, logger)
	if err != nil {
		return nil, err
	}
	svc, err := league.NewService(st, ref, league.Options{Logger: logger})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &env{
		svc: svc,
		close: func() {
			_ = svc.Close()
			_ = st.Close()
		},
	}, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending migrations and list the applied ones",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.DriverMemory {
				return fmt.Errorf("migrate needs a sqlite or postgres store, set DB_PATH or POSTGRES_DSN")
			}
			logger := app.NewLogger(cfg, os.Stderr)
			ref, err := app.LoadReference(cfg)
			if err != nil {
				return err
			}
			st, err := app.OpenStore(c.Context, cfg, ref, nil, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			m, ok := st.(app.Migrator)
			if !ok {
				return fmt.Errorf("store %s does not track migrations", cfg.Store.Driver)
			}
			applied, err := m.Migrations(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Applied migrations (%s):\n", cfg.Store.Driver)
			for _, name := range applied {
				fmt.Fprintf(c.App.Writer, "  %s\n", name)
			}
			return nil
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the current standings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "constructors", Usage: "print team standings instead of drivers"},
		},
		Action: func(c *cli.Context) error {
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.close()

			table, err := e.svc.Standings(c.Context)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			if c.Bool("constructors") {
				fmt.Fprintln(tw, "#\tTEAM\tPOINTS")
				for i, t := range table.Constructors {
					fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, t.Group, t.Points)
				}
				return tw.Flush()
			}
			fmt.Fprintln(tw, "#\tDRIVER\tTEAM\tPOINTS\tDOTD\tFL\tMO\tCD")
			for i, d := range table.Drivers {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
					i+1, d.DisplayName(), d.Group, d.Points,
					d.Awards.DriverOfTheDay, d.Awards.FastestLap, d.Awards.MostOvertakes, d.Awards.CleanestDriver)
			}
			return tw.Flush()
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the standings workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "standings.xlsx", Usage: "output file, - for stdout"},
		},
		Action: func(c *cli.Context) error {
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.close()

			table, err := e.svc.Standings(c.Context)
			if err != nil {
				return err
			}
			placements, err := e.svc.Placements(c.Context)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := report.WriteStandingsXLSX(&buf, table, placements); err != nil {
				return err
			}
			return writeOutput(c, c.String("out"), buf.Bytes())
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "render the points progression chart as PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "progression.png", Usage: "output file, - for stdout"},
			&cli.IntFlag{Name: "top", Value: 5, Usage: "number of drivers to plot"},
		},
		Action: func(c *cli.Context) error {
			if c.Int("top") < 1 {
				return fmt.Errorf("--top must be at least 1")
			}
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.close()

			series, err := e.svc.Progression(c.Context)
			if err != nil {
				return err
			}
			png, err := report.ProgressionChart(series, e.svc.Reference().Events(), c.Int("top"))
			if err != nil {
				return err
			}
			return writeOutput(c, c.String("out"), png)
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print a bcrypt hash for ADMIN_PASSWORD_HASH",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one password argument", 2)
			}
			hash, err := auth.HashPassword(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

func writeOutput(c *cli.Context, path string, data []byte) error {
	var w io.Writer = c.App.Writer
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(c.App.ErrWriter, "Wrote %s (%d bytes)\n", path, len(data))
	}
	return nil
}
