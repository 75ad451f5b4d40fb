package db

import (
	"context"
	"fmt"
	"io"
)

// RunMigrateCommand handles the 'migrate' subcommand. Open has already
// applied every pending migration, so "up" only reports the version.
func RunMigrateCommand(database *DB, args []string, w io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(w)
		return fmt.Errorf("migrate: missing action")
	}

	switch args[0] {
	case "up":
		if err := database.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := database.MigrateDown(); err != nil {
			return err
		}
	case "status":
	case "help":
		PrintMigrateHelp(w)
		return nil
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("migrate: unknown action %q", args[0])
	}

	version, dirty, err := database.MigrateVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	fmt.Fprintf(w, "Current version: %d\n", version)
	fmt.Fprintf(w, "Dirty: %v\n", dirty)
	if dirty {
		fmt.Fprintln(w, "WARNING: a migration failed mid-execution; inspect the database before continuing.")
	}
	return nil
}

// PrintMigrateHelp writes the migrate subcommand usage.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, `Usage: pointcull -db <path> migrate <action>

Actions:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  status   Show the current schema version
  help     Show this help`)
}

// PrintRuns writes one line per stored run, newest first.
func PrintRuns(ctx context.Context, database *DB, w io.Writer) error {
	runs, err := database.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no stored runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %6d points  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.PointCount, r.Label)
	}
	return nil
}
