package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/freelog/freelog/internal/infrastructure/migrations"
	"github.com/freelog/freelog/internal/infrastructure/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Open the database, apply every pending migration and print the schema
version. The previous file is kept as {database.path}.bak.`,
	RunE: runMigrate,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recent migrations",
	RunE:  runRollback,
}

func init() {
	rollbackCmd.Flags().Int("steps", 1, "number of migrations to revert")
	migrateCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, err := sqlite.NewDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return printStatus(cmd.OutOrStdout(), db)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	db, err := sqlite.NewDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Rollback(db.Connection(), steps); err != nil {
		return fmt.Errorf("rolling back %d migration(s): %w", steps, err)
	}
	return printStatus(cmd.OutOrStdout(), db)
}

func printStatus(w io.Writer, db *sqlite.DB) error {
	st, err := migrations.CurrentStatus(db.Connection())
	if err != nil {
		return err
	}
	switch {
	case !st.Applied:
		_, _ = fmt.Fprintln(w, "Schema: no migrations applied")
	case st.Dirty:
		_, _ = fmt.Fprintf(w, "Schema: version %d (dirty)\n", st.Version)
	default:
		_, _ = fmt.Fprintf(w, "Schema: version %d\n", st.Version)
	}
	return nil
}
