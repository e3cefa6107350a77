package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-specd/pkg/specd"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <catalog>",
		Short: "Copy a catalog into a SQLite table",
		Long: `Create a table named after the catalog (or --table) in the SQLite
database given by --database and insert every row. Without --database the
table is built in memory, which only checks that the conversion succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd.Context())
			cat := e.cfg.Catalog(args[0])
			log := e.log.WithField("catalog", cat.Root)

			db, err := specd.OpenSQLite(cmd.Context(), e.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			log.Infof("converting into SQLite database %q", e.cfg.Database)
			table, err := specd.ExportSQLite(cmd.Context(), db, cat, e.cfg.Table)
			if err != nil {
				return err
			}
			log.Infof("insertion into %q was successful", table)
			return e.renderer.Message("exported %s to table %q", cat.Root, table)
		},
	}
	cmd.Flags().String("database", "", "SQLite database path (default: in-memory)")
	cmd.Flags().String("table", "", "table name (default: catalog name)")
	return cmd
}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <catalog>",
		Short: "Write a SQLite table as a catalog",
		Long: `Write the table given by --table from the SQLite database given by
--database as the catalog's CSV. FILE columns are moved to the end. An
existing CSV is renamed to a backup first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd.Context())
			if e.cfg.Database == "" || e.cfg.Table == "" {
				return errors.New("import requires --database and --table")
			}
			cat := e.cfg.Catalog(args[0])

			db, err := specd.OpenSQLite(cmd.Context(), e.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			backup, err := specd.ImportSQLite(cmd.Context(), db, e.cfg.Table, cat)
			if err != nil {
				return err
			}
			if backup != "" {
				e.log.WithField("catalog", cat.Root).Infof("previous data file moved to %s", backup)
			}
			return e.renderer.Message("imported table %q to %s", e.cfg.Table, cat.Path())
		},
	}
	cmd.Flags().String("database", "", "SQLite database path")
	cmd.Flags().String("table", "", "table name")
	return cmd
}
