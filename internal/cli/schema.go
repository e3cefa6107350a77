package cli

import (
	"github.com/spf13/cobra"

	"github.com/shapestone/shape-specd/internal/cli/output"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <catalog>",
		Short: "Show the column types of a catalog",
		Long: `Resolve the type of every column over all rows and print it.
Rows are read leniently and type mismatches are ignored; use validate to
find them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd.Context())
			cat := e.cfg.Catalog(args[0])

			header, types, err := cat.Types(cmd.Context())
			if err != nil {
				return err
			}
			e.log.WithField("catalog", cat.Root).Infof("types are %s", types)
			return e.renderer.Schema(output.NewSchemaDoc(cat.Root, header, types))
		},
	}
}
