package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-specd/pkg/specd"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog>...",
		Short: "Check catalogs against Spec D",
		Long: `Check each catalog: header labels, FILE column placement, column types
across every row, and the existence of referenced files.

Exits non-zero if any catalog fails or cannot be read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd.Context())
			opts := specd.Options{Quick: e.cfg.Quick, Logger: e.log}

			failed := 0
			for _, root := range args {
				report, err := specd.Validate(cmd.Context(), e.cfg.Catalog(root), opts)
				if rerr := e.renderer.Report(report); rerr != nil {
					return rerr
				}
				if err != nil || !report.Passed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d catalogs", ErrValidationFailed, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().Bool("quick", false, "check only the header and first data row")
	return cmd
}
