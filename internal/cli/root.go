// Package cli provides the specd command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shapestone/shape-specd/internal/cli/config"
	"github.com/shapestone/shape-specd/internal/cli/output"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// ErrValidationFailed is returned by validate when a catalog fails.
var ErrValidationFailed = errors.New("validation failed")

// env carries the resolved configuration and collaborators of one command run.
type env struct {
	cfg      *config.Config
	log      *logrus.Logger
	renderer *output.Renderer
}

type envKey struct{}

func getEnv(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	cfg := &config.Config{DataFile: "data.csv", Output: config.DefaultOutput}
	return &env{
		cfg:      cfg,
		log:      newLogger(io.Discard, cfg),
		renderer: output.NewRenderer(io.Discard, output.ModeText, false),
	}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "specd",
		Short: "Validate and convert Cinema Spec D catalogs",
		Long: `specd checks Cinema Spec D catalogs: a directory holding one CSV file
whose FILE columns reference files under the directory.

It verifies the header, infers column types, checks every row against them,
and confirms that referenced files exist. Catalogs can also be exported to
and imported from SQLite.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			e := &env{
				cfg:      cfg,
				log:      newLogger(cmd.ErrOrStderr(), cfg),
				renderer: output.NewRenderer(cmd.OutOrStdout(), output.Mode(cfg.Output), cfg.Verbose),
			}
			if cfg.File != "" {
				e.log.Debugf("using config file %s", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./specd.yaml)")
	rootCmd.PersistentFlags().String("data-file", "", "CSV file name inside the catalog (default: data.csv)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log info messages")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// newLogger builds the process logger: warnings by default, info with
// verbose, or an explicit level.
func newLogger(w io.Writer, cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		l.SetLevel(logrus.InfoLevel)
	}
	if cfg.LogLevel != "" {
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			l.SetLevel(lvl)
		} else {
			l.Warnf("ignoring log level %q: %v", cfg.LogLevel, err)
		}
	}
	return l
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
