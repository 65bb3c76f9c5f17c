// Package cli provides the modeladmin command-line interface over the demo
// user model.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-modeladmin/pkg/prompt"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type envKey struct{}

// env is the per-invocation state built by the root command.
type env struct {
	cfg    *Config
	log    logger.Logger
	driver prompt.Driver
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(driver prompt.Driver) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "modeladmin",
		Short: "Administer the demo user model",
		Long: `modeladmin lists, inspects and edits the demo user model through the
sql, document or gorm admin backends.

Configuration is read from ./modeladmin.yaml, MODELADMIN_* environment
variables and flags, in increasing precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			level := logger.LevelInfo
			if cfg.Verbose {
				level = logger.LevelTrace
			}
			e := &env{cfg: cfg, log: logger.NewConsoleLogger(level), driver: driver}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (%s)\n", GitCommit))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	flags.String("backend", "", "admin backend (sql|document|gorm)")
	flags.String("driver", "", "sql dialect (sqlite|postgres|mysql|sqlserver)")
	flags.String("dsn", "", "database connection string")
	flags.String("path", "", "document store file")
	flags.Int("per-page", 0, "rows per listing page")
	flags.BoolP("verbose", "v", false, "trace backend activity")
	flags.StringP("output", "o", "", "output format (table|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sql", "document", "gorm"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newInitCommand(),
		newSchemaCommand(),
		newListCommand(),
		newGetCommand(),
		newCreateCommand(),
		newEditCommand(),
		newDeleteCommand(),
		newOpenAPICommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func envFrom(cmd *cobra.Command) (*env, error) {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e, nil
	}
	return nil, errors.New("configuration not loaded")
}

// withSession opens the configured backend for the duration of fn.
func withSession(cmd *cobra.Command, fn func(e *env, s *session) error) error {
	e, err := envFrom(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), e.cfg, e.log)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(e, s)
}
