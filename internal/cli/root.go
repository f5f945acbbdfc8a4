// Package cli provides the command-line interface for the Oracle T2T
// column-lineage resolver.
package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/oracle-t2t/lineage/internal/cli/commands"
	"github.com/oracle-t2t/lineage/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	runID   string
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "t2tlineage",
		Short:   "Oracle T2T column-lineage resolver",
		Long:    "t2tlineage resolves Oracle T2T SQL mapping rows to physical column lineage, walking each statement's scope tree the way a human reviewer would trace a reference back to its source table.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "using config file: %s\n", used)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./t2tlineage.yaml)")
	rootCmd.PersistentFlags().String("sql-dir", "", "directory of .sql files to resolve")
	rootCmd.PersistentFlags().String("data-model", "", "path to the YAML data-model contract")
	rootCmd.PersistentFlags().String("mapping-file", "", "path to the YAML mapping contract")
	rootCmd.PersistentFlags().Int("max-depth", 0, "resolver recursion depth guard (0 = use default)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewResolveCommand(GetConfig, GetRunID))
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command. Each invocation gets its own run ID so a
// batch of files processed together (or a re-run against the same file) can
// be told apart in downstream tooling and log lines.
func Execute() error {
	runID = uuid.New().String()
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig returns the configuration loaded by PersistentPreRunE.
func GetConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{
		SQLDir:       config.DefaultSQLDir,
		MaxDepth:     config.DefaultMaxDepth,
		OutputFormat: config.DefaultOutputFormat,
	}
}

// GetRunID returns the current invocation's run ID, generating one on first
// use so commands invoked directly in tests (without going through Execute)
// still get a stable, non-empty value.
func GetRunID() string {
	if runID == "" {
		runID = uuid.New().String()
	}
	return runID
}
