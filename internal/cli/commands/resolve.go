// Package commands holds per-command constructors for the t2tlineage CLI,
// following the teacher's New...Command-per-file shape.
package commands

import (
	"fmt"
	"os"

	"github.com/oracle-t2t/lineage/internal/cli/output"
	"github.com/oracle-t2t/lineage/internal/cli/pipeline"
	"github.com/oracle-t2t/lineage/internal/config"
	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/spf13/cobra"
)

// NewResolveCommand runs the full pipeline (parse, build scope, resolve
// mapping rows and joins) over every SQL file in --sql-dir and renders the
// resulting edges. getRunID supplies the current invocation's run ID so
// verbose logging and JSON output can be correlated across a batch.
func NewResolveCommand(getConfig func() *config.Config, getRunID func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve column lineage for a set of SQL files against a mapping contract",
		Long: `resolve reads every SQL file in the configured directory, parses it as an
Oracle T2T SELECT statement, builds its scope tree, and resolves each mapping
row (and every join) against that tree, emitting one LineageEdge per result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, getConfig(), getRunID())
		},
	}
	return cmd
}

func runResolve(cmd *cobra.Command, cfg *config.Config, runID string) error {
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "run %s: resolving sql-dir %s\n", runID, cfg.SQLDir)
	}
	dm, err := pipeline.LoadDataModel(cfg.DataModel)
	if err != nil {
		return err
	}

	var rows []mapping.Row
	if cfg.MappingFile != "" {
		rows, err = pipeline.LoadMappingRows(cfg.MappingFile)
		if err != nil {
			return err
		}
	}

	sqlFiles, err := pipeline.LoadSQLFiles(cfg.SQLDir)
	if err != nil {
		return err
	}

	results := make([]output.Result, 0, len(sqlFiles))
	for _, f := range sqlFiles {
		fr := pipeline.ResolveFile(f, rows, dm, cfg.MaxDepth)
		if fr.ParseError != nil {
			results = append(results, output.Result{
				ObjectName: fr.ObjectName,
				Error:      fr.ParseError.Error(),
			})
			continue
		}
		results = append(results, output.Result{
			ObjectName: fr.ObjectName,
			Edges:      fr.Edges,
			Stats:      output.StatsFromMapping(fr.Stats),
			Warnings:   fr.Warnings,
		})
	}

	out := cmd.OutOrStdout()
	if cfg.OutputFormat == string(output.ModeJSON) {
		return output.WriteJSON(out, runID, results)
	}
	output.WriteText(out, results)
	return nil
}
