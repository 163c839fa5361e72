package main

import (
	"fmt"
	"strings"

	"climatetrends/internal/pipeline"
	"climatetrends/internal/report"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run [pipeline...]",
	Short: "Run all pipelines, or only the named ones",
	Long: `Runs the pipelines in a fixed order and writes one CSV per pipeline.

A failing pipeline writes nothing and does not stop the others. The command
exits non-zero when any pipeline failed.

Pipelines: ` + strings.Join(pipeline.Names, ", "),
	RunE: runPipelines,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render charts, insights and the workbook from the pipeline outputs",
	Args:  cobra.NoArgs,
	RunE:  buildReport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipelines with their inputs and output",
	Args:  cobra.NoArgs,
	RunE:  listPipelines,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

func runPipelines(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	runner := pipeline.NewRunner(logger, pipeline.All(cfg, logger)...)
	runner.DryRun = dryRun

	logger.Info("Starting run", zap.Strings("pipelines", args), zap.Bool("dry_run", dryRun))
	results := runner.Run(ctx, args...)
	report.WriteRunSummary(cmd.OutOrStdout(), results)

	if failed := pipeline.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d pipelines failed", len(failed), len(results))
	}
	return nil
}

func buildReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rep, err := report.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	out := cmd.OutOrStdout()
	report.WriteInsights(out, rep.Insights)
	fmt.Fprintf(out, "\n%d charts, workbook %s\n", len(rep.Charts), rep.Workbook)
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped (no output yet): %s\n", strings.Join(rep.Skipped, ", "))
	}
	return nil
}

func listPipelines(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Pipeline", "Description", "Inputs", "Output"})
	table.SetAutoWrapText(false)
	for _, p := range pipeline.All(cfg, logger) {
		table.Append([]string{p.Name(), p.Description(), strings.Join(p.Inputs(), "\n"), p.Output()})
	}
	table.Render()
	return nil
}
