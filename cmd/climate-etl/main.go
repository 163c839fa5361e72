package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"climatetrends/internal/config"
	"climatetrends/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	configPath string
	dataDir    string
	outputDir  string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "climate-etl",
	Short: "Merge public climate datasets into analysis-ready tables",
	Long: `climate-etl reads the raw emissions, temperature, projection, indicator,
tree cover, disaster and renewables sources and writes one merged CSV per
pipeline, then optionally renders charts and a workbook from them.

Configuration is read from a YAML file (--config). A missing file means
the built-in defaults.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = logging.New(verbose); err != nil {
			return err
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		logger.Debug("Configuration loaded",
			zap.String("config", configPath),
			zap.String("data_dir", cfg.DataDir),
			zap.String("output_dir", cfg.OutputDir))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "climate-etl.yaml", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the raw inputs (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for the merged outputs (overrides config)")

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipelines without writing outputs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
