// Package report turns the pipeline outputs into charts, insights and a workbook.
package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"
	"climatetrends/internal/logging"
	"climatetrends/internal/pipeline"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Report lists what Build produced.
type Report struct {
	Charts   []string
	Workbook string
	Insights Insights
	// Skipped names the pipelines whose output was missing.
	Skipped []string
}

type chartFunc func(df dataframe.DataFrame, dir string) ([]string, error)

// Build reads every available pipeline output from cfg.OutputDir and writes
// charts and the workbook to cfg.ReportDir.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Report, error) {
	logger = logging.OrNop(logger)
	dir := cfg.ReportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	tables, skipped, err := loadOutputs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	rep := &Report{Skipped: skipped}
	rep.Insights, err = deriveInsights(cfg.Report, tables)
	if err != nil {
		return nil, err
	}

	corr := rep.Insights.Correlation
	charts := map[string]chartFunc{
		pipeline.NameCO2Temp: func(df dataframe.DataFrame, dir string) ([]string, error) {
			return co2TemperatureCharts(df, cfg.Report, corr, dir)
		},
		pipeline.NameProjections:   projectionCharts,
		pipeline.NameCO2GDP:        topEmittersChart,
		pipeline.NameDeforestation: deforestationCharts,
		pipeline.NameWeather:       disasterFrequencyChart,
		pipeline.NameParis: func(df dataframe.DataFrame, dir string) ([]string, error) {
			return parisCharts(df, cfg.Report, dir)
		},
		pipeline.NameRenewables: renewablesCharts,
	}

	var sheets []Sheet
	for _, name := range pipeline.Names {
		df, ok := tables[name]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: name, Table: df})
		if df.Nrow() == 0 {
			logger.Warn("Output empty, no charts", zap.String("pipeline", name))
			continue
		}
		paths, err := charts[name](df, dir)
		if err != nil {
			return nil, fmt.Errorf("%s charts: %w", name, err)
		}
		logger.Debug("Charts written", zap.String("pipeline", name), zap.Strings("charts", paths))
		rep.Charts = append(rep.Charts, paths...)
	}

	rep.Workbook = cfg.ReportPath(cfg.Report.Workbook)
	if err := writeWorkbook(rep.Workbook, rep.Insights, sheets); err != nil {
		return nil, err
	}
	logger.Info("Report written",
		zap.String("workbook", rep.Workbook),
		zap.Int("charts", len(rep.Charts)),
		zap.Strings("skipped", rep.Skipped))
	return rep, nil
}

// loadOutputs reads the output CSV of every pipeline, skipping those not yet produced.
func loadOutputs(ctx context.Context, cfg *config.Config, logger *zap.Logger) (map[string]dataframe.DataFrame, []string, error) {
	tables := make(map[string]dataframe.DataFrame)
	var skipped []string
	for _, p := range pipeline.All(cfg, logger) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		df, err := frame.ReadCSV(p.Output(), frame.MissingValues(""))
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Output missing, skipping", zap.String("pipeline", p.Name()), zap.String("path", p.Output()))
			skipped = append(skipped, p.Name())
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s output: %w", p.Name(), err)
		}
		tables[p.Name()] = df
	}
	return tables, skipped, nil
}

func deriveInsights(cfg config.ReportConfig, tables map[string]dataframe.DataFrame) (Insights, error) {
	in := Insights{WindowStart: cfg.WindowStart, WindowEnd: cfg.WindowEnd, Correlation: math.NaN()}
	var err error

	if df, ok := tables[pipeline.NameCO2Temp]; ok {
		if in.Correlation, in.Observations, err = co2TempCorrelation(df, cfg.WindowStart, cfg.WindowEnd); err != nil {
			return in, fmt.Errorf("correlation: %w", err)
		}
	}
	if df, ok := tables[pipeline.NameCO2GDP]; ok {
		if in.Income, err = incomeClasses(df, cfg.IncomeBins); err != nil {
			return in, fmt.Errorf("income classes: %w", err)
		}
	}
	if df, ok := tables[pipeline.NameParis]; ok {
		if in.NetChanges, err = netChanges(df, cfg.BaselineYear, cfg.CompareYear); err != nil {
			return in, fmt.Errorf("net changes: %w", err)
		}
	}
	return in, nil
}
