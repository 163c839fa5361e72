package pipeline

import (
	"context"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"
	"climatetrends/internal/logging"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// Pipeline names, in the order the runner executes them.
const (
	NameCO2Temp       = "co2temp"
	NameProjections   = "projections"
	NameCO2GDP        = "co2gdp"
	NameDeforestation = "deforestation"
	NameWeather       = "weather"
	NameParis         = "paris"
	NameRenewables    = "renewables"
)

// Names lists every pipeline name in execution order.
var Names = []string{
	NameCO2Temp, NameProjections, NameCO2GDP, NameDeforestation, NameWeather, NameParis, NameRenewables,
}

const (
	colEntity    = "Entity"
	colCode      = "Code"
	colYear      = "Year"
	colEmissions = config.EmissionsColumn
)

// Pipeline reads its sources and produces one derived table.
type Pipeline interface {
	Name() string
	Description() string
	// Inputs lists resolved source paths.
	Inputs() []string
	// Output is the resolved path the runner writes the table to.
	Output() string
	Run(ctx context.Context) (dataframe.DataFrame, error)
}

type base struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newBase(cfg *config.Config, logger *zap.Logger, name string) base {
	return base{cfg: cfg, logger: logging.OrNop(logger).With(zap.String("pipeline", name))}
}

// All returns every pipeline bound to cfg.
func All(cfg *config.Config, logger *zap.Logger) []Pipeline {
	return []Pipeline{
		NewCO2Temp(cfg, logger),
		NewProjections(cfg, logger),
		NewCO2GDP(cfg, logger),
		NewDeforestation(cfg, logger),
		NewWeather(cfg, logger),
		NewParis(cfg, logger),
		NewRenewables(cfg, logger),
	}
}

// loadEmissions reads the per-country-year emissions table.
func (b base) loadEmissions() (dataframe.DataFrame, error) {
	df, err := frame.ReadCSV(b.cfg.InputPath(b.cfg.Inputs.Emissions),
		frame.WithTypes(map[string]series.Type{
			colEntity:    series.String,
			colCode:      series.String,
			colYear:      series.Int,
			colEmissions: series.Float,
		}))
	if err != nil {
		return df, err
	}
	if err := frame.Require(df, colEntity, colCode, colYear, colEmissions); err != nil {
		return df, err
	}
	b.logger.Debug("Loaded emissions", zap.Int("rows", df.Nrow()))
	return df, nil
}

// withoutAggregates drops the configured non-country entities.
func (b base) withoutAggregates(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return frame.Keep(df, colEntity, frame.NotIn(b.cfg.NonCountryEntities...))
}

// innerJoin joins and logs how many left rows found no partner.
func (b base) innerJoin(left, right dataframe.DataFrame, keys ...string) (dataframe.DataFrame, error) {
	out, err := frame.InnerJoin(left, right, keys...)
	if err != nil {
		return out, err
	}
	if ce := b.logger.Check(zap.DebugLevel, "Inner join"); ce != nil {
		ce.Write(
			zap.Strings("keys", keys),
			zap.Int("left_rows", left.Nrow()),
			zap.Int("right_rows", right.Nrow()),
			zap.Int("left_unmatched", frame.Unmatched(left, right, keys...)),
			zap.Int("right_unmatched", frame.Unmatched(right, left, keys...)),
			zap.Int("rows", out.Nrow()))
	}
	return out, nil
}
