package pipeline

import (
	"context"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

const (
	colCountryName = "Country Name"
	colSeriesName  = "Series Name"
)

// CO2GDP joins the latest year's top emitters with GDP and population indicators.
type CO2GDP struct {
	base
}

func NewCO2GDP(cfg *config.Config, logger *zap.Logger) *CO2GDP {
	return &CO2GDP{base: newBase(cfg, logger, NameCO2GDP)}
}

func (p *CO2GDP) Name() string { return NameCO2GDP }

func (p *CO2GDP) Description() string {
	return "top emitters of the latest year left-joined with GDP and population indicators"
}

func (p *CO2GDP) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.Emissions),
		p.cfg.InputPath(p.cfg.Inputs.Indicators),
	}
}

func (p *CO2GDP) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.CO2GDP) }

func (p *CO2GDP) Run(ctx context.Context) (dataframe.DataFrame, error) {
	indicators, err := p.loadIndicators()
	if err != nil {
		return indicators, err
	}

	emissions, err := p.loadEmissions()
	if err != nil {
		return emissions, err
	}
	top, err := p.topEmitters(emissions)
	if err != nil {
		return top, err
	}

	joined, err := frame.LeftJoin(top, indicators, colEntity)
	if err != nil {
		return joined, err
	}
	return frame.Top(joined, colEmissions, joined.Nrow())
}

// topEmitters picks the largest emitters of the most recent year, counting
// only rows that carry a country code and are not "World".
func (p *CO2GDP) topEmitters(emissions dataframe.DataFrame) (dataframe.DataFrame, error) {
	latest, err := frame.MaxInt(emissions, colYear)
	if err != nil {
		return emissions, err
	}
	p.logger.Debug("Latest emissions year", zap.Int("year", latest))

	countries, err := frame.Keep(emissions, colCode, frame.NonEmpty)
	if err != nil {
		return countries, err
	}
	if countries, err = frame.Keep(countries, colEntity, frame.NotIn("World")); err != nil {
		return countries, err
	}
	if countries, err = frame.Keep(countries, colYear, frame.Between(latest, latest)); err != nil {
		return countries, err
	}
	return frame.Top(countries, colEmissions, p.cfg.CO2GDP.TopN)
}

// loadIndicators returns one row per country (keyed as Entity) with one
// column per GDP or population series.
func (p *CO2GDP) loadIndicators() (dataframe.DataFrame, error) {
	opts := p.cfg.CO2GDP
	df, err := frame.ReadCSV(p.cfg.InputPath(p.cfg.Inputs.Indicators),
		frame.WithTypes(map[string]series.Type{
			colCountryName:           series.String,
			colSeriesName:            series.String,
			opts.IndicatorYearColumn: series.String,
		}))
	if err != nil {
		return df, err
	}
	if df, err = frame.Select(df, colCountryName, colSeriesName, opts.IndicatorYearColumn); err != nil {
		return df, err
	}
	if df, err = frame.Replace(df, colCountryName, opts.CountryRenames); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colSeriesName, frame.Contains(opts.SeriesPatterns...)); err != nil {
		return df, err
	}
	if df, err = frame.ToFloat(df, opts.IndicatorYearColumn, opts.MissingPlaceholder); err != nil {
		return df, err
	}

	pivot, err := frame.Pivot(df, colCountryName, colSeriesName, opts.IndicatorYearColumn)
	if err != nil {
		return pivot, err
	}
	return frame.Rename(pivot, map[string]string{colCountryName: colEntity})
}
