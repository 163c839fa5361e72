package pipeline

import (
	"context"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// AnomalyColumn is the output name of the annual mean temperature anomaly.
const AnomalyColumn = "Annual Temperature Anomaly"

// CO2Temp joins global annual CO2 totals with the global temperature anomaly.
type CO2Temp struct {
	base
}

func NewCO2Temp(cfg *config.Config, logger *zap.Logger) *CO2Temp {
	return &CO2Temp{base: newBase(cfg, logger, NameCO2Temp)}
}

func (p *CO2Temp) Name() string { return NameCO2Temp }

func (p *CO2Temp) Description() string {
	return "global CO2 totals joined with the annual temperature anomaly on year"
}

func (p *CO2Temp) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.Emissions),
		p.cfg.InputPath(p.cfg.Inputs.Temperature),
	}
}

func (p *CO2Temp) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.CO2Temp) }

func (p *CO2Temp) Run(ctx context.Context) (dataframe.DataFrame, error) {
	emissions, err := p.loadEmissions()
	if err != nil {
		return emissions, err
	}
	// Aggregate rows such as "World" are summed too unless configured away,
	// so totals double count when both a region and its countries are present.
	if p.cfg.CO2Temp.ExcludeAggregates {
		if emissions, err = p.withoutAggregates(emissions); err != nil {
			return emissions, err
		}
	}
	global, err := frame.SumBy(emissions, []string{colYear}, colEmissions)
	if err != nil {
		return global, err
	}

	temperature, err := p.loadTemperature()
	if err != nil {
		return temperature, err
	}

	return p.innerJoin(global, temperature, colYear)
}

// loadTemperature returns (Year, Annual Temperature Anomaly) with missing
// anomalies dropped.
func (p *CO2Temp) loadTemperature() (dataframe.DataFrame, error) {
	anomaly := p.cfg.CO2Temp.AnomalyColumn
	df, err := frame.ReadCSV(p.cfg.InputPath(p.cfg.Inputs.Temperature),
		frame.SkipRows(p.cfg.CO2Temp.HeaderOffset),
		frame.MissingValues("***", "****"))
	if err != nil {
		return df, err
	}
	if df, err = frame.Select(df, colYear, anomaly); err != nil {
		return df, err
	}
	if df, err = frame.Rename(df, map[string]string{anomaly: AnomalyColumn}); err != nil {
		return df, err
	}
	if df, err = frame.ToFloat(df, AnomalyColumn); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, AnomalyColumn, frame.NotNaN); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colYear, frame.NotNaN); err != nil {
		return df, err
	}
	return frame.ToInt(df, colYear)
}
