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
	colDisasterSubgroup = "Disaster Subgroup"
	colDisasterType     = "Disaster Type"
	colStartYear        = "Start Year"
)

// Output columns of the extreme-weather merge.
const (
	WeatherYearColumn     = "year"
	WeatherCountryColumn  = "country"
	WeatherDisasterColumn = "natural disaster"
	WeatherCO2Column      = "co2 emissions"
)

// Weather joins climate-related disaster records with the emitting country's
// emissions for the disaster's start year.
type Weather struct {
	base
}

// NewWeather reads disaster records from the first sheet of the configured workbook.
func NewWeather(cfg *config.Config, logger *zap.Logger) *Weather {
	return &Weather{base: newBase(cfg, logger, NameWeather)}
}

func (p *Weather) Name() string { return NameWeather }

func (p *Weather) Description() string {
	return "climate-related disasters joined with emissions on country code and start year"
}

func (p *Weather) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.Disasters),
		p.cfg.InputPath(p.cfg.Inputs.Emissions),
	}
}

func (p *Weather) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.Weather) }

func (p *Weather) Run(ctx context.Context) (dataframe.DataFrame, error) {
	disasters, err := p.loadDisasters()
	if err != nil {
		return disasters, err
	}

	emissions, err := p.loadEmissions()
	if err != nil {
		return emissions, err
	}
	window := p.cfg.Weather
	if emissions, err = frame.Keep(emissions, colYear, frame.Between(window.FirstYear, window.LastYear)); err != nil {
		return emissions, err
	}

	// Restrict both sides to the codes they share before joining.
	common, err := sharedValues(disasters, emissions, colCode)
	if err != nil {
		return disasters, err
	}
	if disasters, err = frame.Keep(disasters, colCode, frame.In(common...)); err != nil {
		return disasters, err
	}
	if emissions, err = frame.Keep(emissions, colCode, frame.In(common...)); err != nil {
		return emissions, err
	}
	p.logger.Debug("Shared country codes", zap.Int("codes", len(common)))

	if emissions, err = frame.Select(emissions, colCode, colYear, colEntity, colEmissions); err != nil {
		return emissions, err
	}
	if emissions, err = frame.Rename(emissions, map[string]string{colYear: colStartYear}); err != nil {
		return emissions, err
	}

	joined, err := p.innerJoin(disasters, emissions, colCode, colStartYear)
	if err != nil {
		return joined, err
	}
	if joined, err = frame.Select(joined, colStartYear, colEntity, colDisasterType, colEmissions); err != nil {
		return joined, err
	}
	return frame.Rename(joined, map[string]string{
		colStartYear:    WeatherYearColumn,
		colEntity:       WeatherCountryColumn,
		colDisasterType: WeatherDisasterColumn,
		colEmissions:    WeatherCO2Column,
	})
}

// loadDisasters returns (Code, Start Year, Disaster Type) for climate-related
// events inside the year window.
func (p *Weather) loadDisasters() (dataframe.DataFrame, error) {
	window := p.cfg.Weather
	df, err := frame.ReadExcel(p.cfg.InputPath(p.cfg.Inputs.Disasters), "",
		frame.WithTypes(map[string]series.Type{
			colCode:             series.String,
			colDisasterSubgroup: series.String,
			colDisasterType:     series.String,
		}))
	if err != nil {
		return df, err
	}
	if err := frame.Require(df, colCode, colStartYear, colDisasterSubgroup, colDisasterType); err != nil {
		return df, err
	}

	if df, err = frame.Keep(df, colDisasterSubgroup, frame.NotIn(window.ExcludedSubgroups...)); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colDisasterType, frame.NotIn(window.ExcludedTypes...)); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colStartYear, frame.NonEmpty); err != nil {
		return df, err
	}
	if df, err = frame.ToInt(df, colStartYear); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colStartYear, frame.Between(window.FirstYear, window.LastYear)); err != nil {
		return df, err
	}
	return frame.Select(df, colCode, colStartYear, colDisasterType)
}

// sharedValues lists the non-blank values of col present in both tables.
func sharedValues(a, b dataframe.DataFrame, col string) ([]string, error) {
	left, err := frame.Distinct(a, col)
	if err != nil {
		return nil, err
	}
	right, err := frame.Distinct(b, col)
	if err != nil {
		return nil, err
	}
	inRight := make(map[string]bool, len(right))
	for _, v := range right {
		inRight[v] = true
	}
	var shared []string
	for _, v := range left {
		if inRight[v] {
			shared = append(shared, v)
		}
	}
	return shared, nil
}
