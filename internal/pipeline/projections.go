package pipeline

import (
	"context"
	"fmt"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Output columns of the projection merge.
const (
	ScenarioColumn          = "Scenario"
	ProjectedCO2Column      = "CO2 Emissions"
	TemperatureChangeColumn = "Temperature Change"
)

// Projections reshapes the scenario sheets to long form and joins them.
type Projections struct {
	base
}

func NewProjections(cfg *config.Config, logger *zap.Logger) *Projections {
	return &Projections{base: newBase(cfg, logger, NameProjections)}
}

func (p *Projections) Name() string { return NameProjections }

func (p *Projections) Description() string {
	return "scenario CO2 and temperature projections melted and joined on scenario and year"
}

func (p *Projections) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.CO2Projection),
		p.cfg.InputPath(p.cfg.Inputs.TempProjection),
	}
}

func (p *Projections) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.Projections) }

func (p *Projections) Run(ctx context.Context) (dataframe.DataFrame, error) {
	co2, err := p.loadLong(p.cfg.Inputs.CO2Projection, ProjectedCO2Column)
	if err != nil {
		return co2, err
	}
	temp, err := p.loadLong(p.cfg.Inputs.TempProjection, TemperatureChangeColumn)
	if err != nil {
		return temp, err
	}

	joined, err := p.innerJoin(co2, temp, ScenarioColumn, colYear)
	if err != nil {
		return joined, err
	}
	return frame.SortBy(joined, ScenarioColumn, colYear)
}

// loadLong melts one wide scenario sheet into (Scenario, Year, value).
func (p *Projections) loadLong(file, valueName string) (dataframe.DataFrame, error) {
	wide, err := frame.ReadExcel(p.cfg.InputPath(file), "")
	if err != nil {
		return wide, err
	}
	if err := frame.Require(wide, ScenarioColumn); err != nil {
		return wide, err
	}
	if wide, err = frame.Keep(wide, ScenarioColumn, frame.NonEmpty); err != nil {
		return wide, err
	}

	names := wide.Names()
	offset := p.cfg.Projections.YearColumnOffset
	if offset >= len(names) {
		return wide, fmt.Errorf("%s: no year columns after offset %d (%d columns)", file, offset, len(names))
	}

	long, err := frame.Melt(wide, frame.MeltSpec{
		IDVars:    []string{ScenarioColumn},
		ValueVars: names[offset:],
		VarName:   colYear,
		ValueName: valueName,
	})
	if err != nil {
		return long, err
	}
	// Year headers arrive as text; joins need integers.
	return frame.ToInt(long, colYear)
}
