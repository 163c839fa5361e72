package pipeline

import (
	"context"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Paris totals country emissions per year from the agreement's first full year.
type Paris struct {
	base
}

func NewParis(cfg *config.Config, logger *zap.Logger) *Paris {
	return &Paris{base: newBase(cfg, logger, NameParis)}
}

func (p *Paris) Name() string { return NameParis }

func (p *Paris) Description() string {
	return "country emissions per year since the Paris Agreement, aggregates excluded"
}

func (p *Paris) Inputs() []string {
	return []string{p.cfg.InputPath(p.cfg.Inputs.Emissions)}
}

func (p *Paris) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.Paris) }

func (p *Paris) Run(ctx context.Context) (dataframe.DataFrame, error) {
	emissions, err := p.loadEmissions()
	if err != nil {
		return emissions, err
	}
	if emissions, err = frame.Keep(emissions, colYear, frame.AtLeast(p.cfg.Paris.FirstYear)); err != nil {
		return emissions, err
	}

	if missing := countMissing(emissions, colEmissions); missing > 0 {
		return dataframe.DataFrame{}, &ValidationError{
			Pipeline: NameParis,
			Rows:     missing,
			Err:      ErrMissingEmissions,
		}
	}

	if emissions, err = p.withoutAggregates(emissions); err != nil {
		return emissions, err
	}
	return frame.SumBy(emissions, []string{colEntity, colYear}, colEmissions)
}

func countMissing(df dataframe.DataFrame, col string) int {
	missing := 0
	for _, na := range df.Col(col).IsNaN() {
		if na {
			missing++
		}
	}
	return missing
}
