package pipeline

import (
	"context"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// RenewableShareColumn is the global share of modern renewables in final
// energy consumption.
const RenewableShareColumn = "Share of modern renewables in final energy consumption, World"

// Renewables broadcasts the global renewable share onto every country row of
// the same year. The share is a world figure, not a per-country one.
type Renewables struct {
	base
}

func NewRenewables(cfg *config.Config, logger *zap.Logger) *Renewables {
	return &Renewables{base: newBase(cfg, logger, NameRenewables)}
}

func (p *Renewables) Name() string { return NameRenewables }

func (p *Renewables) Description() string {
	return "global renewable share joined onto country emissions by year"
}

func (p *Renewables) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.RenewablesShare),
		p.cfg.InputPath(p.cfg.Inputs.Emissions),
	}
}

func (p *Renewables) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.Renewables) }

func (p *Renewables) Run(ctx context.Context) (dataframe.DataFrame, error) {
	share, err := frame.ReadCSV(p.cfg.InputPath(p.cfg.Inputs.RenewablesShare))
	if err != nil {
		return share, err
	}
	if share, err = frame.Select(share, colYear, RenewableShareColumn); err != nil {
		return share, err
	}
	if share, err = frame.ToInt(share, colYear); err != nil {
		return share, err
	}
	if share, err = frame.ToFloat(share, RenewableShareColumn); err != nil {
		return share, err
	}

	emissions, err := p.loadEmissions()
	if err != nil {
		return emissions, err
	}
	if emissions, err = frame.ToInt(emissions, colYear); err != nil {
		return emissions, err
	}
	if emissions, err = p.withoutAggregates(emissions); err != nil {
		return emissions, err
	}

	return p.innerJoin(share, emissions, colYear)
}
