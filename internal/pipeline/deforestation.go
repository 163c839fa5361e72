package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Output columns of the deforestation merge.
const (
	DeforestYearColumn    = "year"
	DeforestCountryColumn = "country"
	RegionColumn          = "region"
	TreeCoverLossColumn   = "tree_cover_loss"
	DeforestCO2Column     = "co2_emissions"
)

const treeCoverLossPrefix = "tc_loss_ha_"

var yearPattern = regexp.MustCompile(`(\d+)`)

// Deforestation joins regional tree cover loss with country emissions.
type Deforestation struct {
	base
}

func NewDeforestation(cfg *config.Config, logger *zap.Logger) *Deforestation {
	return &Deforestation{base: newBase(cfg, logger, NameDeforestation)}
}

func (p *Deforestation) Name() string { return NameDeforestation }

func (p *Deforestation) Description() string {
	return "tree cover loss per region country joined with emissions on country and year"
}

func (p *Deforestation) Inputs() []string {
	return []string{
		p.cfg.InputPath(p.cfg.Inputs.Emissions),
		p.cfg.InputPath(p.cfg.Inputs.TreeCoverLoss),
	}
}

func (p *Deforestation) Output() string { return p.cfg.OutputPath(p.cfg.Outputs.Deforestation) }

func (p *Deforestation) Run(ctx context.Context) (dataframe.DataFrame, error) {
	loss, err := p.loadTreeCoverLoss()
	if err != nil {
		return loss, err
	}
	// Region lists are validated with the config, so every allow-listed
	// country resolves here; anything else stays unlabelled and is dropped
	// by the join below.
	if loss, err = frame.Lookup(loss, DeforestCountryColumn, RegionColumn, p.cfg.RegionByCountry()); err != nil {
		return loss, err
	}

	emissions, err := p.regionEmissions()
	if err != nil {
		return emissions, err
	}

	joined, err := p.innerJoin(loss, emissions, DeforestCountryColumn, DeforestYearColumn)
	if err != nil {
		return joined, err
	}
	return frame.Select(joined,
		DeforestYearColumn, DeforestCountryColumn, RegionColumn, TreeCoverLossColumn, DeforestCO2Column)
}

// regionEmissions keeps allow-listed countries inside the year window, keyed
// as (country, year, co2_emissions).
func (p *Deforestation) regionEmissions() (dataframe.DataFrame, error) {
	df, err := p.loadEmissions()
	if err != nil {
		return df, err
	}
	window := p.cfg.Deforestation
	if df, err = frame.Keep(df, colYear, frame.Between(window.FirstYear, window.LastYear)); err != nil {
		return df, err
	}
	if df, err = frame.Keep(df, colEntity, frame.In(p.cfg.RegionCountries()...)); err != nil {
		return df, err
	}
	if df, err = frame.Select(df, colEntity, colYear, colEmissions); err != nil {
		return df, err
	}
	return frame.Rename(df, map[string]string{
		colEntity:    DeforestCountryColumn,
		colYear:      DeforestYearColumn,
		colEmissions: DeforestCO2Column,
	})
}

// loadTreeCoverLoss melts the yearly loss columns and sums every threshold
// row into one (country, year, tree_cover_loss) row.
func (p *Deforestation) loadTreeCoverLoss() (dataframe.DataFrame, error) {
	wide, err := frame.ReadExcel(p.cfg.InputPath(p.cfg.Inputs.TreeCoverLoss), p.cfg.Inputs.TreeCoverSheet)
	if err != nil {
		return wide, err
	}

	window := p.cfg.Deforestation
	var lossColumns []string
	for year := window.FirstYear; year <= window.LastYear; year++ {
		lossColumns = append(lossColumns, fmt.Sprintf("%s%d", treeCoverLossPrefix, year))
	}

	long, err := frame.Melt(wide, frame.MeltSpec{
		IDVars:    []string{DeforestCountryColumn},
		ValueVars: lossColumns,
		VarName:   DeforestYearColumn,
		ValueName: TreeCoverLossColumn,
	})
	if err != nil {
		return long, err
	}
	if long, err = frame.ExtractInt(long, DeforestYearColumn, yearPattern); err != nil {
		return long, err
	}
	return frame.SumBy(long, []string{DeforestCountryColumn, DeforestYearColumn}, TreeCoverLossColumn)
}
