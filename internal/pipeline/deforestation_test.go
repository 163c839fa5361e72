package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeforestation(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Deforestation.FirstYear = 2001
	env.cfg.Deforestation.LastYear = 2002
	env.writeSheet(env.cfg.Inputs.TreeCoverLoss, env.cfg.Inputs.TreeCoverSheet,
		row("country", "threshold", "area_ha", "tc_loss_ha_2001", "tc_loss_ha_2002", "tc_loss_ha_2003"),
		row("Brazil", 0, 500, 10, 20, 40),
		row("Brazil", 30, 400, 1, 2, 4),
		row("Gabon", 0, 100, 5, 6, 7),
		row("France", 0, 50, 7, 8, 9),
	)
	env.writeEmissions(
		"Brazil,BRA,2001,100",
		"Brazil,BRA,2002,110",
		"Brazil,BRA,2003,999",
		"Gabon,GAB,2001,50",
		"France,FRA,2001,300",
	)

	out, err := env.run(NewDeforestation(env.cfg, testLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{
		DeforestYearColumn, DeforestCountryColumn, RegionColumn, TreeCoverLossColumn, DeforestCO2Column,
	}, out.Names())
	assert.Equal(t, []string{"Brazil", "Brazil", "Gabon"}, out.Col(DeforestCountryColumn).Records())
	years, err := out.Col(DeforestYearColumn).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{2001, 2002, 2001}, years)
	assert.Equal(t, []string{"Amazon", "Amazon", "Congo Basin"}, out.Col(RegionColumn).Records())
	assert.Equal(t, []float64{11, 22, 5}, out.Col(TreeCoverLossColumn).Float(), "thresholds are summed")
	assert.Equal(t, []float64{100, 110, 50}, out.Col(DeforestCO2Column).Float())
}

func TestDeforestationMissingYearColumn(t *testing.T) {
	env := newTestEnv(t)
	env.writeSheet(env.cfg.Inputs.TreeCoverLoss, env.cfg.Inputs.TreeCoverSheet,
		row("country", "tc_loss_ha_2001"),
		row("Brazil", 1),
	)
	env.writeEmissions("Brazil,BRA,2001,100")

	_, err := env.run(NewDeforestation(env.cfg, nil))
	assert.ErrorContains(t, err, "tc_loss_ha_2002")
}
