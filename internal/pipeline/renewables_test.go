package pipeline

import (
	"testing"

	"climatetrends/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenewables(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(env.cfg.Inputs.RenewablesShare,
		"Entity,Code,Year,\"Share of modern renewables in final energy consumption, World\"\n"+
			"World,OWID_WRL,2020,12.5\n"+
			"World,OWID_WRL,2021,13.1\n")
	env.writeEmissions(
		"China,CHN,2019,9",
		"China,CHN,2020,10",
		"India,IND,2020,5",
		"World,OWID_WRL,2020,15",
		"China,CHN,2021,11",
	)

	out, err := env.run(NewRenewables(env.cfg, testLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", RenewableShareColumn, "Entity", "Code", config.EmissionsColumn}, out.Names())
	years, err := out.Col("Year").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2020, 2021}, years)
	assert.Equal(t, []string{"China", "India", "China"}, out.Col("Entity").Records())
	assert.Equal(t, []float64{12.5, 12.5, 13.1}, out.Col(RenewableShareColumn).Float(),
		"the world share is broadcast to every country of the year")
	assert.Equal(t, []float64{10, 5, 11}, out.Col(config.EmissionsColumn).Float())
}
