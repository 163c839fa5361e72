package pipeline

import (
	"testing"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const temperatureCSV = `Land-Ocean: Global Means
Year,Jan,J-D
2000,.10,.40
2001,.20,.54
2002,***,***
`

func TestCO2Temp(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions(
		"Alpha,AAA,2000,10",
		"Beta,BBB,2000,5",
		"Alpha,AAA,2001,20",
		"Beta,BBB,2001,7",
		"Alpha,AAA,2002,30",
		"Beta,BBB,2002,8",
	)
	env.writeFile(env.cfg.Inputs.Temperature, temperatureCSV)

	out, err := env.run(NewCO2Temp(env.cfg, testLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", config.EmissionsColumn, AnomalyColumn}, out.Names())
	years, err := out.Col("Year").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001}, years, "year with a missing anomaly is dropped")
	assert.Equal(t, []float64{15, 27}, out.Col(config.EmissionsColumn).Float())
	assert.Equal(t, []float64{0.40, 0.54}, out.Col(AnomalyColumn).Float())
}

func TestCO2TempAllYearsMatched(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions(
		"Alpha,AAA,2000,10",
		"Beta,BBB,2000,5",
		"Alpha,AAA,2001,20",
		"Beta,BBB,2001,7",
		"Alpha,AAA,2002,30",
		"Beta,BBB,2002,8",
	)
	env.writeFile(env.cfg.Inputs.Temperature, "Land-Ocean: Global Means\nYear,J-D\n2000,.40\n2001,.54\n2002,.63\n")

	out, err := env.run(NewCO2Temp(env.cfg, nil))
	require.NoError(t, err)

	require.Equal(t, 3, out.Nrow())
	years, err := out.Col("Year").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001, 2002}, years)
	assert.Equal(t, []float64{15, 27, 38}, out.Col(config.EmissionsColumn).Float())
	assert.Equal(t, []float64{0.40, 0.54, 0.63}, out.Col(AnomalyColumn).Float())
}

func TestCO2TempAggregates(t *testing.T) {
	rows := []string{
		"World,OWID_WRL,2000,15",
		"Alpha,AAA,2000,10",
		"Beta,BBB,2000,5",
	}

	t.Run("included by default", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeEmissions(rows...)
		env.writeFile(env.cfg.Inputs.Temperature, temperatureCSV)

		out, err := env.run(NewCO2Temp(env.cfg, nil))
		require.NoError(t, err)
		assert.Equal(t, []float64{30}, out.Col(config.EmissionsColumn).Float())
	})

	t.Run("excluded when configured", func(t *testing.T) {
		env := newTestEnv(t)
		env.cfg.CO2Temp.ExcludeAggregates = true
		env.writeEmissions(rows...)
		env.writeFile(env.cfg.Inputs.Temperature, temperatureCSV)

		out, err := env.run(NewCO2Temp(env.cfg, nil))
		require.NoError(t, err)
		assert.Equal(t, []float64{15}, out.Col(config.EmissionsColumn).Float())
	})
}

func TestCO2TempMissingAnomalyColumn(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions("Alpha,AAA,2000,10")
	env.writeFile(env.cfg.Inputs.Temperature, "Title\nYear,Jan\n2000,.1\n")

	_, err := env.run(NewCO2Temp(env.cfg, nil))
	var colErr *frame.ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, []string{"J-D"}, colErr.Missing)
}
