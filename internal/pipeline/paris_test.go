package pipeline

import (
	"errors"
	"testing"

	"climatetrends/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParis(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions(
		"China,CHN,2016,10",
		"India,IND,2017,5",
		"China,CHN,2018,12",
		"China,CHN,2017,11",
		"World,OWID_WRL,2017,100",
		"Asia (GCP),,2017,50",
		"International shipping,,2017,3",
	)

	out, err := env.run(NewParis(env.cfg, testLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Entity", "Year", config.EmissionsColumn}, out.Names())
	assert.Equal(t, []string{"China", "China", "India"}, out.Col("Entity").Records())
	years, err := out.Col("Year").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{2017, 2018, 2017}, years)
	assert.Equal(t, []float64{11, 12, 5}, out.Col(config.EmissionsColumn).Float())
}

func TestParisMissingEmissions(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions(
		"China,CHN,2015,",
		"China,CHN,2017,11",
		"India,IND,2018,",
		"World,OWID_WRL,2019,",
	)

	out, err := env.run(NewParis(env.cfg, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingEmissions))

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, NameParis, validation.Pipeline)
	assert.Equal(t, 2, validation.Rows, "only rows inside the year range count")
	assert.Equal(t, 0, out.Nrow())
}

func TestParisFirstYear(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Paris.FirstYear = 2016
	env.writeEmissions("China,CHN,2015,9", "China,CHN,2016,10")

	out, err := env.run(NewParis(env.cfg, nil))
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, out.Col(config.EmissionsColumn).Float())
}
