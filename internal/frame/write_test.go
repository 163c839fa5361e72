package frame

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCSV(t *testing.T) {
	df := dataframe.New(
		series.New([]int{2020, 2021}, series.Int, "Year"),
		series.New([]float64{0.1, math.NaN()}, series.Float, "anomaly"),
		series.New([]float64{3.7e10, 2.5}, series.Float, "co2"),
	)

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, df))
	assert.Equal(t, "Year,anomaly,co2\n2020,0.1,37000000000\n2021,,2.5\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "co2temp.csv")
	df := load(t, "Year,v\n2001,1.25\n2002,2\n")

	require.NoError(t, WriteCSV(df, path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, WriteCSV(df, path))
		second, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("round trip", func(t *testing.T) {
		back, err := ReadCSV(path)
		require.NoError(t, err)
		assert.Equal(t, df.Names(), back.Names())
		assert.Equal(t, df.Col("v").Float(), back.Col("v").Float())
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "co2temp.csv", entries[0].Name())
	})

	t.Run("errored frame writes nothing", func(t *testing.T) {
		bad := df.Select([]string{"missing"})
		require.Error(t, bad.Err)

		target := filepath.Join(t.TempDir(), "bad.csv")
		require.Error(t, WriteCSV(bad, target))
		assert.NoFileExists(t, target)
	})
}
