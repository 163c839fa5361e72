package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"climatetrends/internal/config"
	"climatetrends/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

var outputs = map[string]string{
	"co2temp.csv": "Year,Annual CO₂ emissions,Annual Temperature Anomaly\n" +
		"1970,100,0.1\n1990,200,0.3\n2020,300,0.9\n2021,310,0.8\n",
	"projected_impacts.csv": "Scenario,Year,CO2 Emissions,Temperature Change\n" +
		"SSP1,2020,40,1.1\nSSP1,2030,30,1.4\nSSP5,2020,41,1.2\nSSP5,2030,55,2.5\n",
	"co2gdp.csv": "Entity,Code,Year,Annual CO₂ emissions,GDP (current US$),\"Population, total\"\n" +
		"China,CHN,2022,1200,17000,10\nRussia,RUS,2022,1100,,\nChad,TCD,2022,5,100,1\n",
	"deforestation-co2-dataset.csv": "year,country,region,tree_cover_loss,co2_emissions\n" +
		"2001,Brazil,Amazon,11,100\n2002,Brazil,Amazon,22,110\n2001,Gabon,Congo Basin,5,50\n",
	"weather-co2.csv": "year,country,natural disaster,co2 emissions\n" +
		"2010,Brazil,Flood,500\n2010,India,Storm,2000\n2015,India,Storm,2100\n",
	"paris_agreement.csv": "Entity,Year,Annual CO₂ emissions\n" +
		"China,2017,10\nChina,2018,12\nChina,2022,14\nIndia,2017,5\nIndia,2018,4\n",
}

func reportConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.ReportDir = filepath.Join(t.TempDir(), "report")
	for name, content := range outputs {
		require.NoError(t, os.WriteFile(cfg.OutputPath(name), []byte(content), 0o644))
	}
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := reportConfig(t)

	rep, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, []string{pipeline.NameRenewables}, rep.Skipped)
	assert.Len(t, rep.Charts, 12)
	for _, chart := range rep.Charts {
		assert.FileExists(t, chart)
		assert.Equal(t, cfg.ReportDir, filepath.Dir(chart))
	}

	for _, name := range []string{"disaster_frequency.png", "disaster_flood.png", "disaster_storm.png"} {
		assert.FileExists(t, filepath.Join(cfg.ReportDir, name))
	}

	assert.Equal(t, 3, rep.Insights.Observations)
	assert.InDelta(t, 0.9608, rep.Insights.Correlation, 1e-3)
	require.Len(t, rep.Insights.Income, 3)
	assert.Equal(t, "Middle Income", rep.Insights.Income[0].Class)
	require.Len(t, rep.Insights.NetChanges, 2)
	assert.Equal(t, "trending upwards", rep.Insights.NetChanges[0].Trend())

	f, err := excelize.OpenFile(rep.Workbook)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Insights", "co2temp", "projections", "co2gdp", "deforestation", "weather", "paris",
	}, f.GetSheetList())

	title, err := f.GetCellValue("Insights", "A1")
	require.NoError(t, err)
	assert.Equal(t, "CLIMATE TRENDS INSIGHTS", title)

	rows, err := f.GetRows("paris")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Entity", "Year", "Annual CO₂ emissions"}, rows[0])
	assert.Equal(t, []string{"China", "2017", "10"}, rows[1])
}

func TestBuildEmptyOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.ReportDir = t.TempDir()
	require.NoError(t, os.WriteFile(cfg.OutputPath(cfg.Outputs.Paris), []byte("Entity,Year,Annual CO₂ emissions\n"), 0o644))

	rep, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Charts)
	assert.Len(t, rep.Skipped, len(pipeline.Names)-1)
	assert.FileExists(t, rep.Workbook)
}

func TestBuildCancelled(t *testing.T) {
	cfg := reportConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, cfg, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteRunSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteRunSummary(&buf, []pipeline.Result{
		{Name: "co2temp", Output: "data/co2temp.csv", Rows: 144, Elapsed: 12 * time.Millisecond},
		{Name: "paris", Output: "data/paris_agreement.csv", Err: errors.New("paris: missing values")},
	})

	out := buf.String()
	assert.Contains(t, out, "PIPELINE")
	assert.Contains(t, out, "co2temp")
	assert.Contains(t, out, "144")
	assert.Contains(t, out, "failed: paris: missing values")
}

func TestWriteInsights(t *testing.T) {
	var buf bytes.Buffer
	WriteInsights(&buf, Insights{
		WindowStart: 1970,
		WindowEnd:   2020,
		Correlation: 0.91234,
		Income:      []IncomeClass{{Country: "China", Emissions: 1.2e10, GDPPerCapita: 12600, Class: "High Income"}},
		NetChanges:  []NetChange{{Country: "India"}},
	})

	out := buf.String()
	assert.Contains(t, out, "1970-2020: 0.912")
	assert.Contains(t, out, "12.00B")
	assert.Contains(t, out, "High Income")
	assert.Contains(t, out, "data not available for full range")
}
