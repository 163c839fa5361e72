package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"climatetrends/internal/config"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const emissionsHeader = "Entity,Code,Year,Annual CO₂ emissions\n"

// testEnv is a config rooted in temporary input and output directories.
type testEnv struct {
	t   *testing.T
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.OutputDir = filepath.Join(t.TempDir(), "data")
	return &testEnv{t: t, cfg: cfg}
}

func (e *testEnv) writeFile(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.cfg.InputPath(name), []byte(content), 0o644))
}

// writeEmissions writes the emissions CSV from "Entity,Code,Year,value" lines.
func (e *testEnv) writeEmissions(rows ...string) {
	e.t.Helper()
	e.writeFile(e.cfg.Inputs.Emissions, emissionsHeader+strings.Join(rows, "\n")+"\n")
}

// writeSheet writes a single-sheet workbook; an empty sheet keeps "Sheet1".
func (e *testEnv) writeSheet(name, sheet string, rows ...[]interface{}) {
	e.t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet == "" {
		sheet = "Sheet1"
	} else {
		require.NoError(e.t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(e.t, err)
		require.NoError(e.t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(e.t, f.SaveAs(e.cfg.InputPath(name)))
}

func (e *testEnv) run(p Pipeline) (dataframe.DataFrame, error) {
	e.t.Helper()
	return p.Run(context.Background())
}

func row(values ...interface{}) []interface{} {
	return values
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}
