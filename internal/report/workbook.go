package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const (
	insightsSheet = "Insights"
	// Excel caps sheet names at 31 characters.
	maxSheetName = 31
)

// Sheet is one table written to the workbook.
type Sheet struct {
	Name  string
	Table dataframe.DataFrame
}

// writeWorkbook saves the insights summary followed by one sheet per table.
func writeWorkbook(path string, insights Insights, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", insightsSheet); err != nil {
		return err
	}
	if err := writeInsightsSheet(f, insights); err != nil {
		return fmt.Errorf("insights sheet: %w", err)
	}

	for _, sheet := range sheets {
		name := sheetName(sheet.Name)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, sheet.Table); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	for i, header := range df.Names() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, columnName(i+1), columnName(i+1), 18); err != nil {
			return err
		}
	}

	for c, col := range df.Names() {
		s := df.Col(col)
		for r := 0; r < s.Len(); r++ {
			e := s.Elem(r)
			if e.IsNA() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(e)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeInsightsSheet(f *excelize.File, in Insights) error {
	rows := [][]interface{}{
		{"CLIMATE TRENDS INSIGHTS"},
		{},
		{fmt.Sprintf("CO2 / temperature correlation %d-%d", in.WindowStart, in.WindowEnd), optionalFloat(in.Correlation)},
		{"Years in window", in.Observations},
		{},
		{"Country", "CO2 Emissions", "GDP per Capita", "Income Class"},
	}
	for _, c := range in.Income {
		rows = append(rows, []interface{}{c.Country, optionalFloat(c.Emissions), optionalFloat(c.GDPPerCapita), c.Class})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Country", "Baseline", "Compare", "Net Change", "Trend"})
	for _, n := range in.NetChanges {
		row := []interface{}{n.Country, nil, nil, nil, n.Trend()}
		if n.Available {
			row[1], row[2], row[3] = n.Baseline, n.Compare, n.Change
		}
		rows = append(rows, row)
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(insightsSheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(insightsSheet, "A", "E", 22)
}

func cellValue(e series.Element) interface{} {
	switch e.Type() {
	case series.Int:
		v, err := e.Int()
		if err == nil {
			return v
		}
	case series.Float:
		return e.Float()
	case series.Bool:
		v, err := e.Bool()
		if err == nil {
			return v
		}
	}
	return e.String()
}

func optionalFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func columnName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
