package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

var defaultMissing = []string{"NA", "NaN", "<nil>"}

type readConfig struct {
	skipRows int
	missing  []string
	types    map[string]series.Type
}

// ReadOption tunes how a raw table is turned into a DataFrame.
type ReadOption func(*readConfig)

// SkipRows drops n leading lines before the header row.
func SkipRows(n int) ReadOption {
	return func(c *readConfig) {
		c.skipRows = n
	}
}

// MissingValues adds cell values that load as NaN.
func MissingValues(values ...string) ReadOption {
	return func(c *readConfig) {
		c.missing = append(c.missing, values...)
	}
}

// WithTypes pins column types instead of detecting them.
func WithTypes(types map[string]series.Type) ReadOption {
	return func(c *readConfig) {
		if c.types == nil {
			c.types = make(map[string]series.Type)
		}
		for name, t := range types {
			c.types[name] = t
		}
	}
}

// ReadCSV loads a delimited file with a header row.
func ReadCSV(path string, opts ...ReadOption) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	df, err := LoadCSV(file, opts...)
	if err != nil {
		return df, fmt.Errorf("read %s: %w", path, err)
	}
	return df, nil
}

// LoadCSV is ReadCSV over an arbitrary reader.
func LoadCSV(r io.Reader, opts ...ReadOption) (dataframe.DataFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return FromRecords(records, opts...)
}

// ReadExcel loads one worksheet. An empty sheet name selects the first sheet.
func ReadExcel(path, sheet string, opts ...ReadOption) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, fmt.Errorf("read %s: workbook has no sheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values, not the display text of number-formatted cells.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
	}

	df, err := FromRecords(rows, opts...)
	if err != nil {
		return df, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
	}
	return df, nil
}

// FromRecords builds a DataFrame from raw rows whose first kept row is the header.
// Short rows are padded with empty cells so ragged spreadsheet rows line up.
func FromRecords(records [][]string, opts ...ReadOption) (dataframe.DataFrame, error) {
	cfg := readConfig{missing: append([]string(nil), defaultMissing...)}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.skipRows > 0 {
		if cfg.skipRows >= len(records) {
			return dataframe.DataFrame{}, fmt.Errorf("header offset %d past end of %d rows", cfg.skipRows, len(records))
		}
		records = records[cfg.skipRows:]
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no header row")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	if len(records) == 1 {
		return emptyFrame(header, cfg.types), nil
	}

	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make([]string, len(header))
		copy(row, record)
		rows = append(rows, row)
	}
	if len(rows) == 1 {
		return emptyFrame(header, cfg.types), nil
	}

	loadOpts := []dataframe.LoadOption{
		dataframe.NaNValues(cfg.missing),
	}
	if len(cfg.types) > 0 {
		loadOpts = append(loadOpts, dataframe.WithTypes(cfg.types))
	}
	df := dataframe.LoadRecords(rows, loadOpts...)
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}

func emptyFrame(header []string, types map[string]series.Type) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		t := series.String
		if pinned, ok := types[name]; ok {
			t = pinned
		}
		cols[i] = series.New([]string{}, t, name)
	}
	return dataframe.New(cols...)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
