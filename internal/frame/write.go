package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// WriteCSV writes df with a header row and no index column. The file is
// replaced atomically, so a failed write never leaves a partial output.
func WriteCSV(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return df.Err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeCSV(tmp, df); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// EncodeCSV renders df as CSV. Missing cells are empty and floats use the
// shortest representation that round-trips.
func EncodeCSV(w io.Writer, df dataframe.DataFrame) error {
	writer := csv.NewWriter(w)
	names := df.Names()
	if err := writer.Write(names); err != nil {
		return err
	}

	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
	}

	record := make([]string, len(names))
	for r := 0; r < df.Nrow(); r++ {
		for c, col := range cols {
			record[c] = FormatCell(col.Elem(r))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatCell renders one cell the way output files carry it.
func FormatCell(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}
