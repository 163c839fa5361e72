package frame

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MeltSpec describes a wide-to-long reshape.
type MeltSpec struct {
	IDVars    []string
	ValueVars []string
	VarName   string
	ValueName string
}

// Melt turns every value column into rows of (ids..., VarName, ValueName).
// Rows come out grouped by value column, in ValueVars order.
func Melt(df dataframe.DataFrame, spec MeltSpec) (dataframe.DataFrame, error) {
	if len(spec.ValueVars) == 0 {
		return df, fmt.Errorf("melt: no value columns")
	}
	need := append(append([]string{}, spec.IDVars...), spec.ValueVars...)
	if err := Require(df, need...); err != nil {
		return df, err
	}

	n := df.Nrow()
	total := n * len(spec.ValueVars)
	repeat := make([]int, 0, total)
	for range spec.ValueVars {
		for i := 0; i < n; i++ {
			repeat = append(repeat, i)
		}
	}

	cols := make([]series.Series, 0, len(spec.IDVars)+2)
	for _, id := range spec.IDVars {
		s := df.Col(id).Subset(repeat)
		if s.Err != nil {
			return df, s.Err
		}
		s.Name = id
		cols = append(cols, s)
	}

	vars := make([]string, 0, total)
	values := make([]float64, 0, total)
	for _, name := range spec.ValueVars {
		col := df.Col(name).Float()
		for i := 0; i < n; i++ {
			vars = append(vars, name)
			values = append(values, col[i])
		}
	}
	cols = append(cols,
		series.New(vars, series.String, spec.VarName),
		series.New(values, series.Float, spec.ValueName),
	)

	out := dataframe.New(cols...)
	return out, out.Err
}

// Pivot turns long (index, category, value) rows into one row per index value
// with one float column per category. Index values and categories are sorted;
// absent cells are NaN. An (index, category) pair seen twice is an error.
func Pivot(df dataframe.DataFrame, index, columns, values string) (dataframe.DataFrame, error) {
	if err := Require(df, index, columns, values); err != nil {
		return df, err
	}

	idxCol := df.Col(index)
	catCol := df.Col(columns)
	vals := df.Col(values).Float()

	cells := make(map[string]map[string]float64)
	categories := make(map[string]bool)
	for i := 0; i < df.Nrow(); i++ {
		ie, ce := idxCol.Elem(i), catCol.Elem(i)
		if ie.IsNA() || ce.IsNA() {
			continue
		}
		key, cat := ie.String(), ce.String()
		row, ok := cells[key]
		if !ok {
			row = make(map[string]float64)
			cells[key] = row
		}
		if _, dup := row[cat]; dup {
			return df, &DuplicateKeyError{Index: key, Category: cat}
		}
		row[cat] = vals[i]
		categories[cat] = true
	}

	keys := sortedKeys(cells)
	cats := make([]string, 0, len(categories))
	for cat := range categories {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	cols := []series.Series{series.New(keys, series.String, index)}
	for _, cat := range cats {
		column := make([]float64, len(keys))
		for i, key := range keys {
			v, ok := cells[key][cat]
			if !ok {
				v = math.NaN()
			}
			column[i] = v
		}
		cols = append(cols, series.New(column, series.Float, cat))
	}

	out := dataframe.New(cols...)
	return out, out.Err
}

// SumBy groups rows by keys and sums value, skipping NaN. Rows with a missing
// key are dropped. Output is sorted by keys and keeps the key column types.
func SumBy(df dataframe.DataFrame, keys []string, value string) (dataframe.DataFrame, error) {
	if err := Require(df, append(append([]string{}, keys...), value)...); err != nil {
		return df, err
	}

	keyCols := make([]series.Series, len(keys))
	for i, k := range keys {
		keyCols[i] = df.Col(k)
	}
	values := df.Col(value).Float()

	groups := make(map[string]int)
	first := []int{}
	sums := []float64{}
	for i := 0; i < df.Nrow(); i++ {
		key, ok := rowKey(keyCols, i)
		if !ok {
			continue
		}
		g, seen := groups[key]
		if !seen {
			g = len(first)
			groups[key] = g
			first = append(first, i)
			sums = append(sums, 0)
		}
		if v := values[i]; !math.IsNaN(v) {
			sums[g] += v
		}
	}

	cols := make([]series.Series, 0, len(keys)+1)
	for i, c := range keyCols {
		s := c.Subset(first)
		if s.Err != nil {
			return df, s.Err
		}
		s.Name = keys[i]
		cols = append(cols, s)
	}
	cols = append(cols, series.New(sums, series.Float, value))

	out := dataframe.New(cols...)
	if out.Err != nil {
		return out, out.Err
	}
	return SortBy(out, keys...)
}

// InnerJoin keeps rows whose key tuple appears on both sides.
// Left rows keep their order; each is repeated once per matching right row.
func InnerJoin(left, right dataframe.DataFrame, keys ...string) (dataframe.DataFrame, error) {
	if err := requireBoth(left, right, keys); err != nil {
		return left, err
	}
	out := left.InnerJoin(right, keys...)
	return out, out.Err
}

// LeftJoin keeps every left row; unmatched rows get NaN in the right columns.
func LeftJoin(left, right dataframe.DataFrame, keys ...string) (dataframe.DataFrame, error) {
	if err := requireBoth(left, right, keys); err != nil {
		return left, err
	}
	out := left.LeftJoin(right, keys...)
	return out, out.Err
}

// Unmatched counts left rows whose key tuple is absent from right.
func Unmatched(left, right dataframe.DataFrame, keys ...string) int {
	if requireBoth(left, right, keys) != nil {
		return 0
	}
	present := make(map[string]bool)
	rightCols := make([]series.Series, len(keys))
	leftCols := make([]series.Series, len(keys))
	for i, k := range keys {
		rightCols[i] = right.Col(k)
		leftCols[i] = left.Col(k)
	}
	for i := 0; i < right.Nrow(); i++ {
		if key, ok := rowKey(rightCols, i); ok {
			present[key] = true
		}
	}
	missing := 0
	for i := 0; i < left.Nrow(); i++ {
		if key, ok := rowKey(leftCols, i); !ok || !present[key] {
			missing++
		}
	}
	return missing
}

func requireBoth(left, right dataframe.DataFrame, keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("join: no key columns")
	}
	if err := Require(left, keys...); err != nil {
		return fmt.Errorf("join left side: %w", err)
	}
	if err := Require(right, keys...); err != nil {
		return fmt.Errorf("join right side: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
