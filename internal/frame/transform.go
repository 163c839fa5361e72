package frame

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Predicate decides whether a cell keeps its row.
type Predicate = func(series.Element) bool

// Require fails with a ColumnError unless every named column exists.
func Require(df dataframe.DataFrame, cols ...string) error {
	if df.Err != nil {
		return df.Err
	}
	have := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		have[name] = true
	}
	var missing []string
	for _, col := range cols {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ColumnError{Missing: missing, Available: df.Names()}
	}
	return nil
}

// Keep returns the rows whose cell in col satisfies pred.
func Keep(df dataframe.DataFrame, col string, pred Predicate) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	if df.Nrow() == 0 {
		return df, nil
	}
	out := df.Filter(dataframe.F{Colname: col, Comparator: series.CompFunc, Comparando: pred})
	return out, out.Err
}

// Between matches integer cells in [lo, hi].
func Between(lo, hi int) Predicate {
	return func(e series.Element) bool {
		if e.IsNA() {
			return false
		}
		v, err := e.Int()
		return err == nil && v >= lo && v <= hi
	}
}

// AtLeast matches integer cells >= lo.
func AtLeast(lo int) Predicate {
	return func(e series.Element) bool {
		if e.IsNA() {
			return false
		}
		v, err := e.Int()
		return err == nil && v >= lo
	}
}

// In matches cells whose text is one of values.
func In(values ...string) Predicate {
	set := toSet(values)
	return func(e series.Element) bool {
		return !e.IsNA() && set[e.String()]
	}
}

// NotIn matches cells whose text is none of values. Missing cells match.
func NotIn(values ...string) Predicate {
	set := toSet(values)
	return func(e series.Element) bool {
		return e.IsNA() || !set[e.String()]
	}
}

// Contains matches text cells holding any of the substrings.
func Contains(substrings ...string) Predicate {
	return func(e series.Element) bool {
		if e.IsNA() {
			return false
		}
		text := e.String()
		for _, sub := range substrings {
			if strings.Contains(text, sub) {
				return true
			}
		}
		return false
	}
}

// NonEmpty matches present, non-blank cells.
func NonEmpty(e series.Element) bool {
	return !e.IsNA() && strings.TrimSpace(e.String()) != ""
}

func NotNaN(e series.Element) bool {
	return !e.IsNA()
}

// Select projects the named columns in the given order.
func Select(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	if err := Require(df, cols...); err != nil {
		return df, err
	}
	out := df.Select(cols)
	return out, out.Err
}

// Rename applies old→new column renames; every old name must exist.
func Rename(df dataframe.DataFrame, renames map[string]string) (dataframe.DataFrame, error) {
	olds := make([]string, 0, len(renames))
	for old := range renames {
		olds = append(olds, old)
	}
	if err := Require(df, olds...); err != nil {
		return df, err
	}
	sort.Strings(olds)
	for _, old := range olds {
		df = df.Rename(renames[old], old)
		if df.Err != nil {
			return df, df.Err
		}
	}
	return df, nil
}

// Replace rewrites text cells of col through the mapping; other cells are kept.
func Replace(df dataframe.DataFrame, col string, mapping map[string]string) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	s := df.Col(col)
	values := make([]string, s.Len())
	for i := range values {
		e := s.Elem(i)
		if e.IsNA() {
			values[i] = "NaN"
			continue
		}
		values[i] = e.String()
		if to, ok := mapping[values[i]]; ok {
			values[i] = to
		}
	}
	out := df.Mutate(series.New(values, series.String, col))
	return out, out.Err
}

// ToInt coerces col to integers. A missing or non-integral cell is an error.
func ToInt(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	s := df.Col(col)
	ints := make([]int, s.Len())
	for i := range ints {
		e := s.Elem(i)
		if e.IsNA() {
			return df, fmt.Errorf("column %q row %d: missing value cannot become an integer", col, i)
		}
		v, err := parseInt(e.String())
		if err != nil {
			return df, fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		ints[i] = v
	}
	out := df.Mutate(series.New(ints, series.Int, col))
	return out, out.Err
}

// ToFloat coerces col to floats. Blank cells, placeholders and unparsable text become NaN.
func ToFloat(df dataframe.DataFrame, col string, placeholders ...string) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	skip := toSet(placeholders)
	s := df.Col(col)
	floats := make([]float64, s.Len())
	for i := range floats {
		e := s.Elem(i)
		switch {
		case e.IsNA():
			floats[i] = math.NaN()
		case s.Type() == series.Float || s.Type() == series.Int:
			floats[i] = e.Float()
		default:
			text := strings.TrimSpace(e.String())
			if text == "" || skip[text] {
				floats[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				v = math.NaN()
			}
			floats[i] = v
		}
	}
	out := df.Mutate(series.New(floats, series.Float, col))
	return out, out.Err
}

// SortBy orders rows ascending by the given columns, first column major.
func SortBy(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	if err := Require(df, cols...); err != nil {
		return df, err
	}
	if df.Nrow() < 2 {
		return df, nil
	}
	order := make([]dataframe.Order, len(cols))
	for i, col := range cols {
		order[i] = dataframe.Sort(col)
	}
	out := df.Arrange(order...)
	return out, out.Err
}

// Top returns the n rows with the largest values in col, largest first.
// Ties keep source order and missing values never qualify.
func Top(df dataframe.DataFrame, col string, n int) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	values := df.Col(col).Float()
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := df.Subset(idx)
	return out, out.Err
}

// Distinct lists the present, non-blank values of col in first-seen order.
func Distinct(df dataframe.DataFrame, col string) ([]string, error) {
	if err := Require(df, col); err != nil {
		return nil, err
	}
	s := df.Col(col)
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if !NonEmpty(e) || seen[e.String()] {
			continue
		}
		seen[e.String()] = true
		out = append(out, e.String())
	}
	return out, nil
}

// MaxInt returns the largest integer in col.
func MaxInt(df dataframe.DataFrame, col string) (int, error) {
	if err := Require(df, col); err != nil {
		return 0, err
	}
	s := df.Col(col)
	found := false
	max := 0
	for i := 0; i < s.Len(); i++ {
		v, err := s.Elem(i).Int()
		if s.Elem(i).IsNA() || err != nil {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("column %q has no values", col)
	}
	return max, nil
}

func parseInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if v, err := strconv.Atoi(text); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", text)
	}
	return int(f), nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func rowKey(cols []series.Series, i int) (string, bool) {
	parts := make([]string, len(cols))
	for c, col := range cols {
		e := col.Elem(i)
		if e.IsNA() {
			return "", false
		}
		parts[c] = e.String()
	}
	return strings.Join(parts, "\x1f"), true
}

// ExtractInt replaces col with the integer captured by the first group of
// pattern (or the whole match when it has no group). A cell without a match
// is an error.
func ExtractInt(df dataframe.DataFrame, col string, pattern *regexp.Regexp) (dataframe.DataFrame, error) {
	if err := Require(df, col); err != nil {
		return df, err
	}
	s := df.Col(col)
	ints := make([]int, s.Len())
	for i := range ints {
		text := s.Elem(i).String()
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			return df, fmt.Errorf("column %q row %d: %q does not match %s", col, i, text, pattern)
		}
		group := m[0]
		if len(m) > 1 {
			group = m[1]
		}
		v, err := strconv.Atoi(group)
		if err != nil {
			return df, fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		ints[i] = v
	}
	out := df.Mutate(series.New(ints, series.Int, col))
	return out, out.Err
}

// Lookup adds (or replaces) column to with the mapping of each cell of from.
// Cells without a mapping are missing.
func Lookup(df dataframe.DataFrame, from, to string, mapping map[string]string) (dataframe.DataFrame, error) {
	if err := Require(df, from); err != nil {
		return df, err
	}
	s := df.Col(from)
	values := make([]string, s.Len())
	for i := range values {
		e := s.Elem(i)
		v, ok := mapping[e.String()]
		if e.IsNA() || !ok {
			v = "NaN"
		}
		values[i] = v
	}
	out := df.Mutate(series.New(values, series.String, to))
	return out, out.Err
}
