package report

import (
	"math"
	"sort"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"
	"climatetrends/internal/pipeline"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"
)

// Insights are the headline numbers derived from the pipeline outputs.
type Insights struct {
	WindowStart  int
	WindowEnd    int
	Correlation  float64
	Observations int
	Income       []IncomeClass
	NetChanges   []NetChange
}

// IncomeClass places one top emitter in a GDP per capita band.
type IncomeClass struct {
	Country      string
	Emissions    float64
	GDPPerCapita float64
	Class        string
}

// NetChange is a country's emissions difference between two years.
type NetChange struct {
	Country   string
	Baseline  float64
	Compare   float64
	Change    float64
	Available bool
}

// Trend describes the sign of the change.
func (n NetChange) Trend() string {
	switch {
	case !n.Available:
		return "data not available for full range"
	case n.Change >= 1:
		return "trending upwards"
	default:
		return "decreasing"
	}
}

const (
	gdpSeries        = "GDP (current US$)"
	populationSeries = "Population, total"
)

// Correlation is the Pearson coefficient of xs and ys, NaN when undefined.
func Correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// MovingAverage is the trailing mean over window values; the first points
// average whatever is available.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = stat.Mean(values[start:i+1], nil)
	}
	return out
}

// ClassifyIncome returns the label of the band holding gdpPerCapita, or ""
// when the value is missing or outside every band.
func ClassifyIncome(gdpPerCapita float64, bins []config.IncomeBin) string {
	if math.IsNaN(gdpPerCapita) {
		return ""
	}
	for _, bin := range bins {
		if gdpPerCapita >= bin.Min && gdpPerCapita < bin.Max {
			return bin.Label
		}
	}
	return ""
}

// co2TempCorrelation correlates global emissions and anomaly inside [start, end].
func co2TempCorrelation(df dataframe.DataFrame, start, end int) (float64, int, error) {
	window, err := frame.Keep(df, "Year", frame.Between(start, end))
	if err != nil {
		return math.NaN(), 0, err
	}
	if err := frame.Require(window, pipeline.AnomalyColumn, config.EmissionsColumn); err != nil {
		return math.NaN(), 0, err
	}
	xs := window.Col(config.EmissionsColumn).Float()
	ys := window.Col(pipeline.AnomalyColumn).Float()
	return Correlation(xs, ys), len(xs), nil
}

// incomeClasses bins each top emitter by GDP per capita.
func incomeClasses(df dataframe.DataFrame, bins []config.IncomeBin) ([]IncomeClass, error) {
	if err := frame.Require(df, "Entity", config.EmissionsColumn); err != nil {
		return nil, err
	}
	countries := df.Col("Entity").Records()
	emissions := df.Col(config.EmissionsColumn).Float()
	gdp := columnOrNaN(df, gdpSeries)
	population := columnOrNaN(df, populationSeries)

	classes := make([]IncomeClass, len(countries))
	for i, country := range countries {
		perCapita := math.NaN()
		if population[i] > 0 {
			perCapita = gdp[i] / population[i]
		}
		classes[i] = IncomeClass{
			Country:      country,
			Emissions:    emissions[i],
			GDPPerCapita: perCapita,
			Class:        ClassifyIncome(perCapita, bins),
		}
	}
	return classes, nil
}

// netChanges compares each country's emissions between two years.
func netChanges(df dataframe.DataFrame, baseline, compare int) ([]NetChange, error) {
	if err := frame.Require(df, "Entity", "Year", config.EmissionsColumn); err != nil {
		return nil, err
	}
	countries := df.Col("Entity").Records()
	years, err := df.Col("Year").Int()
	if err != nil {
		return nil, err
	}
	emissions := df.Col(config.EmissionsColumn).Float()

	type pair struct {
		base, cmp       float64
		hasBase, hasCmp bool
	}
	byCountry := make(map[string]*pair)
	for i, country := range countries {
		p, ok := byCountry[country]
		if !ok {
			p = &pair{}
			byCountry[country] = p
		}
		switch years[i] {
		case baseline:
			p.base, p.hasBase = emissions[i], true
		case compare:
			p.cmp, p.hasCmp = emissions[i], true
		}
	}

	names := make([]string, 0, len(byCountry))
	for name := range byCountry {
		names = append(names, name)
	}
	sort.Strings(names)

	changes := make([]NetChange, len(names))
	for i, name := range names {
		p := byCountry[name]
		changes[i] = NetChange{Country: name, Baseline: p.base, Compare: p.cmp}
		if p.hasBase && p.hasCmp {
			changes[i].Change = p.cmp - p.base
			changes[i].Available = true
		}
	}
	return changes, nil
}

func columnOrNaN(df dataframe.DataFrame, col string) []float64 {
	if frame.Require(df, col) == nil {
		return df.Col(col).Float()
	}
	out := make([]float64, df.Nrow())
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
