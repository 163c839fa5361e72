package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"climatetrends/internal/config"
	"climatetrends/internal/frame"
	"climatetrends/internal/pipeline"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
	color.RGBA{R: 227, G: 119, B: 194, A: 255},
	color.RGBA{R: 127, G: 127, B: 127, A: 255},
	color.RGBA{R: 188, G: 189, B: 34, A: 255},
	color.RGBA{R: 23, G: 190, B: 207, A: 255},
}

var (
	green = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	red   = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	blue  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
)

func colorAt(i int) color.Color {
	return palette[i%len(palette)]
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := p.Save(14*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", name, err)
	}
	return path, nil
}

// saveStacked renders plots top to bottom on one image with aligned axes.
func saveStacked(dir, name string, plots ...*plot.Plot) (string, error) {
	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(14*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(plots), Cols: 1, PadY: vg.Millimeter * 4}
	canvases := plot.Align(rows, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save chart %s: %w", name, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(file); err != nil {
		file.Close()
		return "", fmt.Errorf("save chart %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("save chart %s: %w", name, err)
	}
	return path, nil
}

func xyPoints(xs, ys []float64) plotter.XYs {
	points := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		points = append(points, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return points
}

func addLine(p *plot.Plot, points plotter.XYs, c color.Color, legend string, dashed bool) error {
	if len(points) == 0 {
		return nil
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(2)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	}
	p.Add(line)
	if legend != "" {
		p.Legend.Add(legend, line)
	}
	return nil
}

func floats(df dataframe.DataFrame, col string) []float64 {
	return df.Col(col).Float()
}

// co2TemperatureCharts draws the emissions/anomaly scatter and both time series.
func co2TemperatureCharts(df dataframe.DataFrame, cfg config.ReportConfig, corr float64, dir string) ([]string, error) {
	window, err := frame.Keep(df, "Year", frame.Between(cfg.WindowStart, cfg.WindowEnd))
	if err != nil {
		return nil, err
	}
	years := floats(window, "Year")
	co2 := floats(window, config.EmissionsColumn)
	anomaly := floats(window, pipeline.AnomalyColumn)

	var paths []string

	p := newPlot(
		fmt.Sprintf("Global CO2 vs Temperature Anomaly %d-%d (r = %.2f)", cfg.WindowStart, cfg.WindowEnd, corr),
		"Global CO2 Emissions (tonnes)", "Temperature Anomaly (°C)")
	scatter, err := plotter.NewScatter(xyPoints(co2, anomaly))
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = blue
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	path, err := save(p, dir, "co2_vs_temperature.png")
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	p = newPlot("Global CO2 Emissions Over Time", "Year", "CO2 Emissions (tonnes)")
	if err := addLine(p, xyPoints(years, co2), green, "", false); err != nil {
		return nil, err
	}
	if path, err = save(p, dir, "co2_over_time.png"); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	p = newPlot("Global Temperature Anomalies Over Time", "Year", "Temperature Anomaly (°C)")
	if err := addLine(p, xyPoints(years, anomaly), red, "", false); err != nil {
		return nil, err
	}
	if path, err = save(p, dir, "temperature_over_time.png"); err != nil {
		return nil, err
	}
	return append(paths, path), nil
}

// projectionCharts draws one line per scenario for projected CO2 and temperature.
func projectionCharts(df dataframe.DataFrame, dir string) ([]string, error) {
	scenarios, err := frame.Distinct(df, pipeline.ScenarioColumn)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, chart := range []struct {
		column, title, yLabel, file string
	}{
		{pipeline.ProjectedCO2Column, "Projected CO2 Emissions by Scenario", "CO2 Emissions", "projected_co2.png"},
		{pipeline.TemperatureChangeColumn, "Projected Temperature Change by Scenario", "Temperature Change (°C)", "projected_temperature.png"},
	} {
		p := newPlot(chart.title, "Year", chart.yLabel)
		p.Legend.Top = true
		for i, scenario := range scenarios {
			rows, err := frame.Keep(df, pipeline.ScenarioColumn, frame.In(scenario))
			if err != nil {
				return nil, err
			}
			points := xyPoints(floats(rows, "Year"), floats(rows, chart.column))
			if err := addLine(p, points, colorAt(i), scenario, false); err != nil {
				return nil, err
			}
		}
		path, err := save(p, dir, chart.file)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// topEmittersChart draws the latest-year emissions of the top emitters.
func topEmittersChart(df dataframe.DataFrame, dir string) ([]string, error) {
	values := plotter.Values(floats(df, config.EmissionsColumn))
	labels := df.Col("Entity").Records()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = 0
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	title := "Annual CO2 Emissions of the Top Emitters"
	if years, err := df.Col("Year").Int(); err == nil && len(years) > 0 {
		title = fmt.Sprintf("%s (%d)", title, years[0])
	}
	p := newPlot(title, "Country", "CO2 Emissions (tonnes)")

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = blue
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0

	path, err := save(p, dir, "top_emitters.png")
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// deforestationCharts draws tree cover loss against emissions, one chart per region.
func deforestationCharts(df dataframe.DataFrame, dir string) ([]string, error) {
	regions, err := frame.Distinct(df, pipeline.RegionColumn)
	if err != nil {
		return nil, err
	}
	sort.Strings(regions)

	var paths []string
	for _, region := range regions {
		rows, err := frame.Keep(df, pipeline.RegionColumn, frame.In(region))
		if err != nil {
			return nil, err
		}
		countries, err := frame.Distinct(rows, pipeline.DeforestCountryColumn)
		if err != nil {
			return nil, err
		}

		p := newPlot("CO2 Emissions vs. Tree Cover Loss in "+region, "Tree Cover Loss (ha)", "CO2 Emissions (tonnes)")
		p.Legend.Top = true
		for i, country := range countries {
			own, err := frame.Keep(rows, pipeline.DeforestCountryColumn, frame.In(country))
			if err != nil {
				return nil, err
			}
			points := xyPoints(floats(own, pipeline.TreeCoverLossColumn), floats(own, pipeline.DeforestCO2Column))
			if len(points) == 0 {
				continue
			}
			scatter, err := plotter.NewScatter(points)
			if err != nil {
				return nil, err
			}
			scatter.GlyphStyle.Color = colorAt(i)
			scatter.GlyphStyle.Radius = vg.Points(5)
			scatter.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(scatter)
			p.Legend.Add(country, scatter)
		}

		name := "deforestation_" + strings.ToLower(strings.ReplaceAll(region, " ", "_")) + ".png"
		path, err := save(p, dir, name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// disasterFrequencyChart draws summed emissions above the yearly disaster count,
// once for all disasters and once per disaster type.
func disasterFrequencyChart(df dataframe.DataFrame, dir string) ([]string, error) {
	if err := frame.Require(df, pipeline.WeatherYearColumn, pipeline.WeatherDisasterColumn, pipeline.WeatherCO2Column); err != nil {
		return nil, err
	}
	types, err := frame.Distinct(df, pipeline.WeatherDisasterColumn)
	if err != nil {
		return nil, err
	}
	sort.Strings(types)

	path, err := disasterChart(df, dir, "Total Disaster Weather Frequency vs CO2 Emissions Over Time",
		"Total Disaster Frequency", "disaster_frequency.png")
	if err != nil {
		return nil, err
	}
	paths := []string{path}

	for _, kind := range types {
		rows, err := frame.Keep(df, pipeline.WeatherDisasterColumn, frame.In(kind))
		if err != nil {
			return nil, err
		}
		name := "disaster_" + strings.ToLower(strings.ReplaceAll(kind, " ", "_")) + ".png"
		path, err := disasterChart(rows, dir, fmt.Sprintf("Total CO2 Emissions and %s Frequency Over Time", kind),
			kind+" Frequency", name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func disasterChart(df dataframe.DataFrame, dir, title, legend, name string) (string, error) {
	years, co2, counts, err := annualDisasters(df)
	if err != nil {
		return "", err
	}

	top := newPlot(title, "", "CO2 Emissions")
	top.Legend.Top = true
	top.Legend.Left = true
	if err := addLine(top, xyPoints(years, co2), blue, "Total CO2 Emissions", false); err != nil {
		return "", err
	}

	bottom := newPlot("", "Year", "Disaster Frequency")
	bottom.Legend.Top = true
	bottom.Legend.Left = true
	bottom.Y.Min = 0
	if err := addLine(bottom, xyPoints(years, counts), red, legend, true); err != nil {
		return "", err
	}
	return saveStacked(dir, name, top, bottom)
}

// annualDisasters sums emissions and counts disaster records per year.
func annualDisasters(df dataframe.DataFrame) (years, co2, counts []float64, err error) {
	yearCol, err := df.Col(pipeline.WeatherYearColumn).Int()
	if err != nil {
		return nil, nil, nil, err
	}
	emissions := floats(df, pipeline.WeatherCO2Column)
	disasters := df.Col(pipeline.WeatherDisasterColumn)

	sums := make(map[int]float64)
	tally := make(map[int]float64)
	for i, y := range yearCol {
		if _, ok := sums[y]; !ok {
			sums[y] = 0
		}
		if !math.IsNaN(emissions[i]) {
			sums[y] += emissions[i]
		}
		if !disasters.Elem(i).IsNA() {
			tally[y]++
		}
	}

	keys := make([]int, 0, len(sums))
	for y := range sums {
		keys = append(keys, y)
	}
	sort.Ints(keys)
	for _, y := range keys {
		years = append(years, float64(y))
		co2 = append(co2, sums[y])
		counts = append(counts, tally[y])
	}
	return years, co2, counts, nil
}

// parisCharts draws post-agreement emissions and their moving average for the
// countries with the largest emissions in the latest year.
func parisCharts(df dataframe.DataFrame, cfg config.ReportConfig, dir string) ([]string, error) {
	latest, err := frame.MaxInt(df, "Year")
	if err != nil {
		return nil, err
	}
	lastYear, err := frame.Keep(df, "Year", frame.Between(latest, latest))
	if err != nil {
		return nil, err
	}
	top, err := frame.Top(lastYear, config.EmissionsColumn, cfg.TopCountries)
	if err != nil {
		return nil, err
	}

	p := newPlot(fmt.Sprintf("Annual CO2 Emissions Since the Paris Agreement (top %d)", top.Nrow()),
		"Year", "CO2 Emissions (tonnes)")
	p.Legend.Top = true
	for i, country := range top.Col("Entity").Records() {
		rows, err := frame.Keep(df, "Entity", frame.In(country))
		if err != nil {
			return nil, err
		}
		if rows, err = frame.SortBy(rows, "Year"); err != nil {
			return nil, err
		}
		years := floats(rows, "Year")
		values := floats(rows, config.EmissionsColumn)
		if err := addLine(p, xyPoints(years, values), colorAt(i), country, false); err != nil {
			return nil, err
		}
		sma := MovingAverage(values, cfg.SMAWindow)
		if err := addLine(p, xyPoints(years, sma), colorAt(i), fmt.Sprintf("%s %d-year SMA", country, cfg.SMAWindow), true); err != nil {
			return nil, err
		}
	}
	path, err := save(p, dir, "paris_agreement.png")
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// renewablesCharts draws the world renewable share and the summed country
// emissions per year.
func renewablesCharts(df dataframe.DataFrame, dir string) ([]string, error) {
	totals, err := frame.SumBy(df, []string{"Year"}, config.EmissionsColumn)
	if err != nil {
		return nil, err
	}
	perYear, err := frame.Select(df, "Year", pipeline.RenewableShareColumn)
	if err != nil {
		return nil, err
	}
	// The share is broadcast per year, so any row of the year carries it.
	yearly, err := firstPerYear(perYear)
	if err != nil {
		return nil, err
	}

	var paths []string
	p := newPlot("Share of Modern Renewables in Final Energy Consumption, World", "Year", "Share (%)")
	if err := addLine(p, xyPoints(floats(yearly, "Year"), floats(yearly, pipeline.RenewableShareColumn)), green, "", false); err != nil {
		return nil, err
	}
	path, err := save(p, dir, "renewables_share.png")
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	p = newPlot("Global CO2 Emissions (countries only)", "Year", "CO2 Emissions (tonnes)")
	if err := addLine(p, xyPoints(floats(totals, "Year"), floats(totals, config.EmissionsColumn)), red, "", false); err != nil {
		return nil, err
	}
	if path, err = save(p, dir, "renewables_co2.png"); err != nil {
		return nil, err
	}
	return append(paths, path), nil
}

func firstPerYear(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	years := df.Col("Year").Records()
	seen := make(map[string]bool)
	idx := []int{}
	for i, y := range years {
		if !seen[y] {
			seen[y] = true
			idx = append(idx, i)
		}
	}
	out := df.Subset(idx)
	if out.Err != nil {
		return out, out.Err
	}
	return frame.SortBy(out, "Year")
}
