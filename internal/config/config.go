package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// EmissionsColumn is the emissions value column of the country-year source.
const EmissionsColumn = "Annual CO₂ emissions"

// Config holds every path, year window and lookup table the pipelines use.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	ReportDir string `yaml:"report_dir"`

	Inputs  InputFiles  `yaml:"inputs"`
	Outputs OutputFiles `yaml:"outputs"`

	CO2Temp       CO2TempConfig       `yaml:"co2temp"`
	Projections   ProjectionsConfig   `yaml:"projections"`
	CO2GDP        CO2GDPConfig        `yaml:"co2gdp"`
	Deforestation DeforestationConfig `yaml:"deforestation"`
	Weather       WeatherConfig       `yaml:"weather"`
	Paris         ParisConfig         `yaml:"paris"`

	// NonCountryEntities are aggregate rows of the emissions source
	// (continents, income tiers, trade blocs, GCP regions).
	NonCountryEntities []string `yaml:"non_country_entities"`

	Report ReportConfig `yaml:"report"`
}

// InputFiles names the raw sources. Relative paths resolve against DataDir.
type InputFiles struct {
	Emissions       string `yaml:"emissions"`
	Temperature     string `yaml:"temperature"`
	CO2Projection   string `yaml:"co2_projection"`
	TempProjection  string `yaml:"temp_projection"`
	Indicators      string `yaml:"indicators"`
	TreeCoverLoss   string `yaml:"tree_cover_loss"`
	TreeCoverSheet  string `yaml:"tree_cover_sheet"`
	Disasters       string `yaml:"disasters"`
	RenewablesShare string `yaml:"renewables_share"`
}

// OutputFiles names the pipeline outputs. Relative paths resolve against OutputDir.
type OutputFiles struct {
	CO2Temp       string `yaml:"co2temp"`
	Projections   string `yaml:"projections"`
	CO2GDP        string `yaml:"co2gdp"`
	Deforestation string `yaml:"deforestation"`
	Weather       string `yaml:"weather"`
	Paris         string `yaml:"paris"`
	Renewables    string `yaml:"renewables"`
}

type CO2TempConfig struct {
	HeaderOffset      int    `yaml:"header_offset"`
	AnomalyColumn     string `yaml:"anomaly_column"`
	ExcludeAggregates bool   `yaml:"exclude_aggregates"`
}

type ProjectionsConfig struct {
	YearColumnOffset int `yaml:"year_column_offset"`
}

type CO2GDPConfig struct {
	IndicatorYearColumn string            `yaml:"indicator_year_column"`
	SeriesPatterns      []string          `yaml:"series_patterns"`
	MissingPlaceholder  string            `yaml:"missing_placeholder"`
	CountryRenames      map[string]string `yaml:"country_renames"`
	TopN                int               `yaml:"top_n"`
}

type DeforestationConfig struct {
	FirstYear int `yaml:"first_year"`
	LastYear  int `yaml:"last_year"`
	// Regions maps a region label to its member countries.
	Regions map[string][]string `yaml:"regions"`
}

type WeatherConfig struct {
	FirstYear         int      `yaml:"first_year"`
	LastYear          int      `yaml:"last_year"`
	ExcludedSubgroups []string `yaml:"excluded_subgroups"`
	ExcludedTypes     []string `yaml:"excluded_types"`
}

type ParisConfig struct {
	FirstYear int `yaml:"first_year"`
}

// ReportConfig drives the chart and workbook stage.
type ReportConfig struct {
	WindowStart  int         `yaml:"window_start"`
	WindowEnd    int         `yaml:"window_end"`
	BaselineYear int         `yaml:"baseline_year"`
	CompareYear  int         `yaml:"compare_year"`
	SMAWindow    int         `yaml:"sma_window"`
	TopCountries int         `yaml:"top_countries"`
	IncomeBins   []IncomeBin `yaml:"income_bins"`
	Workbook     string      `yaml:"workbook"`
}

// IncomeBin is a half-open GDP per capita interval [Min, Max).
type IncomeBin struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// DefaultConfig returns the configuration the published datasets expect.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   ".",
		OutputDir: "data",
		ReportDir: "report",
		Inputs: InputFiles{
			Emissions:       "annual-co2-emissions-per-country.csv",
			Temperature:     "GLB.Ts+dSST.csv",
			CO2Projection:   "world co2 projections.xlsx",
			TempProjection:  "world temp projection.xlsx",
			Indicators:      "Popular Indicators Data.csv",
			TreeCoverLoss:   "global.xlsx",
			TreeCoverSheet:  "Country tree cover loss",
			Disasters:       "Natural Disasters 2000 - 2023.xlsx",
			RenewablesShare: "Global renewables energy share.csv",
		},
		Outputs: OutputFiles{
			CO2Temp:       "co2temp.csv",
			Projections:   "projected_impacts.csv",
			CO2GDP:        "co2gdp.csv",
			Deforestation: "deforestation-co2-dataset.csv",
			Weather:       "weather-co2.csv",
			Paris:         "paris_agreement.csv",
			Renewables:    "renewables.csv",
		},
		CO2Temp: CO2TempConfig{
			HeaderOffset:  1,
			AnomalyColumn: "J-D",
		},
		Projections: ProjectionsConfig{YearColumnOffset: 4},
		CO2GDP: CO2GDPConfig{
			IndicatorYearColumn: "2022 [YR2022]",
			SeriesPatterns:      []string{"GDP", "Population, total"},
			MissingPlaceholder:  "..",
			CountryRenames: map[string]string{
				"Iran, Islamic Rep.": "Iran",
				"Russian Federation": "Russia",
				"Korea, Rep.":        "South Korea",
			},
			TopN: 10,
		},
		Deforestation: DeforestationConfig{
			FirstYear: 2001,
			LastYear:  2023,
			Regions: map[string][]string{
				"Congo Basin": {
					"Cameroon", "Central African Republic", "Democratic Republic of the Congo",
					"Republic of the Congo", "Equatorial Guinea", "Gabon",
				},
				"Amazon": {
					"Brazil", "Peru", "Colombia", "Venezuela", "Ecuador", "Bolivia",
					"Guyana", "Suriname", "French Guiana",
				},
				"Southeast Asia": {"Indonesia", "Malaysia", "Thailand", "Philippines"},
			},
		},
		Weather: WeatherConfig{
			FirstYear:         2000,
			LastYear:          2023,
			ExcludedSubgroups: []string{"Biological"},
			ExcludedTypes:     []string{"Glacial lake outburst flood", "Impact"},
		},
		Paris: ParisConfig{FirstYear: 2017},
		NonCountryEntities: []string{
			"World", "Africa", "Asia", "Europe", "North America", "South America", "Oceania",
			"European Union (27)", "European Union (28)", "High-income countries", "Low-income countries",
			"Lower-middle-income countries", "Upper-middle-income countries", "International aviation",
			"International shipping", "Asia (GCP)", "Europe (GCP)", "North America (GCP)",
			"South America (GCP)", "Oceania (GCP)", "Middle East (GCP)", "Central America (GCP)",
			"Non-OECD (GCP)", "OECD (GCP)", "Africa (GCP)", "Asia (excl. China and India)",
			"Europe (excl. EU-27)", "Europe (excl. EU-28)", "North America (excl. USA)",
		},
		Report: ReportConfig{
			WindowStart:  1970,
			WindowEnd:    2020,
			BaselineYear: 2017,
			CompareYear:  2022,
			SMAWindow:    3,
			TopCountries: 5,
			IncomeBins: []IncomeBin{
				{Label: "Low Income", Min: 0, Max: 1000},
				{Label: "Middle Income", Min: 1000, Max: 10000},
				{Label: "High Income", Min: 10000, Max: 100000},
			},
			Workbook: "climate_report.xlsx",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects configurations the pipelines cannot run with.
func (c *Config) Validate() error {
	if c.Deforestation.FirstYear > c.Deforestation.LastYear {
		return fmt.Errorf("deforestation: first_year %d after last_year %d",
			c.Deforestation.FirstYear, c.Deforestation.LastYear)
	}
	if c.Weather.FirstYear > c.Weather.LastYear {
		return fmt.Errorf("weather: first_year %d after last_year %d",
			c.Weather.FirstYear, c.Weather.LastYear)
	}
	if c.CO2GDP.TopN <= 0 {
		return fmt.Errorf("co2gdp: top_n must be positive, got %d", c.CO2GDP.TopN)
	}
	if c.CO2Temp.HeaderOffset < 0 || c.Projections.YearColumnOffset < 0 {
		return fmt.Errorf("negative header or column offset")
	}

	seen := make(map[string]string)
	for _, region := range c.RegionNames() {
		for _, country := range c.Deforestation.Regions[region] {
			if country == "" {
				return fmt.Errorf("deforestation: empty country in region %q", region)
			}
			if prev, ok := seen[country]; ok && prev != region {
				return fmt.Errorf("deforestation: %q listed in both %q and %q", country, prev, region)
			}
			seen[country] = region
		}
	}
	if len(seen) == 0 {
		return fmt.Errorf("deforestation: no region countries configured")
	}

	for i, bin := range c.Report.IncomeBins {
		if bin.Min >= bin.Max {
			return fmt.Errorf("report: income bin %d (%s) is empty", i, bin.Label)
		}
	}
	return nil
}

// RegionNames returns the configured region labels in sorted order.
func (c *Config) RegionNames() []string {
	names := make([]string, 0, len(c.Deforestation.Regions))
	for name := range c.Deforestation.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegionByCountry flattens the region lists into a country→region lookup.
func (c *Config) RegionByCountry() map[string]string {
	lookup := make(map[string]string)
	for region, countries := range c.Deforestation.Regions {
		for _, country := range countries {
			lookup[country] = region
		}
	}
	return lookup
}

// RegionCountries returns the deforestation allow-list.
func (c *Config) RegionCountries() []string {
	var countries []string
	for _, region := range c.RegionNames() {
		countries = append(countries, c.Deforestation.Regions[region]...)
	}
	return countries
}

// InputPath resolves a raw input file against DataDir.
func (c *Config) InputPath(name string) string {
	return resolve(c.DataDir, name)
}

func (c *Config) OutputPath(name string) string {
	return resolve(c.OutputDir, name)
}

func (c *Config) ReportPath(name string) string {
	return resolve(c.ReportDir, name)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
