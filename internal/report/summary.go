package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"climatetrends/internal/pipeline"

	"github.com/olekukonko/tablewriter"
)

func WriteRunSummary(w io.Writer, results []pipeline.Result) {
	table := newTable(w, "Pipeline", "Status", "Rows", "Output", "Elapsed")

	for _, res := range results {
		status, rows := "ok", strconv.Itoa(res.Rows)
		if !res.OK() {
			status, rows = "failed: "+res.Err.Error(), "-"
		}
		table.Append([]string{res.Name, status, rows, res.Output, res.Elapsed.Round(time.Millisecond).String()})
	}
	table.Render()
}

// WriteInsights prints the correlation, income classes and net changes.
func WriteInsights(w io.Writer, in Insights) {
	fmt.Fprintf(w, "CO2 / temperature correlation %d-%d: %s (%d years)\n",
		in.WindowStart, in.WindowEnd, formatFloat(in.Correlation, 3), in.Observations)

	if len(in.Income) > 0 {
		table := newTable(w, "Country", "CO2 Emissions", "GDP per Capita", "Income Class")
		for _, c := range in.Income {
			table.Append([]string{c.Country, formatNumber(c.Emissions), formatFloat(c.GDPPerCapita, 0), orDash(c.Class)})
		}
		table.Render()
	}

	if len(in.NetChanges) > 0 {
		table := newTable(w, "Country", "Net Change", "Trend")
		for _, n := range in.NetChanges {
			change := "-"
			if n.Available {
				change = formatNumber(n.Change)
			}
			table.Append([]string{n.Country, change, n.Trend()})
		}
		table.Render()
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func formatNumber(num float64) string {
	switch abs := math.Abs(num); {
	case math.IsNaN(num):
		return "-"
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", num/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", num/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", num/1e3)
	}
	return fmt.Sprintf("%.0f", num)
}

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
