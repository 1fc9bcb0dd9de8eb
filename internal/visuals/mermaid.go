package visuals

import (
	"fmt"
	"math"
	"strings"

	"painburden/internal/report"
	"painburden/internal/simulation"
	"painburden/internal/stats"
)

// profileStep thins the 101-bucket grid to 21 points; Mermaid's xychart
// starts overlapping labels well before 101.
const profileStep = 5

// Series is a named line on a chart.
type Series struct {
	Name   string
	Values stats.Profile
}

func intensityLabels() []string {
	var labels []string
	for i := 0; i < stats.Buckets; i += profileStep {
		labels = append(labels, fmt.Sprintf("\"%.1f\"", stats.Intensity(i)))
	}
	return labels
}

// ProfileChart creates a Mermaid xychart-beta with one line per series over
// the intensity grid.
func ProfileChart(title, yLabel string, series []Series) string {
	if len(series) == 0 {
		return ""
	}

	maxY := 0.0
	var lines []string
	for _, s := range series {
		var values []string
		for i := 0; i < stats.Buckets; i += profileStep {
			values = append(values, formatValue(s.Values[i]))
		}
		maxY = math.Max(maxY, s.Values.Max())
		lines = append(lines, strings.Join(values, ", "))
	}
	if maxY <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis \"Pain intensity\" [%s]\n", strings.Join(intensityLabels(), ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %s\n", yLabel, formatValue(maxY*1.1)))
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", l))
	}
	sb.WriteString("```")
	return sb.String()
}

// PersonYearsChart plots the raw person-years of every subgroup. Line order
// follows the subgroup order of the bundle.
func PersonYearsChart(r *simulation.Results) string {
	series := make([]Series, 0, len(r.Groups))
	for _, g := range r.Groups {
		series = append(series, Series{Name: g.Subgroup.String(), Values: g.PersonYears})
	}
	return ProfileChart("Global Person-Years by Intensity", "Person-years", series)
}

// AdjustedChart plots the adjusted person-years of the population against the comparator.
func AdjustedChart(r *simulation.Results) string {
	var total stats.Profile
	for _, g := range r.Adjusted.Groups {
		total = total.Add(g.PersonYears)
	}
	return ProfileChart(
		fmt.Sprintf("Adjusted Burden (%s) vs %s", r.Adjusted.Params.Method, r.Comparator.Params.Name),
		"Adjusted units",
		[]Series{{Name: "Population", Values: total}, {Name: "Comparator", Values: r.Adjusted.ComparatorPersonYears}},
	)
}

// TotalsChart creates a Mermaid bar chart of total person-years per subgroup.
func TotalsChart(t report.Totals) string {
	if len(t.Groups) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, g := range t.Groups {
		labels = append(labels, fmt.Sprintf("\"%s\"", g.Group))
		values = append(values, formatValue(g.Total.Value))
		maxVal = math.Max(maxVal, g.Total.Value+g.Total.Error)
	}
	if maxVal <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Total Person-Years in Pain\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Person-years\" 0 --> %s\n", formatValue(maxVal*1.2)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// SweepChart plots log10 of both burdens against the Taylor order.
func SweepChart(s simulation.SweepResult) string {
	if len(s.Points) == 0 {
		return ""
	}

	var labels, primary, comp []string
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range s.Points {
		labels = append(labels, fmt.Sprintf("%d", p.Order))
		lp, lc := log10OrZero(p.PrimaryBurden), log10OrZero(p.ComparatorBurden)
		primary = append(primary, fmt.Sprintf("%.2f", lp))
		comp = append(comp, fmt.Sprintf("%.2f", lc))
		minY = math.Min(minY, math.Min(lp, lc))
		maxY = math.Max(maxY, math.Max(lp, lc))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Burden >= %.1f/10 by Taylor Order (log10)\"\n", s.Threshold))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"log10 units\" %d --> %d\n", int(math.Floor(minY)), int(math.Ceil(maxY))+1))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(primary, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(comp, ", ")))
	sb.WriteString("```")
	return sb.String()
}

func log10OrZero(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log10(v)
}

func formatValue(v float64) string {
	if v != 0 && (math.Abs(v) >= 1e9 || math.Abs(v) < 1e-2) {
		return fmt.Sprintf("%.3g", v)
	}
	return fmt.Sprintf("%.2f", v)
}
