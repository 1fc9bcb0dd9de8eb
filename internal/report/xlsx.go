package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"painburden/internal/simulation"
	"painburden/internal/stats"
)

// Workbook sheet names.
const (
	SheetSummary  = "Summary"
	SheetTotals   = "Totals"
	SheetProfiles = "Profiles"
)

// WriteXLSX writes the summary, the totals and the per-bucket person-year
// profiles of a bundle as an xlsx workbook.
func WriteXLSX(w io.Writer, r *simulation.Results) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook assembles the workbook in memory. The caller must Close it.
func BuildWorkbook(r *simulation.Results) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetTotals, SheetProfiles} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, *simulation.Results) error{writeSummary, writeTotals, writeProfiles}
	for _, step := range steps {
		if err := step(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, r *simulation.Results) error {
	rows := [][]any{{
		"Group",
		"Avg hours", "Avg hours >= 9/10", "Avg adjusted units", "Avg adjusted units >= 9/10",
		"Person-years", "Person-years >= 9/10", "Adjusted units", "Adjusted units >= 9/10",
	}}
	for _, s := range Summarize(r) {
		rows = append(rows, []any{
			s.Group,
			s.AvgHours, s.AvgHighHours, s.AvgAdjustedUnits, s.AvgHighAdjustedUnits,
			s.PersonYears, s.HighPersonYears, s.AdjustedUnits, s.HighAdjustedUnits,
		})
	}
	return writeRows(f, SheetSummary, rows)
}

func writeTotals(f *excelize.File, r *simulation.Results) error {
	t := ComputeTotals(r)
	rows := [][]any{{"Scope", "Person-years", "Error"}}
	for _, g := range t.Groups {
		rows = append(rows,
			[]any{g.Group, g.Total.Value, g.Total.Error},
			[]any{g.Group + " >= 9/10", g.High.Value, g.High.Error},
		)
	}
	rows = append(rows,
		[]any{TotalLabel, t.Total.Value, t.Total.Error},
		[]any{TotalLabel + " >= 7/10", t.Severe.Value, t.Severe.Error},
		[]any{TotalLabel + " >= 9/10", t.High.Value, t.High.Error},
		[]any{"Comparator", t.Comparator, nil},
		[]any{"Comparator adjusted", t.ComparatorAdjusted, nil},
	)
	return writeRows(f, SheetTotals, rows)
}

func writeProfiles(f *excelize.File, r *simulation.Results) error {
	header := []any{"Intensity", "Transformed"}
	for _, g := range r.Groups {
		header = append(header, g.Subgroup.String(), g.Subgroup.String()+" adjusted")
	}
	header = append(header, "Comparator", "Comparator adjusted")

	rows := [][]any{header}
	for i := range stats.Buckets {
		row := []any{r.Grid[i], r.Adjusted.TransformedGrid[i]}
		for j, g := range r.Groups {
			row = append(row, g.PersonYears[i], r.Adjusted.Groups[j].PersonYears[i])
		}
		row = append(row, r.Comparator.PersonYears[i], r.Adjusted.ComparatorPersonYears[i])
		rows = append(rows, row)
	}
	return writeRows(f, SheetProfiles, rows)
}
