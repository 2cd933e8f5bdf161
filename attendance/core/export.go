package core

import (
	"fmt"
	"io"
	"sort"

	"fieldtrack.com/fieldtrack/utils"
	"github.com/xuri/excelize/v2"
)

const (
	VisitsSheet  = "Visits"
	SummarySheet = "Summary"
)

// WriteVisitReport renders visit counts as an xlsx workbook: one row per user
// per day on the Visits sheet, totals per user on the Summary sheet.
func WriteVisitReport(w io.Writer, rows []VisitCount) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", VisitsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeRows(f, VisitsSheet, []any{"Date", "Name", "Email", "Region", "Visits"}, utils.Map(rows, func(r VisitCount) []any {
		return []any{r.Date, r.FullName, r.Email, r.Region, r.Visits}
	})); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SummarySheet, err)
	}
	if err := writeRows(f, SummarySheet, []any{"Name", "Email", "Region", "Days", "Total Visits"}, totalsByUser(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetColWidth(sheet, "A", "E", 22)
}

func totalsByUser(rows []VisitCount) [][]any {
	type total struct {
		VisitCount
		days int
	}
	byUser := utils.GroupBy(rows, func(r VisitCount) string { return r.UserID })

	totals := make([]total, 0, len(byUser))
	for _, rs := range byUser {
		t := total{VisitCount: rs[0], days: len(rs)}
		t.Visits = 0
		for _, r := range rs {
			t.Visits += r.Visits
		}
		totals = append(totals, t)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Visits != totals[j].Visits {
			return totals[i].Visits > totals[j].Visits
		}
		return totals[i].FullName < totals[j].FullName
	})

	return utils.Map(totals, func(t total) []any {
		return []any{t.FullName, t.Email, t.Region, t.days, t.Visits}
	})
}
