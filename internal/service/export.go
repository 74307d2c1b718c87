package service

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"aahaara-data/internal/dietgen"
	"aahaara-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var dietChartExportHeader = []string{"Day", "Meal", "Name", "Calories", "Description"}

var foodExportHeader = []string{
	"Name", "Serving Size", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Fiber (g)",
	"Rasa", "Guna", "Virya", "Vata", "Pitta", "Kapha", "Tridoshic", "Meal Types", "Category", "Tags",
}

// sheetWriter wraps one sheet of a workbook and closes the file on the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
}

func newSheetWriter(sheet string, header []string, widths []float64) (*sheetWriter, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{f: f, sheet: sheet}
	if err := w.row(1, headerRow(header)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return w, nil
}

func (w *sheetWriter) row(row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			w.f.Close()
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.f.Close()
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

// bytes freezes the header row and serialises the workbook.
func (w *sheetWriter) bytes() ([]byte, error) {
	if err := w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func headerRow(h []string) []any {
	out := make([]any, len(h))
	for i, s := range h {
		out[i] = s
	}
	return out
}

// exportDietChart writes one row per day and meal, days in numeric order and meals in
// serving order, with a per-day total row.
func exportDietChart(c *domain.DietChart) (*ExportFile, error) {
	w, err := newSheetWriter("Diet Chart", dietChartExportHeader, []float64{10, 12, 32, 10, 60})
	if err != nil {
		return nil, err
	}

	row := 2
	for _, day := range sortedDays(c.Meals) {
		meals := c.Meals[day]
		for _, slot := range orderedSlots(meals) {
			m := meals[slot]
			if err := w.row(row, []any{day, slot, m.Name, m.Calories, m.Description}); err != nil {
				return nil, err
			}
			row++
		}
		if err := w.row(row, []any{day, "total", "", dietgen.TotalCalories(meals), ""}); err != nil {
			return nil, err
		}
		row++
	}

	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: exportName(c.ChartName, c.ChartID), ContentType: xlsxContentType, Data: data}, nil
}

func exportFoodItems(foods []*domain.FoodItem) (*ExportFile, error) {
	widths := []float64{28, 12, 10, 10, 10, 10, 10, 24, 24, 10, 12, 12, 12, 10, 30, 16, 30}
	w, err := newSheetWriter("Food Database", foodExportHeader, widths)
	if err != nil {
		return nil, err
	}
	for i, f := range foods {
		tridoshic := "No"
		if f.IsTridoshic() {
			tridoshic = "Yes"
		}
		values := []any{
			f.Name, f.ServingSize, f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG,
			strings.Join(f.Rasa, ", "), strings.Join(f.Guna, ", "), f.Virya,
			f.VataEffect, f.PittaEffect, f.KaphaEffect, tridoshic,
			strings.Join(f.MealTypes, ", "), f.FoodCategory, strings.Join(f.Tags, ", "),
		}
		if err := w.row(i+2, values); err != nil {
			return nil, err
		}
	}
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: "food_database.xlsx", ContentType: xlsxContentType, Data: data}, nil
}

// sortedDays orders day_N keys by N; keys that do not parse sort last by name.
func sortedDays(plan domain.DailyMealPlan) []string {
	days := make([]string, 0, len(plan))
	for k := range plan {
		days = append(days, k)
	}
	num := func(k string) int {
		n, err := strconv.Atoi(strings.TrimPrefix(k, "day_"))
		if err != nil {
			return int(^uint(0) >> 1)
		}
		return n
	}
	sort.Slice(days, func(i, j int) bool {
		a, b := num(days[i]), num(days[j])
		if a != b {
			return a < b
		}
		return days[i] < days[j]
	})
	return days
}

func orderedSlots(meals map[string]domain.MealEntry) []string {
	out := make([]string, 0, len(meals))
	seen := make(map[string]bool, len(meals))
	for _, slot := range domain.MealSlots {
		if _, ok := meals[slot]; ok {
			out = append(out, slot)
			seen[slot] = true
		}
	}
	var extra []string
	for slot := range meals {
		if !seen[slot] {
			extra = append(extra, slot)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func exportName(chartName, chartID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, chartName)
	if name == "" {
		name = chartID
	}
	return name + ".xlsx"
}
