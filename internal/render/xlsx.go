package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"mood-diary/internal/domain"
)

// Sheet — лист книги: заголовки и строки значений.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// WriteWorkbook записывает листы в одну XLSX-книгу.
func WriteWorkbook(w io.Writer, sheets ...Sheet) (err error) {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close excel file: %w", cerr)
		}
	}()

	const defaultSheet = "Sheet1"
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sh.Name, err)
		}

		for col, h := range sh.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sh.Name, cell, h); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
		for r, row := range sh.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(sh.Name, cell, v); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

// ExportEntriesXLSX выгружает записи настроения в XLSX.
func ExportEntriesXLSX(w io.Writer, entries []domain.MoodEntry) error {
	sheet := Sheet{
		Name:    "Записи",
		Headers: []string{"ID", "Дата", "Оценка", "Энергия", "Стресс", "Эмоции", "Активности", "Заметка", "Создано"},
	}
	for _, e := range entries {
		sheet.Rows = append(sheet.Rows, []any{
			e.ID,
			entryDay(e.EntryDate),
			e.MoodScore,
			e.EnergyLevel,
			e.StressLevel,
			strings.Join(e.Emotions, ", "),
			strings.Join(e.Activities, ", "),
			noteText(e.Note),
			e.CreatedAt,
		})
	}
	return WriteWorkbook(w, sheet)
}
