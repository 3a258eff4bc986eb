package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"mood-diary/internal/domain"
)

// Ширины колонок таблицы записей.
const (
	dateColWidth     = 10
	scoreColWidth    = 6
	emotionsColWidth = 22
	activityColWidth = 18
	noteColWidth     = 30
)

// EntriesTable выводит записи настроения таблицей.
func EntriesTable(w io.Writer, entries []domain.MoodEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Записей пока нет.")
		return err
	}

	t := &Table{Columns: []Column{
		{Title: "Дата", Width: dateColWidth},
		{Title: "Оценка", Width: scoreColWidth},
		{Title: "Эмоции", Width: emotionsColWidth},
		{Title: "Активности", Width: activityColWidth},
		{Title: "Заметка", Width: noteColWidth},
	}}
	for _, e := range entries {
		t.AddRow(
			entryDay(e.EntryDate),
			formatScore(e.MoodScore),
			strings.Join(e.Emotions, ", "),
			strings.Join(e.Activities, ", "),
			noteText(e.Note),
		)
	}
	return t.Render(w)
}

// entryDay оставляет от ISO-даты только день.
func entryDay(date string) string {
	if len(date) >= 10 {
		return date[:10]
	}
	return date
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func noteText(note *string) string {
	if note == nil {
		return ""
	}
	return *note
}
