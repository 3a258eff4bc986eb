// Package render форматирует данные дневника для консоли и файлов экспорта.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Column описывает колонку таблицы фиксированной ширины.
type Column struct {
	Title string
	Width int
}

// Table — моноширинная таблица с переносом слов внутри ячеек.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// AddRow добавляет строку. Недостающие ячейки считаются пустыми.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render выводит таблицу в w.
func (t *Table) Render(w io.Writer) error {
	var sb strings.Builder

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Title
	}
	t.writeLine(&sb, header)

	sb.WriteString("|")
	for _, c := range t.Columns {
		sb.WriteString(strings.Repeat("-", c.Width+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		wrapped := make([][]string, len(t.Columns))
		maxLines := 1
		for i, c := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = strings.ReplaceAll(strings.ToValidUTF8(row[i], ""), "\n", " ")
			}
			wrapped[i] = wrapString(cell, c.Width)
			if len(wrapped[i]) > maxLines {
				maxLines = len(wrapped[i])
			}
		}

		for line := 0; line < maxLines; line++ {
			parts := make([]string, len(t.Columns))
			for i := range t.Columns {
				if line < len(wrapped[i]) {
					parts[i] = wrapped[i][line]
				}
			}
			t.writeLine(&sb, parts)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *Table) writeLine(sb *strings.Builder, parts []string) {
	for i, c := range t.Columns {
		fmt.Fprintf(sb, "| %s%s ", parts[i], generatePadding(parts[i], c.Width))
	}
	sb.WriteString("|\n")
}

// generatePadding вычисляет отступ для строки с учетом поправки на CJK-символы.
func generatePadding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	// Прагматическая поправка: если в строке есть CJK-символы, добавляем один пробел,
	// чтобы компенсировать ошибку рендеринга в некоторых терминалах.
	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}

// wrapString переносит строку по ширине с учетом runewidth. Перенос идет
// по пробелам; слово длиннее ширины режется посередине.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
			lines = append(lines, splitByWidth(word, width)...)
			continue
		}

		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return lines
}

func splitByWidth(word string, width int) []string {
	var out []string
	runes := []rune(word)
	for len(runes) > 0 {
		i := 0
		currentWidth := 0
		for i < len(runes) {
			rw := runewidth.RuneWidth(runes[i])
			if currentWidth+rw > width {
				break
			}
			currentWidth += rw
			i++
		}
		if i == 0 {
			// руна шире колонки
			i = 1
		}
		out = append(out, string(runes[:i]))
		runes = runes[i:]
	}
	return out
}
