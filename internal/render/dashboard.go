package render

import (
	"fmt"
	"io"
	"strings"

	"mood-diary/internal/domain"
)

// Dashboard — данные для текстового дашборда.
type Dashboard struct {
	User            *domain.User
	AverageMood     float64
	MoodTrend       string
	CurrentStreak   int
	HasEntryToday   bool
	Recommendations []string
	// Labels и Values — ряд средних оценок по датам.
	Labels []string
	Values []float64
}

var trendTitles = map[string]string{
	domain.TrendImproving: "улучшается",
	domain.TrendDeclining: "ухудшается",
	domain.TrendStable:    "стабильно",
}

const maxBarWidth = 20

// DashboardText выводит сводку настроения и горизонтальный график.
func DashboardText(w io.Writer, d Dashboard) error {
	var sb strings.Builder

	if d.User != nil {
		fmt.Fprintf(&sb, "Пользователь: %s\n", d.User.DisplayName())
	}
	fmt.Fprintf(&sb, "Среднее настроение: %s\n", formatScore(d.AverageMood))

	trend, ok := trendTitles[d.MoodTrend]
	if !ok {
		trend = d.MoodTrend
	}
	fmt.Fprintf(&sb, "Тренд: %s\n", trend)
	fmt.Fprintf(&sb, "Серия: %d дн.\n", d.CurrentStreak)
	if d.HasEntryToday {
		sb.WriteString("Сегодня запись уже есть.\n")
	} else {
		sb.WriteString("Сегодня записи еще нет.\n")
	}

	if len(d.Labels) > 0 {
		sb.WriteString("\nНастроение по дням:\n")
		labelWidth := 0
		for _, l := range d.Labels {
			if lw := len([]rune(l)); lw > labelWidth {
				labelWidth = lw
			}
		}
		for i, l := range d.Labels {
			var v float64
			if i < len(d.Values) {
				v = d.Values[i]
			}
			fmt.Fprintf(&sb, "%s%s %s %s\n", l, generatePadding(l, labelWidth), bar(v), formatScore(v))
		}
	}

	if len(d.Recommendations) > 0 {
		sb.WriteString("\nРекомендации:\n")
		for _, r := range d.Recommendations {
			for i, line := range wrapString(r, 70) {
				if i == 0 {
					fmt.Fprintf(&sb, "  • %s\n", line)
				} else {
					fmt.Fprintf(&sb, "    %s\n", line)
				}
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// bar рисует полосу длиной пропорционально оценке по шкале 0..10.
func bar(v float64) string {
	n := int(v / 10 * maxBarWidth)
	if n < 0 {
		n = 0
	}
	if n > maxBarWidth {
		n = maxBarWidth
	}
	return strings.Repeat("█", n) + strings.Repeat("·", maxBarWidth-n)
}
