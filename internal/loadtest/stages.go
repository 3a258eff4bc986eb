// Package loadtest прогоняет сценарий нагрузки против API дневника:
// ступенчатый профиль виртуальных пользователей, метрики запросов,
// пороги и отчеты.
package loadtest

import (
	"math"
	"time"

	"mood-diary/internal/pkg/config"
)

// TotalDuration — длительность всего профиля.
func TotalDuration(stages []config.Stage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += s.Duration
	}
	return total
}

// TargetVUs возвращает число виртуальных пользователей в момент elapsed.
// Внутри ступени число линейно меняется от цели предыдущей ступени
// (для первой — от нуля) до цели текущей.
func TargetVUs(stages []config.Stage, elapsed time.Duration) int {
	from := 0
	var offset time.Duration
	for _, s := range stages {
		if elapsed < offset+s.Duration {
			frac := float64(elapsed-offset) / float64(s.Duration)
			return int(math.Round(float64(from) + float64(s.Target-from)*frac))
		}
		offset += s.Duration
		from = s.Target
	}
	return from
}

// MaxVUs — наибольшая цель профиля.
func MaxVUs(stages []config.Stage) int {
	m := 0
	for _, s := range stages {
		m = max(m, s.Target)
	}
	return m
}
