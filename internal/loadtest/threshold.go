package loadtest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

var thresholdRe = regexp.MustCompile(`^\s*([a-z]+(?:\(\d+(?:\.\d+)?\))?)\s*(<=|>=|==|!=|<|>)\s*(-?\d+(?:\.\d+)?)\s*$`)

// Threshold — условие вида "p(95)<500" над метрикой.
type Threshold struct {
	Metric string
	Expr   string
	Stat   string
	Op     string
	Value  float64
}

// ParseThreshold разбирает выражение порога для метрики.
func ParseThreshold(metric, expr string) (Threshold, error) {
	m := thresholdRe.FindStringSubmatch(expr)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q for %s", expr, metric)
	}
	v, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value in %q: %w", expr, err)
	}
	return Threshold{Metric: metric, Expr: expr, Stat: m[1], Op: m[2], Value: v}, nil
}

// ParseThresholds разбирает пороги из конфигурации в стабильном порядке.
func ParseThresholds(cfg map[string][]string) ([]Threshold, error) {
	metrics := make([]string, 0, len(cfg))
	for name := range cfg {
		metrics = append(metrics, name)
	}
	sort.Strings(metrics)

	var out []Threshold
	for _, name := range metrics {
		for _, expr := range cfg[name] {
			th, err := ParseThreshold(name, expr)
			if err != nil {
				return nil, err
			}
			out = append(out, th)
		}
	}
	return out, nil
}

func (t Threshold) holds(actual float64) bool {
	switch t.Op {
	case "<":
		return actual < t.Value
	case "<=":
		return actual <= t.Value
	case ">":
		return actual > t.Value
	case ">=":
		return actual >= t.Value
	case "==":
		return actual == t.Value
	case "!=":
		return actual != t.Value
	}
	return false
}

// ThresholdResult — итог проверки порога.
type ThresholdResult struct {
	Metric string  `json:"metric"`
	Expr   string  `json:"expr"`
	Actual float64 `json:"actual"`
	OK     bool    `json:"ok"`
	Error  string  `json:"error,omitempty"`
}

// Evaluate проверяет пороги по текущим метрикам. Неизвестная метрика
// или агрегат считаются нарушением.
func Evaluate(m *Metrics, thresholds []Threshold, elapsed time.Duration) []ThresholdResult {
	out := make([]ThresholdResult, 0, len(thresholds))
	for _, th := range thresholds {
		res := ThresholdResult{Metric: th.Metric, Expr: th.Expr}
		metric, ok := m.ByName(th.Metric)
		if !ok {
			res.Error = "unknown metric"
			out = append(out, res)
			continue
		}
		actual, ok := metric.Stat(th.Stat, elapsed)
		if !ok {
			res.Error = fmt.Sprintf("%s metric has no %s", metric.Type(), th.Stat)
			out = append(out, res)
			continue
		}
		res.Actual = actual
		res.OK = th.holds(actual)
		out = append(out, res)
	}
	return out
}
