package loadtest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Имена метрик.
const (
	MetricReqDuration     = "http_req_duration"
	MetricReqFailed       = "http_req_failed"
	MetricReqs            = "http_reqs"
	MetricErrors          = "errors"
	MetricAPIResponseTime = "api_response_time"
	MetricIterations      = "iterations"
	MetricChecks          = "checks"
)

// Типы метрик в сводке.
const (
	TypeTrend   = "trend"
	TypeRate    = "rate"
	TypeCounter = "counter"
)

// Metric — источник агрегированных значений для сводки и порогов.
type Metric interface {
	Type() string
	// Stat возвращает агрегат по имени (avg, p(95), rate, count ...).
	Stat(name string, elapsed time.Duration) (float64, bool)
	// Values — агрегаты, попадающие в отчет.
	Values(elapsed time.Duration) map[string]float64
}

// Trend накапливает значения в миллисекундах.
type Trend struct {
	mu      sync.Mutex
	samples []float64
}

func (t *Trend) Add(v float64) {
	t.mu.Lock()
	t.samples = append(t.samples, v)
	t.mu.Unlock()
}

// AddDuration добавляет длительность в миллисекундах.
func (t *Trend) AddDuration(d time.Duration) {
	t.Add(float64(d) / float64(time.Millisecond))
}

func (t *Trend) sorted() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]float64(nil), t.samples...)
	sort.Float64s(out)
	return out
}

func (t *Trend) Type() string { return TypeTrend }

func (t *Trend) Stat(name string, _ time.Duration) (float64, bool) {
	s := t.sorted()
	switch name {
	case "avg":
		if len(s) == 0 {
			return 0, true
		}
		sum := 0.0
		for _, v := range s {
			sum += v
		}
		return sum / float64(len(s)), true
	case "min":
		if len(s) == 0 {
			return 0, true
		}
		return s[0], true
	case "max":
		if len(s) == 0 {
			return 0, true
		}
		return s[len(s)-1], true
	case "med":
		return percentile(s, 50), true
	case "count":
		return float64(len(s)), true
	}
	if p, ok := parsePercentile(name); ok {
		return percentile(s, p), true
	}
	return 0, false
}

func (t *Trend) Values(elapsed time.Duration) map[string]float64 {
	out := make(map[string]float64, 6)
	for _, k := range []string{"avg", "min", "med", "max", "p(90)", "p(95)"} {
		out[k], _ = t.Stat(k, elapsed)
	}
	return out
}

// parsePercentile разбирает "p(95)" или "p(99.9)".
func parsePercentile(name string) (float64, bool) {
	if !strings.HasPrefix(name, "p(") || !strings.HasSuffix(name, ")") {
		return 0, false
	}
	p, err := strconv.ParseFloat(name[2:len(name)-1], 64)
	if err != nil || p < 0 || p > 100 {
		return 0, false
	}
	return p, true
}

// percentile — линейная интерполяция между соседними рангами.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Rate считает долю ненулевых (true) значений.
type Rate struct {
	mu     sync.Mutex
	passes int
	fails  int
}

func (r *Rate) Add(v bool) {
	r.mu.Lock()
	if v {
		r.passes++
	} else {
		r.fails++
	}
	r.mu.Unlock()
}

func (r *Rate) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passes, r.fails
}

func (r *Rate) Type() string { return TypeRate }

func (r *Rate) Stat(name string, _ time.Duration) (float64, bool) {
	passes, fails := r.counts()
	switch name {
	case "rate":
		if passes+fails == 0 {
			return 0, true
		}
		return float64(passes) / float64(passes+fails), true
	case "passes":
		return float64(passes), true
	case "fails":
		return float64(fails), true
	}
	return 0, false
}

func (r *Rate) Values(elapsed time.Duration) map[string]float64 {
	out := make(map[string]float64, 3)
	for _, k := range []string{"rate", "passes", "fails"} {
		out[k], _ = r.Stat(k, elapsed)
	}
	return out
}

// Counter — монотонный счетчик.
type Counter struct {
	mu sync.Mutex
	n  int
}

func (c *Counter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *Counter) Type() string { return TypeCounter }

func (c *Counter) Stat(name string, elapsed time.Duration) (float64, bool) {
	c.mu.Lock()
	n := c.n
	c.mu.Unlock()
	switch name {
	case "count":
		return float64(n), true
	case "rate":
		if elapsed <= 0 {
			return 0, true
		}
		return float64(n) / elapsed.Seconds(), true
	}
	return 0, false
}

func (c *Counter) Values(elapsed time.Duration) map[string]float64 {
	count, _ := c.Stat("count", elapsed)
	rate, _ := c.Stat("rate", elapsed)
	return map[string]float64{"count": count, "rate": rate}
}

// CheckResult — итог одной именованной проверки.
type CheckResult struct {
	Name   string `json:"name"`
	Passes int    `json:"passes"`
	Fails  int    `json:"fails"`
}

// Metrics — все метрики прогона.
type Metrics struct {
	ReqDuration     Trend
	ReqFailed       Rate
	Reqs            Counter
	Errors          Rate
	APIResponseTime Trend
	Iterations      Counter
	Checks          Rate

	mu     sync.Mutex
	checks map[string]*CheckResult
	order  []string
}

// NewMetrics создает пустой набор метрик.
func NewMetrics() *Metrics {
	return &Metrics{checks: make(map[string]*CheckResult)}
}

// Check фиксирует результат проверки и возвращает его.
func (m *Metrics) Check(name string, ok bool) bool {
	m.mu.Lock()
	c, exists := m.checks[name]
	if !exists {
		c = &CheckResult{Name: name}
		m.checks[name] = c
		m.order = append(m.order, name)
	}
	if ok {
		c.Passes++
	} else {
		c.Fails++
	}
	m.mu.Unlock()

	m.Checks.Add(ok)
	return ok
}

// CheckResults возвращает проверки в порядке первого появления.
func (m *Metrics) CheckResults() []CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CheckResult, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, *m.checks[name])
	}
	return out
}

// ByName возвращает метрику по имени.
func (m *Metrics) ByName(name string) (Metric, bool) {
	switch name {
	case MetricReqDuration:
		return &m.ReqDuration, true
	case MetricReqFailed:
		return &m.ReqFailed, true
	case MetricReqs:
		return &m.Reqs, true
	case MetricErrors:
		return &m.Errors, true
	case MetricAPIResponseTime:
		return &m.APIResponseTime, true
	case MetricIterations:
		return &m.Iterations, true
	case MetricChecks:
		return &m.Checks, true
	}
	return nil, false
}

// Names — метрики в порядке вывода.
func (m *Metrics) Names() []string {
	return []string{MetricReqDuration, MetricAPIResponseTime, MetricReqFailed, MetricErrors, MetricChecks, MetricReqs, MetricIterations}
}
