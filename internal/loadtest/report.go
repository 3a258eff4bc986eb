package loadtest

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"mood-diary/internal/render"
)

// Имена файлов отчетов.
const (
	SummaryFile = "performance-summary.json"
	HTMLFile    = "performance-report.html"
	XLSXFile    = "performance-report.xlsx"
)

// ExitThresholdsFailed — код выхода при нарушении порогов.
const ExitThresholdsFailed = 99

// ThresholdState — отметка порога в сводке метрики.
type ThresholdState struct {
	OK bool `json:"ok"`
}

// MetricSummary — агрегаты одной метрики.
type MetricSummary struct {
	Type       string                    `json:"type"`
	Values     map[string]float64        `json:"values"`
	Thresholds map[string]ThresholdState `json:"thresholds,omitempty"`
}

// RunState — общие сведения о прогоне.
type RunState struct {
	TestRunDurationMs float64 `json:"testRunDurationMs"`
}

// Summary — сводка прогона, сохраняемая в performance-summary.json.
type Summary struct {
	RunID      string                   `json:"run_id"`
	StartedAt  string                   `json:"started_at"`
	State      RunState                 `json:"state"`
	Metrics    map[string]MetricSummary `json:"metrics"`
	Checks     []CheckResult            `json:"checks"`
	Thresholds []ThresholdResult        `json:"thresholds"`
	Passed     bool                     `json:"passed"`
}

// roundTo округляет до places знаков через decimal, чтобы в JSON не
// попадали хвосты вроде 0.30000000000000004.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	out, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return out
}

// Summarize строит сводку по результату прогона.
func Summarize(res *Result) Summary {
	s := Summary{
		RunID:      res.RunID,
		StartedAt:  res.Started.UTC().Format("2006-01-02T15:04:05.000Z"),
		State:      RunState{TestRunDurationMs: roundTo(float64(res.Duration)/1e6, 3)},
		Metrics:    make(map[string]MetricSummary),
		Checks:     res.Metrics.CheckResults(),
		Thresholds: res.Thresholds,
		Passed:     res.Passed(),
	}
	for _, name := range res.Metrics.Names() {
		m, _ := res.Metrics.ByName(name)
		values := m.Values(res.Duration)
		for k, v := range values {
			values[k] = roundTo(v, 4)
		}
		s.Metrics[name] = MetricSummary{Type: m.Type(), Values: values}
	}
	for _, th := range res.Thresholds {
		ms, ok := s.Metrics[th.Metric]
		if !ok {
			continue
		}
		if ms.Thresholds == nil {
			ms.Thresholds = make(map[string]ThresholdState)
		}
		ms.Thresholds[th.Expr] = ThresholdState{OK: th.OK}
		s.Metrics[th.Metric] = ms
	}
	return s
}

func (s Summary) value(metric, stat string) float64 {
	return s.Metrics[metric].Values[stat]
}

// WriteJSON сохраняет сводку в формате JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms":      func(v float64) string { return strconv.FormatFloat(math.Round(v), 'f', 0, 64) + "ms" },
	"percent": func(v float64) string { return strconv.FormatFloat(v*100, 'f', 2, 64) + "%" },
	"round":   func(v float64) string { return strconv.FormatFloat(math.Round(v), 'f', 0, 64) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <title>AI Mood Diary Bot - Performance Test Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { background: #f4f4f4; padding: 20px; border-radius: 5px; }
        .metric { margin: 10px 0; padding: 10px; border-left: 4px solid #007cba; }
        .passed { border-left-color: #28a745; }
        .failed { border-left-color: #dc3545; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #f4f4f4; }
    </style>
</head>
<body>
    <div class="header">
        <h1>AI Mood Diary Bot - Performance Test Report</h1>
        <p><strong>Test Date:</strong> {{.Date}}</p>
        <p><strong>Run ID:</strong> {{.RunID}}</p>
        <p><strong>Duration:</strong> {{round .DurationSec}}s</p>
        <p><strong>Total Requests:</strong> {{round .TotalRequests}}</p>
    </div>

    <h2>Key Metrics</h2>
    <div class="metric {{if .P95OK}}passed{{else}}failed{{end}}">
        <strong>95th Percentile Response Time:</strong> {{ms .Duration.p95}} (Target: &lt; 500ms)
    </div>
    <div class="metric {{if .ErrorRateOK}}passed{{else}}failed{{end}}">
        <strong>Error Rate:</strong> {{percent .ErrorRate}} (Target: &lt; 10%)
    </div>
    <div class="metric">
        <strong>Average Response Time:</strong> {{ms .Duration.avg}}
    </div>
    <div class="metric">
        <strong>Requests per Second:</strong> {{round .RPS}}
    </div>

    <h2>Detailed Metrics</h2>
    <table>
        <tr>
            <th>Metric</th>
            <th>Average</th>
            <th>Min</th>
            <th>Max</th>
            <th>90th %ile</th>
            <th>95th %ile</th>
        </tr>
        {{range .Rows}}<tr>
            <td>{{.Title}}</td>
            <td>{{ms .Avg}}</td>
            <td>{{ms .Min}}</td>
            <td>{{ms .Max}}</td>
            <td>{{ms .P90}}</td>
            <td>{{ms .P95}}</td>
        </tr>
        {{end}}
    </table>

    <h2>Checks</h2>
    <table>
        <tr><th>Check</th><th>Passes</th><th>Fails</th></tr>
        {{range .Checks}}<tr><td>{{.Name}}</td><td>{{.Passes}}</td><td>{{.Fails}}</td></tr>
        {{end}}
    </table>

    <h2>Thresholds</h2>
    {{range .Thresholds}}<div class="metric {{if .OK}}passed{{else}}failed{{end}}">
        <strong>{{.Metric}}:</strong> {{.Expr}}{{if .Error}} ({{.Error}}){{end}}
    </div>
    {{end}}

    <h2>Test Results</h2>
    <div class="metric {{if .Passed}}passed{{else}}failed{{end}}">
        <strong>Overall Result:</strong> {{if .Passed}}PASSED{{else}}FAILED{{end}}
    </div>
</body>
</html>
`))

type trendRow struct {
	Title                   string
	Avg, Min, Max, P90, P95 float64
}

type htmlData struct {
	Date          string
	RunID         string
	DurationSec   float64
	TotalRequests float64
	Duration      map[string]float64
	P95OK         bool
	ErrorRate     float64
	ErrorRateOK   bool
	RPS           float64
	Rows          []trendRow
	Checks        []CheckResult
	Thresholds    []ThresholdResult
	Passed        bool
}

func newTrendRow(title string, v map[string]float64) trendRow {
	return trendRow{Title: title, Avg: v["avg"], Min: v["min"], Max: v["max"], P90: v["p(90)"], P95: v["p(95)"]}
}

// WriteHTML рендерит HTML-отчет.
func WriteHTML(w io.Writer, s Summary) error {
	duration := s.Metrics[MetricReqDuration].Values
	data := htmlData{
		Date:          s.StartedAt,
		RunID:         s.RunID,
		DurationSec:   s.State.TestRunDurationMs / 1000,
		TotalRequests: s.value(MetricReqs, "count"),
		Duration:      map[string]float64{"p95": duration["p(95)"], "avg": duration["avg"]},
		P95OK:         duration["p(95)"] < 500,
		ErrorRate:     s.value(MetricReqFailed, "rate"),
		ErrorRateOK:   s.value(MetricReqFailed, "rate") < 0.1,
		RPS:           s.value(MetricReqs, "rate"),
		Rows: []trendRow{
			newTrendRow("HTTP Request Duration", duration),
			newTrendRow("API Response Time (Custom)", s.Metrics[MetricAPIResponseTime].Values),
		},
		Checks:     s.Checks,
		Thresholds: s.Thresholds,
		Passed:     s.Passed,
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

func sortedStats(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteXLSX сохраняет метрики, проверки и пороги на отдельных листах.
func WriteXLSX(w io.Writer, s Summary, names []string) error {
	metrics := render.Sheet{Name: "Metrics", Headers: []string{"Metric", "Type", "Stat", "Value"}}
	for _, name := range names {
		ms := s.Metrics[name]
		for _, stat := range sortedStats(ms.Values) {
			metrics.Rows = append(metrics.Rows, []any{name, ms.Type, stat, ms.Values[stat]})
		}
	}

	checks := render.Sheet{Name: "Checks", Headers: []string{"Check", "Passes", "Fails"}}
	for _, c := range s.Checks {
		checks.Rows = append(checks.Rows, []any{c.Name, c.Passes, c.Fails})
	}

	thresholds := render.Sheet{Name: "Thresholds", Headers: []string{"Metric", "Threshold", "Actual", "Result"}}
	for _, th := range s.Thresholds {
		result := "PASS"
		if !th.OK {
			result = "FAIL"
		}
		thresholds.Rows = append(thresholds.Rows, []any{th.Metric, th.Expr, roundTo(th.Actual, 4), result})
	}

	return render.WriteWorkbook(w, metrics, checks, thresholds)
}

// WriteReports сохраняет JSON, HTML и XLSX отчеты в dir.
func WriteReports(dir string, s Summary, names []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{SummaryFile, func(w io.Writer) error { return WriteJSON(w, s) }},
		{HTMLFile, func(w io.Writer) error { return WriteHTML(w, s) }},
		{XLSXFile, func(w io.Writer) error { return WriteXLSX(w, s, names) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func formatStat(v float64, trend bool) string {
	if trend {
		return strconv.FormatFloat(v, 'f', 2, 64) + "ms"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteConsole печатает сводку: таблицу метрик, проверки и пороги
// с отметками PASS/FAIL.
func WriteConsole(w io.Writer, s Summary, names []string) error {
	table := render.Table{Columns: []render.Column{
		{Title: "Metric", Width: 18},
		{Title: "Values", Width: 70},
	}}
	for _, name := range names {
		ms := s.Metrics[name]
		var line string
		for i, stat := range sortedStats(ms.Values) {
			if i > 0 {
				line += "  "
			}
			line += stat + "=" + formatStat(ms.Values[stat], ms.Type == TypeTrend && stat != "count")
		}
		table.AddRow(name, line)
	}
	if err := table.Render(w); err != nil {
		return err
	}

	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	mark := func(ok bool) string {
		if ok {
			return pass.Sprint("PASS")
		}
		return fail.Sprint("FAIL")
	}

	fmt.Fprintln(w)
	for _, c := range s.Checks {
		fmt.Fprintf(w, "%s %s (%d/%d)\n", mark(c.Fails == 0), c.Name, c.Passes, c.Passes+c.Fails)
	}
	fmt.Fprintln(w)
	for _, th := range s.Thresholds {
		detail := formatStat(th.Actual, false)
		if th.Error != "" {
			detail = th.Error
		}
		fmt.Fprintf(w, "%s %s: %s (%s)\n", mark(th.OK), th.Metric, th.Expr, detail)
	}
	fmt.Fprintf(w, "\nOverall: %s\n", mark(s.Passed))
	return nil
}
