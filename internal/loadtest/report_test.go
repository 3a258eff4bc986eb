package loadtest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult(t *testing.T) *Result {
	t.Helper()
	m := NewMetrics()
	for _, v := range []float64{120, 80, 100.12} {
		m.ReqDuration.Add(v)
		m.APIResponseTime.Add(v)
		m.Reqs.Inc()
		m.ReqFailed.Add(false)
	}
	m.Iterations.Inc()
	m.Errors.Add(false)
	m.Check("health check status is 200", true)
	m.Check("get user status is 200", false)

	ths, err := ParseThresholds(map[string][]string{
		MetricReqDuration: {"p(95)<500"},
		MetricErrors:      {"rate<0.1"},
		MetricReqFailed:   {"rate>0.5"},
	})
	require.NoError(t, err)

	elapsed := 3 * time.Second
	return &Result{
		RunID:      "run-1",
		Started:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Duration:   elapsed,
		Metrics:    m,
		Thresholds: Evaluate(m, ths, elapsed),
		MaxVUs:     1,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResult(t))

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "2024-01-15T10:30:00.000Z", s.StartedAt)
	assert.Equal(t, 3000.0, s.State.TestRunDurationMs)
	assert.False(t, s.Passed)

	t.Run("aggregates are rounded", func(t *testing.T) {
		d := s.Metrics[MetricReqDuration]
		assert.Equal(t, TypeTrend, d.Type)
		assert.InDelta(t, 100.04, d.Values["avg"], 1e-9)
		assert.Equal(t, 120.0, d.Values["max"])
		assert.Equal(t, 1.0, s.Metrics[MetricReqs].Values["rate"])
		assert.Equal(t, 3.0, s.Metrics[MetricReqs].Values["count"])
	})

	t.Run("thresholds marked on metrics", func(t *testing.T) {
		assert.Equal(t, ThresholdState{OK: true}, s.Metrics[MetricReqDuration].Thresholds["p(95)<500"])
		assert.Equal(t, ThresholdState{OK: false}, s.Metrics[MetricReqFailed].Thresholds["rate>0.5"])
		assert.Nil(t, s.Metrics[MetricIterations].Thresholds)
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Summarize(sampleResult(t))))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, "metrics")
	assert.Equal(t, 3000.0, raw["state"].(map[string]any)["testRunDurationMs"])
	assert.Equal(t, false, raw["passed"])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Summarize(sampleResult(t))))
	html := buf.String()

	assert.Contains(t, html, "AI Mood Diary Bot - Performance Test Report")
	assert.Contains(t, html, "<strong>Total Requests:</strong> 3")
	assert.Contains(t, html, "<strong>95th Percentile Response Time:</strong> 118ms")
	assert.Contains(t, html, "<strong>Error Rate:</strong> 0.00%")
	assert.Contains(t, html, "health check status is 200")
	assert.Contains(t, html, "<strong>Overall Result:</strong> FAILED")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	s := Summarize(sampleResult(t))
	require.NoError(t, WriteXLSX(&buf, s, NewMetrics().Names()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Metrics", "Checks", "Thresholds"}, f.GetSheetList())

	rows, err := f.GetRows("Checks")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"get user status is 200", "0", "1"}, rows[2])

	rows, err = f.GetRows("Thresholds")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "FAIL", rows[3][3])
}

func TestWriteConsole(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	s := Summarize(sampleResult(t))
	require.NoError(t, WriteConsole(&buf, s, NewMetrics().Names()))
	out := buf.String()

	assert.Contains(t, out, "http_req_duration")
	assert.Contains(t, out, "PASS health check status is 200 (1/1)")
	assert.Contains(t, out, "FAIL get user status is 200 (0/1)")
	assert.Contains(t, out, "FAIL http_req_failed: rate>0.5 (0.0000)")
	assert.Contains(t, out, "Overall: FAIL")
}

func TestWriteReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := WriteReports(dir, Summarize(sampleResult(t)), NewMetrics().Names())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, name := range []string{SummaryFile, HTMLFile, XLSXFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}
