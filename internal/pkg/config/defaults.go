package config

import "time"

// Default values for configuration.
const (
	// API client defaults
	DefaultAPIBaseURL = "http://localhost:8000/api/v1"
	DefaultAPITimeout = 10 * time.Second

	// Store defaults
	DefaultMockEntries = true
	DefaultCreateDelay = 1 * time.Second

	// Storage defaults
	DefaultStorageDir  = "mood-diary"
	DefaultStorageFile = "storage.yml"

	// Load test defaults
	DefaultLoadTestBaseURL    = "http://localhost:8000"
	DefaultIterationPause     = 1 * time.Second
	DefaultLoadTestReportsDir = "."
	DefaultLoadTestTimeout    = 30 * time.Second

	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8000
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultPidFile         = "mood-server.pid"
	DefaultLogFile         = "mood-server.log"

	// Bot defaults
	DefaultDashboardURL         = "http://localhost:3000"
	DefaultUpdateTimeoutSeconds = 60
	DefaultMinMoodTextLength    = 10
	DefaultBotHandlerTimeout    = 30 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultStages повторяет профиль нагрузки: разгон до 10 VU, плато,
// разгон до 20 VU, плато, снижение до нуля.
func DefaultStages() []Stage {
	return []Stage{
		{Duration: 2 * time.Minute, Target: 10},
		{Duration: 5 * time.Minute, Target: 10},
		{Duration: 2 * time.Minute, Target: 20},
		{Duration: 5 * time.Minute, Target: 20},
		{Duration: 2 * time.Minute, Target: 0},
	}
}

// DefaultThresholds — пороги, при нарушении которых прогон считается проваленным.
func DefaultThresholds() map[string][]string {
	return map[string][]string{
		"http_req_duration": {"p(95)<500"},
		"http_req_failed":   {"rate<0.1"},
		"errors":            {"rate<0.1"},
	}
}

// DefaultCORSOrigins — источники фронтенда для режима разработки.
func DefaultCORSOrigins() []string {
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}
