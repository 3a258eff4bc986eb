package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mood-diary/internal/domain"
)

// Лимиты времени ответа для проверок.
const (
	healthLimit  = 200 * time.Millisecond
	userLimit    = 300 * time.Millisecond
	createLimit  = 500 * time.Millisecond
	entriesLimit = 400 * time.Millisecond
	trendsLimit  = 1000 * time.Millisecond
)

const apiPrefix = "/api/v1"

// Response — результат одного запроса сценария.
type Response struct {
	Status   int
	Body     []byte
	Duration time.Duration
	Err      error
}

// Scenario описывает действия виртуального пользователя.
type Scenario struct {
	baseURL string
	token   string
	client  *http.Client
	metrics *Metrics
	logger  *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
	day   atomic.Int64
	now   func() time.Time
}

// NewScenario создает сценарий против API по адресу baseURL (без /api/v1).
func NewScenario(baseURL, token string, client *http.Client, m *Metrics, logger *slog.Logger, rnd *rand.Rand) *Scenario {
	if client == nil {
		client = http.DefaultClient
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Scenario{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		metrics: m,
		logger:  logger,
		rnd:     rnd,
		now:     time.Now,
	}
}

func (s *Scenario) intN(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.IntN(n)
}

// request выполняет запрос и записывает общие метрики HTTP.
func (s *Scenario) request(ctx context.Context, method, path string, body any) Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Response{Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return Response{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	var out Response
	if err != nil {
		out = Response{Err: err, Duration: time.Since(start)}
	} else {
		b, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		out = Response{Status: resp.StatusCode, Body: b, Duration: time.Since(start), Err: readErr}
	}

	s.metrics.Reqs.Inc()
	s.metrics.ReqDuration.AddDuration(out.Duration)
	s.metrics.ReqFailed.Add(out.Err != nil || out.Status >= 400)
	return out
}

// Setup создает тестового пользователя. Возвращает 0, если создать не удалось.
func (s *Scenario) Setup(ctx context.Context) int64 {
	body := domain.UserCreate{
		TelegramID: int64(s.intN(1000000) + 1),
		Username:   fmt.Sprintf("testuser_%d", s.intN(1000)),
		FirstName:  "Test",
		LastName:   "User",
	}
	resp := s.request(ctx, http.MethodPost, apiPrefix+"/users", body)
	if resp.Err != nil || resp.Status != http.StatusCreated {
		s.logger.Error("Failed to create test user", "status", resp.Status, "error", resp.Err)
		return 0
	}
	var user domain.User
	if err := json.Unmarshal(resp.Body, &user); err != nil || user.ID == 0 {
		s.logger.Error("Failed to decode test user", "error", err)
		return 0
	}
	s.logger.Info("Created test user", "user_id", user.ID)
	return user.ID
}

// Teardown удаляет тестового пользователя.
func (s *Scenario) Teardown(ctx context.Context, userID int64) {
	if userID == 0 {
		return
	}
	resp := s.request(ctx, http.MethodDelete, apiPrefix+"/users/"+strconv.FormatInt(userID, 10), nil)
	if resp.Err != nil || resp.Status >= 300 {
		s.logger.Warn("Cleanup failed", "user_id", userID, "status", resp.Status, "error", resp.Err)
		return
	}
	s.logger.Info("Cleanup succeeded", "user_id", userID)
}

// Iteration — одна итерация виртуального пользователя.
func (s *Scenario) Iteration(ctx context.Context, userID int64) {
	s.metrics.Iterations.Inc()
	if userID == 0 {
		s.logger.Error("No user ID available for testing")
		return
	}

	s.healthCheck(ctx)
	s.getUser(ctx, userID)
	s.createEntry(ctx, userID)
	s.listEntries(ctx, userID)
	s.trends(ctx, userID)
}

// group записывает общий итог группы проверок.
func (s *Scenario) group(resp Response, checks ...bool) {
	ok := true
	for _, c := range checks {
		ok = ok && c
	}
	s.metrics.Errors.Add(!ok)
	s.metrics.APIResponseTime.AddDuration(resp.Duration)
}

func (s *Scenario) healthCheck(ctx context.Context) {
	resp := s.request(ctx, http.MethodGet, "/health", nil)
	s.group(resp,
		s.metrics.Check("health check status is 200", resp.Status == http.StatusOK),
		s.metrics.Check("health check response time < 200ms", resp.Duration < healthLimit),
	)
}

func (s *Scenario) getUser(ctx context.Context, userID int64) {
	resp := s.request(ctx, http.MethodGet, apiPrefix+"/users/"+strconv.FormatInt(userID, 10), nil)
	var user domain.User
	valid := json.Unmarshal(resp.Body, &user) == nil && user.ID == userID
	s.group(resp,
		s.metrics.Check("get user status is 200", resp.Status == http.StatusOK),
		s.metrics.Check("get user response time < 300ms", resp.Duration < userLimit),
		s.metrics.Check("get user has valid data", valid),
	)
}

// nextEntryDate выдает каждой итерации свой день, начиная с сегодняшнего
// и назад: API допускает одну запись на дату.
func (s *Scenario) nextEntryDate() string {
	n := s.day.Add(1) - 1
	return s.now().UTC().AddDate(0, 0, -int(n)).Format("2006-01-02T15:04:05.000Z")
}

func (s *Scenario) createEntry(ctx context.Context, userID int64) {
	note := fmt.Sprintf("Test mood entry %d", s.now().UnixMilli())
	body := domain.MoodEntryCreate{
		UserID:      userID,
		MoodScore:   float64(s.intN(10) + 1),
		MoodText:    note,
		Note:        &note,
		Emotions:    []string{"радость", "спокойствие"},
		Activities:  []string{"работа", "отдых"},
		EnergyLevel: s.intN(10) + 1,
		StressLevel: s.intN(10) + 1,
		EntryDate:   s.nextEntryDate(),
	}
	path := apiPrefix + "/mood-entries?analyze=false&user_id=" + strconv.FormatInt(userID, 10)
	resp := s.request(ctx, http.MethodPost, path, body)

	var entry domain.MoodEntry
	valid := json.Unmarshal(resp.Body, &entry) == nil && entry.ID != 0 && entry.UserID == userID
	s.group(resp,
		s.metrics.Check("create mood entry status is 201", resp.Status == http.StatusCreated),
		s.metrics.Check("create mood entry response time < 500ms", resp.Duration < createLimit),
		s.metrics.Check("create mood entry has valid response", valid),
	)
}

func (s *Scenario) listEntries(ctx context.Context, userID int64) {
	path := apiPrefix + "/mood-entries?limit=10&user_id=" + strconv.FormatInt(userID, 10)
	resp := s.request(ctx, http.MethodGet, path, nil)

	var entries []json.RawMessage
	valid := json.Unmarshal(resp.Body, &entries) == nil && entries != nil
	s.group(resp,
		s.metrics.Check("get mood entries status is 200", resp.Status == http.StatusOK),
		s.metrics.Check("get mood entries response time < 400ms", resp.Duration < entriesLimit),
		s.metrics.Check("get mood entries has valid structure", valid),
	)
}

func (s *Scenario) trends(ctx context.Context, userID int64) {
	path := apiPrefix + "/analytics/trends/" + strconv.FormatInt(userID, 10) + "?period=week"
	resp := s.request(ctx, http.MethodGet, path, nil)

	var shape struct {
		Period    string            `json:"period"`
		MoodTrend []json.RawMessage `json:"mood_trend"`
	}
	valid := json.Unmarshal(resp.Body, &shape) == nil && shape.Period != "" && shape.MoodTrend != nil
	s.group(resp,
		s.metrics.Check("get analytics status is 200", resp.Status == http.StatusOK),
		s.metrics.Check("get analytics response time < 1000ms", resp.Duration < trendsLimit),
		s.metrics.Check("get analytics has valid structure", valid),
	)
}
