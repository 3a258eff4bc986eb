package domain

// MoodEntry — одна запись настроения.
// EntryDate хранится в виде ISO-строки, которую вернул API.
type MoodEntry struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	MoodScore   float64     `json:"mood_score"`
	MoodText    string      `json:"mood_text,omitempty"`
	Note        *string     `json:"note"`
	Emotions    []string    `json:"emotions,omitempty"`
	Activities  []string    `json:"activities,omitempty"`
	EnergyLevel int         `json:"energy_level,omitempty"`
	StressLevel int         `json:"stress_level,omitempty"`
	Weather     string      `json:"weather,omitempty"`
	SleepHours  *float64    `json:"sleep_hours,omitempty"`
	EntryDate   string      `json:"entry_date"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
	AIAnalysis  *AIAnalysis `json:"ai_analysis,omitempty"`
}

// Validate проверяет запись, полученную от API.
func (e *MoodEntry) Validate() error {
	if e.ID == 0 {
		return invalid("mood_entry.id is required")
	}
	if e.MoodScore < 0 || e.MoodScore > 10 {
		return invalid("mood_entry.mood_score out of range: %v", e.MoodScore)
	}
	return nil
}

// ValidateEntries проверяет каждую запись в списке.
func ValidateEntries(entries []MoodEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MoodEntryCreate — данные для создания записи.
type MoodEntryCreate struct {
	UserID      int64    `json:"user_id,omitempty"`
	MoodScore   float64  `json:"mood_score"`
	MoodText    string   `json:"mood_text,omitempty"`
	Note        *string  `json:"note,omitempty"`
	Emotions    []string `json:"emotions,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	EnergyLevel int      `json:"energy_level,omitempty"`
	StressLevel int      `json:"stress_level,omitempty"`
	Weather     string   `json:"weather,omitempty"`
	SleepHours  *float64 `json:"sleep_hours,omitempty"`
	EntryDate   string   `json:"entry_date"`
}

// MoodEntryUpdate — данные для частичного обновления записи.
type MoodEntryUpdate struct {
	MoodScore   *float64 `json:"mood_score,omitempty"`
	MoodText    *string  `json:"mood_text,omitempty"`
	Note        *string  `json:"note,omitempty"`
	Emotions    []string `json:"emotions,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	EnergyLevel *int     `json:"energy_level,omitempty"`
	StressLevel *int     `json:"stress_level,omitempty"`
	Weather     *string  `json:"weather,omitempty"`
	SleepHours  *float64 `json:"sleep_hours,omitempty"`
}

// EntryListParams — фильтры списка записей.
type EntryListParams struct {
	Skip      int
	Limit     int
	UserID    int64
	StartDate string
	EndDate   string
}

// AIAnalysis — результат AI-анализа записи.
type AIAnalysis struct {
	ID              int64              `json:"id,omitempty"`
	SentimentScore  *float64           `json:"sentiment_score,omitempty"`
	SentimentLabel  string             `json:"sentiment_label,omitempty"`
	Emotions        map[string]float64 `json:"emotions,omitempty"`
	DominantEmotion string             `json:"dominant_emotion,omitempty"`
	Keywords        []string           `json:"keywords,omitempty"`
	Themes          []string           `json:"themes,omitempty"`
	Recommendations string             `json:"recommendations,omitempty"`
	Insights        string             `json:"insights,omitempty"`
}

// TodayCheck — ответ /mood-entries/user/{id}/check-today.
type TodayCheck struct {
	HasEntryToday bool       `json:"has_entry_today"`
	Entry         *MoodEntry `json:"entry"`
}

// Validate проверяет согласованность флага и записи.
func (c *TodayCheck) Validate() error {
	if c.HasEntryToday && c.Entry == nil {
		return invalid("check-today: has_entry_today without entry")
	}
	return nil
}
