package server

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mood-diary/internal/domain"
)

// Формат дат в ответах, как у datetime без часового пояса.
const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// Ошибки репозитория. Текст для клиента подбирается в errorDetail.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTelegramNotFound  = errors.New("user with this telegram id not found")
	ErrTelegramIDTaken   = errors.New("telegram id is already registered")
	ErrEntryNotFound     = errors.New("mood entry not found")
	ErrEntryDateConflict = errors.New("entry date is already taken")
	ErrInvalidEntryDate  = errors.New("invalid entry_date")
)

// DuplicateEntryError сообщает о второй записи на ту же дату.
type DuplicateEntryError struct {
	Date string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("entry for %s already exists", e.Date)
}

func (e *DuplicateEntryError) Unwrap() error { return ErrEntryDateConflict }

// Repository хранит пользователей и записи в памяти.
type Repository struct {
	users      map[int64]*domain.User
	byTelegram map[int64]int64
	entries    map[int64]*domain.MoodEntry
	nextUser   int64
	nextEntry  int64
	mutex      sync.RWMutex
	now        func() time.Time
}

// NewRepository создает пустой репозиторий.
func NewRepository(now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{
		users:      make(map[int64]*domain.User),
		byTelegram: make(map[int64]int64),
		entries:    make(map[int64]*domain.MoodEntry),
		now:        now,
	}
}

func (r *Repository) stamp() string {
	return r.now().UTC().Format(dateTimeLayout)
}

// CreateUser регистрирует пользователя. Telegram ID должен быть уникальным.
func (r *Repository) CreateUser(in domain.UserCreate) (domain.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byTelegram[in.TelegramID]; exists {
		return domain.User{}, ErrTelegramIDTaken
	}

	r.nextUser++
	now := r.stamp()
	u := &domain.User{
		ID:                   r.nextUser,
		TelegramID:           in.TelegramID,
		Username:             in.Username,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		LanguageCode:         in.LanguageCode,
		Timezone:             in.Timezone,
		IsActive:             true,
		NotificationsEnabled: true,
		CreatedAt:            now,
		LastActivity:         now,
	}
	if u.LanguageCode == "" {
		u.LanguageCode = "ru"
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	r.users[u.ID] = u
	r.byTelegram[u.TelegramID] = u.ID
	return *u, nil
}

// GetUser возвращает пользователя по ID.
func (r *Repository) GetUser(id int64) (domain.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return domain.User{}, ErrUserNotFound
	}
	return *u, nil
}

// GetUserByTelegramID ищет пользователя по Telegram ID.
func (r *Repository) GetUserByTelegramID(telegramID int64) (domain.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.byTelegram[telegramID]
	if !exists {
		return domain.User{}, ErrTelegramNotFound
	}
	return *r.users[id], nil
}

// ListUsers возвращает пользователей по возрастанию ID с пагинацией.
func (r *Repository) ListUsers(p domain.UserListParams) []domain.User {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if p.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, p.Skip, p.Limit)
}

// UpdateUser применяет заданные поля.
func (r *Repository) UpdateUser(id int64, upd domain.UserUpdate) (domain.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, exists := r.users[id]
	if !exists {
		return domain.User{}, ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.LanguageCode != nil {
		u.LanguageCode = *upd.LanguageCode
	}
	if upd.Timezone != nil {
		u.Timezone = *upd.Timezone
	}
	if upd.NotificationsEnabled != nil {
		u.NotificationsEnabled = *upd.NotificationsEnabled
	}
	u.LastActivity = r.stamp()
	return *u, nil
}

// SetUserActive активирует или деактивирует пользователя.
func (r *Repository) SetUserActive(id int64, active bool) (domain.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, exists := r.users[id]
	if !exists {
		return domain.User{}, ErrUserNotFound
	}
	u.IsActive = active
	return *u, nil
}

// DeleteUser удаляет пользователя вместе с его записями.
func (r *Repository) DeleteUser(id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, exists := r.users[id]
	if !exists {
		return ErrUserNotFound
	}
	for entryID, e := range r.entries {
		if e.UserID == id {
			delete(r.entries, entryID)
		}
	}
	delete(r.byTelegram, u.TelegramID)
	delete(r.users, id)
	return nil
}

// UsersSummary считает активных и неактивных пользователей.
func (r *Repository) UsersSummary() domain.UsersSummary {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s := domain.UsersSummary{TotalUsers: len(r.users)}
	for _, u := range r.users {
		if u.IsActive {
			s.ActiveUsers++
		}
	}
	s.InactiveUsers = s.TotalUsers - s.ActiveUsers
	return s
}

// CreateEntry сохраняет запись пользователя. На одну календарную дату
// допускается одна запись. Пустая entry_date означает текущий момент.
func (r *Repository) CreateEntry(userID int64, in domain.MoodEntryCreate) (domain.MoodEntry, error) {
	date := r.now().UTC()
	if in.EntryDate != "" {
		parsed, err := ParseEntryDate(in.EntryDate)
		if err != nil {
			return domain.MoodEntry{}, err
		}
		date = parsed
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, exists := r.users[userID]
	if !exists {
		return domain.MoodEntry{}, ErrUserNotFound
	}
	day := date.Format(dateLayout)
	for _, e := range r.entries {
		if e.UserID == userID && entryDay(*e) == day {
			return domain.MoodEntry{}, &DuplicateEntryError{Date: day}
		}
	}

	r.nextEntry++
	now := r.stamp()
	e := &domain.MoodEntry{
		ID:          r.nextEntry,
		UserID:      userID,
		MoodScore:   in.MoodScore,
		MoodText:    in.MoodText,
		Note:        in.Note,
		Emotions:    append([]string(nil), in.Emotions...),
		Activities:  append([]string(nil), in.Activities...),
		EnergyLevel: in.EnergyLevel,
		StressLevel: in.StressLevel,
		Weather:     in.Weather,
		SleepHours:  in.SleepHours,
		EntryDate:   date.Format(dateTimeLayout),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.entries[e.ID] = e
	u.MoodEntriesCount++
	u.LastActivity = now
	return *e, nil
}

// GetEntry возвращает запись по ID.
func (r *Repository) GetEntry(id int64) (domain.MoodEntry, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, exists := r.entries[id]
	if !exists {
		return domain.MoodEntry{}, ErrEntryNotFound
	}
	return *e, nil
}

// UpdateEntry применяет заданные поля записи.
func (r *Repository) UpdateEntry(id int64, upd domain.MoodEntryUpdate) (domain.MoodEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return domain.MoodEntry{}, ErrEntryNotFound
	}
	if upd.MoodScore != nil {
		e.MoodScore = *upd.MoodScore
	}
	if upd.MoodText != nil {
		e.MoodText = *upd.MoodText
	}
	if upd.Note != nil {
		e.Note = upd.Note
	}
	if upd.Emotions != nil {
		e.Emotions = append([]string(nil), upd.Emotions...)
	}
	if upd.Activities != nil {
		e.Activities = append([]string(nil), upd.Activities...)
	}
	if upd.EnergyLevel != nil {
		e.EnergyLevel = *upd.EnergyLevel
	}
	if upd.StressLevel != nil {
		e.StressLevel = *upd.StressLevel
	}
	if upd.Weather != nil {
		e.Weather = *upd.Weather
	}
	if upd.SleepHours != nil {
		e.SleepHours = upd.SleepHours
	}
	e.UpdatedAt = r.stamp()
	return *e, nil
}

// SetAnalysis прикрепляет AI-анализ к записи.
func (r *Repository) SetAnalysis(id int64, a *domain.AIAnalysis) (domain.MoodEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return domain.MoodEntry{}, ErrEntryNotFound
	}
	if a != nil {
		a.ID = e.ID
	}
	e.AIAnalysis = a
	return *e, nil
}

// DeleteEntry удаляет запись и уменьшает счетчик пользователя.
func (r *Repository) DeleteEntry(id int64) (domain.MoodEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return domain.MoodEntry{}, ErrEntryNotFound
	}
	if u, ok := r.users[e.UserID]; ok && u.MoodEntriesCount > 0 {
		u.MoodEntriesCount--
	}
	delete(r.entries, id)
	return *e, nil
}

// EntryFilter ограничивает выборку записей пользователя.
// Нулевые границы не применяются, нулевой Limit означает "без ограничения".
type EntryFilter struct {
	Since time.Time
	Until time.Time
	Skip  int
	Limit int
}

// UserEntries возвращает записи пользователя от новых к старым.
func (r *Repository) UserEntries(userID int64, f EntryFilter) []domain.MoodEntry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.MoodEntry, 0)
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		at := entryTime(*e)
		if !f.Since.IsZero() && at.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && at.After(f.Until) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := entryTime(out[i]), entryTime(out[j])
		if ti.Equal(tj) {
			return out[i].ID > out[j].ID
		}
		return ti.After(tj)
	})
	return paginate(out, f.Skip, f.Limit)
}

// EntryOn возвращает запись пользователя за календарный день, если она есть.
func (r *Repository) EntryOn(userID int64, day time.Time) (domain.MoodEntry, bool) {
	key := day.UTC().Format(dateLayout)

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, e := range r.entries {
		if e.UserID == userID && entryDay(*e) == key {
			return *e, true
		}
	}
	return domain.MoodEntry{}, false
}

// MoodScores возвращает оценки всех записей.
func (r *Repository) MoodScores() []float64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scores := make([]float64, 0, len(r.entries))
	for _, e := range r.entries {
		scores = append(scores, e.MoodScore)
	}
	return scores
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return items[:0]
		}
		items = items[skip:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var entryDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	dateTimeLayout,
	dateLayout,
}

// ParseEntryDate разбирает дату записи в UTC. Даты без зоны считаются UTC.
func ParseEntryDate(raw string) (time.Time, error) {
	for _, layout := range entryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEntryDate, raw)
}

func entryTime(e domain.MoodEntry) time.Time {
	t, _ := ParseEntryDate(e.EntryDate)
	return t
}

func entryDay(e domain.MoodEntry) string {
	return entryTime(e).Format(dateLayout)
}
