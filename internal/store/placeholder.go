package store

import (
	"context"
	"fmt"
	"time"

	"mood-diary/internal/domain"
)

// isoLayout совпадает с форматом Date.toISOString, в котором API отдает даты.
const isoLayout = "2006-01-02T15:04:05.000Z"

// placeholderAnalysis — ответ локального создания записи.
const placeholderAnalysis = "Ваша запись показывает позитивное настроение. Продолжайте в том же духе!"

var (
	placeholderEmotions   = []string{"радость", "спокойствие"}
	placeholderActivities = []string{"работа", "спорт", "чтение"}
)

// createLocal синтезирует запись без обращения к API:
// id — текущее время в миллисекундах.
func (s *Store) createLocal(ctx context.Context, data domain.MoodEntryCreate) (*domain.MoodEntry, string, error) {
	now := s.now().UTC()
	entry := &domain.MoodEntry{
		ID:          now.UnixMilli(),
		UserID:      data.UserID,
		MoodScore:   data.MoodScore,
		MoodText:    data.MoodText,
		Note:        data.Note,
		Emotions:    data.Emotions,
		Activities:  data.Activities,
		EnergyLevel: data.EnergyLevel,
		StressLevel: data.StressLevel,
		Weather:     data.Weather,
		SleepHours:  data.SleepHours,
		EntryDate:   data.EntryDate,
		CreatedAt:   now.Format(isoLayout),
	}
	if entry.UserID == 0 {
		if u := s.CurrentUser(); u != nil {
			entry.UserID = u.ID
		}
	}

	if s.createDelay > 0 {
		timer := time.NewTimer(s.createDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-timer.C:
		}
	}
	return entry, placeholderAnalysis, nil
}

// synthesizeEntries генерирует limit случайных записей, по одной на день
// начиная с сегодняшнего и назад.
func (s *Store) synthesizeEntries(userID int64, limit int) []domain.MoodEntry {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.MoodEntry, limit)
	for i := range entries {
		ts := now.Add(-time.Duration(i) * 24 * time.Hour).Format(isoLayout)

		var note *string
		if i%3 == 0 {
			n := fmt.Sprintf("Заметка №%d о настроении", i+1)
			note = &n
		}

		entries[i] = domain.MoodEntry{
			ID:          int64(i + 1),
			UserID:      userID,
			MoodScore:   float64(s.rnd.IntN(10) + 1),
			Note:        note,
			Emotions:    append([]string(nil), placeholderEmotions[:s.rnd.IntN(2)+1]...),
			Activities:  append([]string(nil), placeholderActivities[:s.rnd.IntN(3)+1]...),
			EnergyLevel: s.rnd.IntN(10) + 1,
			StressLevel: s.rnd.IntN(10) + 1,
			EntryDate:   ts,
			CreatedAt:   ts,
		}
	}
	return entries
}
