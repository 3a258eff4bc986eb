package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-diary/internal/domain"
)

func TestRepository(t *testing.T) {
	clock := func() time.Time { return fixedNow }

	t.Run("NewRepository", func(t *testing.T) {
		r := NewRepository(nil)
		assert.NotNil(t, r.users)
		assert.NotNil(t, r.entries)
		assert.NotNil(t, r.now)
	})

	t.Run("Empty entry date means now", func(t *testing.T) {
		r := NewRepository(clock)
		u, err := r.CreateUser(domain.UserCreate{TelegramID: 1})
		require.NoError(t, err)

		e, err := r.CreateEntry(u.ID, domain.MoodEntryCreate{MoodScore: 5, MoodText: "x"})
		require.NoError(t, err)
		assert.Equal(t, "2024-01-15T10:30:00", e.EntryDate)

		got, found := r.EntryOn(u.ID, fixedNow)
		require.True(t, found)
		assert.Equal(t, e.ID, got.ID)
	})

	t.Run("Invalid entry date", func(t *testing.T) {
		r := NewRepository(clock)
		u, _ := r.CreateUser(domain.UserCreate{TelegramID: 1})
		_, err := r.CreateEntry(u.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: "вчера"})
		assert.ErrorIs(t, err, ErrInvalidEntryDate)
	})

	t.Run("Same date for different users", func(t *testing.T) {
		r := NewRepository(clock)
		a, _ := r.CreateUser(domain.UserCreate{TelegramID: 1})
		b, _ := r.CreateUser(domain.UserCreate{TelegramID: 2})

		_, err := r.CreateEntry(a.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: "2024-01-10"})
		require.NoError(t, err)
		_, err = r.CreateEntry(b.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: "2024-01-10"})
		require.NoError(t, err)

		_, err = r.CreateEntry(a.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: "2024-01-10T23:59:59"})
		var dup *DuplicateEntryError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "2024-01-10", dup.Date)
		assert.ErrorIs(t, err, ErrEntryDateConflict)
	})

	t.Run("Deleting user removes entries", func(t *testing.T) {
		r := NewRepository(clock)
		u, _ := r.CreateUser(domain.UserCreate{TelegramID: 1})
		e, _ := r.CreateEntry(u.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: "2024-01-10"})

		require.NoError(t, r.DeleteUser(u.ID))

		_, err := r.GetEntry(e.ID)
		assert.ErrorIs(t, err, ErrEntryNotFound)
		_, err = r.GetUserByTelegramID(1)
		assert.ErrorIs(t, err, ErrTelegramNotFound)
		assert.Empty(t, r.MoodScores())

		// Telegram ID снова свободен.
		_, err = r.CreateUser(domain.UserCreate{TelegramID: 1})
		assert.NoError(t, err)
	})

	t.Run("Entry list pagination", func(t *testing.T) {
		r := NewRepository(clock)
		u, _ := r.CreateUser(domain.UserCreate{TelegramID: 1})
		for _, d := range []string{"2024-01-10", "2024-01-12", "2024-01-11"} {
			_, err := r.CreateEntry(u.ID, domain.MoodEntryCreate{MoodScore: 5, EntryDate: d})
			require.NoError(t, err)
		}

		page := r.UserEntries(u.ID, EntryFilter{Skip: 1, Limit: 1})
		require.Len(t, page, 1)
		assert.Equal(t, "2024-01-11T00:00:00", page[0].EntryDate)

		assert.Empty(t, r.UserEntries(u.ID, EntryFilter{Skip: 10}))

		until, _ := ParseEntryDate("2024-01-11")
		assert.Len(t, r.UserEntries(u.ID, EntryFilter{Until: until}), 2)
	})

	t.Run("Concurrent writes", func(t *testing.T) {
		r := NewRepository(clock)
		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := r.CreateUser(domain.UserCreate{TelegramID: id})
				assert.NoError(t, err)
			}(int64(i))
		}
		wg.Wait()
		assert.Equal(t, 50, r.UsersSummary().TotalUsers)
	})
}
