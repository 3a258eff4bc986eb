package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPayload возвращается, когда ответ API не соответствует ожидаемой схеме.
var ErrInvalidPayload = errors.New("invalid payload")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// User представляет пользователя дневника настроения.
type User struct {
	ID                   int64  `json:"id" yaml:"id"`
	TelegramID           int64  `json:"telegram_id" yaml:"telegram_id"`
	Username             string `json:"username,omitempty" yaml:"username,omitempty"`
	FirstName            string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	LanguageCode         string `json:"language_code,omitempty" yaml:"language_code,omitempty"`
	Timezone             string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	MoodEntriesCount     int    `json:"mood_entries_count" yaml:"mood_entries_count"`
	IsActive             bool   `json:"is_active" yaml:"is_active"`
	NotificationsEnabled bool   `json:"notifications_enabled" yaml:"notifications_enabled"`
	CreatedAt            string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	LastActivity         string `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
}

// DisplayName возвращает имя для отображения.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return fmt.Sprintf("user#%d", u.ID)
	}
}

// Validate проверяет обязательные поля пользователя.
func (u *User) Validate() error {
	if u.ID <= 0 {
		return invalid("user.id must be positive, got %d", u.ID)
	}
	return nil
}

// UserCreate — тело запроса на создание пользователя.
type UserCreate struct {
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// UserUpdate — тело запроса на частичное обновление пользователя.
type UserUpdate struct {
	Username             *string `json:"username,omitempty"`
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	LanguageCode         *string `json:"language_code,omitempty"`
	Timezone             *string `json:"timezone,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

// UserListParams — параметры пагинации списка пользователей.
type UserListParams struct {
	Skip       int
	Limit      int
	ActiveOnly bool
}

// UsersSummary — ответ /users/stats/summary.
type UsersSummary struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
}

// Validate проверяет сводку пользователей.
func (s *UsersSummary) Validate() error {
	if s.TotalUsers < 0 || s.ActiveUsers < 0 {
		return invalid("users summary counters must be non-negative")
	}
	return nil
}
