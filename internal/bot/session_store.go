package bot

import "sync"

// Шаги диалога записи настроения.
const (
	actionWaitingScore = "waiting_mood_score"
	actionWaitingText  = "waiting_mood_text"
)

// Session — незавершенный диалог записи настроения одного пользователя.
type Session struct {
	Action string
	Score  float64
}

// SessionStore — потокобезопасное in-memory хранилище диалогов,
// ключ — Telegram ID пользователя.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewSessionStore создает пустое хранилище.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]Session),
	}
}

// Set сохраняет диалог, перезаписывая предыдущий.
func (s *SessionStore) Set(telegramID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[telegramID] = session
}

// Get возвращает диалог пользователя и признак его наличия.
func (s *SessionStore) Get(telegramID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[telegramID]
	return session, ok
}

// Delete завершает диалог пользователя.
func (s *SessionStore) Delete(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, telegramID)
}
