package server

import (
	"net/http"

	"mood-diary/internal/domain"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	lp := domain.UserListParams{
		Skip:       p.intQuery("skip", 0, 0, 1<<30),
		Limit:      p.intQuery("limit", defaultPageLimit, 1, maxPageLimit),
		ActiveOnly: p.boolQuery("active_only", false),
	}
	if !p.ok(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.repo.ListUsers(lp))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserCreate
	if !decodeBody(w, r, &in) {
		return
	}
	if in.TelegramID == 0 {
		writeValidation(w, []fieldError{{Loc: []string{"body", "telegram_id"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}
	u, err := s.repo.CreateUser(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("User created", "user_id", u.ID, "telegram_id", u.TelegramID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUsersSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.UsersSummary())
}

func (s *Server) handleGetUserByTelegram(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	telegramID := p.pathID("telegramID")
	if !p.ok(w) {
		return
	}
	u, err := s.repo.GetUserByTelegramID(telegramID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	userID := p.pathID("userID")
	if !p.ok(w) {
		return
	}
	u, err := s.repo.GetUser(userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	userID := p.pathID("userID")
	if !p.ok(w) {
		return
	}
	var upd domain.UserUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	u, err := s.repo.UpdateUser(userID, upd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	userID := p.pathID("userID")
	if !p.ok(w) {
		return
	}
	if err := s.repo.DeleteUser(userID); err != nil {
		s.writeError(w, err)
		return
	}
	s.invalidate(userID)
	writeJSON(w, http.StatusOK, domain.Message{Message: "Пользователь успешно удален"})
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := newParams(r)
		userID := p.pathID("userID")
		if !p.ok(w) {
			return
		}
		u, err := s.repo.SetUserActive(userID, active)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	f := EntryFilter{
		Skip:  p.intQuery("skip", 0, 0, 1<<30),
		Limit: p.intQuery("limit", defaultPageLimit, 1, maxPageLimit),
		Since: p.timeQuery("start_date"),
		Until: p.timeQuery("end_date"),
	}
	userID := p.int64Query("user_id")
	if !p.ok(w) {
		return
	}

	// Без user_id список всегда пуст.
	if userID == 0 {
		writeJSON(w, http.StatusOK, []domain.MoodEntry{})
		return
	}
	if _, err := s.repo.GetUser(userID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.repo.UserEntries(userID, f))
}

func validateEntry(in domain.MoodEntryCreate) []fieldError {
	var errs []fieldError
	bad := func(field, msg string) {
		errs = append(errs, fieldError{Loc: []string{"body", field}, Msg: msg, Type: "value_error"})
	}
	if in.MoodScore < 1 || in.MoodScore > 10 {
		bad("mood_score", "ensure this value is between 1 and 10")
	}
	if in.MoodText == "" {
		bad("mood_text", "ensure this value has at least 1 characters")
	}
	if in.StressLevel != 0 && (in.StressLevel < 1 || in.StressLevel > 10) {
		bad("stress_level", "ensure this value is between 1 and 10")
	}
	if in.EnergyLevel != 0 && (in.EnergyLevel < 1 || in.EnergyLevel > 10) {
		bad("energy_level", "ensure this value is between 1 and 10")
	}
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		bad("sleep_hours", "ensure this value is between 0 and 24")
	}
	return errs
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	userID := p.int64Query("user_id")
	analyze := p.boolQuery("analyze", true)
	if userID == 0 && len(p.errs) == 0 {
		p.fail("query", "user_id", "field required", "value_error.missing")
	}
	if !p.ok(w) {
		return
	}

	var in domain.MoodEntryCreate
	if !decodeBody(w, r, &in) {
		return
	}
	if errs := validateEntry(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	entry, err := s.repo.CreateEntry(userID, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if analyze {
		if entry, err = s.repo.SetAnalysis(entry.ID, Analyze(entry)); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.invalidate(userID)
	s.logger.Info("Mood entry created", "entry_id", entry.ID, "user_id", userID, "analyzed", analyze)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	entryID := p.pathID("entryID")
	if !p.ok(w) {
		return
	}
	e, err := s.repo.GetEntry(entryID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	entryID := p.pathID("entryID")
	reanalyze := p.boolQuery("reanalyze", false)
	if !p.ok(w) {
		return
	}
	var upd domain.MoodEntryUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	if upd.MoodScore != nil && (*upd.MoodScore < 1 || *upd.MoodScore > 10) {
		writeValidation(w, []fieldError{{Loc: []string{"body", "mood_score"}, Msg: "ensure this value is between 1 and 10", Type: "value_error"}})
		return
	}

	e, err := s.repo.UpdateEntry(entryID, upd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if reanalyze {
		if e, err = s.repo.SetAnalysis(e.ID, Analyze(e)); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.invalidate(e.UserID)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	entryID := p.pathID("entryID")
	if !p.ok(w) {
		return
	}
	e, err := s.repo.DeleteEntry(entryID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.invalidate(e.UserID)
	writeJSON(w, http.StatusOK, domain.Message{Message: "Запись настроения успешно удалена"})
}

// userScope разбирает {userID} и проверяет, что пользователь существует.
func (s *Server) userScope(w http.ResponseWriter, p *params) (int64, bool) {
	userID := p.pathID("userID")
	if !p.ok(w) {
		return 0, false
	}
	if _, err := s.repo.GetUser(userID); err != nil {
		s.writeError(w, err)
		return 0, false
	}
	return userID, true
}

// recent возвращает записи пользователя за последние days дней.
func (s *Server) recent(userID int64, days int) []domain.MoodEntry {
	return s.repo.UserEntries(userID, EntryFilter{Since: s.now().UTC().AddDate(0, 0, -days)})
}

func (s *Server) handleRecentEntries(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	days := p.intQuery("days", 7, 1, 365)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.recent(userID, days))
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScope(w, newParams(r))
	if !ok {
		return
	}
	stats := UserStats(s.repo.UserEntries(userID, EntryFilter{}), s.now())
	stats.UserID = userID
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) periodQuery(p *params) domain.Period {
	period, err := domain.ParsePeriod(p.r.URL.Query().Get("period"))
	if err != nil {
		p.fail("query", "period", err.Error(), "value_error.str.regex")
	}
	return period
}

func (s *Server) handleUserAnalytics(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	period := s.periodQuery(p)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PeriodAnalytics(s.recent(userID, period.Days()), period))
}

func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	days := p.intQuery("days", 7, 1, 365)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Summary(s.recent(userID, days), days))
}

func (s *Server) handleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScope(w, newParams(r))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Recommend(s.repo.UserEntries(userID, EntryFilter{Limit: recommendWindow})))
}

func (s *Server) handleCheckToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScope(w, newParams(r))
	if !ok {
		return
	}
	out := domain.TodayCheck{}
	if e, found := s.repo.EntryOn(userID, s.now()); found {
		out.HasEntryToday = true
		out.Entry = &e
	}
	writeJSON(w, http.StatusOK, out)
}
