package server

import (
	"fmt"
	"net/http"

	"mood-diary/internal/domain"
)

// Окна дашборда.
const (
	dashboardSummaryDays = 7
	dashboardRecentDays  = 5
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	userID := p.pathID("userID")
	if !p.ok(w) {
		return
	}
	user, err := s.repo.GetUser(userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	all := s.repo.UserEntries(userID, EntryFilter{})
	summary := Summary(s.recent(userID, dashboardSummaryDays), dashboardSummaryDays)
	monthly := PeriodAnalytics(s.recent(userID, domain.PeriodMonth.Days()), domain.PeriodMonth)
	rec := Recommend(all[:min(recommendWindow, len(all))])
	stats := UserStats(all, s.now())
	stats.UserID = userID

	writeJSON(w, http.StatusOK, domain.DashboardData{
		User:             &user,
		Summary:          &summary,
		RecentEntries:    s.recent(userID, dashboardRecentDays),
		MonthlyAnalytics: &monthly,
		Recommendations:  &rec,
		Stats:            &stats,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	period := s.periodQuery(p)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}
	end := s.now().UTC()
	start := end.AddDate(0, 0, -period.Days())
	entries := s.repo.UserEntries(userID, EntryFilter{Since: start, Until: end})
	writeJSON(w, http.StatusOK, Trends(entries, period, start, end))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	days := p.intQuery("days", 30, 7, 365)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}

	key := fmt.Sprintf("%d:insights:%d", userID, days)
	if item, found := s.insights.Get(key); found {
		s.logger.Debug("Insights cache hit", "user_id", userID, "days", days)
		writeJSON(w, http.StatusOK, item.Data)
		return
	}

	insights := GenerateInsights(s.recent(userID, days), days)
	s.insights.Put(key, insights, insightsTTL)
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleComparePeriods(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	currentDays := p.intQuery("current_days", 30, 7, 365)
	previousDays := p.intQuery("previous_days", 30, 7, 365)
	userID, ok := s.userScope(w, p)
	if !ok {
		return
	}

	end := s.now().UTC()
	currentStart := end.AddDate(0, 0, -currentDays)
	previousStart := currentStart.AddDate(0, 0, -previousDays)

	current := s.repo.UserEntries(userID, EntryFilter{Since: currentStart, Until: end})
	previous := s.repo.UserEntries(userID, EntryFilter{Since: previousStart, Until: currentStart})

	writeJSON(w, http.StatusOK, Compare(
		domain.PeriodWindow{
			Days:      currentDays,
			StartDate: currentStart.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
			Stats:     PeriodStatistics(current),
		},
		domain.PeriodWindow{
			Days:      previousDays,
			StartDate: previousStart.Format(dateLayout),
			EndDate:   currentStart.Format(dateLayout),
			Stats:     PeriodStatistics(previous),
		},
	))
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Global(s.repo.UsersSummary(), s.repo.MoodScores()))
}
