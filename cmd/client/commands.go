package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mood-diary/internal/auth"
	"mood-diary/internal/domain"
	"mood-diary/internal/render"
	"mood-diary/internal/store"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Сохранить bearer-токен для запросов к API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				var err error
				token, err = a.term.ReadSecret("Токен: ")
				if err != nil {
					return err
				}
			}
			if err := a.store.SetAuthToken(token); err != nil {
				return fmt.Errorf("не удалось сохранить токен: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Токен сохранен.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "токен (иначе будет запрошен без эха)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить токен и текущего пользователя",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Вы вышли.")
			return nil
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		ttl  time.Duration
		save bool
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Выпустить токен для dev-сервера (нужен server.jwt_secret)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный id пользователя: %w", err)
			}
			token, err := auth.IssueToken([]byte(a.cfg.Server.JWTSecret), userID, ttl, time.Now())
			if err != nil {
				return err
			}
			if save {
				if err := a.store.SetAuthToken(token); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "время жизни токена")
	cmd.Flags().BoolVar(&save, "save", false, "сразу сохранить токен")
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Текущий пользователь"}

	user.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Выбрать текущего пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный id пользователя: %w", err)
			}
			if err := a.store.SelectUser(cmd.Context(), userID); err != nil {
				return fmt.Errorf("%s: %w", store.ErrMsgUser, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Текущий пользователь: %s (id %d)\n", a.store.CurrentUser().DisplayName(), userID)
			return nil
		},
	})

	user.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Показать текущего пользователя",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := a.store.CurrentUser()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Пользователь не выбран.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, записей %d)\n", u.DisplayName(), u.ID, u.MoodEntriesCount)
			return nil
		},
	})
	return user
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Проверить доступность API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.store.CheckAPIHealth(cmd.Context()) {
				return fmt.Errorf("API недоступен")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API доступен.")
			return nil
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Сводка настроения и график",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			p, err := domain.ParsePeriod(period)
			if err != nil {
				return err
			}

			a.store.FetchDashboardData(cmd.Context(), userID)
			if err := a.storeError(); err != nil {
				return err
			}
			a.store.FetchMoodTrends(cmd.Context(), userID, p)

			d := render.Dashboard{
				User:          a.store.CurrentUser(),
				AverageMood:   a.store.AverageMood(),
				MoodTrend:     a.store.MoodTrend(),
				CurrentStreak: a.store.CurrentStreak(),
				HasEntryToday: a.store.HasEntryToday(),
			}
			st := a.store.Snapshot()
			if st.Dashboard != nil && st.Dashboard.User != nil {
				d.User = st.Dashboard.User
			}
			d.Recommendations = st.Recommendations.All()
			if chart := a.store.ChartData(); chart != nil && len(chart.Datasets) > 0 {
				d.Labels = chart.Labels
				d.Values = chart.Datasets[0].Data
			}
			return render.DashboardText(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().StringVar(&period, "period", string(domain.PeriodWeek), "период графика: week, month, quarter, year")
	return cmd
}

func newTrendsCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Тренды настроения и эмоций",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			p, err := domain.ParsePeriod(period)
			if err != nil {
				return err
			}
			a.store.FetchMoodTrends(cmd.Context(), userID, p)
			if err := a.storeError(); err != nil {
				return err
			}

			series := []*store.ChartData{a.store.ChartData(), a.store.EmotionTrendsData()}
			t := &render.Table{Columns: []render.Column{{Title: "Ряд", Width: 14}}}
			if series[0] == nil || len(series[0].Labels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Нет данных за период.")
				return nil
			}
			for _, l := range series[0].Labels {
				t.Columns = append(t.Columns, render.Column{Title: l, Width: max(7, len([]rune(l)))})
			}
			for _, chart := range series {
				if chart == nil {
					continue
				}
				for _, ds := range chart.Datasets {
					row := []string{ds.Label}
					for _, v := range ds.Data {
						row = append(row, strconv.FormatFloat(v, 'f', 1, 64))
					}
					t.AddRow(row...)
				}
			}
			return t.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&period, "period", string(domain.DefaultPeriod), "week, month, quarter, year")
	return cmd
}

func newInsightsCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Инсайты по записям за период",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			a.store.FetchInsights(cmd.Context(), userID, days)
			if err := a.storeError(); err != nil {
				return err
			}

			ins := a.store.Snapshot().Insights
			out := cmd.OutOrStdout()
			if ins.Message != "" {
				fmt.Fprintln(out, ins.Message)
			}
			if ins.AIInsights != "" {
				fmt.Fprintf(out, "Проанализировано записей: %d за %d дн.\n\n%s\n", ins.EntriesAnalyzed, ins.PeriodDays, ins.AIInsights)
			}
			for _, r := range ins.Recommendations {
				fmt.Fprintf(out, "  • %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", store.DefaultInsightsDays, "глубина анализа в днях")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var current, previous int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Сравнить текущий и предыдущий периоды",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			a.store.ComparePeriods(cmd.Context(), userID, current, previous)
			if err := a.storeError(); err != nil {
				return err
			}

			c := a.store.Snapshot().Comparison
			t := &render.Table{Columns: []render.Column{
				{Title: "Период", Width: 12},
				{Title: "Дней", Width: 5},
				{Title: "Записей", Width: 8},
				{Title: "Среднее", Width: 8},
			}}
			for _, w := range []struct {
				title string
				win   domain.PeriodWindow
			}{{"текущий", c.CurrentPeriod}, {"предыдущий", c.PreviousPeriod}} {
				t.AddRow(w.title, strconv.Itoa(w.win.Days), strconv.Itoa(w.win.Stats.EntriesCount),
					strconv.FormatFloat(w.win.Stats.AverageMood, 'f', 2, 64))
			}
			if err := t.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Изменение: %+.2f (%s), записей %+d\n",
				c.Comparison.MoodChange, c.Comparison.MoodTrend, c.Comparison.EntriesChange)
			return nil
		},
	}
	cmd.Flags().IntVar(&current, "current", store.DefaultCompareWindow, "дней в текущем периоде")
	cmd.Flags().IntVar(&previous, "previous", store.DefaultCompareWindow, "дней в предыдущем периоде")
	return cmd
}

func newEntriesCmd(a *app) *cobra.Command {
	entries := &cobra.Command{Use: "entries", Short: "Записи настроения"}
	entries.AddCommand(newEntriesRecentCmd(a), newEntriesAddCmd(a), newEntriesExportCmd(a))
	return entries
}

func newEntriesRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Последние записи",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			list := a.store.FetchRecentEntries(cmd.Context(), userID, limit)
			if err := a.storeError(); err != nil {
				return err
			}
			return render.EntriesTable(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", store.DefaultRecentLimit, "количество записей")
	return cmd
}

func newEntriesAddCmd(a *app) *cobra.Command {
	var (
		data  domain.MoodEntryCreate
		note  string
		sleep float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Добавить запись настроения",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if data.MoodScore < 1 || data.MoodScore > 10 {
				return fmt.Errorf("оценка должна быть от 1 до 10")
			}
			if note != "" {
				data.Note = &note
			}
			if cmd.Flags().Changed("sleep") {
				data.SleepHours = &sleep
			}
			if u := a.store.CurrentUser(); u != nil {
				data.UserID = u.ID
			}
			if a.userID > 0 {
				data.UserID = a.userID
			}

			res := a.store.CreateMoodEntry(cmd.Context(), data)
			if !res.Success {
				return fmt.Errorf("%s: %s", store.ErrMsgCreateEntry, res.Error)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Запись %d сохранена.\n", res.Entry.ID)
			if res.AIAnalysis != "" {
				fmt.Fprintln(out, res.AIAnalysis)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&data.MoodScore, "score", 0, "оценка настроения 1..10")
	f.StringVar(&data.MoodText, "text", "", "описание настроения")
	f.StringVar(&note, "note", "", "заметка")
	f.StringSliceVar(&data.Emotions, "emotions", nil, "эмоции через запятую")
	f.StringSliceVar(&data.Activities, "activities", nil, "активности через запятую")
	f.IntVar(&data.EnergyLevel, "energy", 0, "энергия 1..10")
	f.IntVar(&data.StressLevel, "stress", 0, "стресс 1..10")
	f.StringVar(&data.Weather, "weather", "", "погода")
	f.Float64Var(&sleep, "sleep", 0, "часы сна")
	f.StringVar(&data.EntryDate, "date", "", "дата записи (YYYY-MM-DD), по умолчанию сейчас")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func newEntriesExportCmd(a *app) *cobra.Command {
	var (
		out    string
		params domain.EntryListParams
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить записи в XLSX",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			params.UserID = userID
			a.store.FetchMoodEntries(cmd.Context(), params)
			if err := a.storeError(); err != nil {
				return err
			}
			list := a.store.Snapshot().MoodEntries

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("не удалось создать %s: %w", out, err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			if err := render.ExportEntriesXLSX(f, list); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Выгружено записей: %d в %s\n", len(list), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "mood-entries.xlsx", "файл XLSX")
	cmd.Flags().IntVar(&params.Limit, "limit", 100, "максимум записей")
	cmd.Flags().StringVar(&params.StartDate, "from", "", "начальная дата")
	cmd.Flags().StringVar(&params.EndDate, "to", "", "конечная дата")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	stats := &cobra.Command{Use: "stats", Short: "Статистика"}

	stats.AddCommand(&cobra.Command{
		Use:   "global",
		Short: "Статистика по всем пользователям",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.store.FetchGlobalStats(cmd.Context())
			g := a.store.Snapshot().GlobalStats
			if g == nil {
				return fmt.Errorf("не удалось загрузить глобальную статистику")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Пользователи: %d (активных %d, неактивных %d)\n", g.Users.Total, g.Users.Active, g.Users.Inactive)
			fmt.Fprintf(out, "Записи: %d (в среднем %.2f на пользователя)\n", g.Entries.Total, g.Entries.AveragePerUser)
			fmt.Fprintf(out, "Среднее настроение: %.2f\n", g.Mood.GlobalAverage)
			return nil
		},
	})

	stats.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Статистика и рекомендации текущего пользователя",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.currentUserID()
			if err != nil {
				return err
			}
			a.store.FetchMoodStats(cmd.Context(), userID)
			if err := a.storeError(); err != nil {
				return err
			}
			a.store.FetchRecommendations(cmd.Context(), userID)

			st := a.store.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Записей: %d, среднее: %.2f, тренд: %s, серия: %d дн.\n",
				st.MoodStats.TotalEntries, st.MoodStats.AverageMood, st.MoodStats.MoodTrend, st.MoodStats.StreakDays)
			if recs := st.Recommendations.All(); len(recs) > 0 {
				fmt.Fprintln(out, "Рекомендации:")
				fmt.Fprintln(out, "  • "+strings.Join(recs, "\n  • "))
			}
			return nil
		},
	})
	return stats
}

func newThemeCmd(a *app) *cobra.Command {
	theme := &cobra.Command{Use: "theme", Short: "Оформление"}
	theme.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Переключить темную тему",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dark, err := a.store.ToggleTheme()
			if err != nil {
				return err
			}
			if dark {
				fmt.Fprintln(cmd.OutOrStdout(), "Темная тема включена.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Темная тема выключена.")
			}
			return nil
		},
	})
	return theme
}
