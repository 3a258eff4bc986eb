package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mood-diary/internal/auth"
	"mood-diary/internal/domain"
	applog "mood-diary/internal/log"
	"mood-diary/internal/pkg/config"
	"mood-diary/internal/pkg/term"
	"mood-diary/internal/server"
	"mood-diary/internal/store"
	"mood-diary/internal/storage"
)

type harness struct {
	t          *testing.T
	configPath string
	storePath  string
	repo       *server.Repository
}

func newHarness(t *testing.T, secret string) *harness {
	t.Helper()
	cfg := &config.Config{Server: config.Server{Host: "localhost", Port: 8000, JWTSecret: secret}}
	repo := server.NewRepository(time.Now)
	srv, err := server.New(cfg, repo, applog.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	h := &harness{
		t:          t,
		configPath: filepath.Join(dir, "config.yml"),
		storePath:  filepath.Join(dir, "state", "storage.yml"),
		repo:       repo,
	}
	yml := fmt.Sprintf(`api:
  base_url: %s/api/v1
  timeout: 5s
storage:
  path: %s
store:
  mock_entries: false
  create_delay: 0s
server:
  jwt_secret: %q
logging:
  level: error
  format: text
`, ts.URL, h.storePath, secret)
	require.NoError(t, os.WriteFile(h.configPath, []byte(yml), 0o600))
	return h
}

// run выполняет команду клиента и возвращает stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	a := &app{term: term.NewTerminalFrom(strings.NewReader(stdin), io.Discard)}
	cmd := newRootCmd(a)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) storage() *storage.FileStorage {
	h.t.Helper()
	fs, err := storage.OpenFileStorage(h.storePath)
	require.NoError(h.t, err)
	return fs
}

func TestClientCommands(t *testing.T) {
	h := newHarness(t, "")
	user, err := h.repo.CreateUser(domain.UserCreate{TelegramID: 42, FirstName: "Анна"})
	require.NoError(t, err)
	uid := fmt.Sprint(user.ID)

	t.Run("health", func(t *testing.T) {
		assert.Contains(t, h.mustRun("health"), "API доступен")
	})

	t.Run("commands require a current user", func(t *testing.T) {
		_, err := h.run("", "entries", "recent")
		assert.ErrorContains(t, err, "пользователь не выбран")
	})

	t.Run("user use saves current user", func(t *testing.T) {
		assert.Contains(t, h.mustRun("user", "use", uid), "Анна")
		raw, ok := h.storage().GetItem(storage.KeyCurrentUser)
		assert.True(t, ok)
		assert.Contains(t, raw, "Анна")
		assert.Contains(t, h.mustRun("user", "show"), "Анна")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := h.run("", "user", "use", "999")
		assert.Error(t, err)
	})

	t.Run("add and list entries", func(t *testing.T) {
		out := h.mustRun("entries", "add", "--score", "8", "--text", "Отличный день", "--emotions", "радость,спокойствие", "--sleep", "7.5")
		assert.Contains(t, out, "сохранена")

		_, err := h.run("", "entries", "add", "--score", "11", "--text", "слишком")
		assert.Error(t, err)

		out = h.mustRun("entries", "recent")
		assert.Contains(t, out, "радость")
	})

	t.Run("dashboard and trends", func(t *testing.T) {
		out := h.mustRun("dashboard")
		assert.Contains(t, out, "Среднее настроение: 8")
		assert.Contains(t, out, "Сегодня запись уже есть")

		out = h.mustRun("trends", "--period", "week")
		assert.Contains(t, out, "Настроение")

		_, err := h.run("", "trends", "--period", "decade")
		assert.Error(t, err)
	})

	t.Run("insights, comparison and stats", func(t *testing.T) {
		assert.NotEmpty(t, h.mustRun("insights", "--days", "7"))
		assert.Contains(t, h.mustRun("compare", "--current", "7", "--previous", "7"), "текущий")
		assert.Contains(t, h.mustRun("stats", "global"), "Пользователи: 1")
		assert.Contains(t, h.mustRun("stats", "me"), "Записей: 1")
	})

	t.Run("XLSX export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "entries.xlsx")
		assert.Contains(t, h.mustRun("entries", "export", "-o", path), "Выгружено записей: 1")

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetList()[0])
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("theme toggle is persisted", func(t *testing.T) {
		assert.Contains(t, h.mustRun("theme", "toggle"), "включена")
		assert.Contains(t, h.mustRun("theme", "toggle"), "выключена")
		raw, _ := h.storage().GetItem(storage.KeyDarkTheme)
		assert.Equal(t, "false", raw)
	})

	t.Run("logout clears saved state", func(t *testing.T) {
		h.mustRun("logout")
		_, ok := h.storage().GetItem(storage.KeyCurrentUser)
		assert.False(t, ok)
	})
}

func TestClientAuth(t *testing.T) {
	const secret = "client-secret"
	h := newHarness(t, secret)
	user, err := h.repo.CreateUser(domain.UserCreate{TelegramID: 7, Username: "anna"})
	require.NoError(t, err)
	uid := fmt.Sprint(user.ID)

	t.Run("API answers 401 without token", func(t *testing.T) {
		_, err := h.run("", "user", "use", uid)
		assert.Error(t, err)
	})

	t.Run("token issues dev server token", func(t *testing.T) {
		out := h.mustRun("token", uid, "--save")
		got, err := auth.ParseToken([]byte(secret), strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)

		assert.Contains(t, h.mustRun("user", "use", uid), "@anna")
	})

	t.Run("login reads token from input", func(t *testing.T) {
		out, err := h.run("not-a-jwt\n", "login")
		require.NoError(t, err)
		assert.Contains(t, out, "Токен сохранен")

		raw, _ := h.storage().GetItem(storage.KeyAuthToken)
		assert.Equal(t, "not-a-jwt", raw)
	})

	t.Run("rejected token is dropped after 401", func(t *testing.T) {
		_, err := h.run("", "user", "use", uid)
		assert.Error(t, err)
		_, ok := h.storage().GetItem(storage.KeyAuthToken)
		assert.False(t, ok)
	})
}

func TestStoreError(t *testing.T) {
	a := &app{store: store.New(nil, storage.NewMemoryStorage(), applog.Discard())}

	t.Run("no error", func(t *testing.T) {
		assert.NoError(t, a.storeError())
	})

	t.Run("message is kept verbatim", func(t *testing.T) {
		const msg = "Ошибка загрузки: 100% запросов отклонено %s %d"
		a.store.SetError(msg)
		err := a.storeError()
		require.Error(t, err)
		assert.Equal(t, msg, err.Error())
	})

	t.Run("cleared error", func(t *testing.T) {
		a.store.ClearError()
		assert.NoError(t, a.storeError())
	})
}
