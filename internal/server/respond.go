package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const internalErrorDetail = "Внутренняя ошибка сервера"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// fieldError — элемент списка detail ответа 422.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]fieldError{"detail": errs})
}

// writeError переводит ошибку репозитория в ответ с detail для клиента.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var dup *DuplicateEntryError
	switch {
	case errors.As(err, &dup):
		writeDetail(w, http.StatusBadRequest, "На дату "+dup.Date+" уже есть запись настроения")
	case errors.Is(err, ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "Пользователь не найден")
	case errors.Is(err, ErrTelegramNotFound):
		writeDetail(w, http.StatusNotFound, "Пользователь с таким Telegram ID не найден")
	case errors.Is(err, ErrTelegramIDTaken):
		writeDetail(w, http.StatusBadRequest, "Пользователь с таким Telegram ID уже существует")
	case errors.Is(err, ErrEntryNotFound):
		writeDetail(w, http.StatusNotFound, "Запись настроения не найдена")
	case errors.Is(err, ErrInvalidEntryDate):
		writeValidation(w, []fieldError{{Loc: []string{"body", "entry_date"}, Msg: err.Error(), Type: "value_error.datetime"}})
	default:
		s.logger.Error("Unexpected handler error", "error", err)
		writeDetail(w, http.StatusInternalServerError, internalErrorDetail)
	}
}

// params собирает ошибки разбора пути и строки запроса, чтобы вернуть
// их одним ответом 422.
type params struct {
	r    *http.Request
	errs []fieldError
}

func newParams(r *http.Request) *params {
	return &params{r: r}
}

func (p *params) fail(where, name, msg, kind string) {
	p.errs = append(p.errs, fieldError{Loc: []string{where, name}, Msg: msg, Type: kind})
}

func (p *params) pathID(name string) int64 {
	raw := chi.URLParam(p.r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail("path", name, "value is not a valid integer", "type_error.integer")
		return 0
	}
	return id
}

// intQuery разбирает целый параметр; пустое значение дает def.
func (p *params) intQuery(name string, def, lo, hi int) int {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail("query", name, "value is not a valid integer", "type_error.integer")
		return def
	}
	if v < lo || v > hi {
		p.fail("query", name, "ensure this value is between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi), "value_error.number")
		return def
	}
	return v
}

func (p *params) int64Query(name string) int64 {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail("query", name, "value is not a valid integer", "type_error.integer")
		return 0
	}
	return v
}

func (p *params) boolQuery(name string, def bool) bool {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail("query", name, "value could not be parsed to a boolean", "type_error.bool")
		return def
	}
	return v
}

func (p *params) timeQuery(name string) time.Time {
	raw := p.r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := ParseEntryDate(raw)
	if err != nil {
		p.fail("query", name, "invalid datetime format", "value_error.datetime")
	}
	return t
}

// ok сообщает, что ошибок нет; иначе пишет ответ 422.
func (p *params) ok(w http.ResponseWriter) bool {
	if len(p.errs) == 0 {
		return true
	}
	writeValidation(w, p.errs)
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidation(w, []fieldError{{Loc: []string{"body"}, Msg: "invalid JSON: " + err.Error(), Type: "value_error.jsondecode"}})
		return false
	}
	return true
}
