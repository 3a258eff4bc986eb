// Package httpclient — HTTP-клиент API дневника настроения: базовый URL,
// фиксированный таймаут, JSON-заголовки, bearer-токен из локального
// хранилища и сброс токена при ответе 401.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mood-diary/internal/storage"
)

// APIPrefix — префикс версионированных маршрутов API.
const APIPrefix = "/api/v1"

// ErrUnauthorized сопоставляется через errors.Is с любым ответом 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError описывает ответ сервера со статусом вне диапазона 2xx.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Detail — поле "detail" ответа, если сервер его прислал, иначе тело ответа.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: unexpected status code: %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status code: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// Is позволяет писать errors.Is(err, ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode возвращает HTTP-статус из ошибки API или 0, если это не ошибка API.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Request описывает один вызов API.
type Request struct {
	Method string
	// Path — путь относительно базового URL, например "/users/1".
	Path  string
	Query url.Values
	// Body сериализуется в JSON; nil означает запрос без тела.
	Body any
	// Root разрешает путь относительно корня сервера (без префикса /api/v1).
	Root bool
}

// Client — клиент для взаимодействия с API бэкенд-сервера.
type Client struct {
	baseURL    string
	rootURL    string
	httpClient *http.Client
	storage    storage.Storage
	logger     *slog.Logger
}

// New создает клиента. Таймаут применяется к каждому запросу целиком.
func New(baseURL string, timeout time.Duration, store storage.Storage, logger *slog.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		rootURL: strings.TrimSuffix(baseURL, APIPrefix),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		storage: store,
		logger:  logger,
	}
}

// BaseURL возвращает базовый URL версионированного API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RootURL возвращает базовый URL без префикса /api/v1.
func (c *Client) RootURL() string {
	return c.rootURL
}

// Do выполняет запрос ровно один раз. Ответ 2xx декодируется в out
// (nil out отбрасывает тело). На 401 токен удаляется из хранилища,
// повторной попытки нет.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	target := c.resolve(r)

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := c.storage.GetItem(storage.KeyAuthToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API Error", "method", r.Method, "path", r.Path, "error", err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API response",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     r.Method,
			Path:       r.Path,
			Detail:     readDetail(resp.Body),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.storage.RemoveItem(storage.KeyAuthToken); err != nil {
				c.logger.Warn("failed to remove auth token", "error", err)
			}
		}
		c.logger.Error("API Error", "method", r.Method, "path", r.Path, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) resolve(r Request) string {
	base := c.baseURL
	if r.Root {
		base = c.rootURL
	}
	target := base + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	return target
}

// maxDetailSize ограничивает объем тела ошибки, попадающего в APIError.
const maxDetailSize = 4 << 10

// readDetail извлекает "detail" из ответа FastAPI: строку либо список
// ошибок валидации. Если формат неизвестен, возвращается тело как есть.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxDetailSize))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(string(envelope.Detail))
}
