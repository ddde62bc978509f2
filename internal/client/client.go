// Package client talks to the task service REST api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskBoard/internal/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const userIDHeader = "X-User-ID"

// Credentials supplies the signed-in user for task requests.
type Credentials interface {
	UserID() (string, bool)
}

// StaticUser is a fixed identity, handy for scripts and tests.
type StaticUser string

func (u StaticUser) UserID() (string, bool) {
	return string(u), u != ""
}

type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// APITask is the task record as the service sends it.
type APITask struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	IsCompleted bool     `json:"is_completed"`
	Details     *string  `json:"details"`
	Photo       *string  `json:"photo"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	AlarmTime   *string  `json:"alarm_time"`
	RepeatDays  []string `json:"repeat_days"`
	DueDate     *string  `json:"due_date"`
}

type Photo struct {
	Filename string
	Content  io.Reader
}

type CreateTaskData struct {
	Title      string
	Details    string
	Photo      *Photo
	AlarmTime  string
	RepeatDays []string
	DueDate    string
}

type Client struct {
	baseURL   string
	creds     Credentials
	http      *http.Client
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request; zero means no limit. It sets the
// timeout on a copy, so a shared *http.Client passed earlier is untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func New(baseURL string, creds Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = StaticUser("")
	}
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		creds:     creds,
		http:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		userAgent: "taskboard-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthUser, error) {
	return c.auth(ctx, "login", "/api/auth/login", username, password, "Login failed")
}

func (c *Client) Register(ctx context.Context, username, password string) (*AuthUser, error) {
	return c.auth(ctx, "register", "/api/auth/register", username, password, "Registration failed")
}

func (c *Client) auth(ctx context.Context, op, path, username, password, fallback string) (*AuthUser, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var u AuthUser
	if err := c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(body), false, fallback, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]APITask, error) {
	tasks := []APITask{}
	if err := c.do(ctx, "list tasks", http.MethodGet, "/api/todos", "", nil, true, "Failed to fetch tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*APITask, error) {
	var t APITask
	if err := c.do(ctx, "get task", http.MethodGet, taskPath(id), "", nil, true, "Failed to fetch task", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask posts a multipart form; empty optional fields are omitted.
func (c *Client) CreateTask(ctx context.Context, data CreateTaskData) (*APITask, error) {
	body, contentType, err := encodeCreate(data)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	var t APITask
	if err := c.do(ctx, "create task", http.MethodPost, "/api/todos", contentType, body, true, "Failed to create task", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, data UpdateTaskData) (*APITask, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	var t APITask
	if err := c.do(ctx, "update task", http.MethodPatch, taskPath(id), "application/json", bytes.NewReader(body), true, "Failed to update task", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), "", nil, true, "Failed to delete task", nil)
}

func (c *Client) ToggleComplete(ctx context.Context, id int64, current bool) (*APITask, error) {
	return c.UpdateTask(ctx, id, UpdateTaskData{IsCompleted: Set(!current)})
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, authed bool, fallback string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if authed {
		if id, ok := c.creds.UserID(); ok {
			req.Header.Set(userIDHeader, id)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Client: Ошибка запроса", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	logger.Debug("Client: Ответ",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(op, resp, fallback)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: разбор ответа: %w", op, err)
	}
	return nil
}

func taskPath(id int64) string {
	return "/api/todos/" + strconv.FormatInt(id, 10)
}

func encodeCreate(data CreateTaskData) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{{"title", data.Title}}
	if data.Details != "" {
		fields = append(fields, [2]string{"details", data.Details})
	}
	if data.AlarmTime != "" {
		fields = append(fields, [2]string{"alarm_time", data.AlarmTime})
	}
	if len(data.RepeatDays) > 0 {
		days, err := json.Marshal(data.RepeatDays)
		if err != nil {
			return nil, "", err
		}
		fields = append(fields, [2]string{"repeat_days", string(days)})
	}
	if data.DueDate != "" {
		fields = append(fields, [2]string{"due_date", data.DueDate})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if data.Photo != nil {
		part, err := mw.CreateFormFile("photo", data.Photo.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, data.Photo.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
