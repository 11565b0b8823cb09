package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

const defaultTimeout = 15 * time.Second

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type Option func(*Client)

// WithHTTPClient sets the transport the client builds on.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// WithKeyFunc overrides how idempotency keys are generated.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) { c.newKey = fn }
}

// Client talks to the study planner REST API. With a token every request
// carries "Authorization: Bearer <token>".
type Client struct {
	baseURL string
	base    *http.Client
	http    *http.Client
	logger  *zap.Logger
	newKey  func() string
}

func New(baseURL, token string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = &http.Client{Timeout: defaultTimeout}
	}

	c.http = c.base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		c.http.Timeout = c.base.Timeout
	}
	return c
}

// WithToken returns a copy of c authenticated with token.
func (c *Client) WithToken(token string) *Client {
	return New(c.baseURL, token, c.logger, WithHTTPClient(c.base), WithKeyFunc(c.newKey))
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil, &res)
	if err != nil {
		return res, err
	}
	if res.Token == "" {
		return res, fmt.Errorf("login: empty token in response")
	}
	return res, nil
}

type SignupRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	EducationLevel string `json:"education_level"`
	SchoolGrade    string `json:"school_grade,omitempty"`
	AcademicYear   string `json:"academic_year,omitempty"`
	FieldOfStudy   string `json:"field_of_study,omitempty"`
	Institution    string `json:"institution_name,omitempty"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signup", req, nil, nil)
}

// ListTasks fetches the user's tasks. Records that cannot be decoded are
// dropped with a warning instead of failing the whole list.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &raw); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(raw))
	for i, r := range raw {
		var t model.Task
		if err := json.Unmarshal(r, &t); err != nil {
			c.logger.Warn("skipping malformed task", zap.Int("index", i), zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, t model.NewTask) (model.Task, error) {
	var created model.Task
	headers := map[string]string{"Idempotency-Key": c.newKey()}
	err := c.do(ctx, http.MethodPost, "/api/tasks", t, headers, &created)
	return created, err
}

// SetStatus updates only the status field of a task.
func (c *Client) SetStatus(ctx context.Context, id model.ID, status model.Status) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(string(id)), map[string]model.Status{
		"status": status,
	}, nil, &updated)
	if err != nil {
		return updated, err
	}
	// the API answers {} when the task does not belong to the user
	if updated.ID == "" {
		return updated, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(string(id)), nil, nil, nil)
}

// Analytics returns the server-computed counters. Older API versions do not
// have the endpoint and answer 404.
func (c *Client) Analytics(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := c.do(ctx, http.MethodGet, "/api/analytics", nil, nil, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
