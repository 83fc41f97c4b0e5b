// Package api talks to the todo REST backend.
//
// Every method maps to exactly one HTTP request. Transport failures and
// non-2xx responses are returned to the caller; nothing is retried and no
// timeout is imposed beyond what the caller's context carries.
//
// Non-2xx responses come back as *StatusError. Transport failures are
// wrapped with the request method and path only, so errors.Is and
// errors.As still reach the underlying *url.Error and its cause.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:8000"

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client (tests use httptest's).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: baseURL, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListOptions narrows GET /todos. The zero value lists everything.
type ListOptions struct {
	Complete *bool
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	return c.ListFiltered(ctx, ListOptions{})
}

func (c *Client) ListFiltered(ctx context.Context, opt ListOptions) ([]model.Todo, error) {
	path := "/todos"
	if opt.Complete != nil {
		q := url.Values{}
		q.Set("is_complete", strconv.FormatBool(*opt.Complete))
		path += "?" + q.Encode()
	}
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, path, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (c *Client) Get(ctx context.Context, id int64) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodGet, todoPath(id, ""), nil, &todo)
	return todo, err
}

func (c *Client) Create(ctx context.Context, data model.CreateTodoData) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPost, "/todos", data, &todo)
	return todo, err
}

// Update is the PUT variant; the backend still only touches fields present in data.
func (c *Client) Update(ctx context.Context, id int64, data model.UpdateTodoData) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPut, todoPath(id, ""), data, &todo)
	return todo, err
}

func (c *Client) Patch(ctx context.Context, id int64, data model.UpdateTodoData) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPatch, todoPath(id, ""), data, &todo)
	return todo, err
}

func (c *Client) Complete(ctx context.Context, id int64) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPatch, todoPath(id, "/complete"), nil, &todo)
	return todo, err
}

func (c *Client) Reopen(ctx context.Context, id int64) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPatch, todoPath(id, "/incomplete"), nil, &todo)
	return todo, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, todoPath(id, ""), nil, nil)
}

// Health pings GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func todoPath(id int64, suffix string) string {
	return "/todos/" + strconv.FormatInt(id, 10) + suffix
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorDetail pulls a message out of {"detail": ...} or {"error": ...}
// bodies and falls back to the trimmed raw text.
func errorDetail(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		var s string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &s) == nil {
			return s
		}
		if len(payload.Detail) > 0 {
			return string(payload.Detail)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:197] + "..."
	}
	return text
}
