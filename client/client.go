// Package client is a typed HTTP client for the inventory API and the list
// state a front end keeps on top of it.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  []apperr.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Retriable reports whether the request may be retried as is.
func (e *APIError) Retriable() bool {
	return e.Status == http.StatusServiceUnavailable || e.Status == http.StatusTooManyRequests
}

type envelope struct {
	Success bool                `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors"`
}

// Client holds the session token. Logging out only forgets it; the server
// keeps no session state.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	user      *models.UserView
	now       func() time.Time
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

func (c *Client) setSession(res *models.AuthResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = res.Token
	c.expiresAt = res.ExpiresAt
	u := res.User
	c.user = &u
}

// Logout discards the token.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.user = nil
}

// Authenticated reports whether an unexpired token is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != "" && c.now().Before(c.expiresAt)
}

func (c *Client) CurrentUser() (models.UserView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return models.UserView{}, false
	}
	return *c.user, true
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		if resp.StatusCode == http.StatusUnauthorized {
			// The token expired or was rejected; a fresh login is required.
			c.Logout()
		}
		return &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Register validates in locally, creates the account and starts a session.
func (c *Client) Register(ctx context.Context, in models.RegisterInput) (*models.UserView, error) {
	in.Normalize()
	if fields := ValidateRegistration(in.Username, in.Name, in.Password, in.Password); len(fields) > 0 {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Fields: fields}
	}
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &res); err != nil {
		return nil, err
	}
	c.setSession(&res)
	return &res.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.UserView, error) {
	var res models.AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginInput{Username: username, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	c.setSession(&res)
	return &res.User, nil
}

func (c *Client) Me(ctx context.Context) (*models.UserView, error) {
	var u models.UserView
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListBooks(ctx context.Context, q models.BookQuery) (*models.BookPage, error) {
	path := "/api/books"
	if v := q.Values().Encode(); v != "" {
		path += "?" + v
	}
	var page models.BookPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*models.BookView, error) {
	var b models.BookView
	if err := c.do(ctx, http.MethodGet, "/api/books/"+id, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateBook(ctx context.Context, in models.CreateBookInput) (*models.BookView, error) {
	var b models.BookView
	if err := c.do(ctx, http.MethodPost, "/api/books", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, in models.UpdateBookInput) (*models.BookView, error) {
	var b models.BookView
	if err := c.do(ctx, http.MethodPut, "/api/books/"+id, in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+id, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*models.BookStats, error) {
	var s models.BookStats
	if err := c.do(ctx, http.MethodGet, "/api/books/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
