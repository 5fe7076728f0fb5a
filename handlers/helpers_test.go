package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/handlers"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

type fakeLookup struct {
	details *service.BookDetails
	err     error
}

func (f fakeLookup) Lookup(context.Context, string) (*service.BookDetails, error) {
	return f.details, f.err
}

type testEnv struct {
	t      *testing.T
	mem    *store.Memory
	tokens *service.TokenService
	router http.Handler

	admin, editor, editor2, viewer *models.User
	adminTok, editorTok, editor2Tok, viewerTok string
}

type testOption func(*handlers.Deps)

func newEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()
	service.PasswordCost = 4
	env := &testEnv{
		t:      t,
		mem:    store.NewMemory(),
		tokens: service.NewTokenService("test-secret", time.Hour),
	}
	deps := handlers.Deps{
		Store:  env.mem,
		Tokens: env.tokens,
		Lookup: fakeLookup{details: &service.BookDetails{Title: "Clean Code", Category: models.CategoryProgramming}},
	}
	for _, o := range opts {
		o(&deps)
	}
	env.router = handlers.NewRouter(deps)

	env.admin, env.adminTok = env.user("admin", models.RoleAdmin)
	env.editor, env.editorTok = env.user("editor", models.RoleEditor)
	env.editor2, env.editor2Tok = env.user("editor2", models.RoleEditor)
	env.viewer, env.viewerTok = env.user("viewer", models.RoleViewer)
	return env
}

func (e *testEnv) user(username, role string) (*models.User, string) {
	e.t.Helper()
	hash, err := service.HashPassword("password1")
	require.NoError(e.t, err)
	u := &models.User{
		Username:  username,
		Name:      "User " + username,
		Password:  hash,
		Role:      role,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(e.t, e.mem.CreateUser(context.Background(), u))
	tok, _, err := e.tokens.Issue(u)
	require.NoError(e.t, err)
	return u, tok
}

type response struct {
	Status  int                 `json:"-"`
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors"`
}

func (r *response) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

func (r *response) fields() []string {
	out := make([]string, 0, len(r.Errors))
	for _, f := range r.Errors {
		out = append(out, f.Field)
	}
	return out
}

func (e *testEnv) do(method, path, token string, body interface{}) *response {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	res := &response{Status: rec.Code}
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), res), rec.Body.String())
	return res
}

func validBook(isbn string) map[string]interface{} {
	return map[string]interface{}{
		"title":           "The Great Gatsby",
		"author":          "F. Scott Fitzgerald",
		"isbn":            isbn,
		"category":        models.CategoryFiction,
		"publicationDate": "1925-04-10",
		"bookType":        models.BookTypeOld,
		"condition":       models.ConditionFair,
		"purchasePrice":   8,
		"marketValue":     15,
		"description":     "Jazz age classic.",
	}
}

// createBook posts validBook(isbn) as token and returns the stored view.
func (e *testEnv) createBook(token, isbn string) models.BookView {
	e.t.Helper()
	res := e.do(http.MethodPost, "/api/books", token, validBook(isbn))
	require.Equal(e.t, http.StatusCreated, res.Status, res.Message)
	var v models.BookView
	res.decode(e.t, &v)
	return v
}

var errUpstream = errors.New("upstream down")
