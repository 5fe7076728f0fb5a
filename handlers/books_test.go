package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/handlers"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
)

func Test_CreateAndFetchBook(t *testing.T) {
	env := newEnv(t)
	created := env.createBook(env.editorTok, "9780743273565")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusAvailable, created.Status, "status defaults to Available")
	assert.Equal(t, 87.5, created.ValueChangePercentage)
	assert.Equal(t, env.editor.ID.Hex(), created.CreatedBy.ID)
	assert.Equal(t, env.editor.Name, created.CreatedBy.Name)

	res := env.do(http.MethodGet, "/api/books/"+created.ID, env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	var fetched models.BookView
	res.decode(t, &fetched)
	assert.Equal(t, created, fetched)
	assert.Equal(t, "1925-04-10", fetched.PublicationDate)
}

func Test_HandlersLogThroughInjectedLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	env := newEnv(t, func(d *handlers.Deps) { d.Logger = log })

	created := env.createBook(env.adminTok, "9780132350884")

	var createdEntry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "book created" {
			createdEntry = e
		}
	}
	require.NotNil(t, createdEntry, "book creation is logged on the injected logger")
	assert.Equal(t, created.ID, createdEntry.Data["book_id"])
	assert.NotEmpty(t, createdEntry.Data["request_id"])
}

func Test_CreateBookValidation(t *testing.T) {
	env := newEnv(t)

	t.Run("every failing field reported", func(t *testing.T) {
		res := env.do(http.MethodPost, "/api/books", env.adminTok, map[string]interface{}{
			"title":    "  ",
			"category": "Poetry",
		})
		require.Equal(t, http.StatusBadRequest, res.Status)
		assert.False(t, res.Success)
		assert.ElementsMatch(t, []string{
			"title", "author", "isbn", "category", "publicationDate",
			"bookType", "condition", "purchasePrice", "marketValue",
		}, res.fields())
	})

	t.Run("zero prices are valid", func(t *testing.T) {
		body := validBook("123")
		body["purchasePrice"] = 0
		body["marketValue"] = 0
		res := env.do(http.MethodPost, "/api/books", env.adminTok, body)
		require.Equal(t, http.StatusCreated, res.Status)
		var v models.BookView
		res.decode(t, &v)
		assert.Zero(t, v.ValueChangePercentage)
	})

	t.Run("negative price and bad date", func(t *testing.T) {
		body := validBook("124")
		body["marketValue"] = -1
		body["publicationDate"] = "10/04/1925"
		res := env.do(http.MethodPost, "/api/books", env.adminTok, body)
		require.Equal(t, http.StatusBadRequest, res.Status)
		assert.ElementsMatch(t, []string{"marketValue", "publicationDate"}, res.fields())
	})

	t.Run("malformed json", func(t *testing.T) {
		res := env.do(http.MethodPost, "/api/books", env.adminTok, `{"title":`)
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})
}

func Test_DuplicateISBNConcurrent(t *testing.T) {
	env := newEnv(t)
	var wg sync.WaitGroup
	results := make([]*response, 2)
	for i, tok := range []string{env.editorTok, env.adminTok} {
		wg.Add(1)
		go func(i int, tok string) {
			defer wg.Done()
			results[i] = env.do(http.MethodPost, "/api/books", tok, validBook("111"))
		}(i, tok)
	}
	wg.Wait()

	statuses := []int{results[0].Status, results[1].Status}
	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusBadRequest}, statuses)
	for _, r := range results {
		if r.Status == http.StatusBadRequest {
			assert.Equal(t, "A book with this ISBN already exists", r.Message)
			assert.Equal(t, []string{"isbn"}, r.fields())
		}
	}
	n, err := env.mem.CountBooks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func Test_BookWritePermissions(t *testing.T) {
	env := newEnv(t)
	book := env.createBook(env.editorTok, "222")
	path := "/api/books/" + book.ID
	update := map[string]interface{}{"marketValue": 99}

	t.Run("viewer cannot create", func(t *testing.T) {
		res := env.do(http.MethodPost, "/api/books", env.viewerTok, validBook("333"))
		assert.Equal(t, http.StatusForbidden, res.Status)
		n, err := env.mem.CountBooks(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	for _, tc := range []struct {
		name  string
		token string
	}{
		{name: "viewer", token: env.viewerTok},
		{name: "other editor", token: env.editor2Tok},
	} {
		t.Run(tc.name+" cannot update or delete", func(t *testing.T) {
			res := env.do(http.MethodPut, path, tc.token, update)
			assert.Equal(t, http.StatusForbidden, res.Status)
			res = env.do(http.MethodDelete, path, tc.token, nil)
			assert.Equal(t, http.StatusForbidden, res.Status)

			id, _ := primitive.ObjectIDFromHex(book.ID)
			stored, err := env.mem.BookByID(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, 15.0, stored.MarketValue)
			assert.True(t, book.UpdatedAt.Equal(stored.UpdatedAt), "no timestamp bump")
		})
	}

	t.Run("owner updates", func(t *testing.T) {
		res := env.do(http.MethodPut, path, env.editorTok, update)
		require.Equal(t, http.StatusOK, res.Status)
		var v models.BookView
		res.decode(t, &v)
		assert.Equal(t, 99.0, v.MarketValue)
		assert.Equal(t, 1137.5, v.ValueChangePercentage)
		assert.Equal(t, book.Title, v.Title, "absent fields unchanged")
		assert.Equal(t, book.CreatedAt, v.CreatedAt)
	})

	t.Run("admin updates anything", func(t *testing.T) {
		res := env.do(http.MethodPut, path, env.adminTok, map[string]interface{}{"status": models.StatusLost})
		require.Equal(t, http.StatusOK, res.Status)
	})

	t.Run("invalid update", func(t *testing.T) {
		res := env.do(http.MethodPut, path, env.adminTok, map[string]interface{}{"status": "Stolen", "title": ""})
		require.Equal(t, http.StatusBadRequest, res.Status)
		assert.ElementsMatch(t, []string{"status", "title"}, res.fields())
	})

	t.Run("isbn collision on update", func(t *testing.T) {
		other := env.createBook(env.editorTok, "444")
		res := env.do(http.MethodPut, "/api/books/"+other.ID, env.editorTok, map[string]interface{}{"isbn": "222"})
		require.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, "A book with this ISBN already exists", res.Message)
	})

	t.Run("owner deletes", func(t *testing.T) {
		res := env.do(http.MethodDelete, path, env.editorTok, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.True(t, res.Success)
		assert.JSONEq(t, `{}`, string(res.Data))

		res = env.do(http.MethodGet, path, env.viewerTok, nil)
		assert.Equal(t, http.StatusNotFound, res.Status)
		assert.Equal(t, "Book not found", res.Message)
	})
}

func Test_GetBookBadID(t *testing.T) {
	env := newEnv(t)
	res := env.do(http.MethodGet, "/api/books/not-an-id", env.viewerTok, nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	res = env.do(http.MethodGet, "/api/books/"+primitive.NewObjectID().Hex(), env.viewerTok, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func Test_ListBooksPagination(t *testing.T) {
	env := newEnv(t)
	for i := 0; i < 23; i++ {
		env.createBook(env.adminTok, fmt.Sprintf("isbn-%02d", i))
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		res := env.do(http.MethodGet, fmt.Sprintf("/api/books?page=%d&limit=10&sortField=isbn", page), env.viewerTok, nil)
		require.Equal(t, http.StatusOK, res.Status)
		var p models.BookPage
		res.decode(t, &p)
		assert.EqualValues(t, 23, p.Total)
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, page, p.Page)
		for _, b := range p.Books {
			seen[b.ID] = true
		}
		if page == 3 {
			require.Len(t, p.Books, 3)
			assert.Equal(t, "isbn-22", p.Books[2].ISBN)
		}
	}
	assert.Len(t, seen, 23, "pages partition the result set")

	res := env.do(http.MethodGet, "/api/books?page=9", env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var empty models.BookPage
	res.decode(t, &empty)
	assert.Empty(t, empty.Books)
	assert.NotNil(t, empty.Books)

	res = env.do(http.MethodGet, "/api/books?page=9223372036854775807&limit=10", env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var far models.BookPage
	res.decode(t, &far)
	assert.Empty(t, far.Books)
	assert.EqualValues(t, 23, far.Total)
}

func Test_ListBooksFilterAndSearch(t *testing.T) {
	env := newEnv(t)
	env.createBook(env.adminTok, "g-1")

	other := validBook("g-2")
	other["title"] = "Gatsby: A Study"
	other["category"] = models.CategoryHistory
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/books", env.adminTok, other).Status)

	plain := validBook("p-1")
	plain["title"] = "Moby Dick"
	plain["author"] = "Herman Melville"
	plain["description"] = "Whales."
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/books", env.adminTok, plain).Status)

	res := env.do(http.MethodGet, "/api/books?category=Fiction&search=GATSBY", env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var p models.BookPage
	res.decode(t, &p)
	require.Len(t, p.Books, 1)
	assert.Equal(t, "g-1", p.Books[0].ISBN)

	res = env.do(http.MethodGet, "/api/books?search=(", env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status, "search text is matched literally")

	res = env.do(http.MethodGet, "/api/books?sortField=password", env.viewerTok, nil)
	require.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, []string{"sortField"}, res.fields())
}

func Test_BookStats(t *testing.T) {
	env := newEnv(t)
	body := validBook("111")
	body["purchasePrice"] = 10
	body["marketValue"] = 25
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/books", env.adminTok, body).Status)

	res := env.do(http.MethodGet, "/api/books/stats", env.viewerTok, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var s models.BookStats
	res.decode(t, &s)
	assert.EqualValues(t, 1, s.Total)
	assert.EqualValues(t, 1, s.OldBooks)
	assert.EqualValues(t, 0, s.NewBooks)
	assert.EqualValues(t, 1, s.ByCategory[models.CategoryFiction])
	assert.Len(t, s.ByCategory, len(models.Categories))
	assert.Len(t, s.ByStatus, len(models.Statuses))
	assert.EqualValues(t, 0, s.ByCategory[models.CategoryHistory])
}

func Test_FetchDetails(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/books/fetch-details", env.editorTok, map[string]string{"isbn": "978-0132350884"})
	require.Equal(t, http.StatusOK, res.Status)
	var d service.BookDetails
	res.decode(t, &d)
	assert.Equal(t, "Clean Code", d.Title)

	res = env.do(http.MethodPost, "/api/books/fetch-details", env.editorTok, map[string]string{"isbn": " "})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "ISBN is required", res.Message)

	res = env.do(http.MethodPost, "/api/books/fetch-details", env.viewerTok, map[string]string{"isbn": "1"})
	assert.Equal(t, http.StatusForbidden, res.Status)

	failing := newEnv(t, func(d *handlers.Deps) { d.Lookup = fakeLookup{err: errUpstream} })
	res = failing.do(http.MethodPost, "/api/books/fetch-details", failing.adminTok, map[string]string{"isbn": "1"})
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, "Error fetching book details", res.Message)
}

func Test_UnauthenticatedBookRoutes(t *testing.T) {
	env := newEnv(t)
	for _, path := range []string{"/api/books", "/api/books/stats", "/api/auth/me"} {
		res := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.Status, path)
	}
}
