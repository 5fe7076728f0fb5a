package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/authz"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

const defaultRequestTimeout = 30 * time.Second

// Deps is everything the router needs. Exporter and AuthLimiter may be nil.
type Deps struct {
	Store          store.Store
	Tokens         *service.TokenService
	Lookup         service.ISBNLookup
	Exporter       *service.Exporter
	AuthLimiter    *middleware.RateLimiter
	CORSOrigin     string
	RequestTimeout time.Duration
	Logger         logrus.FieldLogger
	Now            func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}
	if d.Lookup == nil {
		d.Lookup = service.NewGoogleBooksLookup()
	}

	authHandler := &AuthHandler{Users: d.Store, Tokens: d.Tokens}
	booksHandler := &BooksHandler{Books: d.Store, Users: d.Store, Lookup: d.Lookup, Now: d.Now}
	usersHandler := &UsersHandler{Users: d.Store}
	exportHandler := &ExportHandler{Exporter: d.Exporter}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(chimw.Timeout(d.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"message": "welcome to the book inventory API"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Handler)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Tokens))
			r.Use(middleware.Require(authz.CanRead))

			r.Get("/auth/me", authHandler.Me)

			r.Get("/books", booksHandler.List)
			r.Get("/books/stats", booksHandler.Stats)
			r.Get("/books/{id}", booksHandler.Get)
			r.Put("/books/{id}", booksHandler.Update)
			r.Delete("/books/{id}", booksHandler.Delete)
			r.With(middleware.Require(authz.CanCreateBook)).Post("/books", booksHandler.Create)
			r.With(middleware.Require(authz.CanCreateBook)).Post("/books/fetch-details", booksHandler.FetchDetails)
			r.With(middleware.Require(authz.CanManageUsers)).Post("/books/export", exportHandler.Export)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.Require(authz.CanManageUsers))
				r.Get("/", usersHandler.List)
				r.Get("/{id}", usersHandler.Get)
				r.Put("/{id}", usersHandler.Update)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Message: "Method not allowed"})
	})
	return r
}
