package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/authz"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

type BooksHandler struct {
	Books  store.BookStore
	Users  store.UserStore
	Lookup service.ISBNLookup
	Now    func() time.Time
}

func (h *BooksHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

func parseID(r *http.Request, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "Invalid "+what+" id")
	}
	return id, nil
}

// isbnConflict reports a duplicate ISBN as a 400 on the isbn field.
func isbnConflict(err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.Conflict {
		return err
	}
	e := apperr.Invalid(apperr.FieldError{Field: "isbn", Message: ae.Message})
	e.Message = ae.Message
	return e
}

// views resolves creator names in one query. A missing creator leaves the
// name empty.
func (h *BooksHandler) views(ctx context.Context, books []models.Book) ([]models.BookView, error) {
	seen := make(map[primitive.ObjectID]bool, len(books))
	ids := make([]primitive.ObjectID, 0, len(books))
	for i := range books {
		if id := books[i].CreatedBy; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	names, err := h.Users.UserNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.BookView, len(books))
	for i := range books {
		out[i] = books[i].View(names[books[i].CreatedBy])
	}
	return out, nil
}

func (h *BooksHandler) view(ctx context.Context, b *models.Book) (models.BookView, error) {
	v, err := h.views(ctx, []models.Book{*b})
	if err != nil {
		return models.BookView{}, err
	}
	return v[0], nil
}

// List handles GET /books with filtering, search, sorting and pagination.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := models.ParseBookQuery(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	books, total, err := h.Books.ListBooks(r.Context(), q)
	if err != nil {
		fail(w, r, err)
		return
	}
	views, err := h.views(r.Context(), books)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, models.BookPage{
		Books:      views,
		Total:      total,
		Page:       q.Page.Page,
		TotalPages: q.Page.TotalPages(total),
	})
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "book")
	if err != nil {
		fail(w, r, err)
		return
	}
	book, err := h.Books.BookByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	v, err := h.view(r.Context(), book)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	if err := authz.CanCreateBook(caller); err != nil {
		fail(w, r, err)
		return
	}
	var in models.CreateBookInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.Normalize()
	if err := validateStruct(&in); err != nil {
		fail(w, r, err)
		return
	}
	book, err := in.Book(caller.UserID, h.now())
	if err != nil {
		fail(w, r, apperr.Invalid(apperr.FieldError{Field: "publicationDate", Message: "publicationDate must be a valid date (YYYY-MM-DD)"}))
		return
	}
	if err := h.Books.InsertBook(r.Context(), book); err != nil {
		fail(w, r, isbnConflict(err))
		return
	}
	v, err := h.view(r.Context(), book)
	if err != nil {
		fail(w, r, err)
		return
	}
	logFor(r).WithFields(logrus.Fields{"book_id": book.ID.Hex(), "user": caller.Username}).Info("book created")
	respond(w, http.StatusCreated, v)
}

// loadForWrite fetches the target record and checks the caller may modify it.
func (h *BooksHandler) loadForWrite(r *http.Request) (models.Identity, *models.Book, error) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	if err := authz.CanCreateBook(caller); err != nil {
		return caller, nil, err
	}
	id, err := parseID(r, "book")
	if err != nil {
		return caller, nil, err
	}
	book, err := h.Books.BookByID(r.Context(), id)
	if err != nil {
		return caller, nil, err
	}
	if err := authz.CanModifyBook(caller, book); err != nil {
		return caller, nil, err
	}
	return caller, book, nil
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, book, err := h.loadForWrite(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var in models.UpdateBookInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.Normalize()
	if err := validateStruct(&in); err != nil {
		fail(w, r, err)
		return
	}
	patch, err := in.Patch(h.now())
	if err != nil {
		fail(w, r, apperr.Invalid(apperr.FieldError{Field: "publicationDate", Message: "publicationDate must be a valid date (YYYY-MM-DD)"}))
		return
	}
	updated, err := h.Books.UpdateBook(r.Context(), book.ID, patch)
	if err != nil {
		fail(w, r, isbnConflict(err))
		return
	}
	v, err := h.view(r.Context(), updated)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, book, err := h.loadForWrite(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.Books.DeleteBook(r.Context(), book.ID); err != nil {
		fail(w, r, err)
		return
	}
	logFor(r).WithFields(logrus.Fields{"book_id": book.ID.Hex(), "user": caller.Username}).Info("book deleted")
	respond(w, http.StatusOK, struct{}{})
}

// Stats handles GET /books/stats.
func (h *BooksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Books.BookStats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

type fetchDetailsInput struct {
	ISBN string `json:"isbn" validate:"required"`
}

// FetchDetails handles POST /books/fetch-details. Upstream failures are
// reported as 502 without provider detail.
func (h *BooksHandler) FetchDetails(w http.ResponseWriter, r *http.Request) {
	var in fetchDetailsInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.ISBN = service.CleanISBN(in.ISBN)
	if err := validateStruct(&in); err != nil {
		fail(w, r, apperr.New(apperr.Validation, "ISBN is required"))
		return
	}
	details, err := h.Lookup.Lookup(r.Context(), in.ISBN)
	if err != nil {
		logFor(r).WithError(err).WithField("isbn", in.ISBN).Warn("isbn lookup failed")
		writeJSON(w, http.StatusBadGateway, envelope{Message: "Error fetching book details"})
		return
	}
	respond(w, http.StatusOK, details)
}
