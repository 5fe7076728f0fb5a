package client

import (
	"context"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// DefaultPageSize is the list page size used by the front end.
const DefaultPageSize = 5

// DefaultSort orders the front-end list by title. The API itself defaults to
// newest first when no sort is sent.
var DefaultSort = models.BookSort{Field: "title", Direction: models.SortAsc}

// BookListState is the list page's state. Nothing refreshes on its own:
// mutations made through the state reload it, and other changes need an
// explicit Reload.
type BookListState struct {
	Filter   models.BookFilter
	Sort     models.BookSort
	Page     int
	PageSize int

	Books      []models.BookView
	Total      int64
	TotalPages int

	// Err is the last failure, shown as a dismissible banner. Books keeps the
	// previous successful page.
	Err error
}

func NewBookListState() *BookListState {
	return &BookListState{
		Sort:       DefaultSort,
		Page:       1,
		PageSize:   DefaultPageSize,
		TotalPages: 1,
	}
}

func (s *BookListState) Query() models.BookQuery {
	return models.BookQuery{
		Filter: s.Filter,
		Sort:   s.Sort,
		Page:   models.PageRequest{Page: s.Page, Limit: s.PageSize},
	}
}

// Reload fetches the current page.
func (s *BookListState) Reload(ctx context.Context, c *Client) error {
	page, err := c.ListBooks(ctx, s.Query())
	if err != nil {
		s.Err = err
		return err
	}
	s.Err = nil
	s.Books = page.Books
	s.Total = page.Total
	s.TotalPages = page.TotalPages
	if s.TotalPages < 1 {
		s.TotalPages = 1
	}
	return nil
}

// SetFilter replaces the filter and returns to the first page.
func (s *BookListState) SetFilter(f models.BookFilter) {
	s.Filter = f
	s.Page = 1
}

// ClearFilters drops all filters and returns to the first page.
func (s *BookListState) ClearFilters() {
	s.SetFilter(models.BookFilter{})
}

// SortBy sorts on field, flipping the direction when field is already the
// sort column.
func (s *BookListState) SortBy(field string) {
	if s.Sort.Field == field {
		if s.Sort.Direction == models.SortAsc {
			s.Sort.Direction = models.SortDesc
		} else {
			s.Sort.Direction = models.SortAsc
		}
	} else {
		s.Sort = models.BookSort{Field: field, Direction: models.SortAsc}
	}
	s.Page = 1
}

// SetPage moves to page p, clamped to the known page range.
func (s *BookListState) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	if s.TotalPages > 0 && p > s.TotalPages {
		p = s.TotalPages
	}
	s.Page = p
}

func (s *BookListState) DismissError() {
	s.Err = nil
}

func (s *BookListState) Create(ctx context.Context, c *Client, in models.CreateBookInput) (*models.BookView, error) {
	b, err := c.CreateBook(ctx, in)
	if err != nil {
		return nil, err
	}
	return b, s.Reload(ctx, c)
}

func (s *BookListState) Update(ctx context.Context, c *Client, id string, in models.UpdateBookInput) (*models.BookView, error) {
	b, err := c.UpdateBook(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return b, s.Reload(ctx, c)
}

// Delete removes a book and reloads, stepping back a page when the current
// one became empty.
func (s *BookListState) Delete(ctx context.Context, c *Client, id string) error {
	if err := c.DeleteBook(ctx, id); err != nil {
		return err
	}
	if err := s.Reload(ctx, c); err != nil {
		return err
	}
	if len(s.Books) == 0 && s.Page > 1 {
		s.Page = s.TotalPages
		return s.Reload(ctx, c)
	}
	return nil
}
