package models

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = math.MaxInt32
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortableFields lists the fields a book list may be ordered by.
var SortableFields = []string{
	"title", "author", "isbn", "category", "publicationDate", "status", "bookType",
	"condition", "isFeatured", "purchasePrice", "marketValue", "createdAt", "updatedAt",
}

// BookFilter holds the exact-match constraints and the free-text search of a
// list request. Empty strings and a nil IsFeatured mean "not constrained".
type BookFilter struct {
	BookType   string
	Category   string
	Status     string
	Condition  string
	IsFeatured *bool
	Search     string
}

type BookSort struct {
	Field     string
	Direction SortDirection
}

// DefaultBookSort is applied by the store when no sort field is requested.
var DefaultBookSort = BookSort{Field: "createdAt", Direction: SortDesc}

// Resolved returns s, or DefaultBookSort when s has no field.
func (s BookSort) Resolved() BookSort {
	if s.Field == "" {
		return DefaultBookSort
	}
	if s.Direction != SortDesc {
		s.Direction = SortAsc
	}
	return s
}

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// TotalPages is ceil(total / limit).
func (p PageRequest) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

type BookQuery struct {
	Filter BookFilter
	Sort   BookSort
	Page   PageRequest
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ParsePageRequest reads page and limit, falling back to 1 and 10 when absent
// or not a positive integer. Values past MaxPage and MaxLimit are clamped.
func ParsePageRequest(q url.Values) PageRequest {
	limit := positiveInt(q.Get("limit"), DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	page := positiveInt(q.Get("page"), DefaultPage)
	if page > MaxPage {
		page = MaxPage
	}
	return PageRequest{
		Page:  page,
		Limit: limit,
	}
}

// ParseBookQuery reads a list request's query string. Only an unknown sort
// field is rejected; filter values outside the enums simply match nothing.
func ParseBookQuery(q url.Values) (BookQuery, error) {
	f := BookFilter{
		BookType:  q.Get("bookType"),
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		Condition: q.Get("condition"),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	if v := q.Get("isFeatured"); v != "" {
		featured := v == "true"
		f.IsFeatured = &featured
	}

	var s BookSort
	if field := q.Get("sortField"); field != "" {
		if !contains(SortableFields, field) {
			return BookQuery{}, apperr.Invalid(apperr.FieldError{
				Field:   "sortField",
				Message: "sortField must be one of: " + strings.Join(SortableFields, ", "),
			})
		}
		s.Field = field
		s.Direction = SortAsc
		if q.Get("sortDirection") == string(SortDesc) {
			s.Direction = SortDesc
		}
	}

	return BookQuery{Filter: f, Sort: s, Page: ParsePageRequest(q)}, nil
}

// Values encodes q as a query string understood by ParseBookQuery.
func (q BookQuery) Values() url.Values {
	v := url.Values{}
	if q.Page.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page.Page))
	}
	if q.Page.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Page.Limit))
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("bookType", q.Filter.BookType)
	set("category", q.Filter.Category)
	set("status", q.Filter.Status)
	set("condition", q.Filter.Condition)
	set("search", q.Filter.Search)
	if q.Filter.IsFeatured != nil {
		v.Set("isFeatured", strconv.FormatBool(*q.Filter.IsFeatured))
	}
	if q.Sort.Field != "" {
		v.Set("sortField", q.Sort.Field)
		dir := q.Sort.Direction
		if dir == "" {
			dir = SortAsc
		}
		v.Set("sortDirection", string(dir))
	}
	return v
}

// BookPage is the list response payload.
type BookPage struct {
	Books      []BookView `json:"books"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// UserPage is the user list response payload.
type UserPage struct {
	Users      []UserView `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}
