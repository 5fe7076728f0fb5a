package store

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// Memory is an in-process Store with the same filtering, ordering and
// uniqueness semantics as DB. It backs STORE_DRIVER=memory and the tests.
type Memory struct {
	mu     sync.RWMutex
	books  map[primitive.ObjectID]models.Book
	isbns  map[string]primitive.ObjectID
	users  map[primitive.ObjectID]models.User
	logins map[string]primitive.ObjectID
}

func NewMemory() *Memory {
	return &Memory{
		books:  make(map[primitive.ObjectID]models.Book),
		isbns:  make(map[string]primitive.ObjectID),
		users:  make(map[primitive.ObjectID]models.User),
		logins: make(map[string]primitive.ObjectID),
	}
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) InsertBook(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.isbns[book.ISBN]; taken {
		return apperr.New(apperr.Conflict, msgDuplicateISBN)
	}
	book.ID = primitive.NewObjectID()
	m.books[book.ID] = *book
	m.isbns[book.ISBN] = book.ID
	return nil
}

func (m *Memory) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, msgBookNotFound)
	}
	return &b, nil
}

func (m *Memory) ListBooks(_ context.Context, q models.BookQuery) ([]models.Book, int64, error) {
	m.mu.RLock()
	matched := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		if matchesFilter(&b, q.Filter) {
			matched = append(matched, b)
		}
	}
	m.mu.RUnlock()

	sortBooks(matched, q.Sort)
	total := int64(len(matched))
	skip := q.Page.Skip()
	if skip < 0 || skip >= total {
		return []models.Book{}, total, nil
	}
	end := skip + int64(q.Page.Limit)
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (m *Memory) CountBooks(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.books)), nil
}

func (m *Memory) UpdateBook(_ context.Context, id primitive.ObjectID, patch models.BookPatch) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, msgBookNotFound)
	}
	oldISBN := b.ISBN
	patch.Apply(&b)
	if b.ISBN != oldISBN {
		if _, taken := m.isbns[b.ISBN]; taken {
			return nil, apperr.New(apperr.Conflict, msgDuplicateISBN)
		}
		delete(m.isbns, oldISBN)
		m.isbns[b.ISBN] = id
	}
	m.books[id] = b
	return &b, nil
}

func (m *Memory) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return apperr.New(apperr.NotFound, msgBookNotFound)
	}
	delete(m.books, id)
	delete(m.isbns, b.ISBN)
	return nil
}

func (m *Memory) BookStats(context.Context) (*models.BookStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := models.NewBookStats()
	for _, b := range m.books {
		stats.Add(&b)
	}
	return stats, nil
}

func (m *Memory) EachBook(ctx context.Context, fn func(*models.Book) error) error {
	m.mu.RLock()
	all := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		all = append(all, b)
	}
	m.mu.RUnlock()
	sortBooks(all, models.BookSort{})
	for i := range all {
		if err := ctx.Err(); err != nil {
			return apperr.Wrap(apperr.Unavailable, "scan books interrupted", err)
		}
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.logins[user.Username]; taken {
		return apperr.New(apperr.Conflict, msgDuplicateUser)
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = *user
	m.logins[user.Username] = user.ID
	return nil
}

func (m *Memory) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.logins[username]
	if !ok {
		return nil, nil
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context, page models.PageRequest) ([]models.User, int64, error) {
	m.mu.RLock()
	all := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		u.Password = ""
		all = append(all, u)
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})
	total := int64(len(all))
	skip := page.Skip()
	if skip < 0 || skip >= total {
		return []models.User{}, total, nil
	}
	end := skip + int64(page.Limit)
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (m *Memory) UpdateUser(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, msgUserNotFound)
	}
	patch.Apply(&u)
	m.users[id] = u
	return &u, nil
}

func (m *Memory) UsersCount(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func (m *Memory) UserNames(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

func matchesFilter(b *models.Book, f models.BookFilter) bool {
	if f.BookType != "" && b.BookType != f.BookType {
		return false
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Condition != "" && b.Condition != f.Condition {
		return false
	}
	if f.IsFeatured != nil && b.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, hay := range []string{b.Title, b.Author, b.ISBN, b.Description} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// compareField orders a and b on a sortable field the way MongoDB does for
// values of a single type.
func compareField(a, b *models.Book, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "isbn":
		return strings.Compare(a.ISBN, b.ISBN)
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "bookType":
		return strings.Compare(a.BookType, b.BookType)
	case "condition":
		return strings.Compare(a.Condition, b.Condition)
	case "publicationDate":
		return a.PublicationDate.Compare(b.PublicationDate)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "purchasePrice":
		return compareFloat(a.PurchasePrice, b.PurchasePrice)
	case "marketValue":
		return compareFloat(a.MarketValue, b.MarketValue)
	case "isFeatured":
		switch {
		case a.IsFeatured == b.IsFeatured:
			return 0
		case b.IsFeatured:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sortBooks(books []models.Book, s models.BookSort) {
	s = s.Resolved()
	sort.Slice(books, func(i, j int) bool {
		c := compareField(&books[i], &books[j], s.Field)
		if s.Direction == models.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return bytes.Compare(books[i].ID[:], books[j].ID[:]) < 0
	})
}
