package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

// EnsureAdmin creates the bootstrap administrator when no user with that
// username exists and returns the stored user either way.
func EnsureAdmin(ctx context.Context, users store.UserStore, username, name, password string) (*models.User, error) {
	existing, err := users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Username:  username,
		Name:      name,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if apperr.Is(err, apperr.Conflict) {
			return users.UserByUsername(ctx, username)
		}
		return nil, err
	}
	logrus.WithField("username", username).Info("seeded admin user")
	return admin, nil
}

type sampleBook struct {
	title, author, isbn, category, published, status, bookType, condition string
	featured                                                              bool
	purchase, market                                                      float64
	description                                                           string
}

var sampleBooks = []sampleBook{
	{"To Kill a Mockingbird", "Harper Lee", "9780061120084", "Fiction", "1960-07-11", "Available", "Old", "Good", true, 10, 25,
		"Classic novel set in the American South during the Great Depression."},
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", "Fiction", "1925-04-10", "Available", "Old", "Fair", false, 8, 15,
		"A portrait of the Jazz Age in all of its decadence and excess."},
	{"Atomic Habits", "James Clear", "9780735211292", "Self-Help", "2018-10-16", "Borrowed", "New", "Excellent", true, 20, 18,
		"An Easy & Proven Way to Build Good Habits & Break Bad Ones."},
	{"Sapiens: A Brief History of Humankind", "Yuval Noah Harari", "9780062316097", "History", "2014-02-10", "Available", "New", "Good", true, 22, 24,
		"A sweeping history of humankind from the Stone Age to the 21st century."},
	{"Clean Code", "Robert C. Martin", "9780132350884", "Programming", "2008-08-01", "Available", "New", "Excellent", false, 35, 40,
		"A handbook of agile software craftsmanship."},
	{"The Innovators", "Walter Isaacson", "9781476708690", "Biography", "2014-10-07", "Available", "New", "Good", false, 30, 27,
		"How a Group of Hackers, Geniuses, and Geeks Created the Digital Revolution."},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "9780374533557", "Science", "2011-10-25", "Borrowed", "New", "Good", true, 25, 22,
		"How two systems of thought shape our judgments and decisions."},
	{"The Catcher in the Rye", "J.D. Salinger", "9780316769488", "Fiction", "1951-07-16", "Damaged", "Old", "Poor", false, 5, 10,
		"A story of teenage alienation and rebellion."},
	{"Educated", "Tara Westover", "9780399590504", "Biography", "2018-02-20", "Available", "New", "Excellent", true, 18, 20,
		"A memoir about a young woman who leaves her survivalist family to pursue education."},
	{"The Lean Startup", "Eric Ries", "9780307887894", "Business", "2011-09-13", "Available", "New", "Good", true, 22, 25,
		"How constant innovation creates radically successful businesses."},
	{"The Pragmatic Programmer", "Andrew Hunt, David Thomas", "9780201616224", "Programming", "1999-10-30", "Available", "Old", "Good", false, 28, 32,
		"From journeyman to master."},
	{"The Power of Habit", "Charles Duhigg", "9780812981605", "Self-Help", "2012-02-28", "Borrowed", "New", "Good", false, 16, 15,
		"Why we do what we do in life and business."},
}

// SeedSampleBooks inserts the sample catalogue owned by owner when the
// collection is empty. It returns the number of records inserted.
func SeedSampleBooks(ctx context.Context, books store.BookStore, owner *models.User) (int, error) {
	n, err := books.CountBooks(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logrus.WithField("count", n).Info("books already present, skipping sample seed")
		return 0, nil
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	inserted := 0
	for _, s := range sampleBooks {
		published, err := models.ParseDate(s.published)
		if err != nil {
			return inserted, err
		}
		b := &models.Book{
			Title:           s.title,
			Author:          s.author,
			ISBN:            s.isbn,
			Category:        s.category,
			PublicationDate: published,
			Status:          s.status,
			BookType:        s.bookType,
			Condition:       s.condition,
			IsFeatured:      s.featured,
			PurchasePrice:   s.purchase,
			MarketValue:     s.market,
			Description:     s.description,
			CreatedBy:       owner.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := books.InsertBook(ctx, b); err != nil {
			if apperr.Is(err, apperr.Conflict) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	logrus.WithField("count", inserted).Info("seeded sample books")
	return inserted, nil
}
