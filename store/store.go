package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// BookStore persists inventory records. InsertBook and UpdateBook return a
// Conflict error when the ISBN is already taken and leave the store unchanged.
type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) error
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ListBooks(ctx context.Context, q models.BookQuery) ([]models.Book, int64, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) (*models.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
	BookStats(ctx context.Context) (*models.BookStats, error)
	CountBooks(ctx context.Context) (int64, error)
	// EachBook calls fn for every record in default list order and stops at the first error.
	EachBook(ctx context.Context, fn func(*models.Book) error) error
}

// UserStore persists identities. UserByID and UserByUsername return (nil, nil)
// when no user matches.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	UsersCount(ctx context.Context) (int64, error)
	UserNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type Store interface {
	BookStore
	UserStore
	Close(ctx context.Context) error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*Memory)(nil)
)
