package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBookInput is the body of POST /books.
type CreateBookInput struct {
	Title           string   `json:"title" validate:"required,max=100"`
	Author          string   `json:"author" validate:"required,max=100"`
	ISBN            string   `json:"isbn" validate:"required,max=20"`
	Category        string   `json:"category" validate:"required,oneof=Fiction Non-Fiction Biography Science History Programming Self-Help Business Other"`
	PublicationDate string   `json:"publicationDate" validate:"required,pubdate"`
	Status          string   `json:"status,omitempty" validate:"omitempty,oneof=Available Borrowed Lost Damaged"`
	BookType        string   `json:"bookType" validate:"required,oneof=New Old"`
	Condition       string   `json:"condition" validate:"required,oneof=Excellent Good Fair Poor"`
	IsFeatured      bool     `json:"isFeatured"`
	PurchasePrice   *float64 `json:"purchasePrice" validate:"required,gte=0"`
	MarketValue     *float64 `json:"marketValue" validate:"required,gte=0"`
	Description     string   `json:"description,omitempty" validate:"max=1000"`
}

// Normalize trims the free-text fields in place.
func (in *CreateBookInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Description = strings.TrimSpace(in.Description)
	in.PublicationDate = strings.TrimSpace(in.PublicationDate)
}

// Book builds a new record owned by createdBy. The input must already be valid.
func (in *CreateBookInput) Book(createdBy primitive.ObjectID, now time.Time) (*Book, error) {
	published, err := ParseDate(in.PublicationDate)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = StatusAvailable
	}
	return &Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Category:        in.Category,
		PublicationDate: published,
		Status:          status,
		BookType:        in.BookType,
		Condition:       in.Condition,
		IsFeatured:      in.IsFeatured,
		PurchasePrice:   *in.PurchasePrice,
		MarketValue:     *in.MarketValue,
		Description:     in.Description,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// UpdateBookInput is the body of PUT /books/{id}. Absent fields are left unchanged.
type UpdateBookInput struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Author          *string  `json:"author,omitempty" validate:"omitempty,min=1,max=100"`
	ISBN            *string  `json:"isbn,omitempty" validate:"omitempty,min=1,max=20"`
	Category        *string  `json:"category,omitempty" validate:"omitempty,oneof=Fiction Non-Fiction Biography Science History Programming Self-Help Business Other"`
	PublicationDate *string  `json:"publicationDate,omitempty" validate:"omitempty,pubdate"`
	Status          *string  `json:"status,omitempty" validate:"omitempty,oneof=Available Borrowed Lost Damaged"`
	BookType        *string  `json:"bookType,omitempty" validate:"omitempty,oneof=New Old"`
	Condition       *string  `json:"condition,omitempty" validate:"omitempty,oneof=Excellent Good Fair Poor"`
	IsFeatured      *bool    `json:"isFeatured,omitempty"`
	PurchasePrice   *float64 `json:"purchasePrice,omitempty" validate:"omitempty,gte=0"`
	MarketValue     *float64 `json:"marketValue,omitempty" validate:"omitempty,gte=0"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (in *UpdateBookInput) Normalize() {
	in.Title = trimPtr(in.Title)
	in.Author = trimPtr(in.Author)
	in.ISBN = trimPtr(in.ISBN)
	in.Description = trimPtr(in.Description)
	in.PublicationDate = trimPtr(in.PublicationDate)
}

// Patch converts a valid input into a BookPatch stamped with now.
func (in *UpdateBookInput) Patch(now time.Time) (BookPatch, error) {
	p := BookPatch{
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		Category:      in.Category,
		Status:        in.Status,
		BookType:      in.BookType,
		Condition:     in.Condition,
		IsFeatured:    in.IsFeatured,
		PurchasePrice: in.PurchasePrice,
		MarketValue:   in.MarketValue,
		Description:   in.Description,
		UpdatedAt:     now,
	}
	if in.PublicationDate != nil {
		d, err := ParseDate(*in.PublicationDate)
		if err != nil {
			return BookPatch{}, err
		}
		p.PublicationDate = &d
	}
	return p, nil
}

// BookPatch is a partial update. createdBy and createdAt are not patchable.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	Category        *string
	PublicationDate *time.Time
	Status          *string
	BookType        *string
	Condition       *string
	IsFeatured      *bool
	PurchasePrice   *float64
	MarketValue     *float64
	Description     *string
	UpdatedAt       time.Time
}

// Apply writes the set fields of p onto b.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.PublicationDate != nil {
		b.PublicationDate = *p.PublicationDate
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.BookType != nil {
		b.BookType = *p.BookType
	}
	if p.Condition != nil {
		b.Condition = *p.Condition
	}
	if p.IsFeatured != nil {
		b.IsFeatured = *p.IsFeatured
	}
	if p.PurchasePrice != nil {
		b.PurchasePrice = *p.PurchasePrice
	}
	if p.MarketValue != nil {
		b.MarketValue = *p.MarketValue
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	b.UpdatedAt = p.UpdatedAt
}
