package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryFiction     = "Fiction"
	CategoryNonFiction  = "Non-Fiction"
	CategoryBiography   = "Biography"
	CategoryScience     = "Science"
	CategoryHistory     = "History"
	CategoryProgramming = "Programming"
	CategorySelfHelp    = "Self-Help"
	CategoryBusiness    = "Business"
	CategoryOther       = "Other"
)

const (
	StatusAvailable = "Available"
	StatusBorrowed  = "Borrowed"
	StatusLost      = "Lost"
	StatusDamaged   = "Damaged"
)

const (
	BookTypeNew = "New"
	BookTypeOld = "Old"
)

const (
	ConditionExcellent = "Excellent"
	ConditionGood      = "Good"
	ConditionFair      = "Fair"
	ConditionPoor      = "Poor"
)

var (
	Categories = []string{
		CategoryFiction, CategoryNonFiction, CategoryBiography, CategoryScience, CategoryHistory,
		CategoryProgramming, CategorySelfHelp, CategoryBusiness, CategoryOther,
	}
	Statuses   = []string{StatusAvailable, StatusBorrowed, StatusLost, StatusDamaged}
	BookTypes  = []string{BookTypeNew, BookTypeOld}
	Conditions = []string{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}
)

// DateLayout is the wire format of publicationDate.
const DateLayout = "2006-01-02"

// Book is a stored inventory record. The value change percentage is not
// stored; see View.
type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	ISBN            string             `bson:"isbn"`
	Category        string             `bson:"category"`
	PublicationDate time.Time          `bson:"publicationDate"`
	Status          string             `bson:"status"`
	BookType        string             `bson:"bookType"`
	Condition       string             `bson:"condition"`
	IsFeatured      bool               `bson:"isFeatured"`
	PurchasePrice   float64            `bson:"purchasePrice"`
	MarketValue     float64            `bson:"marketValue"`
	Description     string             `bson:"description,omitempty"`
	CreatedBy       primitive.ObjectID `bson:"createdBy"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

// ValueChangePercentage returns the change from purchase price to market value
// in percent, rounded half away from zero to two decimals. A zero purchase
// price yields 0.
func ValueChangePercentage(purchasePrice, marketValue float64) float64 {
	if purchasePrice == 0 {
		return 0
	}
	return math.Round((marketValue-purchasePrice)/purchasePrice*100*100) / 100
}

// ValueChangePercentage is the derived field for b.
func (b *Book) ValueChangePercentage() float64 {
	return ValueChangePercentage(b.PurchasePrice, b.MarketValue)
}

// Creator is the createdBy reference as returned to callers.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// BookView is the representation of a Book returned by the API.
type BookView struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Author                string    `json:"author"`
	ISBN                  string    `json:"isbn"`
	Category              string    `json:"category"`
	PublicationDate       string    `json:"publicationDate"`
	Status                string    `json:"status"`
	BookType              string    `json:"bookType"`
	Condition             string    `json:"condition"`
	IsFeatured            bool      `json:"isFeatured"`
	PurchasePrice         float64   `json:"purchasePrice"`
	MarketValue           float64   `json:"marketValue"`
	Description           string    `json:"description"`
	ValueChangePercentage float64   `json:"valueChangePercentage"`
	CreatedBy             Creator   `json:"createdBy"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// View builds the API representation. creatorName may be empty when the
// creator could not be resolved.
func (b *Book) View(creatorName string) BookView {
	return BookView{
		ID:                    b.ID.Hex(),
		Title:                 b.Title,
		Author:                b.Author,
		ISBN:                  b.ISBN,
		Category:              b.Category,
		PublicationDate:       b.PublicationDate.UTC().Format(DateLayout),
		Status:                b.Status,
		BookType:              b.BookType,
		Condition:             b.Condition,
		IsFeatured:            b.IsFeatured,
		PurchasePrice:         b.PurchasePrice,
		MarketValue:           b.MarketValue,
		Description:           b.Description,
		ValueChangePercentage: b.ValueChangePercentage(),
		CreatedBy:             Creator{ID: b.CreatedBy.Hex(), Name: creatorName},
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC
// calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
