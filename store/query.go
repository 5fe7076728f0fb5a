package store

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// searchFields are matched case-insensitively by BookFilter.Search.
var searchFields = []string{"title", "author", "isbn", "description"}

// bookFilter translates f into a Mongo filter document. Exact-match
// constraints are ANDed; the search term is ORed across searchFields and
// matched as a literal substring.
func bookFilter(f models.BookFilter) bson.M {
	filter := bson.M{}
	if f.BookType != "" {
		filter["bookType"] = f.BookType
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Condition != "" {
		filter["condition"] = f.Condition
	}
	if f.IsFeatured != nil {
		filter["isFeatured"] = *f.IsFeatured
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: re})
		}
		filter["$or"] = or
	}
	return filter
}

// bookSort returns the sort document for s, always ending with _id ascending
// so equal keys come back in a stable order.
func bookSort(s models.BookSort) bson.D {
	s = s.Resolved()
	dir := 1
	if s.Direction == models.SortDesc {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: 1}}
}

func bookFindOptions(q models.BookQuery) *options.FindOptions {
	return options.Find().
		SetSort(bookSort(q.Sort)).
		SetSkip(q.Page.Skip()).
		SetLimit(int64(q.Page.Limit))
}
