package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	book.ID = primitive.NilObjectID
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return classify(err, "insert book", msgDuplicateISBN)
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, msgBookNotFound)
	}
	if err != nil {
		return nil, classify(err, "find book", "")
	}
	return &book, nil
}

// ListBooks returns one page of records matching q and the number of records
// matching q's filter regardless of paging.
func (db *DB) ListBooks(ctx context.Context, q models.BookQuery) ([]models.Book, int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	filter := bookFilter(q.Filter)
	total, err := db.Books().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, classify(err, "count books", "")
	}
	cur, err := db.Books().Find(ctx, filter, bookFindOptions(q))
	if err != nil {
		return nil, 0, classify(err, "list books", "")
	}
	defer cur.Close(ctx)
	books := []models.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, 0, classify(err, "list books", "")
	}
	return books, total, nil
}

func (db *DB) CountBooks(ctx context.Context) (int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	n, err := db.Books().CountDocuments(ctx, bson.M{})
	return n, classify(err, "count books", "")
}

func patchDocument(p models.BookPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.ISBN != nil {
		set["isbn"] = *p.ISBN
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.PublicationDate != nil {
		set["publicationDate"] = *p.PublicationDate
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.BookType != nil {
		set["bookType"] = *p.BookType
	}
	if p.Condition != nil {
		set["condition"] = *p.Condition
	}
	if p.IsFeatured != nil {
		set["isFeatured"] = *p.IsFeatured
	}
	if p.PurchasePrice != nil {
		set["purchasePrice"] = *p.PurchasePrice
	}
	if p.MarketValue != nil {
		set["marketValue"] = *p.MarketValue
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	return set
}

// UpdateBook applies patch atomically and returns the updated record.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) (*models.Book, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var book models.Book
	err := db.Books().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patchDocument(patch)}, opts).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, msgBookNotFound)
	}
	if err != nil {
		return nil, classify(err, "update book", msgDuplicateISBN)
	}
	return &book, nil
}

func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	res, err := db.Books().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, "delete book", "")
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, msgBookNotFound)
	}
	return nil
}

type statsBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type statsFacets struct {
	Total      []struct{ N int64 `bson:"n"` } `bson:"total"`
	ByType     []statsBucket                   `bson:"byType"`
	ByCategory []statsBucket                   `bson:"byCategory"`
	ByStatus   []statsBucket                   `bson:"byStatus"`
}

func groupBy(field string) bson.A {
	return bson.A{bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + field},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}}
}

// BookStats computes the dashboard counts in one $facet aggregation over the
// whole collection.
func (db *DB) BookStats(ctx context.Context) (*models.BookStats, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
			{Key: "byType", Value: groupBy("bookType")},
			{Key: "byCategory", Value: groupBy("category")},
			{Key: "byStatus", Value: groupBy("status")},
		}}},
	}
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(err, "aggregate book stats", "")
	}
	defer cur.Close(ctx)
	var facets []statsFacets
	if err := cur.All(ctx, &facets); err != nil {
		return nil, classify(err, "aggregate book stats", "")
	}
	stats := models.NewBookStats()
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	if len(f.Total) > 0 {
		stats.Total = f.Total[0].N
	}
	for _, b := range f.ByType {
		stats.AddType(b.Key, b.Count)
	}
	for _, b := range f.ByCategory {
		stats.ByCategory[b.Key] = b.Count
	}
	for _, b := range f.ByStatus {
		stats.ByStatus[b.Key] = b.Count
	}
	return stats, nil
}

// EachBook streams the whole collection in default list order. The per-call
// timeout does not apply; callers bound it through ctx.
func (db *DB) EachBook(ctx context.Context, fn func(*models.Book) error) error {
	cur, err := db.Books().Find(ctx, bson.M{}, options.Find().SetSort(bookSort(models.BookSort{})))
	if err != nil {
		return classify(err, "scan books", "")
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var b models.Book
		if err := cur.Decode(&b); err != nil {
			return classify(err, "scan books", "")
		}
		if err := fn(&b); err != nil {
			return err
		}
	}
	return classify(cur.Err(), "scan books", "")
}
