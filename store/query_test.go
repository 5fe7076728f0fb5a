package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

func Test_bookFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, bookFilter(models.BookFilter{}))
}

func Test_bookFilter_ExactMatchAndSearch(t *testing.T) {
	featured := true
	got := bookFilter(models.BookFilter{
		Category:   "Fiction",
		Status:     "Available",
		IsFeatured: &featured,
		Search:     "c++ (2nd",
	})

	assert.Equal(t, "Fiction", got["category"])
	assert.Equal(t, "Available", got["status"])
	assert.Equal(t, true, got["isFeatured"])
	assert.NotContains(t, got, "bookType")

	or, ok := got["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)
	want := primitive.Regex{Pattern: `c\+\+ \(2nd`, Options: "i"}
	for i, field := range []string{"title", "author", "isbn", "description"} {
		assert.Equal(t, bson.M{field: want}, or[i])
	}
}

func Test_bookSort(t *testing.T) {
	tests := []struct {
		name string
		in   models.BookSort
		want bson.D
	}{
		{
			name: "default_most_recent_first",
			in:   models.BookSort{},
			want: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
		},
		{
			name: "ascending",
			in:   models.BookSort{Field: "title", Direction: models.SortAsc},
			want: bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name: "descending",
			in:   models.BookSort{Field: "marketValue", Direction: models.SortDesc},
			want: bson.D{{Key: "marketValue", Value: -1}, {Key: "_id", Value: 1}},
		},
		{
			name: "unknown_direction_is_ascending",
			in:   models.BookSort{Field: "author", Direction: "sideways"},
			want: bson.D{{Key: "author", Value: 1}, {Key: "_id", Value: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bookSort(tt.in))
		})
	}
}

func Test_bookFindOptions_Paging(t *testing.T) {
	opts := bookFindOptions(models.BookQuery{Page: models.PageRequest{Page: 3, Limit: 7}})

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(14), *opts.Skip)
	assert.Equal(t, int64(7), *opts.Limit)
}
