package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

const (
	exportPrefix      = "exports/"
	exportContentType = "text/csv"
	exportURLExpiry   = 15 * time.Minute
)

var exportHeader = []string{
	"id", "title", "author", "isbn", "category", "publicationDate", "status", "bookType",
	"condition", "isFeatured", "purchasePrice", "marketValue", "valueChangePercentage",
	"description", "createdBy", "createdAt", "updatedAt",
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func exportRow(b *models.Book) []string {
	return []string{
		b.ID.Hex(), b.Title, b.Author, b.ISBN, b.Category,
		b.PublicationDate.UTC().Format(models.DateLayout),
		b.Status, b.BookType, b.Condition, strconv.FormatBool(b.IsFeatured),
		formatFloat(b.PurchasePrice), formatFloat(b.MarketValue), formatFloat(b.ValueChangePercentage()),
		b.Description, b.CreatedBy.Hex(),
		b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteInventoryCSV writes every record in books as CSV, header first, and
// returns the number of records written.
func WriteInventoryCSV(ctx context.Context, w io.Writer, books store.BookStore) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	n := 0
	err := books.EachBook(ctx, func(b *models.Book) error {
		n++
		return cw.Write(exportRow(b))
	})
	if err != nil {
		return 0, err
	}
	cw.Flush()
	return n, cw.Error()
}

// ExportResult describes an uploaded inventory snapshot.
type ExportResult struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type Exporter struct {
	Books   store.BookStore
	Objects ObjectStore
	Now     func() time.Time
}

// Export uploads a CSV snapshot of the inventory and returns a short-lived
// download link.
func (e *Exporter) Export(ctx context.Context) (*ExportResult, error) {
	var buf bytes.Buffer
	n, err := WriteInventoryCSV(ctx, &buf, e.Books)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	key := exportPrefix + uuid.NewString() + ".csv"
	if err := e.Objects.Put(ctx, key, &buf, exportContentType); err != nil {
		return nil, err
	}
	filename := "inventory-" + now().UTC().Format("20060102-150405") + ".csv"
	url, err := e.Objects.PresignedGetURL(ctx, key, exportURLExpiry, filename)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, URL: url, Count: n}, nil
}
