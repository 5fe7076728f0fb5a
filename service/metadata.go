package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1/volumes"

// lookupTimeout bounds every call to an external metadata provider.
const lookupTimeout = 15 * time.Second

// BookDetails is the best-effort autofill payload for the book form. Any field
// may be empty; Category is only set when it names one of the inventory categories.
type BookDetails struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	Category        string `json:"category,omitempty"`
	Description     string `json:"description,omitempty"`
}

// ISBNLookup fetches details for an ISBN from an external source.
type ISBNLookup interface {
	Lookup(ctx context.Context, isbn string) (*BookDetails, error)
}

// NewISBNLookup prefers the text-generation provider when a key is set and
// falls back to Google Books otherwise.
func NewISBNLookup(geminiAPIKey string) ISBNLookup {
	if geminiAPIKey != "" {
		return NewGeminiLookup(geminiAPIKey)
	}
	return NewGoogleBooksLookup()
}

// CleanISBN strips whitespace and hyphens.
func CleanISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}

// googleBooksVolumesResp is the response from GET /volumes?q=isbn:...
type googleBooksVolumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Subtitle      string   `json:"subtitle"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			Categories    []string `json:"categories"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

type GoogleBooksLookup struct {
	Endpoint string
	Client   *http.Client
}

func NewGoogleBooksLookup() *GoogleBooksLookup {
	return &GoogleBooksLookup{
		Endpoint: googleBooksBase,
		Client:   &http.Client{Timeout: lookupTimeout},
	}
}

// Lookup fetches book metadata from Google Books API by ISBN.
func (g *GoogleBooksLookup) Lookup(ctx context.Context, isbn string) (*BookDetails, error) {
	isbn = CleanISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data googleBooksVolumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return &BookDetails{}, nil
	}
	vi := data.Items[0].VolumeInfo
	d := &BookDetails{
		Title:       vi.Title,
		Author:      strings.Join(vi.Authors, ", "),
		Publisher:   vi.Publisher,
		Description: strings.TrimSpace(vi.Description),
	}
	if vi.Subtitle != "" {
		d.Title = d.Title + ": " + vi.Subtitle
	}
	// Google returns YYYY, YYYY-MM or YYYY-MM-DD; only the full form fits the form field.
	if len(vi.PublishedDate) == len("2006-01-02") {
		d.PublicationDate = vi.PublishedDate
	}
	d.Category = matchCategory(vi.Categories)
	return d, nil
}
