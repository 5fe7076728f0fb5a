package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

const geminiBase = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"

const geminiPrompt = `I need detailed information about a book with ISBN: %s.
Please provide the following details in JSON format:
{
  "title": "Book title",
  "author": "Author name",
  "publicationDate": "YYYY-MM-DD",
  "publisher": "Publisher name",
  "category": "Book category (%s)",
  "description": "Brief description of the book"
}
Ensure the date is in YYYY-MM-DD format and the category matches one of the specified options exactly.`

type GeminiLookup struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewGeminiLookup(apiKey string) *GeminiLookup {
	return &GeminiLookup{
		APIKey:   apiKey,
		Endpoint: geminiBase,
		Client:   &http.Client{Timeout: lookupTimeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Lookup asks the model about isbn and extracts whatever JSON object it wrote.
// Unparsable answers yield empty details, not an error.
func (g *GeminiLookup) Lookup(ctx context.Context, isbn string) (*BookDetails, error) {
	isbn = CleanISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{
		Text: fmt.Sprintf(geminiPrompt, isbn, strings.Join(models.Categories, ", ")),
	}}}}})
	if err != nil {
		return nil, err
	}
	u := g.Endpoint + "?key=" + url.QueryEscape(g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned %d", resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return &BookDetails{}, nil
	}
	return ExtractBookDetails(out.Candidates[0].Content.Parts[0].Text), nil
}

var jsonInText = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```|(\\{.*\\})")

// lenient tolerates the loose typing a model produces, such as numbers where
// strings are expected.
var lenient = jsoniter.Config{
	EscapeHTML:             false,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// ExtractBookDetails pulls a JSON object out of free-form model output, either
// from a ```json fenced block or the outermost brace span.
func ExtractBookDetails(text string) *BookDetails {
	m := jsonInText.FindStringSubmatch(text)
	if m == nil {
		return &BookDetails{}
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	var fields map[string]interface{}
	if err := lenient.UnmarshalFromString(raw, &fields); err != nil {
		return &BookDetails{}
	}
	str := func(key string) string {
		v, ok := fields[key]
		if !ok || v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
	d := &BookDetails{
		Title:       str("title"),
		Author:      str("author"),
		Publisher:   str("publisher"),
		Description: str("description"),
	}
	if date := str("publicationDate"); date != "" {
		if t, err := models.ParseDate(date); err == nil {
			d.PublicationDate = t.Format(models.DateLayout)
		}
	}
	d.Category = matchCategory([]string{str("category")})
	return d
}

// matchCategory returns the first inventory category named by any candidate,
// compared case-insensitively, or "".
func matchCategory(candidates []string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		for _, known := range models.Categories {
			if strings.EqualFold(c, known) {
				return known
			}
		}
	}
	return ""
}
