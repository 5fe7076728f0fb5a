package models

// BookStats is the dashboard aggregation. ByCategory and ByStatus always carry
// every enum value, zero when no record has it.
type BookStats struct {
	Total      int64            `json:"total"`
	NewBooks   int64            `json:"newBooks"`
	OldBooks   int64            `json:"oldBooks"`
	ByCategory map[string]int64 `json:"byCategory"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

func NewBookStats() *BookStats {
	s := &BookStats{
		ByCategory: make(map[string]int64, len(Categories)),
		ByStatus:   make(map[string]int64, len(Statuses)),
	}
	for _, c := range Categories {
		s.ByCategory[c] = 0
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	return s
}

// Add counts one record.
func (s *BookStats) Add(b *Book) {
	s.Total++
	s.AddType(b.BookType, 1)
	s.ByCategory[b.Category]++
	s.ByStatus[b.Status]++
}

func (s *BookStats) AddType(bookType string, n int64) {
	switch bookType {
	case BookTypeNew:
		s.NewBooks += n
	case BookTypeOld:
		s.OldBooks += n
	}
}
