package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pub-catalog/models"
)

// MemoryStore is the authoritative in-memory publication repository. Records
// are kept both in a slice (insertion order, the tie-break order for equal
// sort keys) and in an id map for point lookups. IDs are monotonically
// increasing and never reused.
type MemoryStore struct {
	mu     sync.RWMutex
	pubs   []*models.Publication
	byID   map[int]*models.Publication
	nextID int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[int]*models.Publication),
		nextID: 1,
	}
}

// Get returns the publication with the given id, or nil if absent. A missing
// id is a normal outcome, not an error.
func (s *MemoryStore) Get(id int) *models.Publication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// Create assigns the next id, stamps createdAt and stores the record.
func (s *MemoryStore) Create(in models.PublicationInput) *models.Publication {
	if in.Type == "" {
		in.Type = "article"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Publication{
		ID:               s.nextID,
		CreatedAt:        time.Now().UTC(),
		PublicationInput: in,
	}
	s.nextID++
	s.pubs = append(s.pubs, p)
	s.byID[p.ID] = p
	cp := *p
	return &cp
}

// Update merges the non-nil fields of upd over the existing record. ID and
// CreatedAt are never touched. Returns nil if the id is unknown.
func (s *MemoryStore) Update(id int, upd models.PublicationUpdate) *models.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Authors != nil {
		p.Authors = *upd.Authors
	}
	if upd.Year != nil {
		p.Year = *upd.Year
	}
	if upd.University != nil {
		p.University = *upd.University
	}
	if upd.Journal != nil {
		p.Journal = *upd.Journal
	}
	if upd.Volume != nil {
		p.Volume = *upd.Volume
	}
	if upd.Issue != nil {
		p.Issue = *upd.Issue
	}
	if upd.Pages != nil {
		p.Pages = *upd.Pages
	}
	if upd.DOI != nil {
		p.DOI = *upd.DOI
	}
	if upd.URL != nil {
		p.URL = *upd.URL
	}
	if upd.Abstract != nil {
		p.Abstract = *upd.Abstract
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.Database != nil {
		p.Database = *upd.Database
	}
	if upd.PatentNumber != nil {
		p.PatentNumber = *upd.PatentNumber
	}
	if upd.Metadata != nil {
		p.Metadata = upd.Metadata
	}
	cp := *p
	return &cp
}

// Delete removes a record. Returns false if the id was unknown.
func (s *MemoryStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, p := range s.pubs {
		if p.ID == id {
			s.pubs = append(s.pubs[:i], s.pubs[i+1:]...)
			break
		}
	}
	return true
}

// GetByIDs returns the known records in input order, silently dropping
// unknown ids.
func (s *MemoryStore) GetByIDs(ids []int) []*models.Publication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Publication, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pubs)
}

// Search applies all provided filters conjunctively, sorts, and paginates.
// Total always reflects the filtered count before pagination. Matching
// records are snapshot-copied while the read lock is held so concurrent
// writers can never tear a returned record.
func (s *MemoryStore) Search(params models.SearchParams) *models.SearchResult {
	params.Normalize()

	s.mu.RLock()
	filtered := make([]*models.Publication, 0, len(s.pubs))
	for _, p := range s.pubs {
		if matches(p, &params) {
			cp := *p
			filtered = append(filtered, &cp)
		}
	}
	s.mu.RUnlock()

	sortPublications(filtered, params.SortBy, params.SortDirection)

	total := len(filtered)
	start := (params.Page - 1) * params.Limit
	end := start + params.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &models.SearchResult{Data: filtered[start:end], Total: total}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// matches checks every non-empty filter; a record must satisfy all of them.
func matches(p *models.Publication, params *models.SearchParams) bool {
	if params.Query != "" {
		// Free text is a disjunction over title, authors, journal, university.
		if !containsFold(p.Title, params.Query) &&
			!containsFold(p.Authors, params.Query) &&
			!(p.Journal != "" && containsFold(p.Journal, params.Query)) &&
			!(p.University != "" && containsFold(p.University, params.Query)) {
			return false
		}
	}
	if params.Author != "" && !containsFold(p.Authors, params.Author) {
		return false
	}
	if params.University != "" {
		if p.University == "" || !containsFold(p.University, params.University) {
			return false
		}
	}
	if params.YearFrom != 0 && p.Year < params.YearFrom {
		return false
	}
	if params.YearTo != 0 && p.Year > params.YearTo {
		return false
	}
	if params.Journal != "" {
		if p.Journal == "" || !containsFold(p.Journal, params.Journal) {
			return false
		}
	}
	if params.Category != "" {
		if p.Category == "" || !containsFold(p.Category, params.Category) {
			return false
		}
	}
	if len(params.Database) > 0 {
		if p.Database == "" {
			return false
		}
		found := false
		for _, db := range params.Database {
			if containsFold(p.Database, db) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// collator provides locale-aware string ordering. Collation is not
// goroutine-safe, hence the lock.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

func compareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// sortPublications sorts in place. The sort is stable so records with equal
// keys keep their insertion order.
func sortPublications(pubs []*models.Publication, sortBy, direction string) {
	asc := direction == "asc"

	key := func(p *models.Publication) string {
		switch sortBy {
		case "title":
			return p.Title
		case "journal":
			return p.Journal
		case "authors":
			return p.Authors
		case "university":
			return p.University
		case "category":
			return p.Category
		}
		return ""
	}

	sort.SliceStable(pubs, func(i, j int) bool {
		var c int
		if sortBy == "year" || sortBy == "" {
			c = pubs[i].Year - pubs[j].Year
		} else {
			c = compareStrings(key(pubs[i]), key(pubs[j]))
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}
