package models

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SearchParams drives every publication lookup, local or remote. All filter
// fields are optional; page/limit/sort carry defaults applied by Normalize.
type SearchParams struct {
	Query      string   `json:"query,omitempty"`
	Author     string   `json:"author,omitempty"`
	University string   `json:"university,omitempty"`
	YearFrom   int      `json:"yearFrom,omitempty"`
	YearTo     int      `json:"yearTo,omitempty"`
	Journal    string   `json:"journal,omitempty"`
	Category   string   `json:"category,omitempty"`
	Database   []string `json:"database,omitempty"` // provenance tags, matched disjunctively

	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
	SortBy        string `json:"sortBy"`        // year, title, journal, authors, university, category
	SortDirection string `json:"sortDirection"` // asc, desc
}

// Normalize applies defaults and clamps pagination values that arrive
// unvalidated from the HTTP layer.
func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = "year"
	}
	if p.SortDirection != "asc" {
		p.SortDirection = "desc"
	}
}

// SearchResult is the uniform list envelope: the page of records plus the
// pre-pagination total. Source names the backend that served the request.
type SearchResult struct {
	Data   []*Publication `json:"data"`
	Total  int            `json:"total"`
	Source string         `json:"source,omitempty"`
}
