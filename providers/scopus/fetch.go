// Package scopus adapts the Elsevier Scopus Search API to the local
// publication model. Every response field is treated as optional.
package scopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pub-catalog/config"
	"pub-catalog/journals"
	"pub-catalog/models"
	"pub-catalog/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Retry knobs for rate-limited responses. Vars so tests avoid real sleeps.
var (
	retryBaseDelay = time.Second
	maxRetries     = 3
)

// Fetcher implements the Provider interface for Scopus.
type Fetcher struct {
	Config    *config.Config
	Logger    *zap.Logger
	Quartiles *journals.Index
}

// NewFetcher creates a new Scopus fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger, quartiles *journals.Index) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Quartiles: quartiles}
}

// Name returns the provenance tag of this backend.
func (f *Fetcher) Name() string {
	return "Scopus"
}

func (f *Fetcher) remoteErr(err error) error {
	return &providers.RemoteSearchError{Provider: f.Name(), Err: err}
}

// buildQuery assembles the Scopus boolean query expression: a
// title/abstract/keyword clause plus inclusive year bounds, joined with AND.
// With no clauses at all the unrestricted ALL query is used.
func buildQuery(query string, yearFrom, yearTo int) string {
	var parts []string
	if strings.TrimSpace(query) != "" {
		parts = append(parts, fmt.Sprintf("TITLE-ABS-KEY(%s)", query))
	}
	if yearFrom != 0 {
		parts = append(parts, fmt.Sprintf("PUBYEAR >= %d", yearFrom))
	}
	if yearTo != 0 {
		parts = append(parts, fmt.Sprintf("PUBYEAR <= %d", yearTo))
	}
	if len(parts) == 0 {
		return "ALL"
	}
	return strings.Join(parts, " AND ")
}

// doSearch issues one Scopus Search API request and decodes the envelope.
// HTTP 429 is retried with exponential backoff before giving up.
func (f *Fetcher) doSearch(ctx context.Context, query string, count, start int) (*searchResponse, error) {
	if f.Config.ScopusAPIKey == "" {
		return nil, fmt.Errorf("scopus API key is not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("start", strconv.Itoa(start))
	params.Set("view", "STANDARD")
	reqURL := f.Config.ScopusBaseURL + "/search/scopus?" + params.Encode()

	log := f.Logger.With(zap.String("query", query))
	log.Debug("Calling Scopus search API", zap.String("url", reqURL))

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-ELS-APIKey", f.Config.ScopusAPIKey)
		req.Header.Set("Accept", "application/json")

		resp, err = httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			break
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryBaseDelay << attempt
		log.Warn("Scopus rate limited, retrying",
			zap.Duration("backoff", backoff), zap.Int("attempt", attempt+1))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Scopus API returned non-200 status",
			zap.Int("status", resp.StatusCode), zap.String("body", string(body)))
		return nil, fmt.Errorf("scopus API error: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding scopus response: %w", err)
	}
	return &sr, nil
}

// SearchPublications runs a publication search. Pagination is translated to
// the API's zero-based offset convention.
func (f *Fetcher) SearchPublications(ctx context.Context, params models.SearchParams) ([]*models.Publication, int, error) {
	params.Normalize()
	start := (params.Page - 1) * params.Limit
	query := buildQuery(params.Query, params.YearFrom, params.YearTo)

	sr, err := f.doSearch(ctx, query, params.Limit, start)
	if err != nil {
		return nil, 0, f.remoteErr(err)
	}

	total, _ := strconv.Atoi(sr.SearchResults.TotalResults)
	if len(sr.SearchResults.Entry) == 0 {
		f.Logger.Debug("No results in Scopus response", zap.String("query", query))
		return nil, 0, nil
	}

	pubs := make([]*models.Publication, 0, len(sr.SearchResults.Entry))
	for i := range sr.SearchResults.Entry {
		pubs = append(pubs, f.mapEntry(&sr.SearchResults.Entry[i]))
	}
	f.Logger.Info("Scopus search completed",
		zap.String("query", query), zap.Int("page_results", len(pubs)), zap.Int("total", total))
	return pubs, total, nil
}

// mapEntry converts one Scopus entry into a publication record, resolving
// the journal quartile by ISSN first and title second.
func (f *Fetcher) mapEntry(e *entry) *models.Publication {
	title := e.Title
	if title == "" {
		title = "Untitled"
	}

	authors := e.Creator
	if len(e.Authors) > 0 {
		parts := make([]string, 0, len(e.Authors))
		for _, a := range e.Authors {
			name := strings.TrimSpace(a.GivenName + " " + a.Surname)
			if name != "" {
				parts = append(parts, name)
			}
		}
		if len(parts) > 0 {
			authors = strings.Join(parts, ", ")
		}
	}
	if authors == "" {
		authors = "Unknown author"
	}

	var university, affiliationID string
	if len(e.Affiliations) > 0 {
		university = e.Affiliations[0].Name
		affiliationID = e.Affiliations[0].ID
	}

	var quartile string
	if e.ISSN != "" || e.EISSN != "" {
		quartile = f.Quartiles.FindByISSN(e.ISSN, e.EISSN)
	}
	if quartile == "" && e.PublicationName != "" {
		quartile = f.Quartiles.FindByTitle(e.PublicationName)
	}
	category := "Scopus"
	if quartile != "" {
		category = "Scopus " + quartile
	}

	var pubURL string
	for _, l := range e.Links {
		if l.Ref == "scopus" || l.Ref == "full-text" {
			pubURL = l.Href
			break
		}
	}

	pubType := e.SubtypeDesc
	if pubType == "" {
		pubType = "article"
	}

	citedBy, _ := strconv.Atoi(e.CitedByCount)

	return &models.Publication{
		PublicationInput: models.PublicationInput{
			Title:      title,
			Authors:    authors,
			Year:       parseYear(e.CoverDate),
			Journal:    e.PublicationName,
			Volume:     e.Volume,
			Issue:      e.IssueIdentifier,
			Pages:      e.PageRange,
			DOI:        e.DOI,
			Abstract:   e.Description,
			URL:        pubURL,
			University: university,
			Category:   category,
			Database:   "Scopus",
			Type:       pubType,
			Metadata: &models.Metadata{
				ScopusID:      e.Identifier,
				EID:           e.EID,
				AffiliationID: affiliationID,
				CitedByCount:  citedBy,
				ISSN:          e.ISSN,
				EISSN:         e.EISSN,
				PubMed:        e.PubMedID,
				Quartile:      quartile,
			},
		},
	}
}

// parseYear extracts the leading four digits of a cover date, falling back
// to the current year when unparseable.
func parseYear(coverDate string) int {
	if len(coverDate) >= 4 {
		if y, err := strconv.Atoi(coverDate[:4]); err == nil {
			return y
		}
	}
	return time.Now().Year()
}

// SearchAuthors searches authors indirectly: Scopus' dedicated author search
// needs an elevated API tier, so we search publications by author name and
// rebuild an author list by grouping on the written name. Same-named
// distinct people collapse into one entry; the occurrence count stands in
// for the document count.
func (f *Fetcher) SearchAuthors(ctx context.Context, query string, limit int) ([]models.Author, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var first, last string
	parts := strings.Fields(query)
	if len(parts) >= 2 {
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	} else {
		last = parts[0]
	}

	var authorQuery string
	if first != "" && last != "" {
		authorQuery = fmt.Sprintf("AUTHOR-NAME(%s, %s)", last, first)
	} else {
		authorQuery = fmt.Sprintf("AUTHOR-NAME(%s)", query)
	}
	f.Logger.Debug("Scopus author query via publications", zap.String("query", authorQuery))

	// Fetch a bigger page than requested so the grouping has enough signal.
	sr, err := f.doSearch(ctx, authorQuery, 25, 0)
	if err != nil {
		return nil, f.remoteErr(err)
	}

	needle := strings.ToLower(query)
	grouped := make(map[string]*models.Author)
	var order []string

	add := func(key string, a models.Author) {
		if existing, ok := grouped[key]; ok {
			existing.DocumentCount++
			return
		}
		a.DocumentCount = 1
		grouped[key] = &a
		order = append(order, key)
	}

	for i := range sr.SearchResults.Entry {
		e := &sr.SearchResults.Entry[i]

		affiliation := "No data"
		if len(e.Affiliations) > 0 && e.Affiliations[0].Name != "" {
			affiliation = e.Affiliations[0].Name
		}

		if e.Creator != "" && strings.Contains(strings.ToLower(e.Creator), needle) {
			nameParts := strings.Fields(e.Creator)
			surname, given := "", ""
			if len(nameParts) > 0 {
				surname = nameParts[0]
				given = strings.Join(nameParts[1:], " ")
			}
			add(e.Creator, models.Author{
				AuthorID:    e.Identifier,
				Name:        given,
				Surname:     surname,
				GivenName:   given,
				Affiliation: affiliation,
			})
		}

		for _, a := range e.Authors {
			// Written names come in either order.
			full := strings.ToLower(strings.TrimSpace(a.Surname + " " + a.GivenName))
			alt := strings.ToLower(strings.TrimSpace(a.GivenName + " " + a.Surname))
			if !strings.Contains(full, needle) && !strings.Contains(alt, needle) {
				continue
			}
			id := a.AuthID
			if id == "" {
				id = e.Identifier
			}
			add(a.Surname+"|"+a.GivenName, models.Author{
				AuthorID:    id,
				Name:        a.GivenName,
				Surname:     a.Surname,
				GivenName:   a.GivenName,
				Affiliation: affiliation,
			})
		}
	}

	authors := make([]models.Author, 0, len(grouped))
	for _, key := range order {
		authors = append(authors, *grouped[key])
	}
	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].DocumentCount > authors[j].DocumentCount
	})
	if len(authors) > limit {
		authors = authors[:limit]
	}

	f.Logger.Info("Scopus author search completed",
		zap.String("query", query), zap.Int("authors", len(authors)))
	return authors, nil
}

// GetCitations looks up publications that reference the given Scopus id.
// The id may arrive prefixed ("SCOPUS_ID:85193737259"); only the bare part
// is sent to the API.
func (f *Fetcher) GetCitations(ctx context.Context, scopusID string) ([]models.Citation, error) {
	if strings.TrimSpace(scopusID) == "" {
		return nil, f.remoteErr(fmt.Errorf("empty publication id"))
	}
	cleanID := scopusID
	if i := strings.Index(scopusID, ":"); i >= 0 {
		cleanID = scopusID[i+1:]
	}

	sr, err := f.doSearch(ctx, fmt.Sprintf("REFEID(%s)", cleanID), 25, 0)
	if err != nil {
		return nil, f.remoteErr(err)
	}

	citations := make([]models.Citation, 0, len(sr.SearchResults.Entry))
	for i := range sr.SearchResults.Entry {
		e := &sr.SearchResults.Entry[i]

		authors := "Unknown author"
		if len(e.Authors) > 0 {
			parts := make([]string, 0, len(e.Authors))
			for _, a := range e.Authors {
				parts = append(parts, strings.TrimSpace(a.GivenName+" "+a.Surname))
			}
			authors = strings.Join(parts, ", ")
		}

		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		var citeURL string
		for _, l := range e.Links {
			if l.Ref == "scopus" {
				citeURL = l.Href
				break
			}
		}

		citations = append(citations, models.Citation{
			Title:   title,
			Authors: authors,
			Year:    parseYear(e.CoverDate),
			Journal: e.PublicationName,
			DOI:     e.DOI,
			URL:     citeURL,
		})
	}

	f.Logger.Info("Fetched citations",
		zap.String("scopus_id", scopusID), zap.Int("citations", len(citations)))
	return citations, nil
}
