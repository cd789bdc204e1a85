package models

import "time"

// Metadata carries provenance-specific fields for externally sourced
// records. All fields are optional; whatever the source did not deliver
// stays empty.
type Metadata struct {
	ScopusID      string `json:"scopusId,omitempty"`
	EID           string `json:"eid,omitempty"`
	AffiliationID string `json:"scopusAffiliationId,omitempty"`
	CitedByCount  int    `json:"citedByCount,omitempty"`
	WOS           string `json:"wos,omitempty"`
	ISSN          string `json:"issn,omitempty"`
	EISSN         string `json:"eissn,omitempty"`
	PubMed        string `json:"pubmed,omitempty"`
	Quartile      string `json:"quartile,omitempty"` // Q1..Q4
}

// PublicationInput is the caller-supplied part of a publication record.
// Title, authors and year are the only mandatory fields.
type PublicationInput struct {
	Title        string    `json:"title" binding:"required"`
	Authors      string    `json:"authors" binding:"required"` // comma-separated "Surname Initials"
	Year         int       `json:"year" binding:"required"`
	University   string    `json:"university,omitempty"`
	Journal      string    `json:"journal,omitempty"`
	Volume       string    `json:"volume,omitempty"`
	Issue        string    `json:"issue,omitempty"`
	Pages        string    `json:"pages,omitempty"`
	DOI          string    `json:"doi,omitempty"`
	URL          string    `json:"url,omitempty"`
	Abstract     string    `json:"abstract,omitempty"`
	Category     string    `json:"category,omitempty"` // Q1..Q4, VAK, RINC, patents etc.
	Type         string    `json:"type,omitempty"`     // article, patent, dissertation, book, conference
	Database     string    `json:"database,omitempty"` // comma-separated provenance list
	PatentNumber string    `json:"patentNumber,omitempty"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// Publication is a stored catalog record. ID and CreatedAt are assigned by
// the store and never change afterwards. Externally sourced records that
// were not inserted carry ID 0 and identify themselves via Metadata.
type Publication struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	PublicationInput
}

// PublicationUpdate is a partial update: only non-nil fields are applied.
type PublicationUpdate struct {
	Title        *string   `json:"title"`
	Authors      *string   `json:"authors"`
	Year         *int      `json:"year"`
	University   *string   `json:"university"`
	Journal      *string   `json:"journal"`
	Volume       *string   `json:"volume"`
	Issue        *string   `json:"issue"`
	Pages        *string   `json:"pages"`
	DOI          *string   `json:"doi"`
	URL          *string   `json:"url"`
	Abstract     *string   `json:"abstract"`
	Category     *string   `json:"category"`
	Type         *string   `json:"type"`
	Database     *string   `json:"database"`
	PatentNumber *string   `json:"patentNumber"`
	Metadata     *Metadata `json:"metadata"`
}

// Citation is one publication citing another, as reported by the remote
// bibliographic API.
type Citation struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Year    int    `json:"year"`
	Journal string `json:"journal,omitempty"`
	DOI     string `json:"doi,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Author is an aggregate reconstructed from publication author lists. It is
// recomputed per search call and keyed by the written name, so two distinct
// people with the same name collapse into one entry.
type Author struct {
	AuthorID      string `json:"authorId"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	GivenName     string `json:"givenName"`
	Affiliation   string `json:"affiliation"`
	DocumentCount int    `json:"documentCount"`
}
