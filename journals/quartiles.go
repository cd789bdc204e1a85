// Package journals holds the journal quartile reference table. The table is
// loaded once at startup from an SJR CSV export and is read-only afterwards.
package journals

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Entry is one row of the reference table.
type Entry struct {
	Title    string `json:"Title"`
	Quartile string `json:"SJR Quartile"`
	ISSN     string `json:"ISSN"`
	EISSN    string `json:"E-ISSN"`
}

// Index answers quartile lookups by journal title or ISSN.
type Index struct {
	Logger  *zap.Logger
	entries []Entry
}

// NewIndex creates an empty index.
func NewIndex(logger *zap.Logger) *Index {
	return &Index{Logger: logger}
}

// Load reads the reference CSV. A missing file leaves the index empty and is
// logged but never returns an error; a malformed file is reported so callers
// decide whether to continue without the table.
func (ix *Index) Load(path string) error {
	if len(ix.entries) > 0 {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		ix.Logger.Warn("Journal quartile file not found, quartile lookups disabled",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	if err := ix.parse(f); err != nil {
		ix.Logger.Error("Failed to parse journal quartile file",
			zap.String("path", path), zap.Error(err))
		return err
	}
	ix.Logger.Info("Loaded journal quartile table",
		zap.String("path", path), zap.Int("journals", len(ix.entries)))
	return nil
}

// parse reads header-keyed CSV rows in file order.
func (ix *Index) parse(r io.Reader) error {
	cr := csv.NewReader(r)
	// SJR exports are semicolon-delimited.
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		e := Entry{
			Title:    field(rec, "Title"),
			Quartile: field(rec, "SJR Quartile"),
			ISSN:     field(rec, "ISSN"),
			EISSN:    field(rec, "E-ISSN"),
		}
		if e.Title == "" {
			continue
		}
		ix.entries = append(ix.entries, e)
	}
	return nil
}

// Len returns the number of loaded journals.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// FindByTitle resolves a quartile by journal title: exact match first, then
// a partial match where either side contains the other. First match in load
// order wins. Returns "" when unknown.
func (ix *Index) FindByTitle(title string) string {
	if len(ix.entries) == 0 || title == "" {
		return ""
	}
	needle := strings.ToLower(strings.TrimSpace(title))

	for _, e := range ix.entries {
		if strings.ToLower(strings.TrimSpace(e.Title)) == needle {
			return e.Quartile
		}
	}
	for _, e := range ix.entries {
		t := strings.ToLower(strings.TrimSpace(e.Title))
		if strings.Contains(t, needle) || strings.Contains(needle, t) {
			return e.Quartile
		}
	}
	return ""
}

// FindByISSN resolves a quartile by exact ISSN, checking ISSN before E-ISSN.
func (ix *Index) FindByISSN(issn, eissn string) string {
	if len(ix.entries) == 0 || (issn == "" && eissn == "") {
		return ""
	}
	if issn != "" {
		for _, e := range ix.entries {
			if e.ISSN == issn {
				return e.Quartile
			}
		}
	}
	if eissn != "" {
		for _, e := range ix.entries {
			if e.EISSN == eissn {
				return e.Quartile
			}
		}
	}
	return ""
}

// Search returns up to limit journals whose title contains the query,
// case-insensitively, in load order. Queries shorter than two characters
// return nothing.
func (ix *Index) Search(query string, limit int) []Entry {
	if len(ix.entries) == 0 || len(strings.TrimSpace(query)) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	var out []Entry
	for _, e := range ix.entries {
		if strings.Contains(strings.ToLower(e.Title), needle) {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
