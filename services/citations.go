package services

import (
	"fmt"
	"strings"

	"pub-catalog/models"
)

// CitationStyle selects the bibliographic string format.
type CitationStyle string

const (
	StyleGOST    CitationStyle = "GOST" // GOST R 7.0.100-2018
	StyleAPA     CitationStyle = "APA"
	StyleMLA     CitationStyle = "MLA"
	StyleChicago CitationStyle = "CHICAGO"
	StyleHarvard CitationStyle = "HARVARD"
	StyleBibTeX  CitationStyle = "BIBTEX"
)

// splitAuthors splits the comma-separated author string into trimmed names.
func splitAuthors(authors string) []string {
	if authors == "" {
		return nil
	}
	parts := strings.Split(authors, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// initialsFirst converts "Surname Initials" into "Initials Surname". The
// first whitespace-delimited token counts as the surname; single-token names
// pass through unchanged.
func initialsFirst(author string) string {
	parts := strings.Fields(author)
	if len(parts) >= 2 {
		return strings.Join(parts[1:], " ") + " " + parts[0]
	}
	return author
}

// FormatGOST renders a publication per GOST R 7.0.100-2018. Every segment
// after the first author is appended only when its source field is present.
func FormatGOST(p *models.Publication) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	authors := splitAuthors(p.Authors)
	if len(authors) > 0 {
		b.WriteString(authors[0])
	}

	if p.Title != "" {
		fmt.Fprintf(&b, ", %s / ", p.Title)
	}

	if len(authors) > 0 {
		formatted := make([]string, len(authors))
		for i, a := range authors {
			formatted[i] = initialsFirst(a)
		}
		b.WriteString(strings.Join(formatted, ", "))
	}

	b.WriteString(" // ")

	if p.Journal != "" {
		b.WriteString(p.Journal)
	}
	if p.Year != 0 {
		fmt.Fprintf(&b, ", %d", p.Year)
	}
	if p.Volume != "" {
		fmt.Fprintf(&b, ", т. %s", p.Volume)
	}
	if p.Issue != "" {
		fmt.Fprintf(&b, ", № %s", p.Issue)
	}
	if p.Pages != "" {
		fmt.Fprintf(&b, ", с. %s", p.Pages)
	}
	if p.DOI != "" {
		fmt.Fprintf(&b, ", doi: %s", p.DOI)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, " (%s)", p.Category)
	}
	return b.String()
}

// FormatAPA renders a publication in APA style.
func FormatAPA(p *models.Publication) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	if authors := splitAuthors(p.Authors); len(authors) > 0 {
		b.WriteString(strings.Join(authors, ", "))
	}
	if p.Year != 0 {
		fmt.Fprintf(&b, " (%d). ", p.Year)
	}
	if p.Title != "" {
		fmt.Fprintf(&b, "%s. ", p.Title)
	}
	if p.Journal != "" {
		b.WriteString(p.Journal)
		if p.Volume != "" {
			fmt.Fprintf(&b, ", %s", p.Volume)
			if p.Issue != "" {
				fmt.Fprintf(&b, "(%s)", p.Issue)
			}
		}
		if p.Pages != "" {
			fmt.Fprintf(&b, ", %s", p.Pages)
		}
		b.WriteString(".")
	}
	if p.DOI != "" {
		fmt.Fprintf(&b, " https://doi.org/%s", p.DOI)
	}
	return b.String()
}

// bibtexEntryType maps the publication type to a BibTeX entry type.
func bibtexEntryType(pubType string) string {
	switch pubType {
	case "article":
		return "@article"
	case "book":
		return "@book"
	case "patent":
		return "@patent"
	case "dissertation":
		return "@phdthesis"
	}
	return "@misc"
}

// FormatBibTeX renders a publication as a BibTeX entry. The citation key is
// <first author's first token><year><first title word lowercased>.
func FormatBibTeX(p *models.Publication) string {
	if p == nil {
		return ""
	}

	firstAuthor := ""
	if authors := splitAuthors(p.Authors); len(authors) > 0 {
		if tokens := strings.Fields(authors[0]); len(tokens) > 0 {
			firstAuthor = tokens[0]
		}
	}
	firstWord := ""
	if tokens := strings.Fields(p.Title); len(tokens) > 0 {
		firstWord = strings.ToLower(tokens[0])
	}
	key := fmt.Sprintf("%s%d%s", firstAuthor, p.Year, firstWord)

	var b strings.Builder
	fmt.Fprintf(&b, "%s{%s,\n", bibtexEntryType(p.Type), key)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
		}
	}
	field("author", p.Authors)
	field("title", p.Title)
	field("journal", p.Journal)
	if p.Year != 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", p.Year)
	}
	field("volume", p.Volume)
	field("number", p.Issue)
	field("pages", p.Pages)
	field("doi", p.DOI)
	field("url", p.URL)
	if p.Category != "" {
		note := p.Category
		if p.Database != "" {
			note += ", " + p.Database
		}
		field("note", note)
	}
	b.WriteString("}")
	return b.String()
}

// FormatCitation renders a publication in the requested style. Styles
// without a dedicated renderer fall back to GOST.
func FormatCitation(p *models.Publication, style CitationStyle) string {
	switch style {
	case StyleAPA:
		return FormatAPA(p)
	case StyleBibTeX:
		return FormatBibTeX(p)
	default:
		return FormatGOST(p)
	}
}
