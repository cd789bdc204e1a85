package scopus

// searchResponse is the top-level envelope of the Scopus Search API.
type searchResponse struct {
	SearchResults struct {
		TotalResults string  `json:"opensearch:totalResults"`
		Entry        []entry `json:"entry"`
	} `json:"search-results"`
}

// entry is a single search hit. Every field is optional in practice.
type entry struct {
	Identifier      string        `json:"dc:identifier"`
	EID             string        `json:"eid"`
	Title           string        `json:"dc:title"`
	Creator         string        `json:"dc:creator"`
	Description     string        `json:"dc:description"`
	PublicationName string        `json:"prism:publicationName"`
	CoverDate       string        `json:"prism:coverDate"`
	Volume          string        `json:"prism:volume"`
	IssueIdentifier string        `json:"prism:issueIdentifier"`
	PageRange       string        `json:"prism:pageRange"`
	DOI             string        `json:"prism:doi"`
	ISSN            string        `json:"prism:issn"`
	EISSN           string        `json:"prism:eIssn"`
	SubtypeDesc     string        `json:"subtypeDescription"`
	CitedByCount    string        `json:"citedby-count"`
	PubMedID        string        `json:"pubmed-id"`
	Links           []entryLink   `json:"link"`
	Affiliations    []affiliation `json:"affiliation"`
	Authors         []entryAuthor `json:"author"`
}

type entryLink struct {
	Ref  string `json:"@ref"`
	Href string `json:"@href"`
}

type affiliation struct {
	ID   string `json:"afid"`
	Name string `json:"affilname"`
}

type entryAuthor struct {
	AuthID    string `json:"authid"`
	GivenName string `json:"given-name"`
	Surname   string `json:"surname"`
}
