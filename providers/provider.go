package providers

import (
	"context"
	"fmt"

	"pub-catalog/models"
)

// Provider is the interface every remote bibliographic backend implements.
type Provider interface {
	// SearchPublications runs a remote search and returns one page of
	// normalized records plus the backend's total hit count.
	SearchPublications(ctx context.Context, params models.SearchParams) ([]*models.Publication, int, error)

	// Name returns the provenance tag of the backend (e.g. "Scopus").
	Name() string
}

// RemoteSearchError wraps any transport, API or configuration failure of a
// remote backend. Callers fetching publication lists recover from it by
// falling back to the local store; author and citation lookups surface it.
type RemoteSearchError struct {
	Provider string
	Err      error
}

func (e *RemoteSearchError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Provider, e.Err)
}

func (e *RemoteSearchError) Unwrap() error {
	return e.Err
}
