package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pub-catalog/models"
	"pub-catalog/store"
)

// fakeProvider is a canned remote backend.
type fakeProvider struct {
	pubs   []*models.Publication
	total  int
	err    error
	called int
}

func (f *fakeProvider) SearchPublications(ctx context.Context, params models.SearchParams) ([]*models.Publication, int, error) {
	f.called++
	return f.pubs, f.total, f.err
}

func (f *fakeProvider) Name() string { return "Scopus" }

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	s.Create(models.PublicationInput{Title: "Local record", Authors: "Ivanov I.I.", Year: 2022, Database: "eLIBRARY"})
	s.Create(models.PublicationInput{Title: "Another local record", Authors: "Petrov P.P.", Year: 2023, Database: "Scopus"})
	return s
}

func TestSearchLocalByDefault(t *testing.T) {
	remote := &fakeProvider{err: errors.New("should not be called")}
	svc := NewSearchService(newTestStore(t), remote, zap.NewNop())

	res := svc.Search(context.Background(), models.SearchParams{})
	assert.Equal(t, 2, res.Total)
	assert.Empty(t, res.Source)
	assert.Zero(t, remote.called)
}

func TestSearchRoutesToRemoteOnProvenanceTag(t *testing.T) {
	remote := &fakeProvider{
		pubs: []*models.Publication{
			{PublicationInput: models.PublicationInput{Title: "Remote hit", Authors: "Doe J.", Year: 2024}},
		},
		total: 1500,
	}
	svc := NewSearchService(newTestStore(t), remote, zap.NewNop())

	res := svc.Search(context.Background(), models.SearchParams{Database: []string{"scopus"}})
	require.Equal(t, 1, remote.called)
	assert.Equal(t, "Scopus API", res.Source)
	assert.Equal(t, 1500, res.Total)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Remote hit", res.Data[0].Title)
}

func TestSearchRemoteOnlyEvenWithMixedTags(t *testing.T) {
	remote := &fakeProvider{total: 3}
	svc := NewSearchService(newTestStore(t), remote, zap.NewNop())

	res := svc.Search(context.Background(), models.SearchParams{Database: []string{"eLIBRARY", "Scopus"}})
	assert.Equal(t, 1, remote.called)
	assert.Equal(t, "Scopus API", res.Source)
	assert.Equal(t, 3, res.Total)
	// A nil remote page is still an empty list, never null.
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestSearchFallsBackToLocalOnRemoteError(t *testing.T) {
	remote := &fakeProvider{err: errors.New("scopus API error: status 500")}
	svc := NewSearchService(newTestStore(t), remote, zap.NewNop())

	res := svc.Search(context.Background(), models.SearchParams{Database: []string{"Scopus"}})
	assert.Equal(t, 1, remote.called)
	assert.Empty(t, res.Source)
	// The local store still applies the provenance filter.
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Another local record", res.Data[0].Title)
}

func TestSearchWithoutRemoteBackend(t *testing.T) {
	svc := NewSearchService(newTestStore(t), nil, zap.NewNop())

	res := svc.Search(context.Background(), models.SearchParams{Database: []string{"Scopus"}})
	assert.Equal(t, 1, res.Total)
	assert.Empty(t, res.Source)
}
