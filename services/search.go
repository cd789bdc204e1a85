package services

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pub-catalog/models"
	"pub-catalog/providers"
	"pub-catalog/store"
)

var (
	remoteSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_searches_total",
			Help: "Remote bibliographic API searches, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(remoteSearches)
}

// SearchService is the single entry point for publication list queries. It
// routes each request either to the remote backend or to the local store,
// never both: a remote page is returned as-is without local re-filtering,
// and a provenance set mixing remote and local tags is served remote-only.
type SearchService struct {
	Store  *store.MemoryStore
	Remote providers.Provider
	Logger *zap.Logger
}

// NewSearchService creates a new orchestrating search service.
func NewSearchService(st *store.MemoryStore, remote providers.Provider, logger *zap.Logger) *SearchService {
	return &SearchService{Store: st, Remote: remote, Logger: logger}
}

// wantsRemote reports whether the requested provenance set names the remote
// backend.
func (s *SearchService) wantsRemote(params *models.SearchParams) bool {
	if s.Remote == nil {
		return false
	}
	for _, db := range params.Database {
		if strings.EqualFold(db, s.Remote.Name()) {
			return true
		}
	}
	return false
}

// Search serves one list query. Remote failures are logged and silently
// degrade to local results; empty result sets are a normal outcome.
func (s *SearchService) Search(ctx context.Context, params models.SearchParams) *models.SearchResult {
	params.Normalize()

	if s.wantsRemote(&params) {
		pubs, total, err := s.Remote.SearchPublications(ctx, params)
		if err == nil {
			remoteSearches.WithLabelValues("ok").Inc()
			if pubs == nil {
				pubs = []*models.Publication{}
			}
			return &models.SearchResult{
				Data:   pubs,
				Total:  total,
				Source: s.Remote.Name() + " API",
			}
		}
		remoteSearches.WithLabelValues("fallback").Inc()
		s.Logger.Warn("Remote search failed, falling back to local store",
			zap.String("provider", s.Remote.Name()), zap.Error(err))
	}

	return s.Store.Search(params)
}
