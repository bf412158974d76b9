package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
)

const (
	searchCacheTTL   = 15 * time.Minute
	minQueryLength   = 2
	maxSearchResults = 5
)

// SearchService resolves free-text place queries through the geocoding
// collaborator. Input debouncing happens at the session event layer; the
// geocoder adapter enforces the outbound rate floor. This service only
// validates, caches, and caps.
type SearchService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewSearchService creates a new SearchService. cache may be nil.
func NewSearchService(geocoder ports.Geocoder, cache ports.CacheService) *SearchService {
	return &SearchService{geocoder: geocoder, cache: cache}
}

// Search returns up to five candidate places for query. Queries shorter
// than two characters return no results without a remote call.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return nil, nil
	}

	cacheKey := "geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var results []domain.GeocodeResult
			if err := json.Unmarshal(data, &results); err == nil {
				return results, nil
			}
		}
	}

	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	if s.cache != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, searchCacheTTL)
		}
	}
	return results, nil
}
