// internal/repository/search.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/metrics"
	"dogwalk-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultWalkerIndex = "walkers"

// WalkerSearch keeps a geo index of walkers in elasticsearch so large pools
// can be narrowed to walkers near a request before scoring.
type WalkerSearch struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewWalkerSearch(client *elasticsearch.Client, index string, log logger.Logger) *WalkerSearch {
	if index == "" {
		index = DefaultWalkerIndex
	}
	return &WalkerSearch{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "walker-search", "index": index}),
	}
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type walkerDocument struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	ExperienceLevel string    `json:"experienceLevel"`
	HourlyRate      float64   `json:"hourlyRate"`
	MaxDistanceKm   float64   `json:"maxDistanceKm"`
	Location        *geoPoint `json:"location,omitempty"`
}

// IndexWalker upserts the walker's search document.
func (s *WalkerSearch) IndexWalker(ctx context.Context, w models.WalkerProfile) error {
	doc := walkerDocument{
		ID:              w.ID,
		FullName:        w.FullName,
		ExperienceLevel: string(w.Experience),
		HourlyRate:      w.HourlyRate,
		MaxDistanceKm:   w.MaxDistanceKm,
	}
	if w.Location != nil {
		doc.Location = &geoPoint{Lat: w.Location.Latitude, Lon: w.Location.Longitude}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(s.index, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: w.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(s.index, responseError(res))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// maxSearchWindow is elasticsearch's default index.max_result_window.
const maxSearchWindow = 10000

// NearbyWalkerIDs returns which of ids the index places within radiusKm of
// point, nearest first.
func (s *WalkerSearch) NearbyWalkerIDs(ctx context.Context, point models.Coordinate, radiusKm float64, ids []string) ([]string, error) {
	origin := geoPoint{Lat: point.Latitude, Lon: point.Longitude}
	query := map[string]interface{}{
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"ids": map[string]interface{}{"values": ids}},
					map[string]interface{}{
						"geo_distance": map[string]interface{}{
							"distance": fmt.Sprintf("%gkm", radiusKm),
							"location": origin,
						},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": origin,
					"order":    "asc",
					"unit":     "km",
				},
			},
		},
	}
	return s.searchIDs(ctx, query, len(ids))
}

// LocatedWalkerIDs returns which of ids have a location in the index.
func (s *WalkerSearch) LocatedWalkerIDs(ctx context.Context, ids []string) ([]string, error) {
	query := map[string]interface{}{
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"ids": map[string]interface{}{"values": ids}},
					map[string]interface{}{"exists": map[string]interface{}{"field": "location"}},
				},
			},
		},
	}
	return s.searchIDs(ctx, query, len(ids))
}

func (s *WalkerSearch) searchIDs(ctx context.Context, query map[string]interface{}, size int) ([]string, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(s.index, responseError(res))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}

	found := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		found = append(found, h.ID)
	}
	return found, nil
}

// Narrow drops pool walkers the index places farther than radiusKm from the
// request. Walkers without a location, and walkers the index has no located
// document for, are kept. A request without a location, or any search
// failure, returns the pool unchanged.
func (s *WalkerSearch) Narrow(ctx context.Context, pool []models.WalkerProfile, request models.WalkRequest, radiusKm float64) []models.WalkerProfile {
	if request.Location == nil || radiusKm <= 0 {
		return pool
	}

	located := make([]string, 0, len(pool))
	for _, w := range pool {
		if w.Location != nil {
			located = append(located, w.ID)
		}
	}
	if len(located) == 0 || len(located) > maxSearchWindow {
		return pool
	}

	indexed, err := s.LocatedWalkerIDs(ctx, located)
	if err != nil {
		return s.fallback(pool, request, err)
	}
	if len(indexed) == 0 {
		return pool
	}
	nearby, err := s.NearbyWalkerIDs(ctx, *request.Location, radiusKm, indexed)
	if err != nil {
		return s.fallback(pool, request, err)
	}

	far := make(map[string]bool, len(indexed))
	for _, id := range indexed {
		far[id] = true
	}
	for _, id := range nearby {
		delete(far, id)
	}

	narrowed := make([]models.WalkerProfile, 0, len(pool))
	for _, w := range pool {
		if !far[w.ID] {
			narrowed = append(narrowed, w)
		}
	}

	s.logger.Debug("walker pool narrowed", map[string]interface{}{
		"requestId": request.ID,
		"poolSize":  len(pool),
		"dropped":   len(pool) - len(narrowed),
		"radiusKm":  radiusKm,
	})
	return narrowed
}

func (s *WalkerSearch) fallback(pool []models.WalkerProfile, request models.WalkRequest, err error) []models.WalkerProfile {
	metrics.WalkerSearchFallbacks.Inc()
	s.logger.Warn("walker search failed, using full pool", map[string]interface{}{
		"requestId": request.ID,
		"error":     err,
	})
	return pool
}

func responseError(res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s", res.Status(), bytes.TrimSpace(msg))
}
