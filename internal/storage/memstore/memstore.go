// Package memstore - хранилище в памяти для локального запуска и тестов.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type Store struct {
	mu       sync.RWMutex
	news     []model.NewsRecord
	links    map[string]struct{}
	airports map[string]model.Airport
	sources  []model.Source
}

func New() *Store {
	return &Store{
		links:    make(map[string]struct{}),
		airports: make(map[string]model.Airport),
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) DistinctLinks(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Keys(s.links), nil
}

// Записи с уже известной ссылкой пропускаются, как при уникальном индексе
func (s *Store) InsertMany(_ context.Context, records []model.NewsRecord) (int, error) {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted int
	for _, record := range records {
		record.Link = strings.TrimSpace(record.Link)
		if _, ok := s.links[record.Link]; ok {
			continue
		}

		record.MatchedTags = nil
		s.links[record.Link] = struct{}{}
		s.news = append(s.news, record)
		inserted++
	}

	return inserted, nil
}

func (s *Store) FindByAnyKeyword(_ context.Context, keywords []string) ([]model.NewsRecord, error) {
	lowered := lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		return strings.ToLower(k), k != ""
	})
	if len(lowered) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.news, func(record model.NewsRecord, _ int) bool {
		body := strings.ToLower(record.Body)
		return lo.SomeBy(lowered, func(k string) bool {
			return strings.Contains(body, k)
		})
	}), nil
}

func (s *Store) AirportByCode(_ context.Context, code string) (*model.Airport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	airport, ok := s.airports[code]
	if !ok {
		return nil, nil
	}

	return &airport, nil
}

func (s *Store) UpsertAirports(_ context.Context, airports []model.Airport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range airports {
		s.airports[a.IATACode] = a
	}

	return nil
}

func (s *Store) Sources(context.Context) ([]model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Source(nil), s.sources...), nil
}

func (s *Store) Add(_ context.Context, source model.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, found := lo.FindIndexOf(s.sources, func(src model.Source) bool {
		return src.FeedURL == source.FeedURL
	})
	if found {
		s.sources[idx].Name = source.Name
		return nil
	}

	s.sources = append(s.sources, source)

	return nil
}

func (s *Store) Delete(_ context.Context, feedURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.sources)
	s.sources = lo.Reject(s.sources, func(src model.Source, _ int) bool {
		return src.FeedURL == feedURL
	})

	return len(s.sources) < before, nil
}
