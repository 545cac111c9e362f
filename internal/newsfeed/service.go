// Package newsfeed собирает ленту новостей для конкретного аэропорта.
package newsfeed

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type AirportProvider interface {
	AirportByCode(ctx context.Context, code string) (*model.Airport, error)
}

type NewsFinder interface {
	FindByAnyKeyword(ctx context.Context, keywords []string) ([]model.NewsRecord, error)
}

type TagMatcher interface {
	Match(body string, tags []string) []string
}

type Status int

const (
	StatusFound Status = iota
	StatusAirportNotFound
	StatusNoTags
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAirportNotFound:
		return "airport_not_found"
	case StatusNoTags:
		return "no_tags"
	default:
		return "unknown"
	}
}

type Result struct {
	Status  Status
	Airport *model.Airport
	Tags    []string
	Records []model.NewsRecord
}

type Service struct {
	airports   AirportProvider
	news       NewsFinder
	matcher    TagMatcher
	sortByDate bool
	log        logrus.FieldLogger
}

func NewService(airports AirportProvider, news NewsFinder, matcher TagMatcher, sortByDate bool, log logrus.FieldLogger) *Service {
	return &Service{
		airports:   airports,
		news:       news,
		matcher:    matcher,
		sortByDate: sortByDate,
		log:        log.WithField("component", "newsfeed"),
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Feed возвращает новости, в которых упоминается аэропорт.
// Неизвестный аэропорт и аэропорт без тегов - это статусы, а не ошибки.
// Ошибка возвращается только при недоступном хранилище.
func (s *Service) Feed(ctx context.Context, code string) (Result, error) {
	code = NormalizeCode(code)

	airport, err := s.airports.AirportByCode(ctx, code)
	if err != nil {
		return Result{}, model.WrapStoreError("airport by code", err)
	}
	if airport == nil {
		return Result{Status: StatusAirportNotFound}, nil
	}

	tags := airport.Tags()
	if len(tags) == 0 {
		return Result{Status: StatusNoTags, Airport: airport}, nil
	}

	// Грубая выборка в хранилище, точное сопоставление делает matcher
	records, err := s.news.FindByAnyKeyword(ctx, tags)
	if err != nil {
		return Result{}, model.WrapStoreError("find news", err)
	}

	for i := range records {
		records[i].MatchedTags = s.matcher.Match(records[i].Body, tags)
	}

	if s.sortByDate {
		SortByPublished(records)
	}

	s.log.WithFields(logrus.Fields{
		"iata":    code,
		"tags":    len(tags),
		"records": len(records),
	}).Debug("feed assembled")

	return Result{
		Status:  StatusFound,
		Airport: airport,
		Tags:    tags,
		Records: records,
	}, nil
}

// Сортирует по дате, затем по времени публикации от новых к старым.
// Записи без даты уходят в конец, порядок равных сохраняется.
func SortByPublished(records []model.NewsRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]

		if (a.PublishedDate == nil) != (b.PublishedDate == nil) {
			return a.PublishedDate != nil
		}
		if a.PublishedDate == nil {
			return false
		}
		if *a.PublishedDate != *b.PublishedDate {
			return *a.PublishedDate > *b.PublishedDate
		}

		return deref(a.PublishedTime) > deref(b.PublishedTime)
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
