package server

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
	"github.com/kovalyov-valentin/airport-news-feed/internal/pubdate"
)

const (
	msgNoItems      = "No items found for the specified IATA code"
	msgStoreFailure = "News storage is temporarily unavailable"
)

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	code, res, err := s.feed(r)
	if err != nil {
		http.Error(w, msgStoreFailure, http.StatusInternalServerError)
		return
	}

	switch {
	case res.Status == newsfeed.StatusAirportNotFound:
		http.Error(w, fmt.Sprintf("Airport %s not found", code), http.StatusNotFound)
		return
	case res.Status == newsfeed.StatusNoTags:
		http.Error(w, fmt.Sprintf("Airport %s has no tags", code), http.StatusNotFound)
		return
	case len(res.Records) == 0:
		http.Error(w, msgNoItems, http.StatusNotFound)
		return
	}

	body, err := s.renderRSS(code, res.Records)
	if err != nil {
		s.log.WithError(err).WithField("iata", code).Error("failed to render rss")
		http.Error(w, "failed to render feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func (s *Server) renderRSS(code string, records []model.NewsRecord) (string, error) {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s Airport RSS Feed", code),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/%s", s.siteURL, code)},
		Description: fmt.Sprintf("News and updates related to %s airport", code),
		Updated:     s.now(),
	}

	feed.Items = lo.Map(records, func(record model.NewsRecord, _ int) *feeds.Item {
		item := &feeds.Item{
			Title:       record.Title,
			Link:        &feeds.Link{Href: record.Link},
			Description: itemDescription(record),
			Id:          record.Link,
		}
		if record.Author != nil {
			item.Author = &feeds.Author{Name: *record.Author}
		}
		if t, ok := publishedAt(record); ok {
			item.Created = t
		}
		return item
	})

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = "en"

	return feeds.ToXML(rss)
}

// Момент публикации. Исходная строка точнее: в ней есть смещение источника.
// Нормализованные дата и время без зоны идут в ход, только если ее не разобрать
func publishedAt(record model.NewsRecord) (time.Time, bool) {
	if record.PublishedDateRaw != nil {
		if t, ok := pubdate.Parse(*record.PublishedDateRaw); ok {
			return t, true
		}
	}

	if record.PublishedDate == nil {
		return time.Time{}, false
	}

	clock := "00:00:00"
	if record.PublishedTime != nil {
		clock = *record.PublishedTime
	}

	t, err := time.Parse(pubdate.DateLayout+" "+pubdate.TimeLayout, *record.PublishedDate+" "+clock)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Описание элемента ленты: текст с подсвеченными тегами и служебная информация
func itemDescription(record model.NewsRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>%s</p>", highlight(record.Body, record.MatchedTags))

	if len(record.MatchedTags) > 0 {
		escaped := lo.Map(record.MatchedTags, func(tag string, _ int) string { return html.EscapeString(tag) })
		fmt.Fprintf(&b, "<p><strong>Matched Tags:</strong> %s</p>", strings.Join(escaped, ", "))
	}

	fmt.Fprintf(&b, "<p><strong>Estimated Reading Time:</strong> %s</p>", ReadingTime(record.Body))

	if record.PublishedDate != nil {
		fmt.Fprintf(&b, "<p><strong>Published Date:</strong> %s</p>", html.EscapeString(*record.PublishedDate))
	}
	if record.PublishedTime != nil {
		fmt.Fprintf(&b, "<p><strong>Published Time:</strong> %s</p>", html.EscapeString(*record.PublishedTime))
	}

	return b.String()
}

// Экранирует текст и оборачивает вхождения тегов в <strong><u>...</u></strong> без учета регистра.
// Совпадения ищем в исходном тексте, иначе тег вроде "amp" попадет внутрь &amp;
func highlight(text string, tags []string) string {
	patterns := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return regexp.QuoteMeta(tag), tag != ""
	})
	if len(patterns) == 0 {
		return html.EscapeString(text)
	}

	// Длинные теги первыми, чтобы "Istanbul Airport" не разбился на "Istanbul"
	sort.SliceStable(patterns, func(i, j int) bool { return len(patterns[i]) > len(patterns[j]) })

	re, err := regexp.Compile(`(?i)` + strings.Join(patterns, "|"))
	if err != nil {
		return html.EscapeString(text)
	}

	var (
		b    strings.Builder
		last int
	)
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString("<strong><u>")
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString("</u></strong>")
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))

	return b.String()
}
