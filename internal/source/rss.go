package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/pubdate"
)

const DefaultUserAgent = "airport-news-feed/1.0 (+https://github.com/kovalyov-valentin/airport-news-feed)"

// Загрузчик RSS/Atom лент. Один на все источники, http клиент общий
type Loader struct {
	client    *http.Client
	userAgent string
	// Если у статьи в ленте нет текста, идем по ссылке и достаем текст со страницы
	enrichEmptyBodies bool
	log               logrus.FieldLogger
}

func NewLoader(client *http.Client, userAgent string, enrichEmptyBodies bool, log logrus.FieldLogger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Loader{
		client:            client,
		userAgent:         userAgent,
		enrichEmptyBodies: enrichEmptyBodies,
		log:               log.WithField("component", "source"),
	}
}

// Забирает ленту по url и превращает ее элементы в записи.
// Элементы без ссылки пропускаем, по ним запись не опознать.
func (l *Loader) Load(ctx context.Context, url string) ([]model.NewsRecord, error) {
	feed, err := l.loadFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	records := make([]model.NewsRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		record, ok := l.toRecord(item)
		if !ok {
			continue
		}

		if record.Body == "" && l.enrichEmptyBodies {
			record.Body = l.extractBody(ctx, record.Link)
		}

		records = append(records, record)
	}

	return records, nil
}

// Парсер gofeed хранит состояние внутри, поэтому на каждую загрузку создаем новый
func (l *Loader) loadFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	parser := gofeed.NewParser()
	parser.Client = l.client
	parser.UserAgent = l.userAgent

	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed %s: %w", url, err)
	}

	return feed, nil
}

func (l *Loader) toRecord(item *gofeed.Item) (model.NewsRecord, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return model.NewsRecord{}, false
	}

	// Текст берем из summary, если его нет - из content
	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}

	record := model.NewsRecord{
		Title:  strings.TrimSpace(item.Title),
		Body:   StripHTML(summary),
		Link:   link,
		Author: authorOf(item),
	}

	if raw := strings.TrimSpace(item.Published); raw != "" {
		record.PublishedDateRaw = lo.ToPtr(raw)
		record.PublishedDate, record.PublishedTime = pubdate.Normalize(raw)
	}

	return record, true
}

func authorOf(item *gofeed.Item) *string {
	authors := item.Authors
	if item.Author != nil {
		authors = append([]*gofeed.Person{item.Author}, authors...)
	}

	for _, person := range authors {
		if person == nil {
			continue
		}
		if name := strings.TrimSpace(person.Name); name != "" {
			return &name
		}
		if email := strings.TrimSpace(person.Email); email != "" {
			return &email
		}
	}

	return nil
}

// Убирает html разметку и оставляет только текст
func StripHTML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return strings.TrimSpace(src)
	}

	return strings.TrimSpace(doc.Text())
}

// Достает читаемый текст со страницы статьи. При любой ошибке возвращает пустую строку
func (l *Loader) extractBody(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		l.log.WithError(err).WithField("link", link).Debug("failed to fetch article page")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.log.WithFields(logrus.Fields{"link": link, "status": resp.StatusCode}).Debug("article page returned non-200")
		return ""
	}

	doc, err := readability.FromReader(io.LimitReader(resp.Body, maxPageSize), req.URL)
	if err != nil {
		l.log.WithError(err).WithField("link", link).Debug("failed to extract article text")
		return ""
	}

	return strings.TrimSpace(cleanText(doc.TextContent))
}

const maxPageSize = 5 << 20

// readability оставляет много пустых строк. Три и больше подряд схлопываем в одну
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return redundantNewLines.ReplaceAllString(text, "\n")
}
