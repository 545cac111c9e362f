package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const snippetLength = 320

type pageItem struct {
	Title       string
	Link        string
	Author      string
	Published   string
	ReadingTime string
	Snippet     string
	MatchedTags []string
}

type airportPage struct {
	Code    string
	Airport *model.Airport
	Tags    []string
	FeedURL string
	Items   []pageItem
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", struct{ SiteURL string }{s.siteURL})
}

func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	code, res, err := s.feed(r)
	if err != nil {
		http.Error(w, msgStoreFailure, http.StatusInternalServerError)
		return
	}

	switch res.Status {
	case newsfeed.StatusAirportNotFound:
		http.Error(w, fmt.Sprintf("Airport %s not found", code), http.StatusNotFound)
		return
	case newsfeed.StatusNoTags:
		http.Error(w, fmt.Sprintf("Airport %s has no tags", code), http.StatusNotFound)
		return
	}

	s.render(w, "airport.html", airportPage{
		Code:    code,
		Airport: res.Airport,
		Tags:    res.Tags,
		FeedURL: fmt.Sprintf("%s/rss/%s", s.siteURL, code),
		Items:   lo.Map(res.Records, func(r model.NewsRecord, _ int) pageItem { return toPageItem(r) }),
	})
}

// Рендерим в буфер, чтобы при ошибке шаблона не отдать половину страницы
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.WithError(err).WithField("template", name).Error("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func toPageItem(r model.NewsRecord) pageItem {
	published := strings.TrimSpace(lo.FromPtr(r.PublishedDate) + " " + lo.FromPtr(r.PublishedTime))

	return pageItem{
		Title:       r.Title,
		Link:        r.Link,
		Author:      lo.FromPtr(r.Author),
		Published:   published,
		ReadingTime: ReadingTime(r.Body),
		Snippet:     snippet(r.Body, snippetLength),
		MatchedTags: r.MatchedTags,
	}
}

// Обрезает текст по границе слова
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	cut := string([]rune(text)[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}

	return cut + "…"
}
