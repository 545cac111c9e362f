package mongostore

import (
	"time"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

const (
	fieldBody      = "Body"
	fieldLink      = "Link"
	fieldIATACode  = "IATACode"
	fieldRSSSource = "rss_source"
)

// Published_Date - дата в том виде, в каком пришла из ленты
type newsDocument struct {
	Title                  string  `bson:"Title"`
	Body                   string  `bson:"Body"`
	Link                   string  `bson:"Link"`
	Author                 *string `bson:"Author,omitempty"`
	PublishedDate          *string `bson:"Published_Date"`
	PublishedDateFormatted *string `bson:"Published_Date_Formatted"`
	PublishedTime          *string `bson:"Published_Time"`
}

func toNewsDocument(r model.NewsRecord) newsDocument {
	return newsDocument{
		Title:                  r.Title,
		Body:                   r.Body,
		Link:                   r.Link,
		Author:                 r.Author,
		PublishedDate:          r.PublishedDateRaw,
		PublishedDateFormatted: r.PublishedDate,
		PublishedTime:          r.PublishedTime,
	}
}

func (d newsDocument) toModel() model.NewsRecord {
	return model.NewsRecord{
		Title:            d.Title,
		Body:             d.Body,
		Link:             d.Link,
		Author:           d.Author,
		PublishedDateRaw: d.PublishedDate,
		PublishedDate:    d.PublishedDateFormatted,
		PublishedTime:    d.PublishedTime,
	}
}

type airportDocument struct {
	IATACode    string `bson:"IATACode"`
	AirportName string `bson:"AirportName"`
	City        string `bson:"City"`
	CountryName string `bson:"CountryName"`
	TagList     string `bson:"TagList"`
}

type sourceDocument struct {
	Name      string    `bson:"name"`
	FeedURL   string    `bson:"rss_source"`
	CreatedAt time.Time `bson:"created_at"`
}
