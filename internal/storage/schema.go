package storage

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

// Билдер запросов с плейсхолдерами $1, $2... для postgres
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Уникальность ссылки держит индекс news_link_key, на нем же работает ON CONFLICT
var schema = []string{
	`CREATE TABLE IF NOT EXISTS news (
		id                 BIGSERIAL PRIMARY KEY,
		title              TEXT NOT NULL DEFAULT '',
		body               TEXT NOT NULL DEFAULT '',
		link               TEXT NOT NULL,
		author             TEXT,
		published_date_raw TEXT,
		published_date     TEXT,
		published_time     TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS news_link_key ON news (link)`,
	`CREATE TABLE IF NOT EXISTS sources (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		feed_url   TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS airports (
		iata_code    CHAR(3) PRIMARY KEY,
		airport_name TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL DEFAULT '',
		country_name TEXT NOT NULL DEFAULT '',
		tag_list     TEXT NOT NULL DEFAULT ''
	)`,
}

// Создает таблицы и индексы, если их еще нет
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return model.WrapStoreError("ensure schema", err)
		}
	}

	return nil
}

// Проверка соединения для health check
type Pinger struct {
	db *sqlx.DB
}

func NewPinger(db *sqlx.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return model.WrapStoreError("ping", p.db.PingContext(ctx))
}
