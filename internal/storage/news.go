package storage

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

// Сколько строк вставляем одним INSERT. Postgres ограничивает число параметров в запросе
const insertChunkSize = 500

type NewsPostgresStorage struct {
	db *sqlx.DB
}

func NewNewsStorage(db *sqlx.DB) *NewsPostgresStorage {
	return &NewsPostgresStorage{db: db}
}

// Все ссылки, которые уже лежат в базе
func (s *NewsPostgresStorage) DistinctLinks(ctx context.Context) ([]string, error) {
	var links []string
	if err := s.db.SelectContext(ctx, &links, `SELECT DISTINCT link FROM news`); err != nil {
		return nil, model.WrapStoreError("distinct links", err)
	}

	return links, nil
}

// Вставляет записи пачками. Записи с уже существующей ссылкой молча пропускаются.
// Возвращает сколько строк реально вставилось.
func (s *NewsPostgresStorage) InsertMany(ctx context.Context, records []model.NewsRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, model.WrapStoreError("insert news", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var inserted int64
	for _, chunk := range lo.Chunk(records, insertChunkSize) {
		query, args, err := insertNewsQuery(chunk).ToSql()
		if err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, model.WrapStoreError("insert news", err)
	}

	return int(inserted), nil
}

func insertNewsQuery(records []model.NewsRecord) sq.InsertBuilder {
	q := psql.Insert("news").Columns(
		"title", "body", "link", "author",
		"published_date_raw", "published_date", "published_time",
	)

	for _, r := range records {
		q = q.Values(
			r.Title, r.Body, strings.TrimSpace(r.Link), r.Author,
			r.PublishedDateRaw, r.PublishedDate, r.PublishedTime,
		)
	}

	return q.Suffix("ON CONFLICT (link) DO NOTHING")
}

// Записи, в тексте которых есть хотя бы одно ключевое слово, без учета регистра
func (s *NewsPostgresStorage) FindByAnyKeyword(ctx context.Context, keywords []string) ([]model.NewsRecord, error) {
	keywords = lo.Filter(keywords, func(k string, _ int) bool { return k != "" })
	if len(keywords) == 0 {
		return nil, nil
	}

	query, args, err := findByKeywordsQuery(keywords).ToSql()
	if err != nil {
		return nil, model.WrapStoreError("find news", err)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, model.WrapStoreError("find news", err)
	}
	defer conn.Close()

	var rows []dbNews
	if err := conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, model.WrapStoreError("find news", err)
	}

	return lo.Map(rows, func(row dbNews, _ int) model.NewsRecord {
		return row.toModel()
	}), nil
}

func findByKeywordsQuery(keywords []string) sq.SelectBuilder {
	conditions := lo.Map(keywords, func(k string, _ int) sq.Sqlizer {
		return sq.ILike{"body": "%" + escapeLike(k) + "%"}
	})

	return psql.
		Select("title", "body", "link", "author", "published_date_raw", "published_date", "published_time").
		From("news").
		Where(sq.Or(conditions)).
		OrderBy("id")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Экранирует спецсимволы LIKE, чтобы ключевое слово искалось как есть
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type dbNews struct {
	Title            string  `db:"title"`
	Body             string  `db:"body"`
	Link             string  `db:"link"`
	Author           *string `db:"author"`
	PublishedDateRaw *string `db:"published_date_raw"`
	PublishedDate    *string `db:"published_date"`
	PublishedTime    *string `db:"published_time"`
}

func (n dbNews) toModel() model.NewsRecord {
	return model.NewsRecord{
		Title:            n.Title,
		Body:             n.Body,
		Link:             n.Link,
		Author:           n.Author,
		PublishedDateRaw: n.PublishedDateRaw,
		PublishedDate:    n.PublishedDate,
		PublishedTime:    n.PublishedTime,
	}
}
