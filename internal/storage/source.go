package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

// Хранилище RSS источников в postgres
type SourcePostgresStorage struct {
	db *sqlx.DB
}

func NewSourcePostgresStorage(db *sqlx.DB) *SourcePostgresStorage {
	return &SourcePostgresStorage{db: db}
}

// Метод для получения списка источников
func (s *SourcePostgresStorage) Sources(ctx context.Context) ([]model.Source, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, model.WrapStoreError("list sources", err)
	}
	defer conn.Close()

	var sources []dbSource
	if err := conn.SelectContext(ctx, &sources, `SELECT name, feed_url, created_at FROM sources ORDER BY id`); err != nil {
		return nil, model.WrapStoreError("list sources", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

// Метод для добавления источника. Если такой url уже есть, обновляем имя
func (s *SourcePostgresStorage) Add(ctx context.Context, source model.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	query, args, err := psql.
		Insert("sources").
		Columns("name", "feed_url", "created_at").
		Values(source.Name, source.FeedURL, source.CreatedAt).
		Suffix("ON CONFLICT (feed_url) DO UPDATE SET name = EXCLUDED.name").
		ToSql()
	if err != nil {
		return model.WrapStoreError("add source", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.WrapStoreError("add source", err)
	}

	return nil
}

// Метод для удаления источника. Возвращает false, если такого источника не было
func (s *SourcePostgresStorage) Delete(ctx context.Context, feedURL string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE feed_url = $1`, feedURL)
	if err != nil {
		return false, model.WrapStoreError("delete source", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, model.WrapStoreError("delete source", err)
	}

	return n > 0, nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbSource struct {
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	CreatedAt time.Time `db:"created_at"`
}
