package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type AirportPostgresStorage struct {
	db *sqlx.DB
}

func NewAirportStorage(db *sqlx.DB) *AirportPostgresStorage {
	return &AirportPostgresStorage{db: db}
}

// Профиль аэропорта по IATA коду. Если его нет, возвращает nil, nil
func (s *AirportPostgresStorage) AirportByCode(ctx context.Context, code string) (*model.Airport, error) {
	query, args, err := psql.
		Select("iata_code", "airport_name", "city", "country_name", "tag_list").
		From("airports").
		Where("iata_code = ?", code).
		ToSql()
	if err != nil {
		return nil, model.WrapStoreError("airport by code", err)
	}

	var airport dbAirport
	if err := s.db.GetContext(ctx, &airport, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, model.WrapStoreError("airport by code", err)
	}

	return (*model.Airport)(&airport), nil
}

// Загружает справочник аэропортов. Существующие коды перезаписываются
func (s *AirportPostgresStorage) UpsertAirports(ctx context.Context, airports []model.Airport) error {
	if len(airports) == 0 {
		return nil
	}

	// В одном INSERT ... ON CONFLICT код не может встретиться дважды
	airports = lo.UniqBy(airports, func(a model.Airport) string { return a.IATACode })

	q := psql.Insert("airports").Columns("iata_code", "airport_name", "city", "country_name", "tag_list")
	for _, a := range airports {
		q = q.Values(a.IATACode, a.AirportName, a.City, a.CountryName, a.TagList)
	}

	query, args, err := q.Suffix(`ON CONFLICT (iata_code) DO UPDATE SET
		airport_name = EXCLUDED.airport_name,
		city = EXCLUDED.city,
		country_name = EXCLUDED.country_name,
		tag_list = EXCLUDED.tag_list`).ToSql()
	if err != nil {
		return model.WrapStoreError("upsert airports", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.WrapStoreError("upsert airports", err)
	}

	return nil
}

type dbAirport struct {
	IATACode    string `db:"iata_code"`
	AirportName string `db:"airport_name"`
	City        string `db:"city"`
	CountryName string `db:"country_name"`
	TagList     string `db:"tag_list"`
}
