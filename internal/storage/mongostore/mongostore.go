// Package mongostore хранит новости, источники и аэропорты в MongoDB.
// Имена полей совместимы с уже собранной базой новостей.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

const duplicateKeyCode = 11000

type Config struct {
	URI                string
	Database           string
	NewsCollection     string
	AirportsCollection string
	SourcesCollection  string
}

type Store struct {
	client   *mongo.Client
	news     *mongo.Collection
	airports *mongo.Collection
	sources  *mongo.Collection
}

// Подключается к базе и создает уникальные индексы
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, model.WrapStoreError("connect", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, model.WrapStoreError("connect", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		news:     db.Collection(cfg.NewsCollection),
		airports: db.Collection(cfg.AirportsCollection),
		sources:  db.Collection(cfg.SourcesCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		field string
	}{
		{s.news, fieldLink},
		{s.airports, fieldIATACode},
		{s.sources, fieldRSSSource},
	}

	for _, idx := range indexes {
		_, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return model.WrapStoreError(fmt.Sprintf("create index %s.%s", idx.coll.Name(), idx.field), err)
		}
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return model.WrapStoreError("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) DistinctLinks(ctx context.Context) ([]string, error) {
	values, err := s.news.Distinct(ctx, fieldLink, bson.D{})
	if err != nil {
		return nil, model.WrapStoreError("distinct links", err)
	}

	return lo.FilterMap(values, func(v interface{}, _ int) (string, bool) {
		link, ok := v.(string)
		return link, ok
	}), nil
}

// Вставка без упорядочивания: дубликаты по Link отбрасывает уникальный индекс,
// остальные документы все равно вставляются
func (s *Store) InsertMany(ctx context.Context, records []model.NewsRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return 0, model.WrapStoreError("insert news", err)
		}
		docs = append(docs, toNewsDocument(record))
	}

	_, err := s.news.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))

	return insertedCount(len(docs), err)
}

// Сколько документов вставилось с учетом ошибок дубликатов.
// Любая другая ошибка записи возвращается как есть.
func insertedCount(total int, err error) (int, error) {
	if err == nil {
		return total, nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || bulkErr.WriteConcernError != nil {
		return 0, model.WrapStoreError("insert news", err)
	}

	for _, writeErr := range bulkErr.WriteErrors {
		if writeErr.Code != duplicateKeyCode {
			return 0, model.WrapStoreError("insert news", err)
		}
	}

	return total - len(bulkErr.WriteErrors), nil
}

func (s *Store) FindByAnyKeyword(ctx context.Context, keywords []string) ([]model.NewsRecord, error) {
	filter, ok := keywordFilter(keywords)
	if !ok {
		return nil, nil
	}

	cursor, err := s.news.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, model.WrapStoreError("find news", err)
	}
	defer cursor.Close(ctx)

	var docs []newsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, model.WrapStoreError("find news", err)
	}

	return lo.Map(docs, func(doc newsDocument, _ int) model.NewsRecord {
		return doc.toModel()
	}), nil
}

// Фильтр "Body содержит хотя бы одно слово" без учета регистра
func keywordFilter(keywords []string) (bson.M, bool) {
	conditions := lo.FilterMap(keywords, func(k string, _ int) (interface{}, bool) {
		if k == "" {
			return nil, false
		}
		return bson.M{fieldBody: primitive.Regex{Pattern: regexp.QuoteMeta(k), Options: "i"}}, true
	})
	if len(conditions) == 0 {
		return nil, false
	}

	return bson.M{"$or": bson.A(conditions)}, true
}

func (s *Store) AirportByCode(ctx context.Context, code string) (*model.Airport, error) {
	var doc airportDocument
	err := s.airports.FindOne(ctx, bson.M{fieldIATACode: code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, model.WrapStoreError("airport by code", err)
	}

	return lo.ToPtr(model.Airport(doc)), nil
}

func (s *Store) UpsertAirports(ctx context.Context, airports []model.Airport) error {
	if len(airports) == 0 {
		return nil
	}

	writes := lo.Map(airports, func(a model.Airport, _ int) mongo.WriteModel {
		return mongo.NewReplaceOneModel().
			SetFilter(bson.M{fieldIATACode: a.IATACode}).
			SetReplacement(airportDocument(a)).
			SetUpsert(true)
	})

	if _, err := s.airports.BulkWrite(ctx, writes); err != nil {
		return model.WrapStoreError("upsert airports", err)
	}

	return nil
}

func (s *Store) Sources(ctx context.Context) ([]model.Source, error) {
	cursor, err := s.sources.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, model.WrapStoreError("list sources", err)
	}
	defer cursor.Close(ctx)

	var docs []sourceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, model.WrapStoreError("list sources", err)
	}

	return lo.FilterMap(docs, func(doc sourceDocument, _ int) (model.Source, bool) {
		return model.Source(doc), doc.FeedURL != ""
	}), nil
}

func (s *Store) Add(ctx context.Context, source model.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	_, err := s.sources.UpdateOne(ctx,
		bson.M{fieldRSSSource: source.FeedURL},
		bson.M{
			"$set":         bson.M{"name": source.Name},
			"$setOnInsert": bson.M{"created_at": source.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return model.WrapStoreError("add source", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, feedURL string) (bool, error) {
	res, err := s.sources.DeleteOne(ctx, bson.M{fieldRSSSource: feedURL})
	if err != nil {
		return false, model.WrapStoreError("delete source", err)
	}

	return res.DeletedCount > 0, nil
}
