// Package dedupe отсеивает записи, ссылки на которые уже есть в хранилище.
package dedupe

import (
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

// FilterNew возвращает записи, ссылок на которые нет в existing. Порядок сохраняется.
// Повторы внутри самой пачки здесь не убираем, их отсекает уникальный индекс хранилища.
func FilterNew(records []model.NewsRecord, existing []string) []model.NewsRecord {
	// Сет, чтобы быстро проверять есть ли ссылка в базе
	known := set.New(existing...)

	return lo.Filter(records, func(record model.NewsRecord, _ int) bool {
		return !known.Contains(record.Link)
	})
}
