package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Новость, которую мы забрали из RSS ленты и храним в базе.
// Link - ключ записи, в хранилище он уникален.
type NewsRecord struct {
	Title string
	// Текст без html разметки
	Body string
	Link string
	// Автор, если лента его отдает
	Author *string
	// Дата публикации в том виде, в каком она пришла из ленты
	PublishedDateRaw *string
	// YYYY-MM-DD
	PublishedDate *string
	// HH:MM:SS
	PublishedTime *string

	// Теги аэропорта, которые совпали с текстом. Считаются на каждый запрос и не сохраняются
	MatchedTags []string
}

var ErrInvalidLink = errors.New("invalid link")

// Проверка записи перед сохранением
func (r NewsRecord) Validate() error {
	link := strings.TrimSpace(r.Link)
	if link == "" {
		return fmt.Errorf("%w: empty", ErrInvalidLink)
	}

	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http url", ErrInvalidLink, link)
	}

	return nil
}

// Профиль аэропорта
type Airport struct {
	// IATA код, три заглавные буквы
	IATACode    string
	AirportName string
	City        string
	CountryName string
	// Ключевые слова через разделитель (",", ";" или "|")
	TagList string
}

// Разделители, которые встречаются в списке тегов
const tagSeparators = ",;|"

// Разбивает TagList на отдельные теги.
// Пустые и повторяющиеся значения выкидываем, порядок и регистр сохраняем.
// Если TagList не заполнен, теги берутся из полей профиля (см. DefaultTagList).
func (a Airport) Tags() []string {
	list := a.TagList
	if strings.TrimSpace(list) == "" {
		list = a.DefaultTagList()
	}

	parts := strings.FieldsFunc(list, func(r rune) bool {
		return strings.ContainsRune(tagSeparators, r)
	})

	tags := lo.FilterMap(parts, func(part string, _ int) (string, bool) {
		tag := strings.TrimSpace(part)
		return tag, tag != ""
	})

	return lo.Uniq(tags)
}

// Собирает TagList из полей профиля, если в справочнике он не задан
func (a Airport) DefaultTagList() string {
	fields := lo.Filter(
		[]string{a.IATACode, a.AirportName, a.CountryName, a.City},
		func(s string, _ int) bool { return strings.TrimSpace(s) != "" },
	)

	return strings.Join(fields, ",")
}

// Модель источника
type Source struct {
	// Имя
	Name string
	// Урл откуда забираем данные
	FeedURL string
	// Время создания
	CreatedAt time.Time
}

// Ошибка хранилища. Op - операция, на которой все упало
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Оборачивает ошибку в StoreError. nil остается nil
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}
