// Package pubdate приводит даты публикации из RSS лент к единому виду.
package pubdate

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Короткие числа вроде "1234" dateparse принимает за год. Датой публикации это не считаем
const minNumericLength = 5

// Parse разбирает дату публикации в любом из распространенных форматов.
// Смещение источника сохраняется; строки без зоны считаются UTC. Никогда не паникует.
func Parse(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || isShortNumber(raw) {
		return time.Time{}, false
	}

	// Парсер бывает падает на совсем кривых строках
	defer func() {
		if p := recover(); p != nil {
			t, ok = time.Time{}, false
		}
	}()

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Normalize возвращает дату (YYYY-MM-DD) и время (HH:MM:SS) публикации.
// Если строка пустая или не разбирается, возвращает nil, nil.
// Время остается в часовом поясе источника, в UTC не переводим.
func Normalize(raw string) (date, clock *string) {
	t, ok := Parse(raw)
	if !ok {
		return nil, nil
	}

	d, c := t.Format(DateLayout), t.Format(TimeLayout)

	return &d, &c
}

func isShortNumber(s string) bool {
	if len(s) >= minNumericLength {
		return false
	}

	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
