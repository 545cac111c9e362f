// Package matcher решает, какие теги аэропорта относятся к тексту новости.
package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Стратегия сопоставления. Возвращает совпавшие теги в порядке списка тегов, без повторов
type Matcher interface {
	Match(body string, tags []string) []string
}

const (
	NameSubstring  = "substring"
	NameSimilarity = "similarity"

	DefaultThreshold = 0.9
)

type Factory func(threshold float64) Matcher

var registry = map[string]Factory{
	NameSubstring: func(float64) Matcher {
		return Substring{}
	},
	NameSimilarity: func(threshold float64) Matcher {
		return Similarity{Threshold: threshold}
	},
}

// New возвращает стратегию по имени. threshold нужен только similarity
func New(name string, threshold float64) (Matcher, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown matcher %q, expected one of %v", name, Names())
	}

	return factory(threshold), nil
}

func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)

	return names
}

// Тег совпал, если он без учета регистра является подстрокой текста
type Substring struct{}

func (Substring) Match(body string, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	lowerBody := strings.ToLower(body)

	matched := lo.Filter(tags, func(tag string, _ int) bool {
		return tag != "" && strings.Contains(lowerBody, strings.ToLower(tag))
	})

	return lo.Uniq(matched)
}

var _ Matcher = Substring{}
