package matcher

import (
	"math"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Тег совпал, если косинусная близость TF-IDF векторов текста и тега больше Threshold.
// Корпус на каждый вызов свой: сам текст и все теги.
type Similarity struct {
	Threshold float64
}

var _ Matcher = Similarity{}

func (s Similarity) Match(body string, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	scores := cosineToFirst(append([]string{body}, tags...))

	var matched []string
	for i, tag := range tags {
		if scores[i+1] > s.Threshold {
			matched = append(matched, tag)
		}
	}

	return lo.Uniq(matched)
}

// Слова из двух и более буквенно-цифровых символов
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

type vector map[string]float64

// Строит TF-IDF векторы документов корпуса.
// idf = ln((1+n)/(1+df)) + 1, tf - число вхождений, векторы нормированы по L2.
func tfidf(corpus []string) []vector {
	var (
		n      = float64(len(corpus))
		counts = make([]map[string]int, len(corpus))
		df     = make(map[string]int)
	)

	for i, doc := range corpus {
		counts[i] = make(map[string]int)
		for _, token := range tokenize(doc) {
			counts[i][token]++
		}
		for token := range counts[i] {
			df[token]++
		}
	}

	vectors := make([]vector, len(corpus))
	for i, tf := range counts {
		v := make(vector, len(tf))

		var norm float64
		for token, count := range tf {
			idf := math.Log((1+n)/(1+float64(df[token]))) + 1
			w := float64(count) * idf
			v[token] = w
			norm += w * w
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for token := range v {
				v[token] /= norm
			}
		}

		vectors[i] = v
	}

	return vectors
}

// Косинусная близость каждого документа корпуса к первому
func cosineToFirst(corpus []string) []float64 {
	vectors := tfidf(corpus)
	scores := make([]float64, len(vectors))

	for i, v := range vectors {
		scores[i] = dot(vectors[0], v)
	}

	return scores
}

// Векторы уже нормированы, поэтому скалярное произведение и есть косинус
func dot(a, b vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var sum float64
	for token, w := range a {
		sum += w * b[token]
	}

	return sum
}
