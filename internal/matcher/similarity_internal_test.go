package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	require.Equal(t,
		[]string{"new", "a320", "route", "to", "münchen", "airport_x"},
		tokenize("New A320 route to München! a b airport_x"),
	)
}

func TestTFIDFWeights(t *testing.T) {
	vectors := tfidf([]string{"istanbul airport", "istanbul airport", "airport"})
	require.Len(t, vectors, 3)

	// df(istanbul)=2, df(airport)=3, n=3
	idfIstanbul := math.Log(4.0/3.0) + 1
	norm := math.Sqrt(idfIstanbul*idfIstanbul + 1)

	require.InDelta(t, idfIstanbul/norm, vectors[0]["istanbul"], 1e-9)
	require.InDelta(t, 1/norm, vectors[0]["airport"], 1e-9)
	require.InDelta(t, 1.0, vectors[2]["airport"], 1e-9)

	scores := cosineToFirst([]string{"istanbul airport", "istanbul airport", "airport"})
	require.InDelta(t, 1.0, scores[1], 1e-9)
	require.InDelta(t, 1/norm, scores[2], 1e-9)
}

func TestTFIDFEmptyDocument(t *testing.T) {
	scores := cosineToFirst([]string{"", "istanbul"})
	require.Equal(t, []float64{0, 0}, scores)
}
