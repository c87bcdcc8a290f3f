package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitVectorizer(t *testing.T) {
	t.Run("rows are L2 normalized", func(t *testing.T) {
		_, rows, err := fitVectorizer([]string{
			"gold ring vintage band",
			"silver necklace pendant",
		}, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		for _, row := range rows {
			var norm float64
			for _, v := range row {
				norm += v * v
			}
			assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
		}
	})

	t.Run("stopwords and short tokens are dropped", func(t *testing.T) {
		v, _, err := fitVectorizer([]string{"the ring of gold a b"}, 0)
		require.NoError(t, err)

		assert.Contains(t, v.vocabulary, "ring")
		assert.Contains(t, v.vocabulary, "gold")
		assert.NotContains(t, v.vocabulary, "the")
		assert.NotContains(t, v.vocabulary, "of")
		assert.NotContains(t, v.vocabulary, "a")
	})

	t.Run("vocabulary capped at most frequent terms", func(t *testing.T) {
		v, _, err := fitVectorizer([]string{
			"gold gold gold ring ring pendant",
		}, 2)
		require.NoError(t, err)

		assert.Len(t, v.vocabulary, 2)
		assert.Contains(t, v.vocabulary, "gold")
		assert.Contains(t, v.vocabulary, "ring")
		assert.NotContains(t, v.vocabulary, "pendant")
	})

	t.Run("all stopword corpus fails", func(t *testing.T) {
		_, _, err := fitVectorizer([]string{"the and of", "a an"}, 0)
		assert.Error(t, err)
	})

	t.Run("shared terms yield higher dot product", func(t *testing.T) {
		_, rows, err := fitVectorizer([]string{
			"gold ring vintage",
			"gold ring classic",
			"diamond necklace pendant",
		}, 0)
		require.NoError(t, err)

		assert.Greater(t, rows[0].dot(rows[1]), rows[0].dot(rows[2]))
		assert.InDelta(t, 1.0, rows[0].dot(rows[0]), 1e-9)
	})
}

func TestMinMaxScaler(t *testing.T) {
	s := fitScaler([]float64{100, 200, 300})

	assert.Equal(t, 0.0, s.scale(100))
	assert.Equal(t, 1.0, s.scale(300))
	assert.InDelta(t, 0.5, s.scale(200), 1e-9)

	// Degenerate column scales to zero everywhere.
	flat := fitScaler([]float64{42, 42})
	assert.Equal(t, 0.0, flat.scale(42))

	empty := fitScaler(nil)
	assert.Equal(t, 0.0, empty.scale(5))
}
