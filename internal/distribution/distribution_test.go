package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/models"
)

func TestRankMatchesSortedOrder(t *testing.T) {
	d := FromCounter(randomCounter(21, 150), Params{AlphaTriplet: 1, AlphaPos: 1, Mix: 0.5})
	sorted := d.Sorted()
	require.Len(t, sorted, models.NumTriplets)
	for i, e := range sorted {
		require.Equal(t, i+1, d.Rank(e.Triplet))
	}
}

func TestRankTiesBreakAscending(t *testing.T) {
	d := Uniform()
	assert.Equal(t, 1, d.Rank(0))
	assert.Equal(t, 43, d.Rank(42))
	assert.Equal(t, 1000, d.Rank(999))
	assert.True(t, d.InTopK(4, 5))
	assert.False(t, d.InTopK(5, 5))
}

func TestRankBounds(t *testing.T) {
	c := counter.New()
	c.FoldIn(models.MustParseTriplet("808"), 30)
	d := FromCounter(c, DefaultParams())
	assert.Equal(t, 1, d.Rank(models.MustParseTriplet("808")))
	for _, tr := range models.AllTriplets() {
		r := d.Rank(tr)
		require.GreaterOrEqual(t, r, 1)
		require.LessOrEqual(t, r, models.NumTriplets)
	}
}

func TestBrierBounds(t *testing.T) {
	c := counter.New()
	c.FoldIn(models.MustParseTriplet("808"), 500)
	d := FromCounter(c, Params{AlphaTriplet: 0.01, AlphaPos: 0.01, Mix: 1})
	for _, tr := range models.AllTriplets() {
		b := d.Brier(tr)
		require.GreaterOrEqual(t, b, 0.0)
		require.LessOrEqual(t, b, 2.0)
	}
	assert.Less(t, d.Brier(models.MustParseTriplet("808")), d.Brier(models.MustParseTriplet("809")))
}

func TestTop(t *testing.T) {
	c := counter.New()
	c.FoldIn(models.MustParseTriplet("100"), 5)
	c.FoldIn(models.MustParseTriplet("200"), 3)
	d := FromCounter(c, Params{AlphaTriplet: 1, AlphaPos: 1, Mix: 1})

	top := d.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, "100", top[0].Triplet.String())
	assert.Equal(t, "200", top[1].Triplet.String())
	assert.Equal(t, "000", top[2].Triplet.String())
	assert.Len(t, d.Top(5000), models.NumTriplets)
	assert.Empty(t, d.Top(-1))
}
