package distribution

import (
	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/models"
)

const uniformProb = 1.0 / models.NumTriplets

// Build blends the Laplace-smoothed triplet model computed from tripletSrc
// with the positional-independence model computed from positionalSrc. Both
// sources may be the same snapshot.
func Build(tripletSrc, positionalSrc counter.Snapshot, params Params) *Distribution {
	trip := TripletModel(tripletSrc, params.AlphaTriplet)
	pos := PositionalModel(positionalSrc, params.AlphaPos)

	d := &Distribution{}
	mix := params.Mix
	for t := 0; t < models.NumTriplets; t++ {
		d.probs[t] = mix*trip[t] + (1-mix)*pos[t]
	}
	d.sumSquares = floats.Dot(d.probs[:], d.probs[:])
	return d
}

// FromCounter builds a distribution with c feeding both sub-models
func FromCounter(c *counter.Counter, params Params) *Distribution {
	snap := c.Snapshot()
	return Build(snap, snap, params)
}

// TripletModel returns (count(t)+alpha)/(N+1000*alpha) for every triplet,
// or the uniform distribution when the denominator is zero.
func TripletModel(s counter.Snapshot, alpha float64) [models.NumTriplets]float64 {
	var out [models.NumTriplets]float64
	denom := float64(s.Total()) + alpha*models.NumTriplets
	if denom <= 0 {
		fillUniform(&out)
		return out
	}
	for t := 0; t < models.NumTriplets; t++ {
		out[t] = (float64(s.Count(models.Triplet(t))) + alpha) / denom
	}
	return out
}

// PositionalMarginals returns the smoothed per-position digit distributions.
// ok is false when the counter carries no mass and alpha is zero.
func PositionalMarginals(s counter.Snapshot, alpha float64) (marginals [models.Positions][models.Digits]float64, ok bool) {
	denom := float64(s.Total()) + alpha*models.Digits
	if denom <= 0 {
		return marginals, false
	}
	for p := 0; p < models.Positions; p++ {
		for d := 0; d < models.Digits; d++ {
			marginals[p][d] = (float64(s.PositionCount(p, d)) + alpha) / denom
		}
	}
	return marginals, true
}

// PositionalModel multiplies the per-position marginals and renormalises the
// product over the full domain. A product with no mass becomes uniform.
func PositionalModel(s counter.Snapshot, alpha float64) [models.NumTriplets]float64 {
	var out [models.NumTriplets]float64
	m, ok := PositionalMarginals(s, alpha)
	if !ok {
		fillUniform(&out)
		return out
	}
	for a := 0; a < models.Digits; a++ {
		for b := 0; b < models.Digits; b++ {
			for c := 0; c < models.Digits; c++ {
				out[models.TripletFromDigits(a, b, c)] = m[0][a] * m[1][b] * m[2][c]
			}
		}
	}
	sum := floats.Sum(out[:])
	if sum <= 0 {
		fillUniform(&out)
		return out
	}
	floats.Scale(1/sum, out[:])
	return out
}

// Uniform returns the distribution assigning 1/1000 to every triplet
func Uniform() *Distribution {
	d := &Distribution{}
	fillUniform(&d.probs)
	d.sumSquares = floats.Dot(d.probs[:], d.probs[:])
	return d
}

func fillUniform(out *[models.NumTriplets]float64) {
	for t := range out {
		out[t] = uniformProb
	}
}
