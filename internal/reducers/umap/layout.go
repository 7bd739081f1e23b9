package umap

import (
	"context"
	"math"
	"math/rand/v2"
)

// Layout optimisation constants.
const (
	gradientClip     = 4.0
	repulsionEpsilon = 0.001
	repulsionGamma   = 1.0
)

// layoutOptimizer runs stochastic gradient descent over the sampled edges,
// attracting neighbours and repelling randomly drawn points.
type layoutOptimizer struct {
	a, b               float64
	learningRate       float64
	negativeSampleRate float64
	rng                *rand.Rand
}

func (o *layoutOptimizer) run(ctx context.Context, emb [][2]float64, edges []edge, epochs int) error {
	n := len(emb)
	nextSample := make([]float64, len(edges))
	negPeriod := make([]float64, len(edges))
	nextNegative := make([]float64, len(edges))
	for i, e := range edges {
		nextSample[i] = e.epochsPerSample
		negPeriod[i] = e.epochsPerSample / o.negativeSampleRate
		nextNegative[i] = negPeriod[i]
	}

	alpha := o.learningRate
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fe := float64(epoch)

		for i, e := range edges {
			if nextSample[i] > fe {
				continue
			}

			cur := &emb[e.head]
			other := &emb[e.tail]
			coeff := 0.0
			if d2 := sqDist(*cur, *other); d2 > 0 {
				coeff = -2 * o.a * o.b * math.Pow(d2, o.b-1) / (o.a*math.Pow(d2, o.b) + 1)
			}
			for d := 0; d < 2; d++ {
				g := clip(coeff * (cur[d] - other[d]))
				cur[d] += g * alpha
				other[d] -= g * alpha
			}
			nextSample[i] += e.epochsPerSample

			nNeg := max(0, int((fe-nextNegative[i])/negPeriod[i]))
			for s := 0; s < nNeg; s++ {
				k := o.rng.IntN(n)
				if k == e.head {
					continue
				}
				neg := emb[k]
				coeff := 0.0
				if d2 := sqDist(*cur, neg); d2 > 0 {
					coeff = 2 * repulsionGamma * o.b / ((repulsionEpsilon + d2) * (o.a*math.Pow(d2, o.b) + 1))
				}
				for d := 0; d < 2; d++ {
					g := gradientClip
					if coeff > 0 {
						g = clip(coeff * (cur[d] - neg[d]))
					}
					cur[d] += g * alpha
				}
			}
			nextNegative[i] += float64(nNeg) * negPeriod[i]
		}

		alpha = o.learningRate * (1 - fe/float64(epochs))
	}
	return nil
}

func sqDist(p, q [2]float64) float64 {
	dx, dy := p[0]-q[0], p[1]-q[1]
	return dx*dx + dy*dy
}

func clip(v float64) float64 {
	return math.Max(-gradientClip, math.Min(gradientClip, v))
}
