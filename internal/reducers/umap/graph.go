package umap

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Bandwidth search parameters for the per-point fuzzy radius.
const (
	smoothKIterations = 64
	smoothKTolerance  = 1e-5
	minKDistScale     = 1e-3
)

// knnGraph holds, for every point, its k nearest neighbours including itself.
// Row i is sorted by distance with i in position 0.
type knnGraph struct {
	indices [][]int
	dists   [][]float64
}

// nearestNeighbors computes the exact euclidean k-nearest-neighbour graph.
func nearestNeighbors(ctx context.Context, data [][]float64, k int) (*knnGraph, error) {
	n := len(data)
	g := &knnGraph{
		indices: make([][]int, n),
		dists:   make([][]float64, n),
	}

	type candidate struct {
		index int
		dist  float64
	}
	cands := make([]candidate, n)

	for i := 0; i < n; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for j := 0; j < n; j++ {
			d := 0.0
			if j != i {
				d = floats.Distance(data[i], data[j], 2)
			}
			cands[j] = candidate{index: j, dist: d}
		}
		sort.Slice(cands, func(a, b int) bool {
			ca, cb := cands[a], cands[b]
			if (ca.index == i) != (cb.index == i) {
				return ca.index == i
			}
			if ca.dist != cb.dist {
				return ca.dist < cb.dist
			}
			return ca.index < cb.index
		})

		g.indices[i] = make([]int, k)
		g.dists[i] = make([]float64, k)
		for c := 0; c < k; c++ {
			g.indices[i][c] = cands[c].index
			g.dists[i][c] = cands[c].dist
		}
	}
	return g, nil
}

// smoothKNNDist finds, for every point, the distance to its nearest distinct
// neighbour (rho) and a bandwidth (sigma) such that the memberships of its
// neighbourhood sum to log2(k).
func smoothKNNDist(dists [][]float64, k int) (sigmas, rhos []float64) {
	n := len(dists)
	sigmas = make([]float64, n)
	rhos = make([]float64, n)
	target := math.Log2(float64(k))

	var total float64
	var count int
	for _, row := range dists {
		total += floats.Sum(row)
		count += len(row)
	}
	meanAll := total / float64(count)

	for i, row := range dists {
		lo, hi, mid := 0.0, math.Inf(1), 1.0

		for _, d := range row {
			if d > 0 {
				rhos[i] = d
				break
			}
		}

		for iter := 0; iter < smoothKIterations; iter++ {
			psum := 0.0
			for j := 1; j < len(row); j++ {
				d := row[j] - rhos[i]
				if d > 0 {
					psum += math.Exp(-d / mid)
				} else {
					psum++
				}
			}
			if math.Abs(psum-target) < smoothKTolerance {
				break
			}
			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}

		sigmas[i] = mid
		floor := minKDistScale * meanAll
		if rhos[i] > 0 {
			floor = minKDistScale * floats.Sum(row) / float64(len(row))
		}
		if sigmas[i] < floor {
			sigmas[i] = floor
		}
	}
	return sigmas, rhos
}

// fuzzyGraph is a symmetric weighted graph stored as adjacency maps.
type fuzzyGraph struct {
	rows []map[int]float64
}

// fuzzySimplicialSet converts the kNN graph into symmetric membership strengths
// using the probabilistic union w = a + b - a*b.
func fuzzySimplicialSet(knn *knnGraph) *fuzzyGraph {
	n := len(knn.indices)
	k := len(knn.indices[0])
	sigmas, rhos := smoothKNNDist(knn.dists, k)

	directed := make([]map[int]float64, n)
	for i := range directed {
		directed[i] = make(map[int]float64, k)
		for c, j := range knn.indices[i] {
			if j == i {
				continue
			}
			var w float64
			if knn.dists[i][c]-rhos[i] <= 0 || sigmas[i] == 0 {
				w = 1
			} else {
				w = math.Exp(-(knn.dists[i][c] - rhos[i]) / sigmas[i])
			}
			if w > 0 {
				directed[i][j] = w
			}
		}
	}

	g := &fuzzyGraph{rows: make([]map[int]float64, n)}
	for i := range g.rows {
		g.rows[i] = make(map[int]float64)
	}
	for i, row := range directed {
		for j, w := range row {
			wt := directed[j][i]
			s := w + wt - w*wt
			g.rows[i][j] = s
			g.rows[j][i] = s
		}
	}
	return g
}

// edge is one directed sample of the fuzzy graph with its sampling period.
type edge struct {
	head, tail      int
	epochsPerSample float64
}

// edges lists the graph in deterministic order, dropping edges too weak to be
// sampled even once in the given number of epochs.
func (g *fuzzyGraph) edges(epochs int) []edge {
	maxW := 0.0
	for _, row := range g.rows {
		for _, w := range row {
			maxW = math.Max(maxW, w)
		}
	}
	if maxW == 0 {
		return nil
	}
	threshold := maxW / float64(epochs)

	var out []edge
	for i, row := range g.rows {
		tails := make([]int, 0, len(row))
		for j := range row {
			tails = append(tails, j)
		}
		sort.Ints(tails)
		for _, j := range tails {
			w := row[j]
			if w < threshold {
				continue
			}
			out = append(out, edge{head: i, tail: j, epochsPerSample: maxW / w})
		}
	}
	return out
}
