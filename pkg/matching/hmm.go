package matching

import (
	"context"
	"errors"
	"fmt"
	"math"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/network"
)

// startMarker is the back-pointer of fix-0 lattice nodes.
const startMarker = -1

// latticeNode is one Viterbi state: the cumulative negative log-likelihood
// of the best candidate chain ending here, and the index of the chosen
// predecessor in the previous fix's candidate list. The lattice stays a
// flat pair of arrays; no node references another directly.
type latticeNode struct {
	score    float64
	prevCand int
}

// emission scores candidate distance d against the Gaussian GPS noise
// model: ½(d/σ)² + ln σ + ½ ln 2π. Lower is better.
func (m *Matcher) emission(d float64) float64 {
	x := d / m.cfg.SigmaZ
	return 0.5*x*x + math.Log(m.cfg.SigmaZ) + 0.5*math.Log(2*math.Pi)
}

// transition scores a candidate move by the gap between straight-line and
// road-network distance. Unreachable pairs score +Inf, never NaN.
func transition(greatCircleM, routeM, beta float64) float64 {
	if math.IsInf(routeM, 1) {
		return math.Inf(1)
	}
	return math.Abs(greatCircleM-routeM) / beta
}

// decode runs the Viterbi recursion over the candidate lists and returns
// one chosen candidate index per fix, plus the per-step distance matrices
// and great-circle distances for diagnostics.
func (m *Matcher) decode(ctx context.Context, trace []geo.Coordinate, cands [][]network.Candidate, uturns []bool) (path []int, matrices [][][]float64, greatCircles []float64, totalScore float64, err error) {
	n := len(trace)

	lattice := make([][]latticeNode, n)
	lattice[0] = make([]latticeNode, len(cands[0]))
	for j, c := range cands[0] {
		lattice[0][j] = latticeNode{score: m.emission(c.PerpDistM), prevCand: startMarker}
	}

	matrices = make([][][]float64, n-1)
	greatCircles = make([]float64, n-1)

	for i := 0; i < n-1; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, nil, nil, 0, cerr
		}

		gc := geo.ApproxDistance(trace[i], trace[i+1])
		greatCircles[i] = gc

		matrix, qerr := m.facade.ManyToMany(ctx, cands[i], cands[i+1], uturns[i+1])
		if qerr != nil {
			if errors.Is(qerr, context.Canceled) || errors.Is(qerr, context.DeadlineExceeded) {
				return nil, nil, nil, 0, qerr
			}
			return nil, nil, nil, 0, fmt.Errorf("%w: step %d: %v", ErrFacade, i, qerr)
		}
		matrices[i] = matrix

		next := make([]latticeNode, len(cands[i+1]))
		feasible := false
		for v := range cands[i+1] {
			best := math.Inf(1)
			bestU := startMarker
			for u := range cands[i] {
				prev := lattice[i][u].score
				if math.IsInf(prev, 1) {
					continue
				}
				// Strict < with ascending u keeps the lowest
				// predecessor index on ties.
				if s := prev + transition(gc, matrix[u][v], m.cfg.Beta); s < best {
					best = s
					bestU = u
				}
			}
			if bestU == startMarker {
				next[v] = latticeNode{score: math.Inf(1), prevCand: startMarker}
				continue
			}
			next[v] = latticeNode{
				score:    best + m.emission(cands[i+1][v].PerpDistM),
				prevCand: bestU,
			}
			feasible = true
		}
		if !feasible {
			return nil, nil, nil, 0, fmt.Errorf("%w: no reachable candidate at fix %d", ErrInfeasible, i+1)
		}
		lattice[i+1] = next
	}

	// Terminal argmin; ties resolve to the lowest candidate index.
	bestEnd := -1
	bestScore := math.Inf(1)
	for j, node := range lattice[n-1] {
		if node.score < bestScore {
			bestScore = node.score
			bestEnd = j
		}
	}
	if bestEnd < 0 {
		return nil, nil, nil, 0, fmt.Errorf("%w: terminal lattice column is empty", ErrInfeasible)
	}

	path = make([]int, n)
	path[n-1] = bestEnd
	for i := n - 1; i > 0; i-- {
		path[i-1] = lattice[i][path[i]].prevCand
	}

	return path, matrices, greatCircles, bestScore, nil
}
