package matching

import (
	"context"
	"errors"
	"fmt"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/network"
)

// Matcher snaps GPS traces onto the road network behind a Facade. A single
// Matcher serves concurrent requests; all per-request state is local to
// Match.
type Matcher struct {
	facade network.Facade
	cfg    Config
}

// New creates a Matcher. Zero fields in cfg fall back to DefaultConfig.
func New(facade network.Facade, cfg Config) *Matcher {
	return &Matcher{facade: facade, cfg: cfg.withDefaults()}
}

// Result is a successful match: one candidate per input fix, the stitched
// route through them, and the decoder diagnostics.
type Result struct {
	Matched []network.Candidate
	Route   *network.RawRoute
	Debug   DebugInfo
}

// TransitionDebug records one decoder step of the winning path.
type TransitionDebug struct {
	RouteM       float64 `json:"route_m"`
	GreatCircleM float64 `json:"great_circle_m"`
}

// DebugInfo is the structured diagnostics object attached to responses.
type DebugInfo struct {
	CandidateCounts  []int             `json:"candidate_counts,omitempty"`
	WinningEmissions []float64         `json:"winning_emissions,omitempty"`
	Transitions      []TransitionDebug `json:"transitions,omitempty"`
	TotalScore       float64           `json:"total_score,omitempty"`
	FailureKind      string            `json:"failure_kind,omitempty"`
}

// Match runs the full pipeline: validation, candidate generation, Viterbi
// decoding, route stitching. On failure no partial result is returned; the
// error's Kind belongs in the response diagnostics.
func (m *Matcher) Match(ctx context.Context, trace []geo.Coordinate) (*Result, error) {
	if len(trace) < 2 {
		return nil, fmt.Errorf("%w: trace has %d fixes, need at least 2", ErrInvalidInput, len(trace))
	}
	for i, c := range trace {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: coordinate %d out of range", ErrInvalidInput, i)
		}
	}

	radii := SearchRadii(trace)
	uturns := UTurnFlags(trace)

	cands, err := m.generateCandidates(ctx, trace, radii)
	if err != nil {
		return nil, err
	}

	path, matrices, greatCircles, totalScore, err := m.decode(ctx, trace, cands, uturns)
	if err != nil {
		return nil, err
	}

	matched := make([]network.Candidate, len(trace))
	for i, j := range path {
		matched[i] = cands[i][j]
	}

	route, err := m.stitch(ctx, matched)
	if err != nil {
		return nil, err
	}

	return &Result{
		Matched: matched,
		Route:   route,
		Debug:   buildDebug(cands, path, matrices, greatCircles, totalScore, m),
	}, nil
}

// generateCandidates queries the facade once per fix. Any empty candidate
// list fails the request.
func (m *Matcher) generateCandidates(ctx context.Context, trace []geo.Coordinate, radii []float64) ([][]network.Candidate, error) {
	out := make([][]network.Candidate, len(trace))
	for i := range trace {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cands, err := m.facade.FindCandidates(ctx, trace[i], radii[i], m.cfg.MaxCandidates)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: fix %d: %v", ErrFacade, i, err)
		}
		if len(cands) == 0 {
			return nil, fmt.Errorf("%w: fix %d", ErrNoCandidates, i)
		}
		out[i] = cands
	}
	return out, nil
}

// stitch threads the matched candidates with a shortest-path query. The
// u-turn flags are uniformly true here: the decoder has already committed
// to the endpoints and they must be honored verbatim.
func (m *Matcher) stitch(ctx context.Context, matched []network.Candidate) (*network.RawRoute, error) {
	if len(matched) < 2 {
		return nil, fmt.Errorf("%w: %d matched candidates", ErrInvalidInput, len(matched))
	}

	pairs := make([]network.Pair, len(matched)-1)
	uturn := make([]bool, len(matched)-1)
	for k := 0; k+1 < len(matched); k++ {
		pairs[k] = network.Pair{Source: matched[k], Target: matched[k+1]}
		uturn[k] = true
	}

	route, err := m.facade.ShortestPath(ctx, pairs, uturn)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: stitch: %v", ErrFacade, err)
	}
	return route, nil
}

func buildDebug(cands [][]network.Candidate, path []int, matrices [][][]float64, greatCircles []float64, totalScore float64, m *Matcher) DebugInfo {
	n := len(path)
	dbg := DebugInfo{
		CandidateCounts:  make([]int, n),
		WinningEmissions: make([]float64, n),
		Transitions:      make([]TransitionDebug, n-1),
		TotalScore:       totalScore,
	}
	for i := 0; i < n; i++ {
		dbg.CandidateCounts[i] = len(cands[i])
		dbg.WinningEmissions[i] = m.emission(cands[i][path[i]].PerpDistM)
	}
	for i := 0; i+1 < n; i++ {
		dbg.Transitions[i] = TransitionDebug{
			RouteM:       matrices[i][path[i]][path[i+1]],
			GreatCircleM: greatCircles[i],
		}
	}
	return dbg
}
