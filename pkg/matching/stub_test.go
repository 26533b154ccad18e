package matching

import (
	"context"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/network"
)

// stubFacade is an in-memory network oracle for decoder tests. Candidate
// lists are keyed by fix coordinate; pair distances default to the
// straight-line distance between candidate locations (the "synthetic
// oracle" whose routes have zero gap) and can be overridden or blocked
// per (source edge, target edge) pair.
type stubFacade struct {
	cands      map[geo.Coordinate][]network.Candidate
	dist       map[[2]uint32]float64 // distance overrides
	blocked    map[[2]uint32]bool    // always unreachable
	needsUturn map[[2]uint32]bool    // unreachable unless u-turn allowed
	candErr    error

	uturnSeen      []bool // uturnAtTargets per ManyToMany call
	stitchFlags    []bool // flags passed to the last ShortestPath call
	stitchPairs    int
	findCandCalls  int
	manyToManyErrs error
}

func newStubFacade() *stubFacade {
	return &stubFacade{
		cands:      make(map[geo.Coordinate][]network.Candidate),
		dist:       make(map[[2]uint32]float64),
		blocked:    make(map[[2]uint32]bool),
		needsUturn: make(map[[2]uint32]bool),
	}
}

// addCandidate registers a candidate for fix with the given identity and
// perpendicular distance.
func (f *stubFacade) addCandidate(fix geo.Coordinate, id uint32, loc geo.Coordinate, perpDistM float64) {
	f.cands[fix] = append(f.cands[fix], network.Candidate{
		Edge:      id,
		Location:  loc,
		PerpDistM: perpDistM,
	})
}

func (f *stubFacade) pairDistance(src, tgt network.Candidate, uturn bool) float64 {
	key := [2]uint32{src.Edge, tgt.Edge}
	if f.blocked[key] {
		return network.Unreachable()
	}
	if f.needsUturn[key] && !uturn {
		return network.Unreachable()
	}
	if d, ok := f.dist[key]; ok {
		return d
	}
	return geo.ApproxDistance(src.Location, tgt.Location)
}

func (f *stubFacade) FindCandidates(ctx context.Context, fix geo.Coordinate, maxRadiusM float64, k int) ([]network.Candidate, error) {
	f.findCandCalls++
	if f.candErr != nil {
		return nil, f.candErr
	}
	cands := f.cands[fix]
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands, nil
}

func (f *stubFacade) ManyToMany(ctx context.Context, sources, targets []network.Candidate, uturnAtTargets bool) ([][]float64, error) {
	if f.manyToManyErrs != nil {
		return nil, f.manyToManyErrs
	}
	f.uturnSeen = append(f.uturnSeen, uturnAtTargets)
	matrix := make([][]float64, len(sources))
	for i, s := range sources {
		matrix[i] = make([]float64, len(targets))
		for j, t := range targets {
			matrix[i][j] = f.pairDistance(s, t, uturnAtTargets)
		}
	}
	return matrix, nil
}

func (f *stubFacade) ShortestPath(ctx context.Context, pairs []network.Pair, uturnAllowed []bool) (*network.RawRoute, error) {
	f.stitchFlags = append([]bool(nil), uturnAllowed...)
	f.stitchPairs = len(pairs)
	route := &network.RawRoute{Legs: make([]network.RouteLeg, 0, len(pairs))}
	for k, p := range pairs {
		d := f.pairDistance(p.Source, p.Target, uturnAllowed[k])
		route.Legs = append(route.Legs, network.RouteLeg{
			DistanceM: d,
			Geometry:  []geo.Coordinate{p.Source.Location, p.Target.Location},
		})
		route.TotalDistanceM += d
	}
	return route, nil
}
