package network

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/tidwall/rtree"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/graph"
)

const metersPerDegreeLat = earthRadiusMeters * math.Pi / 180

const earthRadiusMeters = 6_371_000.0

// Service implements Facade over an in-memory CSR road graph. The graph is
// immutable after construction, so a single Service is shared across all
// request workers without synchronization; per-query scratch state comes
// from a pool.
type Service struct {
	g      *graph.Graph
	tr     rtree.RTreeG[uint32]
	qsPool sync.Pool
}

// NewService builds the spatial edge index and query-state pool for g.
// Bidirectional roads are indexed once, under their canonical direction
// (lower tail node; see isCanonical).
func NewService(g *graph.Graph) *Service {
	s := &Service{g: g}
	for e := uint32(0); e < g.NumEdges; e++ {
		if !s.isCanonical(e) {
			continue
		}
		u, v := g.Tail[e], g.Head[e]
		minLon := math.Min(g.NodeLon[u], g.NodeLon[v])
		maxLon := math.Max(g.NodeLon[u], g.NodeLon[v])
		minLat := math.Min(g.NodeLat[u], g.NodeLat[v])
		maxLat := math.Max(g.NodeLat[u], g.NodeLat[v])
		s.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, e)
	}
	s.qsPool.New = func() any {
		return newQueryState(g.NumNodes)
	}
	return s
}

// isCanonical reports whether e represents its road in the index: one-way
// edges always do, two-way roads only in the tail<head direction.
func (s *Service) isCanonical(e uint32) bool {
	if s.g.Tail[e] < s.g.Head[e] {
		return true
	}
	return s.g.ReverseEdge(e) == NoEdge
}

// NumNodes returns the node count of the indexed graph.
func (s *Service) NumNodes() uint32 { return s.g.NumNodes }

// NumEdges returns the directed edge count of the indexed graph.
func (s *Service) NumEdges() uint32 { return s.g.NumEdges }

func (s *Service) nodeCoord(n uint32) geo.Coordinate {
	return geo.NewCoordinate(s.g.NodeLat[n], s.g.NodeLon[n])
}

// FindCandidates projects fix onto every indexed road within maxRadiusM and
// returns the k nearest projections.
func (s *Service) FindCandidates(ctx context.Context, fix geo.Coordinate, maxRadiusM float64, k int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 || maxRadiusM <= 0 {
		return nil, nil
	}

	latPad := maxRadiusM / metersPerDegreeLat
	cosLat := math.Cos(geo.DegToRad(fix.Lat()))
	if cosLat < 0.01 {
		cosLat = 0.01 // degenerate near the poles; no road data lives there
	}
	lonPad := latPad / cosLat

	min := [2]float64{fix.Lon() - lonPad, fix.Lat() - latPad}
	max := [2]float64{fix.Lon() + lonPad, fix.Lat() + latPad}

	var cands []Candidate
	s.tr.Search(min, max, func(_, _ [2]float64, e uint32) bool {
		u, v := s.g.Tail[e], s.g.Head[e]
		d, ratio, foot := geo.PerpendicularDistance(s.nodeCoord(u), s.nodeCoord(v), fix)
		if d > maxRadiusM {
			return true
		}
		cands = append(cands, Candidate{
			Edge:        e,
			ReverseEdge: s.g.ReverseEdge(e),
			NodeU:       u,
			NodeV:       v,
			Ratio:       ratio,
			Location:    foot,
			PerpDistM:   d,
		})
		return true
	})

	// Nearest first; edge index breaks ties so the ordering is stable
	// across runs regardless of r-tree iteration order.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].PerpDistM != cands[j].PerpDistM {
			return cands[i].PerpDistM < cands[j].PerpDistM
		}
		return cands[i].Edge < cands[j].Edge
	})

	if len(cands) > k {
		cands = cands[:k]
	}
	return cands, nil
}
