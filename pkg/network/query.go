package network

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"map_matcher/pkg/geo"
)

const infDist = ^uint64(0)

// phantomOffsets returns the millimeter distances from a phantom node to
// its edge's head and tail.
func (s *Service) phantomOffsets(c Candidate) (toHead, toTail uint32) {
	w := float64(s.g.Weight[c.Edge])
	toHead = uint32(math.Round(w * (1 - c.Ratio)))
	toTail = uint32(math.Round(w * c.Ratio))
	return toHead, toTail
}

// seed pushes the nodes reachable directly from the source phantom:
// the edge head always, the tail only when a reverse edge lets a vehicle
// drive back against the phantom's edge.
func (s *Service) seed(qs *queryState, src Candidate) {
	toHead, toTail := s.phantomOffsets(src)
	qs.touch(src.NodeV, toHead, noNode)
	qs.pq.push(src.NodeV, toHead)
	if src.ReverseEdge != NoEdge && toTail < qs.dist[src.NodeU] {
		qs.touch(src.NodeU, toTail, noNode)
		qs.pq.push(src.NodeU, toTail)
	}
}

// run settles nodes with Dijkstra until every node in needed is final or
// the frontier empties.
func (s *Service) run(qs *queryState, needed map[uint32]bool) {
	remaining := len(needed)
	settled := make(map[uint32]bool, len(needed))

	for !qs.pq.empty() && remaining > 0 {
		item := qs.pq.pop()
		if item.dist > qs.dist[item.node] {
			continue // stale entry
		}
		if needed[item.node] && !settled[item.node] {
			settled[item.node] = true
			remaining--
		}

		start, end := s.g.EdgesFrom(item.node)
		for e := start; e < end; e++ {
			v := s.g.Head[e]
			nd := item.dist + s.g.Weight[e]
			if nd < item.dist {
				continue // overflow guard
			}
			if nd < qs.dist[v] {
				qs.touch(v, nd, item.node)
				qs.pq.push(v, nd)
			}
		}
	}
}

// arrival returns the best total distance in millimeters from the seeded
// source to target t, and the junction node the target edge is entered
// from (noNode for a direct move along the shared edge). Arrival through
// the target's head runs against the edge direction, so it needs either a
// reverse edge or the u-turn allowance.
func (s *Service) arrival(qs *queryState, src, t Candidate, uturn bool) (uint64, uint32) {
	best := infDist
	via := noNode

	// Entering forward from the tail costs w*ratio; entering backward
	// from the head costs w*(1-ratio).
	toHead, toTail := s.phantomOffsets(t)

	if d := qs.dist[t.NodeU]; d != infWeight {
		if total := uint64(d) + uint64(toTail); total < best {
			best, via = total, t.NodeU
		}
	}
	if t.ReverseEdge != NoEdge || uturn {
		if d := qs.dist[t.NodeV]; d != infWeight {
			if total := uint64(d) + uint64(toHead); total < best {
				best, via = total, t.NodeV
			}
		}
	}

	// Direct move along the shared edge, without touching a junction.
	// Backwards in place is an in-place reversal: u-turn only.
	if t.Edge == src.Edge {
		w := float64(s.g.Weight[src.Edge])
		if t.Ratio >= src.Ratio {
			if direct := uint64(math.Round(w * (t.Ratio - src.Ratio))); direct < best {
				best, via = direct, noNode
			}
		} else if uturn {
			if direct := uint64(math.Round(w * (src.Ratio - t.Ratio))); direct < best {
				best, via = direct, noNode
			}
		}
	}

	return best, via
}

// oneToMany computes shortest-path distances in meters from src to every
// target. Resets qs before returning it to the pool.
func (s *Service) oneToMany(qs *queryState, src Candidate, targets []Candidate, uturn bool) []float64 {
	defer qs.reset()

	s.seed(qs, src)

	needed := make(map[uint32]bool, 2*len(targets))
	for _, t := range targets {
		needed[t.NodeU] = true
		if t.ReverseEdge != NoEdge || uturn {
			needed[t.NodeV] = true
		}
	}
	s.run(qs, needed)

	out := make([]float64, len(targets))
	for i, t := range targets {
		d, _ := s.arrival(qs, src, t, uturn)
		if d == infDist {
			out[i] = math.Inf(1)
		} else {
			out[i] = float64(d) / 1000.0
		}
	}
	return out
}

// ManyToMany runs one one-to-many query per source row, concurrently.
func (s *Service) ManyToMany(ctx context.Context, sources, targets []Candidate, uturnAtTargets bool) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matrix := make([][]float64, len(sources))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range sources {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			qs := s.qsPool.Get().(*queryState)
			matrix[i] = s.oneToMany(qs, src, targets, uturnAtTargets)
			s.qsPool.Put(qs)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// ShortestPath materializes the route through the given pairs.
func (s *Service) ShortestPath(ctx context.Context, pairs []Pair, uturnAllowed []bool) (*RawRoute, error) {
	if len(uturnAllowed) != len(pairs) {
		return nil, fmt.Errorf("uturn flags: got %d, want %d", len(uturnAllowed), len(pairs))
	}

	qs := s.qsPool.Get().(*queryState)
	defer s.qsPool.Put(qs)

	route := &RawRoute{Legs: make([]RouteLeg, 0, len(pairs))}
	for k, p := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		leg, err := s.routeLeg(qs, p, uturnAllowed[k])
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", k, err)
		}
		route.Legs = append(route.Legs, leg)
		route.TotalDistanceM += leg.DistanceM
	}
	return route, nil
}

// routeLeg routes one pair and builds its geometry: the snapped source
// position, the junction chain, the snapped target position.
func (s *Service) routeLeg(qs *queryState, p Pair, uturn bool) (RouteLeg, error) {
	defer qs.reset()

	s.seed(qs, p.Source)

	needed := map[uint32]bool{p.Target.NodeU: true}
	if p.Target.ReverseEdge != NoEdge || uturn {
		needed[p.Target.NodeV] = true
	}
	s.run(qs, needed)

	total, via := s.arrival(qs, p.Source, p.Target, uturn)
	if total == infDist {
		return RouteLeg{}, ErrNoRoute
	}

	geom := []geo.Coordinate{p.Source.Location}
	if via != noNode {
		var chain []uint32
		for n := via; n != noNode; n = qs.pred[n] {
			chain = append(chain, n)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			geom = append(geom, s.nodeCoord(chain[i]))
		}
	}
	geom = append(geom, p.Target.Location)

	return RouteLeg{
		DistanceM: float64(total) / 1000.0,
		Geometry:  geom,
	}, nil
}
