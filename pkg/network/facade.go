package network

import (
	"context"
	"errors"
	"math"

	"map_matcher/pkg/geo"
)

// ErrNoRoute is returned when no route exists between two phantom nodes.
var ErrNoRoute = errors.New("no route found")

// NoEdge marks a missing opposite-direction edge on a candidate.
const NoEdge = ^uint32(0)

// Candidate is an on-road projection of a fix (a phantom node). It is a
// routing endpoint: the matcher treats it as opaque apart from PerpDistM
// and hands it back unchanged in distance and path queries.
type Candidate struct {
	Edge        uint32 // canonical directed edge the projection lies on
	ReverseEdge uint32 // opposite-direction edge, or NoEdge on one-ways
	NodeU       uint32 // edge source node
	NodeV       uint32 // edge target node
	Ratio       float64
	Location    geo.Coordinate // projection of the fix onto the edge
	PerpDistM   float64        // great-circle distance fix → Location
}

// Pair is one adjacent source/target leg of a matched route.
type Pair struct {
	Source Candidate
	Target Candidate
}

// RouteLeg is one materialized leg of a RawRoute.
type RouteLeg struct {
	DistanceM float64
	Geometry  []geo.Coordinate
}

// RawRoute is the materialized shortest path through a pair sequence.
type RawRoute struct {
	TotalDistanceM float64
	Legs           []RouteLeg
}

// Unreachable is the distance reported for pairs with no path between them.
func Unreachable() float64 { return math.Inf(1) }

// Facade is the read-only road-network oracle consumed by the matcher.
// Implementations must be safe for concurrent use; all coordinates cross
// the boundary in fixed-point form and all distances are meters.
type Facade interface {
	// FindCandidates returns up to k on-road projections of fix within
	// maxRadiusM meters, nearest first. An empty result is not an error.
	FindCandidates(ctx context.Context, fix geo.Coordinate, maxRadiusM float64, k int) ([]Candidate, error)

	// ManyToMany returns the shortest-path distance matrix
	// [len(sources)][len(targets)] in meters, +Inf for unreachable pairs.
	// When uturnAtTargets is true, arrival may reverse onto the target's
	// edge against its direction.
	ManyToMany(ctx context.Context, sources, targets []Candidate, uturnAtTargets bool) ([][]float64, error)

	// ShortestPath materializes the route through the given adjacent
	// pairs. uturnAllowed must have one entry per pair.
	ShortestPath(ctx context.Context, pairs []Pair, uturnAllowed []bool) (*RawRoute, error)
}
