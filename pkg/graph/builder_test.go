package graph

import (
	"testing"

	"github.com/paulmach/osm"

	osmparser "map_matcher/pkg/osm"
)

func TestBuildSimpleGraph(t *testing.T) {
	// Triangle: 0 -> 1 -> 2 -> 0
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 100, ToNodeID: 200, Weight: 1000},
			{FromNodeID: 200, ToNodeID: 300, Weight: 2000},
			{FromNodeID: 300, ToNodeID: 100, Weight: 3000},
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g := Build(result)

	if g.NumNodes != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes)
	}
	if g.NumEdges != 3 {
		t.Fatalf("NumEdges = %d, want 3", g.NumEdges)
	}

	// Each node has exactly 1 outgoing edge.
	for i := uint32(0); i < g.NumNodes; i++ {
		start, end := g.EdgesFrom(i)
		if end-start != 1 {
			t.Errorf("Node %d has %d edges, want 1", i, end-start)
		}
	}

	var totalWeight uint32
	for _, w := range g.Weight {
		totalWeight += w
	}
	if totalWeight != 6000 {
		t.Errorf("total weight = %d, want 6000", totalWeight)
	}

	// Tail must mirror the CSR layout.
	for e := uint32(0); e < g.NumEdges; e++ {
		u := g.Tail[e]
		start, end := g.EdgesFrom(u)
		if e < start || e >= end {
			t.Errorf("Tail[%d]=%d inconsistent with FirstOut", e, u)
		}
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges:   nil,
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	}

	g := Build(result)

	if g.NumNodes != 0 {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes)
	}
	if g.NumEdges != 0 {
		t.Errorf("NumEdges = %d, want 0", g.NumEdges)
	}
}

func TestBuildCollapsesParallelEdges(t *testing.T) {
	// Two parallel A->B edges; the lighter one must survive.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 900},
			{FromNodeID: 1, ToNodeID: 2, Weight: 500},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	}

	g := Build(result)

	if g.NumEdges != 1 {
		t.Fatalf("NumEdges = %d, want 1", g.NumEdges)
	}
	if g.Weight[0] != 500 {
		t.Errorf("Weight[0] = %d, want 500", g.Weight[0])
	}
}

func TestFindEdgeAndReverse(t *testing.T) {
	// A <-> B plus one-way B -> C.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 500},
			{FromNodeID: 2, ToNodeID: 1, Weight: 500},
			{FromNodeID: 2, ToNodeID: 3, Weight: 700},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1, 3: 1.2},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1, 3: 103.2},
	}

	g := Build(result)

	for e := uint32(0); e < g.NumEdges; e++ {
		if got := g.FindEdge(g.Tail[e], g.Head[e]); got != e {
			t.Errorf("FindEdge(%d, %d) = %d, want %d", g.Tail[e], g.Head[e], got, e)
		}
	}

	ab := g.FindEdge(g.Tail[0], g.Head[0])
	rev := g.ReverseEdge(ab)
	if rev == NoEdge {
		t.Fatalf("ReverseEdge(%d) = NoEdge, want a real edge", ab)
	}
	if g.Tail[rev] != g.Head[ab] || g.Head[rev] != g.Tail[ab] {
		t.Errorf("ReverseEdge(%d) = %d, not the opposite direction", ab, rev)
	}

	// The one-way B->C edge has no reverse.
	var bc uint32 = NoEdge
	for e := uint32(0); e < g.NumEdges; e++ {
		if g.Weight[e] == 700 {
			bc = e
		}
	}
	if bc == NoEdge {
		t.Fatal("one-way edge not found")
	}
	if rev := g.ReverseEdge(bc); rev != NoEdge {
		t.Errorf("ReverseEdge(one-way) = %d, want NoEdge", rev)
	}

	if got := g.FindEdge(0, 0); got != NoEdge {
		t.Errorf("FindEdge(0, 0) = %d, want NoEdge", got)
	}
}

func TestBuildCSRInvariants(t *testing.T) {
	// Star graph: center -> A, center -> B, center -> C, A -> center.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 10, ToNodeID: 30, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 1.3},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 103.3},
	}

	g := Build(result)

	if g.NumNodes != 4 {
		t.Fatalf("NumNodes = %d, want 4", g.NumNodes)
	}
	if g.NumEdges != 4 {
		t.Fatalf("NumEdges = %d, want 4", g.NumEdges)
	}

	// FirstOut is monotonically non-decreasing and closes at NumEdges.
	for i := uint32(1); i <= g.NumNodes; i++ {
		if g.FirstOut[i] < g.FirstOut[i-1] {
			t.Errorf("FirstOut[%d]=%d < FirstOut[%d]=%d", i, g.FirstOut[i], i-1, g.FirstOut[i-1])
		}
	}
	if g.FirstOut[g.NumNodes] != g.NumEdges {
		t.Errorf("FirstOut[%d]=%d != NumEdges=%d", g.NumNodes, g.FirstOut[g.NumNodes], g.NumEdges)
	}

	// All Head values < NumNodes; heads sorted within each node's range.
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if g.Head[e] >= g.NumNodes {
				t.Errorf("Head[%d]=%d >= NumNodes=%d", e, g.Head[e], g.NumNodes)
			}
			if e > start && g.Head[e] < g.Head[e-1] {
				t.Errorf("heads for node %d not sorted at edge %d", u, e)
			}
		}
	}
}
