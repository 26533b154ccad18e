package graph

import (
	"sort"

	"github.com/paulmach/osm"

	osmparser "map_matcher/pkg/osm"
)

// Build creates a CSR Graph from parsed OSM edges.
func Build(result *osmparser.ParseResult) *Graph {
	edges := result.Edges
	if len(edges) == 0 {
		return &Graph{FirstOut: make([]uint32, 1)}
	}

	// Step 1: Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}

	numNodes := uint32(len(nodeIDs))

	// Step 2: Build compact edge list with remapped indices.
	type compactEdge struct {
		from   uint32
		to     uint32
		weight uint32
	}

	compact := make([]compactEdge, 0, len(edges))
	for _, e := range edges {
		compact = append(compact, compactEdge{
			from:   nodeSet[e.FromNodeID],
			to:     nodeSet[e.ToNodeID],
			weight: e.Weight,
		})
	}

	// Step 3: Sort edges by (source, target). Sorted heads per node let
	// FindEdge binary-search for reverse edges.
	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	// Collapse parallel edges (same from/to, e.g. duplicate OSM ways),
	// keeping the lighter one.
	dedup := compact[:0]
	for _, e := range compact {
		if n := len(dedup); n > 0 && dedup[n-1].from == e.from && dedup[n-1].to == e.to {
			if e.weight < dedup[n-1].weight {
				dedup[n-1].weight = e.weight
			}
			continue
		}
		dedup = append(dedup, e)
	}
	compact = dedup

	// Step 4: Build CSR arrays.
	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	tail := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)

	for i, e := range compact {
		head[i] = e.to
		tail[i] = e.from
		weight[i] = e.weight
	}

	// Build FirstOut via counting, then prefix sum.
	for _, e := range compact {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 5: Populate node coordinates.
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeSet {
		nodeLat[idx] = result.NodeLat[id]
		nodeLon[idx] = result.NodeLon[id]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Tail:     tail,
		Weight:   weight,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}
}
