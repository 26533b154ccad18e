package graph

// unionFind is a disjoint-set structure with path halving and union by rank.
type unionFind struct {
	parent []uint32
	rank   []byte // max rank ~30 for realistic graphs
	size   []uint32
}

func newUnionFind(n uint32) *unionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &unionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

func (uf *unionFind) find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y uint32) {
	rx := uf.find(x)
	ry := uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// PruneToLargestComponent returns a new graph restricted to the largest
// weakly connected component (edge directions ignored for connectivity).
// Matching against a fragmented graph produces spurious unreachable
// transitions, so the preprocessor always prunes.
func PruneToLargestComponent(g *Graph) *Graph {
	if g.NumNodes == 0 {
		return &Graph{FirstOut: make([]uint32, 1)}
	}

	uf := newUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.union(u, g.Head[e])
		}
	}

	bestRoot := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.find(i)
		if uf.size[root] > uf.size[bestRoot] {
			bestRoot = root
		}
	}

	// Old→new node index mapping for the kept component.
	oldToNew := make([]uint32, g.NumNodes)
	numNodes := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.find(i) == bestRoot {
			oldToNew[i] = numNodes
			numNodes++
		} else {
			oldToNew[i] = NoEdge
		}
	}

	// Count surviving edges per new source node.
	firstOut := make([]uint32, numNodes+1)
	numEdges := uint32(0)
	for e := uint32(0); e < g.NumEdges; e++ {
		if oldToNew[g.Tail[e]] != NoEdge && oldToNew[g.Head[e]] != NoEdge {
			firstOut[oldToNew[g.Tail[e]]+1]++
			numEdges++
		}
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Place edges. Iterating edges in CSR order keeps per-node head
	// ordering sorted (new indices preserve old node order).
	head := make([]uint32, numEdges)
	tail := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)
	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for e := uint32(0); e < g.NumEdges; e++ {
		u := oldToNew[g.Tail[e]]
		v := oldToNew[g.Head[e]]
		if u == NoEdge || v == NoEdge {
			continue
		}
		idx := pos[u]
		head[idx] = v
		tail[idx] = u
		weight[idx] = g.Weight[e]
		pos[u]++
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for i := uint32(0); i < g.NumNodes; i++ {
		if n := oldToNew[i]; n != NoEdge {
			nodeLat[n] = g.NodeLat[i]
			nodeLon[n] = g.NodeLon[i]
		}
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
