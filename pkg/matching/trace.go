package matching

import (
	"map_matcher/pkg/geo"
)

// A turn sharper than 80° off straight-through marks a plausible u-turn:
// interior angle below 100° or above 260°.
const (
	uturnMinAngle = 100.0
	uturnMaxAngle = 260.0
)

// UTurnFlags computes the per-fix u-turn indicators from the input
// geometry. The slice always has one entry per fix; endpoints stay false.
func UTurnFlags(trace []geo.Coordinate) []bool {
	flags := make([]bool, len(trace))
	for i := 1; i+1 < len(trace); i++ {
		theta := geo.TurnAngle(trace[i-1], trace[i], trace[i+1])
		if theta < uturnMinAngle || theta > uturnMaxAngle {
			flags[i] = true
		}
	}
	return flags
}

// SearchRadii bounds each fix's candidate search radius to half the
// spacing from its predecessor; the first fix borrows the first spacing.
func SearchRadii(trace []geo.Coordinate) []float64 {
	radii := make([]float64, len(trace))
	if len(trace) < 2 {
		return radii
	}
	radii[0] = geo.ApproxDistance(trace[0], trace[1]) / 2
	for i := 1; i < len(trace); i++ {
		radii[i] = geo.ApproxDistance(trace[i-1], trace[i]) / 2
	}
	return radii
}
