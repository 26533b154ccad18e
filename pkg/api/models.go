package api

import "map_matcher/pkg/matching"

// MatchRequest is the JSON body for POST /api/v1/match.
type MatchRequest struct {
	Coordinates       []CoordinateJSON `json:"coordinates"`
	OutputFormat      string           `json:"output_format"`
	ZoomLevel         int              `json:"zoom_level"`
	PrintInstructions bool             `json:"print_instructions"`
	Geometry          *bool            `json:"geometry"` // default true
	Compression       bool             `json:"compression"`
}

// CoordinateJSON represents a lat/lng pair in JSON.
type CoordinateJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RenderOptions are the presentation options forwarded to the renderer.
// They never influence matching.
type RenderOptions struct {
	ZoomLevel         int
	PrintInstructions bool
	Geometry          bool
	Compression       bool
}

func (r *MatchRequest) renderOptions() RenderOptions {
	geometry := true
	if r.Geometry != nil {
		geometry = *r.Geometry
	}
	return RenderOptions{
		ZoomLevel:         r.ZoomLevel,
		PrintInstructions: r.PrintInstructions,
		Geometry:          geometry,
		Compression:       r.Compression,
	}
}

// MatchResponse is the json envelope for a successful match.
type MatchResponse struct {
	Status              string             `json:"status"`
	TotalDistanceMeters float64            `json:"total_distance_meters"`
	MatchedPoints       []CoordinateJSON   `json:"matched_points"`
	Legs                []LegJSON          `json:"legs,omitempty"`
	RouteGeometry       []CoordinateJSON   `json:"route_geometry,omitempty"`
	EncodedGeometry     string             `json:"encoded_geometry,omitempty"`
	Instructions        []InstructionJSON  `json:"instructions,omitempty"`
	ZoomLevel           int                `json:"zoom_level"`
	Debug               matching.DebugInfo `json:"debug"`
}

// LegJSON is one leg of the matched route.
type LegJSON struct {
	DistanceMeters float64 `json:"distance_meters"`
}

// InstructionJSON is a minimal driving instruction for one leg.
type InstructionJSON struct {
	Leg            int     `json:"leg"`
	BearingDegrees float64 `json:"bearing_degrees"`
	DistanceMeters float64 `json:"distance_meters"`
}

// ErrorResponse is the uniform failure envelope. Every matching failure
// renders the same error code; the kind appears only under debug.
type ErrorResponse struct {
	Error string              `json:"error"`
	Debug *matching.DebugInfo `json:"debug,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes      uint32  `json:"num_nodes"`
	NumEdges      uint32  `json:"num_edges"`
	SigmaZ        float64 `json:"sigma_z"`
	Beta          float64 `json:"beta"`
	MaxCandidates int     `json:"max_candidates"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
