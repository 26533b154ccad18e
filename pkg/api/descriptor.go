package api

import (
	"encoding/xml"
	"io"

	gojson "github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/matching"
)

// RenderDoc is the input handed to a renderer: the match result plus the
// forwarded presentation options.
type RenderDoc struct {
	Result  *matching.Result
	Options RenderOptions
}

// Renderer writes one output envelope for a match result. The descriptor
// is selected by the request's output_format; unknown formats fall back
// to json.
type Renderer interface {
	ContentType() string
	Render(w io.Writer, doc *RenderDoc) error
}

// RendererFor returns the descriptor for an output_format value.
func RendererFor(format string) Renderer {
	switch format {
	case "gpx":
		return gpxRenderer{}
	case "geojson":
		return geojsonRenderer{}
	default:
		return jsonRenderer{}
	}
}

// routeGeometry flattens the route legs into one polyline, collapsing the
// duplicated leg endpoints.
func routeGeometry(doc *RenderDoc) []geo.Coordinate {
	var geom []geo.Coordinate
	for _, leg := range doc.Result.Route.Legs {
		for _, c := range leg.Geometry {
			if n := len(geom); n > 0 && geom[n-1] == c {
				continue
			}
			geom = append(geom, c)
		}
	}
	return geom
}

type jsonRenderer struct{}

func (jsonRenderer) ContentType() string { return "application/json" }

func (jsonRenderer) Render(w io.Writer, doc *RenderDoc) error {
	res := doc.Result
	resp := MatchResponse{
		Status:              "ok",
		TotalDistanceMeters: res.Route.TotalDistanceM,
		MatchedPoints:       make([]CoordinateJSON, len(res.Matched)),
		ZoomLevel:           doc.Options.ZoomLevel,
		Debug:               res.Debug,
	}
	for i, c := range res.Matched {
		resp.MatchedPoints[i] = CoordinateJSON{Lat: c.Location.Lat(), Lng: c.Location.Lon()}
	}
	for _, leg := range res.Route.Legs {
		resp.Legs = append(resp.Legs, LegJSON{DistanceMeters: leg.DistanceM})
	}

	if doc.Options.Geometry {
		geom := routeGeometry(doc)
		if doc.Options.Compression {
			resp.EncodedGeometry = encodePolyline(geom)
		} else {
			resp.RouteGeometry = make([]CoordinateJSON, len(geom))
			for i, c := range geom {
				resp.RouteGeometry[i] = CoordinateJSON{Lat: c.Lat(), Lng: c.Lon()}
			}
		}
	}

	if doc.Options.PrintInstructions {
		for i, leg := range res.Route.Legs {
			ins := InstructionJSON{Leg: i, DistanceMeters: leg.DistanceM}
			if len(leg.Geometry) >= 2 {
				ins.BearingDegrees = geo.Bearing(leg.Geometry[0], leg.Geometry[1])
			}
			resp.Instructions = append(resp.Instructions, ins)
		}
	}

	return gojson.NewEncoder(w).Encode(resp)
}

type geojsonRenderer struct{}

func (geojsonRenderer) ContentType() string { return "application/geo+json" }

func (geojsonRenderer) Render(w io.Writer, doc *RenderDoc) error {
	fc := geojson.NewFeatureCollection()

	if doc.Options.Geometry {
		geom := routeGeometry(doc)
		line := make([][]float64, len(geom))
		for i, c := range geom {
			line[i] = []float64{c.Lon(), c.Lat()}
		}
		route := geojson.NewLineStringFeature(line)
		route.SetProperty("kind", "route")
		route.SetProperty("total_distance_meters", doc.Result.Route.TotalDistanceM)
		fc.AddFeature(route)
	}

	points := make([][]float64, len(doc.Result.Matched))
	for i, c := range doc.Result.Matched {
		points[i] = []float64{c.Location.Lon(), c.Location.Lat()}
	}
	matched := geojson.NewMultiPointFeature(points...)
	matched.SetProperty("kind", "matched_points")
	fc.AddFeature(matched)

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type gpxRenderer struct{}

func (gpxRenderer) ContentType() string { return "application/gpx+xml" }

type gpxFile struct {
	XMLName xml.Name  `xml:"gpx"`
	Version string    `xml:"version,attr"`
	Creator string    `xml:"creator,attr"`
	Xmlns   string    `xml:"xmlns,attr"`
	Track   gpxTrack  `xml:"trk"`
	Points  []gpxWpt  `xml:"wpt"`
}

type gpxTrack struct {
	Name    string     `xml:"name,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxTrkpt `xml:"trkpt"`
}

type gpxTrkpt struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type gpxWpt struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

func (gpxRenderer) Render(w io.Writer, doc *RenderDoc) error {
	file := gpxFile{
		Version: "1.1",
		Creator: "map_matcher",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Track:   gpxTrack{Name: "matched route"},
	}

	if doc.Options.Geometry {
		for _, c := range routeGeometry(doc) {
			file.Track.Segment.Points = append(file.Track.Segment.Points, gpxTrkpt{Lat: c.Lat(), Lon: c.Lon()})
		}
	}
	for _, c := range doc.Result.Matched {
		file.Points = append(file.Points, gpxWpt{Lat: c.Location.Lat(), Lon: c.Location.Lon()})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(file); err != nil {
		return err
	}
	return enc.Close()
}
