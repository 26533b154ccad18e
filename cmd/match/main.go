// Command match runs the matching pipeline once against a trace file and
// writes the rendered result to stdout. Useful for eyeballing matcher
// output during development: --format geojson drops straight into
// geojson.io.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"map_matcher/pkg/api"
	"map_matcher/pkg/config"
	"map_matcher/pkg/geo"
	"map_matcher/pkg/graph"
	"map_matcher/pkg/matching"
	"map_matcher/pkg/network"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph snapshot")
	tracePath := flag.String("trace", "", "Trace file: one 'lat,lon' pair per line, '#' comments allowed")
	configPath := flag.String("config", "config.yaml", "Path to YAML config (defaults apply if absent)")
	format := flag.String("format", "json", "Output format: json, gpx or geojson")
	timeout := flag.Duration("timeout", 30*time.Second, "Matching timeout")
	flag.Parse()

	if *tracePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: match --graph graph.bin --trace trace.csv [--format json|gpx|geojson]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	trace, err := readTrace(*tracePath)
	if err != nil {
		log.Fatalf("Failed to read trace: %v", err)
	}
	log.Printf("Trace: %d fixes", len(trace))

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadSnapshot(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	facade := network.NewService(g)
	matcher := matching.New(facade, matching.Config{
		SigmaZ:        cfg.Matcher.SigmaZ,
		Beta:          cfg.Matcher.Beta,
		MaxCandidates: cfg.Matcher.MaxCandidates,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	res, err := matcher.Match(ctx, trace)
	if err != nil {
		if kind := matching.Kind(err); kind != "" {
			log.Fatalf("Match failed (%s): %v", kind, err)
		}
		log.Fatalf("Match failed: %v", err)
	}
	log.Printf("Matched in %s, route %.1f m", time.Since(start).Round(time.Millisecond), res.Route.TotalDistanceM)

	renderer := api.RendererFor(*format)
	doc := &api.RenderDoc{Result: res, Options: api.RenderOptions{Geometry: true}}
	if err := renderer.Render(os.Stdout, doc); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
}

// readTrace parses a 'lat,lon' per line text file.
func readTrace(path string) ([]geo.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var trace []geo.Coordinate
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected 'lat,lon'", lineNo)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad latitude: %w", lineNo, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad longitude: %w", lineNo, err)
		}
		trace = append(trace, geo.NewCoordinate(lat, lon))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return trace, nil
}
