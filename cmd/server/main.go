package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"map_matcher/pkg/api"
	"map_matcher/pkg/config"
	"map_matcher/pkg/graph"
	"map_matcher/pkg/matching"
	"map_matcher/pkg/network"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph snapshot")
	configPath := flag.String("config", "config.yaml", "Path to YAML config (defaults apply if absent)")
	addr := flag.String("addr", "", "Listen address override (e.g. :8080)")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *corsOrigin != "" {
		cfg.Server.CORSOrigin = *corsOrigin
	}

	start := time.Now()

	// Load graph.
	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadSnapshot(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Build the facade and the matcher on top of it.
	log.Println("Building spatial index...")
	facade := network.NewService(g)
	matcher := matching.New(facade, matching.Config{
		SigmaZ:        cfg.Matcher.SigmaZ,
		Beta:          cfg.Matcher.Beta,
		MaxCandidates: cfg.Matcher.MaxCandidates,
	})

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction.
	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	srvCfg := api.DefaultConfig(cfg.Server.Addr)
	if cfg.Server.ReadTimeoutSec > 0 {
		srvCfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSec) * time.Second
	}
	if cfg.Server.WriteTimeoutSec > 0 {
		srvCfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSec) * time.Second
	}
	if cfg.Server.RequestTimeoutSec > 0 {
		srvCfg.RequestTimeout = time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	}
	if cfg.Server.MaxConcurrent > 0 {
		srvCfg.MaxConcurrent = cfg.Server.MaxConcurrent
	}
	srvCfg.CORSOrigin = cfg.Server.CORSOrigin

	stats := api.StatsResponse{
		NumNodes:      g.NumNodes,
		NumEdges:      g.NumEdges,
		SigmaZ:        cfg.Matcher.SigmaZ,
		Beta:          cfg.Matcher.Beta,
		MaxCandidates: cfg.Matcher.MaxCandidates,
	}

	handlers := api.NewHandlers(matcher, stats)
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
