package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration file.
type Config struct {
	Server  Server  `yaml:"server"`
	Matcher Matcher `yaml:"matcher"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr              string `yaml:"addr"`
	ReadTimeoutSec    int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int    `yaml:"write_timeout_sec"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	MaxConcurrent     int    `yaml:"max_concurrent"` // 0 = 2 × NumCPU
	CORSOrigin        string `yaml:"cors_origin"`
}

// Matcher holds the matching tunables.
type Matcher struct {
	SigmaZ        float64 `yaml:"sigma_z"`        // GPS noise stddev in meters
	Beta          float64 `yaml:"beta"`           // transition penalty scale
	MaxCandidates int     `yaml:"max_candidates"` // per-fix candidate cap
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			ReadTimeoutSec:    5,
			WriteTimeoutSec:   10,
			RequestTimeoutSec: 10,
		},
		Matcher: Matcher{
			SigmaZ:        4.07,
			Beta:          5.0,
			MaxCandidates: 5,
		},
	}
}

// Load reads the YAML config at path. A missing file returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
