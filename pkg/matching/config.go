package matching

// Config holds the matcher tunables. σ and β are not learned; expose them
// for calibration against the GPS hardware in use.
type Config struct {
	// SigmaZ is the GPS noise standard deviation in meters used by the
	// emission model.
	SigmaZ float64
	// Beta scales the transition penalty (gap between great-circle and
	// road-network distance).
	Beta float64
	// MaxCandidates bounds the per-fix candidate list.
	MaxCandidates int
}

// DefaultConfig returns the calibration used in production.
func DefaultConfig() Config {
	return Config{
		SigmaZ:        4.07,
		Beta:          5.0,
		MaxCandidates: 5,
	}
}

// withDefaults fills zero fields so a partially populated Config works.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SigmaZ <= 0 {
		c.SigmaZ = def.SigmaZ
	}
	if c.Beta <= 0 {
		c.Beta = def.Beta
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = def.MaxCandidates
	}
	return c
}
