// Package params defines the configuration consumed by this simulator's
// core (spec §6), constructible directly as a Go struct or loaded from a
// TOML file with naoina/toml, the format the teacher's node configuration
// layer uses.
package params

import (
	"io"
	"os"

	"github.com/naoina/toml"
	"github.com/ground-x/powsim/simerr"
)

// SimConfig is the configuration struct the core consumes. Field names
// match spec §6 save for the added knobs called out in SPEC_FULL.md §6.
type SimConfig struct {
	N      int     `toml:"n"`       // number of peers
	Z0     float64 `toml:"z0"`      // percent slow peers, 0-100
	Z1     float64 `toml:"z1"`      // percent low-CPU peers, 0-100
	Ttx    float64 `toml:"ttx"`     // mean transaction interarrival time (seconds)
	I      float64 `toml:"i"`       // target block interval (seconds)
	MaxTime float64 `toml:"max_time"` // simulated-time horizon (seconds)
	Seed   int64   `toml:"seed"`    // RNG seed; 0 is a valid, reproducible seed

	ConfirmationWindow int     `toml:"confirmation_window"` // default 64
	BlockReward        int64   `toml:"block_reward"`        // default 50
	MaxBlockSizeKB     int     `toml:"max_block_size_kb"`   // default 1024
	TxnSizeKB          int     `toml:"txn_size_kb"`         // default 1
	BitsPerKB          int     `toml:"bits_per_kb"`         // default 8192

	MinDegree int     `toml:"min_degree"` // default 3
	MaxDegree int     `toml:"max_degree"` // default 6
	FastBandwidthMbps float64 `toml:"fast_bandwidth_mbps"` // default 100
	SlowBandwidthMbps float64 `toml:"slow_bandwidth_mbps"` // default 5
	MinPropDelayMs    float64 `toml:"min_prop_delay_ms"`   // default 10
	MaxPropDelayMs    float64 `toml:"max_prop_delay_ms"`   // default 500

	GraphBuildRetries int `toml:"graph_build_retries"` // default 1000
}

// Default returns a SimConfig with every added knob (SPEC_FULL.md §6) set
// to its documented default, leaving the spec's own fields (N, Z0, Z1, Ttx,
// I, MaxTime, Seed) zeroed for the caller to fill in.
func Default() SimConfig {
	return SimConfig{
		ConfirmationWindow: 64,
		BlockReward:        50,
		MaxBlockSizeKB:     1024,
		TxnSizeKB:          1,
		BitsPerKB:          8192,
		MinDegree:          3,
		MaxDegree:          6,
		FastBandwidthMbps:  100,
		SlowBandwidthMbps:  5,
		MinPropDelayMs:     10,
		MaxPropDelayMs:     500,
		GraphBuildRetries:  1000,
	}
}

// LoadTOML reads a SimConfig from a TOML file, starting from Default() so
// an input file only needs to set the fields it cares about.
func LoadTOML(path string) (SimConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SimConfig{}, simerr.WrapConfigurationError(err, "opening config file")
	}
	defer f.Close()
	return decodeTOML(f)
}

func decodeTOML(r io.Reader) (SimConfig, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return SimConfig{}, simerr.WrapConfigurationError(err, "decoding config toml")
	}
	return cfg, nil
}

// Validate returns the single fatal ConfigurationError class of spec §7:
// out-of-range percentages or non-positive times. It does not check graph
// connectivity — that failure can only be discovered while building the
// network (netbuild.Build returns it there).
func (c SimConfig) Validate() error {
	switch {
	case c.N <= 0:
		return simerr.NewConfigurationError("n must be positive")
	case c.Z0 < 0 || c.Z0 > 100:
		return simerr.NewConfigurationError("z0 must be in [0,100]")
	case c.Z1 < 0 || c.Z1 > 100:
		return simerr.NewConfigurationError("z1 must be in [0,100]")
	case c.Ttx <= 0:
		return simerr.NewConfigurationError("ttx must be positive")
	case c.I <= 0:
		return simerr.NewConfigurationError("i must be positive")
	case c.MaxTime <= 0:
		return simerr.NewConfigurationError("max_time must be positive")
	case c.MinDegree < 1 || c.MaxDegree < c.MinDegree:
		return simerr.NewConfigurationError("min_degree/max_degree are inconsistent")
	case c.MaxDegree >= c.N:
		return simerr.NewConfigurationError("max_degree must be less than n")
	case c.BlockReward <= 0:
		return simerr.NewConfigurationError("block_reward must be positive")
	case c.MaxBlockSizeKB <= 0 || c.TxnSizeKB <= 0:
		return simerr.NewConfigurationError("block/txn size must be positive")
	}
	return nil
}
