// Package config holds the engine configuration consumed, not computed, by
// the core: multiplicative-fusion clamp bounds, dispersion-penalty weighting,
// veto severity threshold, and worker count. Values are fixed at startup.
package config

import (
	"fmt"
)

// Config is the engine configuration. All fields are read-only after Load.
type Config struct {
	// FusionClampMin and FusionClampMax bound the accumulated multiplicative
	// edge weight during parameter fusion. The running product is clamped to
	// [FusionClampMin, FusionClampMax] regardless of chain length.
	FusionClampMin float64 `yaml:"fusion_clamp_min" json:"fusion_clamp_min"`
	FusionClampMax float64 `yaml:"fusion_clamp_max" json:"fusion_clamp_max"`

	// DispersionWeight scales the spread-derived penalty applied at each
	// aggregation stage. 0 disables the penalty entirely.
	DispersionWeight float64 `yaml:"dispersion_weight" json:"dispersion_weight"`

	// VetoSeverityThreshold is the confidence multiplier at or below which a
	// veto condition counts as severe. Audit methods without at least one
	// severe condition are flagged as under-specified.
	VetoSeverityThreshold float64 `yaml:"veto_severity_threshold" json:"veto_severity_threshold"`

	// Workers is the size of the per-item execution pool. 0 means serial.
	Workers int `yaml:"workers" json:"workers"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		FusionClampMin:        0.1,
		FusionClampMax:        3.0,
		DispersionWeight:      0.5,
		VetoSeverityThreshold: 0.5,
		Workers:               4,
	}
}

// Validate rejects configurations the engine cannot honor.
func (c Config) Validate() error {
	if c.FusionClampMin <= 0 {
		return fmt.Errorf("fusion_clamp_min must be > 0, got %v", c.FusionClampMin)
	}
	if c.FusionClampMax < c.FusionClampMin {
		return fmt.Errorf("fusion_clamp_max (%v) must be >= fusion_clamp_min (%v)",
			c.FusionClampMax, c.FusionClampMin)
	}
	if c.FusionClampMin > 1 || c.FusionClampMax < 1 {
		return fmt.Errorf("fusion clamp range [%v, %v] must contain 1 (identity weight)",
			c.FusionClampMin, c.FusionClampMax)
	}
	if c.DispersionWeight < 0 || c.DispersionWeight > 1 {
		return fmt.Errorf("dispersion_weight must be in [0,1], got %v", c.DispersionWeight)
	}
	if c.VetoSeverityThreshold < 0 || c.VetoSeverityThreshold > 1 {
		return fmt.Errorf("veto_severity_threshold must be in [0,1], got %v", c.VetoSeverityThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
